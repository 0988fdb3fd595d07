package assembly

import (
	"testing"

	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

func TestBindConstSetAndDeferred(t *testing.T) {
	asm := New()
	idx := asm.BindConst("pi", value.FromNumber(3), false)
	if asm.Bindings[idx].Kind != BindingConstSet {
		t.Fatalf("Kind = %v, want BindingConstSet", asm.Bindings[idx].Kind)
	}

	deferredIdx := asm.BindConst("lazy", nil, true)
	if asm.Bindings[deferredIdx].Kind != BindingConstUnset {
		t.Fatalf("Kind = %v, want BindingConstUnset", asm.Bindings[deferredIdx].Kind)
	}

	asm.UnevaluatedConstants[deferredIdx] = ir.Push{Value: value.FromNumber(9)}
	asm.MaterializeConst(deferredIdx, value.FromNumber(9))
	if asm.Bindings[deferredIdx].Kind != BindingConstSet {
		t.Fatalf("Kind after MaterializeConst = %v, want BindingConstSet", asm.Bindings[deferredIdx].Kind)
	}
	if asm.Bindings[deferredIdx].Const.(*value.NumberArray).Data[0] != 9 {
		t.Fatalf("materialized const = %+v, want scalar 9", asm.Bindings[deferredIdx].Const)
	}
}

func TestBindFuncAndAddFunction(t *testing.T) {
	asm := New()
	f := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "double"},
		ir.Signature{Args: 1, Outputs: 1}, ir.Run{})
	idx := asm.BindFunc("double", f)
	if asm.Bindings[idx].Kind != BindingFunc {
		t.Fatalf("Kind = %v, want BindingFunc", asm.Bindings[idx].Kind)
	}
	if asm.Bindings[idx].Func != f {
		t.Fatal("bound Func does not match the function handle returned by AddFunction")
	}
	if asm.Body(f) == nil {
		t.Fatal("Body(f) should return the registered node, not nil")
	}
}

func TestNextGlobalTracksBindingCount(t *testing.T) {
	asm := New()
	if asm.NextGlobal() != 0 {
		t.Fatalf("NextGlobal() on empty assembly = %d, want 0", asm.NextGlobal())
	}
	asm.BindConst("a", value.FromNumber(1), false)
	if asm.NextGlobal() != 1 {
		t.Fatalf("NextGlobal() after one bind = %d, want 1", asm.NextGlobal())
	}
}

func TestSpanRoundTrip(t *testing.T) {
	asm := New()
	idx := asm.AddSpan(ir.Span{File: "demo.ua", Line: 3})
	if got := asm.Span(ir.SpanIdx(idx)); got.Line != 3 {
		t.Fatalf("Span(%d) = %+v, want Line 3", idx, got)
	}
	if got := asm.Span(ir.SpanIdx(999)); got != (ir.Span{}) {
		t.Fatalf("Span(out of range) = %+v, want zero Span", got)
	}
}

func TestCloneSharesButDoesNotAliasFutureAppends(t *testing.T) {
	asm := New()
	asm.BindConst("a", value.FromNumber(1), false)
	clone := asm.Clone()
	asm.BindConst("b", value.FromNumber(2), false)
	if len(clone.Bindings) != 1 {
		t.Fatalf("clone saw %d bindings after parent appended, want 1", len(clone.Bindings))
	}
}

func TestBindDef(t *testing.T) {
	asm := New()
	idx := asm.BindDef(DefInfo{Name: "Point"})
	if asm.Defs[idx].Name != "Point" {
		t.Fatalf("Defs[%d].Name = %q, want %q", idx, asm.Defs[idx].Name, "Point")
	}
}
