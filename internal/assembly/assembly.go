// Package assembly holds the append-only, compile-time-built tables an
// Interp walks at run time: bindings, spans, functions, dynamic-function
// trampolines, and the root node. This generalizes the teacher's
// internal/bytecode.Chunk (code + constants + debug info) from a flat
// instruction stream to the tree-shaped tables spec.md §4.A describes —
// same append/index discipline, different payload.
package assembly

import (
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// BindingKind distinguishes what a global binding resolves to.
type BindingKind int

const (
	BindingConstUnset BindingKind = iota // Const(None): deferred, unevaluated
	BindingConstSet                      // Const(Some(v))
	BindingFunc                          // Func(f)
	BindingModule                        // Module(...): never callable at run time
	BindingMacro                         // IndexMacro/CodeMacro: never callable at run time
)

// Binding is one entry of the global binding table.
type Binding struct {
	Kind     BindingKind
	Const    value.Value
	Func     *ir.Function
	Name     string
	Public   bool
	Comment  string
}

// DefInfo names a data definition registered by the lowering pass
// (spec.md §4.H step 4).
type DefInfo struct {
	Name string // enclosing module name, if any
}

// Inputs is the opaque source-text bundle an EngineError carries for
// diagnostic rendering. Lexing/parsing/file-loading are out of scope;
// this is just a pass-through handle.
type Inputs struct {
	Files map[string]string
}

// Assembly is the compiled program: bindings, spans, functions, dynamic
// trampolines, inputs, and a root node. After build, the only run-time
// write is MaterializeConst promoting a deferred constant in place.
// It is cheap to Clone (slice header copies only); spawned threads share
// the parent's *Assembly.
type Assembly struct {
	Bindings         []Binding
	Spans            []ir.Span
	Functions        []*ir.Function
	FunctionBodies   []ir.Node
	DynamicFunctions []ir.DynamicFunc
	Defs             []DefInfo
	Inputs           Inputs
	Root             ir.Node

	// UnevaluatedConstants holds the not-yet-run initializer node for
	// each deferred constant binding, keyed by binding index. Only
	// consulted at compile time / by macros and by CallGlobal's one-time
	// materialization path (spec.md §4.C).
	UnevaluatedConstants map[int]ir.Node
}

// New returns an empty Assembly ready for a compiler (out of scope here)
// to populate via BindDef/BindConst/AddFunction/AddSpan.
func New() *Assembly {
	return &Assembly{UnevaluatedConstants: make(map[int]ir.Node)}
}

// Clone returns a shallow copy: slice headers and the
// UnevaluatedConstants map reference are copied, so appends made by
// either side afterward are not seen by the other, but in-place element
// writes (MaterializeConst, BindGlobal) and map deletions are shared.
func (a *Assembly) Clone() *Assembly {
	clone := *a
	return &clone
}

// AddSpan appends a span and returns its index.
func (a *Assembly) AddSpan(span ir.Span) int {
	a.Spans = append(a.Spans, span)
	return len(a.Spans) - 1
}

// Span looks up a span by index.
func (a *Assembly) Span(idx ir.SpanIdx) ir.Span {
	if int(idx) < 0 || int(idx) >= len(a.Spans) {
		return ir.Span{}
	}
	return a.Spans[idx]
}

// AddFunction registers a function body and returns the Function handle.
func (a *Assembly) AddFunction(id ir.FunctionID, sig ir.Signature, body ir.Node) *ir.Function {
	bodyIndex := len(a.FunctionBodies)
	a.FunctionBodies = append(a.FunctionBodies, body)
	f := &ir.Function{ID: id, Sig: sig, BodyIndex: bodyIndex}
	a.Functions = append(a.Functions, f)
	return f
}

// Body dereferences a function's body index into its node.
func (a *Assembly) Body(f *ir.Function) ir.Node {
	return a.FunctionBodies[f.BodyIndex]
}

// BindDef allocates a new data-definition index (spec.md §4.H step 4).
func (a *Assembly) BindDef(info DefInfo) int {
	a.Defs = append(a.Defs, info)
	return len(a.Defs) - 1
}

// BindConst allocates a new binding index holding (or deferring) a
// constant value. Passing a nil value with deferred=true leaves the
// binding as Const(None), to be materialized later from
// UnevaluatedConstants by CallGlobal.
func (a *Assembly) BindConst(name string, v value.Value, deferred bool) int {
	kind := BindingConstSet
	if deferred {
		kind = BindingConstUnset
	}
	a.Bindings = append(a.Bindings, Binding{Kind: kind, Const: v, Name: name, Public: true})
	return len(a.Bindings) - 1
}

// BindFunc allocates a new binding index holding a function.
func (a *Assembly) BindFunc(name string, f *ir.Function) int {
	a.Bindings = append(a.Bindings, Binding{Kind: BindingFunc, Func: f, Name: name, Public: true})
	return len(a.Bindings) - 1
}

// MaterializeConst promotes a deferred Const(None) binding in place to
// Const(Some(v)), the copy-on-write "make_mut" step the original takes
// when a CallGlobal first evaluates a pure constant. Go slices already
// give value semantics at the element level, so this is a plain index
// write rather than a true copy-on-write clone — behaviorally identical
// for a single-owner Assembly. The write lands in the shared backing
// array, so any Assembly.Clone() taken earlier, and any spawned thread
// (which shares the parent's *Assembly), observes the promoted constant.
func (a *Assembly) MaterializeConst(index int, v value.Value) {
	a.Bindings[index].Kind = BindingConstSet
	a.Bindings[index].Const = v
}

// NextGlobal is the index the next BindConst/BindFunc call will return,
// used by the data-definition lowering pass to pre-compute indices it
// needs to reference before binding them (mirrors the original's
// `self.next_global`).
func (a *Assembly) NextGlobal() int {
	return len(a.Bindings)
}
