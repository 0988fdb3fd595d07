package interp

import (
	"fmt"

	"uiuacore/internal/assembly"
	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// primScanLine is the name the terminal-read primitive is registered
// under; the dispatcher special-cases it to pause the execution clock
// for the primitive's duration (spec.md §4.C). The primitive library
// itself is out of scope, but the dispatcher's exemption for it is not.
const primScanLine = "ScanLine"

// Exec is the single recursive dispatcher spec.md §4.C describes: one
// type switch over every Node variant, exactly mirroring the original's
// exec_impl. Every successfully dispatched branch honors the
// execution-time limit and interrupt hook before returning.
func (in *Interp) Exec(node ir.Node) error {
	err := in.dispatch(node)
	if err != nil {
		return err
	}
	return in.checkLimits()
}

func (in *Interp) dispatch(node ir.Node) error {
	switch n := node.(type) {
	case ir.Run:
		for _, sub := range n {
			if err := in.Exec(sub); err != nil {
				return err
			}
		}
		return nil

	case ir.Push:
		in.Stacks.Push(n.Value)
		return nil

	case ir.Prim:
		return in.execPrim(n.Prim, n.Span)

	case ir.ImplPrimNode:
		return in.execImplPrim(n.Prim, n.Span)

	case ir.Mod:
		return n.Mod.RunMod(n.SigArgs, in)

	case ir.ImplMod:
		return n.Mod.RunMod(n.SigArgs, in)

	case ir.Call:
		return in.CallWithSpan(n.Func, n.Span)

	case ir.CallGlobal:
		return in.execCallGlobal(n.Index, n.Span)

	case ir.CallMacro:
		return in.execCallMacro(n.Index, n.Span)

	case ir.BindGlobal:
		return in.execBindGlobal(n.Index)

	case ir.Array:
		return in.execArray(n)

	case ir.CustomInverse:
		if n.NormalErr != nil {
			return enginerr.NewRunError(in.Asm.Span(n.Span), n.NormalErr.Error())
		}
		return in.Exec(n.Normal.Node)

	case ir.Switch:
		return in.execSwitch(n)

	case ir.Format:
		return in.execFormat(n)

	case ir.MatchFormatPattern:
		return in.execMatchFormatPattern(n)

	case ir.Label:
		return in.execLabel(n)

	case ir.RemoveLabel:
		return in.execRemoveLabel(n)

	case ir.ValidateType:
		return in.execValidateType(n)

	case ir.Dynamic:
		if n.Index < 0 || n.Index >= len(in.Asm.DynamicFunctions) {
			return in.Errorf("bug in the interpreter: invalid dynamic function index %d", n.Index)
		}
		return in.Asm.DynamicFunctions[n.Index](in)

	case ir.Unpack:
		return in.execUnpack(n)

	case ir.SetOutputComment:
		return in.execSetOutputComment(n)

	case ir.PushUnder:
		return in.Stacks.PushUnder(n.N)

	case ir.CopyToUnder:
		return in.Stacks.CopyToUnder(n.N)

	case ir.PopUnder:
		return in.Stacks.PopUnder(n.N)

	case ir.NoInline:
		return in.Exec(n.Inner)

	case ir.TrackCaller:
		if len(in.CallStack) > 0 {
			frame := in.CallStack[len(in.CallStack)-1]
			old := frame.TrackCaller
			frame.TrackCaller = true
			defer func() { frame.TrackCaller = old }()
		}
		return in.Exec(n.Inner)

	case ir.GetLocal:
		vals := in.Locals[n.Def]
		if len(vals) == 0 {
			return in.Errorf("no self value bound for this definition")
		}
		in.Stacks.Push(vals[len(vals)-1])
		return nil

	case ir.WithLocal:
		self, err := in.Stacks.Pop("self")
		if err != nil {
			return err
		}
		in.Locals[n.Def] = append(in.Locals[n.Def], self)
		defer func() {
			vals := in.Locals[n.Def]
			in.Locals[n.Def] = vals[:len(vals)-1]
		}()
		return in.Exec(n.Inner)

	case ir.NormalizeSoA:
		return in.execNormalizeSoA(n)

	default:
		return in.Errorf("bug in the interpreter: unhandled node type %T", node)
	}
}

func (in *Interp) execPrim(prim ir.Primitive, span ir.SpanIdx) error {
	frame := in.currentFrame()
	if frame != nil {
		frame.Spans = append(frame.Spans, FrameSpan{Span: span, Prim: prim})
		defer func() { frame.Spans = frame.Spans[:len(frame.Spans)-1] }()
	}
	if prim.Name() == primScanLine {
		start := in.Backend.Now()
		err := prim.Run(in)
		in.ExecutionStart += in.Backend.Now() - start
		return err
	}
	return prim.Run(in)
}

func (in *Interp) execImplPrim(prim ir.ImplPrimitive, span ir.SpanIdx) error {
	frame := in.currentFrame()
	if frame != nil {
		frame.Spans = append(frame.Spans, FrameSpan{Span: span})
		defer func() { frame.Spans = frame.Spans[:len(frame.Spans)-1] }()
	}
	return prim.Run(in)
}

func (in *Interp) currentFrame() *CallFrame {
	if len(in.CallStack) == 0 {
		return nil
	}
	return in.CallStack[len(in.CallStack)-1]
}

// execCallGlobal resolves bindings[index] per spec.md §4.C's CallGlobal
// rules, including the deferred-constant materialize-exactly-once path.
func (in *Interp) execCallGlobal(index int, span ir.SpanIdx) error {
	if index < 0 || index >= len(in.Asm.Bindings) {
		return in.Errorf("bug in the interpreter: invalid global index %d", index)
	}
	binding := in.Asm.Bindings[index]
	switch binding.Kind {
	case assembly.BindingConstSet:
		in.Stacks.Push(binding.Const)
		return nil

	case assembly.BindingConstUnset:
		node, ok := in.Asm.UnevaluatedConstants[index]
		if !ok {
			return enginerr.NewRunError(in.Asm.Span(span), "Called unbound constant")
		}
		delete(in.Asm.UnevaluatedConstants, index)
		if err := in.Exec(node); err != nil {
			return err
		}
		v, err := in.Stacks.Pop("deferred constant")
		if err != nil {
			return err
		}
		in.Stacks.Push(v)
		in.Asm.MaterializeConst(index, v)
		return nil

	case assembly.BindingFunc:
		return in.CallWithSpan(binding.Func, span)

	default:
		return enginerr.NewRunError(in.Asm.Span(span), "bug in the interpreter: called a non-callable binding")
	}
}

// execCallMacro is CallGlobal restricted to bindings that must already
// resolve to a function (recursive macro calls).
func (in *Interp) execCallMacro(index int, span ir.SpanIdx) error {
	if index < 0 || index >= len(in.Asm.Bindings) {
		return in.Errorf("bug in the interpreter: invalid macro index %d", index)
	}
	binding := in.Asm.Bindings[index]
	if binding.Kind != assembly.BindingFunc {
		return enginerr.NewRunError(in.Asm.Span(span), "bug in the interpreter: macro did not resolve to a function")
	}
	return in.CallWithSpan(binding.Func, span)
}

func (in *Interp) execBindGlobal(index int) error {
	v, err := in.Stacks.Pop("binding")
	if err != nil {
		return err
	}
	v = value.Compress(v)
	if index < 0 || index >= len(in.Asm.Bindings) {
		return in.Errorf("bug in the interpreter: invalid binding index %d", index)
	}
	in.Asm.Bindings[index].Kind = assembly.BindingConstSet
	in.Asm.Bindings[index].Const = v
	in.Asm.Bindings[index].Public = false
	return nil
}

func (in *Interp) execLabel(n ir.Label) error {
	top, err := in.Stacks.Top("label target")
	if err != nil {
		return err
	}
	if n.Name == "" {
		top.SetLabel(nil)
		return nil
	}
	name := n.Name
	top.SetLabel(&name)
	return nil
}

func (in *Interp) execRemoveLabel(n ir.RemoveLabel) error {
	top, err := in.Stacks.Top("label target")
	if err != nil {
		return err
	}
	top.SetLabel(nil)
	return nil
}

func (in *Interp) execValidateType(n ir.ValidateType) error {
	top, err := in.Stacks.Top(n.Index)
	if err != nil {
		return err
	}
	if top.TypeID() != value.TypeID(n.TypeNum) {
		return enginerr.NewRunError(in.Asm.Span(n.Span), fmt.Sprintf(
			"Field `%s` should be %s but found %s", n.Name, value.TypeID(n.TypeNum).PluralName(), value.TypeNameFor(top)))
	}
	return nil
}

func (in *Interp) execSetOutputComment(n ir.SetOutputComment) error {
	vals, err := in.Stacks.CopyN(n.N)
	if err != nil {
		return err
	}
	existing, ok := in.OutputComments[n.I]
	if !ok {
		existing = make([][]value.Value, n.N)
	}
	for i := 0; i < n.N && i < len(existing); i++ {
		existing[i] = append(existing[i], vals[i])
	}
	in.OutputComments[n.I] = existing
	return nil
}
