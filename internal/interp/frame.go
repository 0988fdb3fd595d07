package interp

import (
	"fmt"

	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
)

// CallWithSpan pushes a fresh CallFrame for f, runs its body inside a
// WithoutFill boundary, pops the frame, and checks the signature-drift
// invariant — the original's call_with_span. This is the single call
// path used by Call, CallGlobal (for Func bindings), and CallMacro.
func (in *Interp) CallWithSpan(f *ir.Function, span ir.SpanIdx) error {
	if len(in.CallStack) >= in.RecursionLimit {
		return enginerr.NewRunError(in.Asm.Span(span), fmt.Sprintf(
			"Recursion limit reached (it is currently %d; you can try increasing it with the UIUA_RECURSION_LIMIT environment variable)",
			in.RecursionLimit))
	}

	preHeight := in.Stacks.Height()
	frame := &CallFrame{Sig: f.Sig, ID: &f.ID, CallSpan: span}
	in.CallStack = append(in.CallStack, frame)

	body := in.Asm.Body(f)
	err := in.WithoutFill(func() error { return in.Exec(body) })

	in.CallStack = in.CallStack[:len(in.CallStack)-1]

	if err != nil {
		if ee, ok := err.(*enginerr.EngineError); ok {
			if frame.TrackCaller {
				ee.TrackCaller(in.Asm.Span(span))
			} else {
				ee.PushTrace(enginerr.TraceFrame{ID: frame.ID, Span: in.Asm.Span(span)})
			}
		}
		return err
	}

	postHeight := in.Stacks.Height()
	return checkSignatureDrift(f.Sig, preHeight, postHeight, in.Asm.Span(span))
}

// ExecCleanStack runs k; on failure it truncates the main and under
// stacks back to their pre-call heights before returning the error,
// discarding whatever partial results k left behind (original run.rs
// exec_clean_stack).
func (in *Interp) ExecCleanStack(k func() error) error {
	mainHeight := in.Stacks.Height()
	underHeight := in.Stacks.UnderHeight()
	err := k()
	if err != nil {
		in.Stacks.Truncate(mainHeight)
		in.Stacks.TruncateUnder(underHeight)
	}
	return err
}

// ExecMaintainSig runs k with a declared signature; on failure it
// truncates the stack back to its pre-call height the way
// ExecCleanStack does, but then pads the main stack back up using the
// saved pre-call argument values so the declared signature's arg count
// still holds afterward (original run.rs exec_maintain_sig) — used by
// control-flow combinators that must preserve their outer signature
// even when an inner branch fails.
func (in *Interp) ExecMaintainSig(sig ir.Signature, k func() error) error {
	mainHeight := in.Stacks.Height()
	underHeight := in.Stacks.UnderHeight()
	saved, err := in.Stacks.CopyN(sig.Args)
	if err != nil {
		saved = nil
	}
	runErr := k()
	if runErr != nil {
		in.Stacks.Truncate(mainHeight - len(saved))
		in.Stacks.TruncateUnder(underHeight)
		in.Stacks.PushAll(saved)
	}
	return runErr
}
