package interp

import (
	"fmt"

	"uiuacore/internal/enginerr"
)

// checkLimits is consulted after every dispatched node (spec.md §4.C:
// "After each node, honor the execution-time limit and interrupt
// hook."). It raises Timeout or Interrupted as appropriate.
func (in *Interp) checkLimits() error {
	if in.ExecutionLimit != nil {
		elapsed := in.Backend.Now() - in.ExecutionStart
		if elapsed > in.ExecutionLimit.Seconds() {
			return enginerr.NewTimeoutError(in.CurrentSpan())
		}
	}
	if in.InterruptHook != nil && in.InterruptHook() {
		return enginerr.NewInterruptedError()
	}
	return nil
}

// CatchCrash wraps fn in a recover(), converting a host panic into a
// RunError carrying the engine version and current span — the
// top-level run_asm's catch_unwind.
func (in *Interp) CatchCrash(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = enginerr.NewRunError(in.CurrentSpan(),
				fmt.Sprintf("interpreter crashed (uiuacore %s): %v", engineVersion, r))
		}
	}()
	return fn()
}
