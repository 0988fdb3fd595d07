package interp

import (
	"fmt"

	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
)

// assertPrimName is the primitive a test-assertion call compiles to;
// the primitive library itself is out of scope, but Run still needs to
// know how many assertion call sites exist in the tree to report which
// ones were never reached (spec.md §4.G / §7).
const assertPrimName = "Assert"

// RecordTestResult is called by a test-assertion primitive (out of
// scope here) to log one assertion's outcome. Run folds these into a
// summary report and, on failure, into the returned error's Multi slot.
func (in *Interp) RecordTestResult(span ir.Span, passed bool, message string) {
	in.TestResults = append(in.TestResults, TestResult{Span: span, Passed: passed, Message: message})
}

// Run is the top-level entry point: run_asm. It crash-catches execution
// of the assembly's root node, summarizes any recorded test results
// into a report, and on any top-level failure resets the runtime
// (preserving backend, execution limit, time-instruction flag, output
// comments, and reports) before returning.
func (in *Interp) Run() error {
	in.ExecutionStart = in.Backend.Now()
	runErr := in.CatchCrash(func() error { return in.Exec(in.Asm.Root) })

	total := countPrimOccurrences(in.Asm.Root, assertPrimName)
	recorded := len(in.TestResults)
	failed := 0
	var failures []*enginerr.EngineError
	for _, r := range in.TestResults {
		if !r.Passed {
			failed++
			msg := r.Message
			if msg == "" {
				msg = "Test assertion failed"
			}
			failures = append(failures, enginerr.NewRunError(r.Span, msg))
		}
	}
	notRun := total - recorded
	if notRun < 0 {
		notRun = 0
	}
	if total > 0 {
		in.Reports = append(in.Reports, fmt.Sprintf(
			"Tests: %d passed, %d failed, %d not run", recorded-failed, failed, notRun))
	}

	if runErr != nil {
		if ee, ok := runErr.(*enginerr.EngineError); ok {
			for _, f := range failures {
				ee.AddSecondary(f)
			}
		}
		in.Reset()
		return runErr
	}

	if len(failures) > 0 {
		primary := failures[0]
		for _, f := range failures[1:] {
			primary.AddSecondary(f)
		}
		in.Reset()
		return primary
	}

	return nil
}
