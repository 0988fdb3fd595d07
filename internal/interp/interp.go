// Package interp is the heart of the runtime: the recursive Node
// dispatcher, call-frame and trace machinery, fill/unfill contexts,
// thread-subsystem glue, and limit/interrupt bookkeeping. It is built
// the way the teacher's internal/vm.VM is — a struct with public
// stack/config fields plus a recursive exec method — generalized from a
// flat bytecode loop to a tree-shaped one.
package interp

import (
	"fmt"
	"time"

	"uiuacore/internal/assembly"
	"uiuacore/internal/backend"
	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/threads"
	"uiuacore/internal/value"
)

// engineVersion is reported by CatchCrash's "interpreter crashed"
// message, matching the original embedding its crate version in the
// same diagnostic.
const engineVersion = "0.1.0"

// FrameSpan is one entry of a CallFrame's span stack, pushed around a
// Prim/ImplPrim invocation and popped afterward.
type FrameSpan struct {
	Span ir.SpanIdx
	Prim ir.Primitive
}

// CallFrame is pushed by CallWithSpan for the duration of one function
// call, per spec.md's StackFrame: (sig, id?, track_caller, call_span, spans[]).
type CallFrame struct {
	Sig         ir.Signature
	ID          *ir.FunctionID
	TrackCaller bool
	CallSpan    ir.SpanIdx
	Spans       []FrameSpan
}

// TestResult is one recorded test assertion outcome, collected by a
// test-assertion primitive (out of scope here) via RecordTestResult and
// summarized by Run.
type TestResult struct {
	Span    ir.Span
	Passed  bool
	Message string
}

// Interp is one interpreter thread: its own stacks, call frames,
// locals, and thread handle, sharing an Assembly, backend, and memo
// table with any sibling threads it was spawned alongside.
type Interp struct {
	Asm     *assembly.Assembly
	Backend backend.SysBackend
	Stacks  *value.Stacks

	CallStack  []*CallFrame
	RecurStack []int
	ArrayDepth int

	// Locals backs GetLocal/WithLocal's per-definition "self" binding
	// stack (spec.md §4.H steps 10-11).
	Locals map[int][]value.Value

	RecursionLimit int
	ExecutionLimit *time.Duration
	ExecutionStart float64
	TimeInstrs     bool
	InterruptHook  func() bool

	Thread *threads.ThisThread

	OutputComments map[int][][]value.Value

	TestResults []TestResult
	Reports     []string

	CLIArguments []string
	CLIFilePath  string

	memo *memoTable
}

// New returns an Interp ready to run, wired to backend b with the
// release/debug-appropriate recursion-limit default. Matches the
// teacher's EnhancedVM constructor-plus-With* setters style rather than
// a functional-options package.
func New(b backend.SysBackend) *Interp {
	in := &Interp{
		Asm:            assembly.New(),
		Backend:        b,
		Stacks:         value.NewStacks(),
		Locals:         make(map[int][]value.Value),
		RecursionLimit: defaultRecursionLimit(),
		OutputComments: make(map[int][][]value.Value),
		Thread:         threads.NewRootThread(),
		memo:           newMemoTable(),
	}
	in.ExecutionStart = b.Now()
	return in
}

// WithAssembly installs the compiled program this Interp will run.
func (in *Interp) WithAssembly(asm *assembly.Assembly) *Interp {
	in.Asm = asm
	return in
}

// WithExecutionLimit bounds wall-clock execution time, matching
// Uiua::with_execution_limit.
func (in *Interp) WithExecutionLimit(d time.Duration) *Interp {
	limit := d
	in.ExecutionLimit = &limit
	return in
}

// WithRecursionLimit overrides the recursion-limit default, matching
// Uiua::with_recursion_limit.
func (in *Interp) WithRecursionLimit(n int) *Interp {
	in.RecursionLimit = n
	return in
}

// WithInterruptHook installs a per-node interrupt predicate.
func (in *Interp) WithInterruptHook(hook func() bool) *Interp {
	in.InterruptHook = hook
	return in
}

// WithTimeInstrs toggles per-instruction timing diagnostics.
func (in *Interp) WithTimeInstrs(on bool) *Interp {
	in.TimeInstrs = on
	return in
}

// WithCLIArguments records the CLI args a running program can read back
// (CLI parsing itself is out of scope; this is just the pass-through
// slot spec.md §6 names).
func (in *Interp) WithCLIArguments(args []string) *Interp {
	in.CLIArguments = args
	return in
}

// WithCLIFilePath records the source file path a running program can
// read back.
func (in *Interp) WithCLIFilePath(path string) *Interp {
	in.CLIFilePath = path
	return in
}

// SetBackend replaces the backend in place, matching the original's
// take_backend/set_backend pair (the typed-downcast half of that pair
// is a caller-side type assertion on the SysBackend interface, not
// anything this package needs to provide).
func (in *Interp) SetBackend(b backend.SysBackend) {
	in.Backend = b
}

// TakeReports drains and returns the accumulated report strings.
func (in *Interp) TakeReports() []string {
	reports := in.Reports
	in.Reports = nil
	return reports
}

// StackHeight implements ir.Exec.
func (in *Interp) StackHeight() int {
	return in.Stacks.Height()
}

// Push implements ir.Exec.
func (in *Interp) Push(v value.Value) {
	in.Stacks.Push(v)
}

// Pop implements ir.Exec.
func (in *Interp) Pop(arg string) (value.Value, error) {
	return in.Stacks.Pop(arg)
}

// PopN implements ir.Exec.
func (in *Interp) PopN(n int) ([]value.Value, error) {
	return in.Stacks.PopN(n)
}

// CurrentSpan implements ir.Exec: the innermost span set by the
// currently-running Prim/ImplPrim, or the enclosing call's span if none
// is set, or the zero Span at the root.
func (in *Interp) CurrentSpan() ir.Span {
	if len(in.CallStack) == 0 {
		return ir.Span{}
	}
	frame := in.CallStack[len(in.CallStack)-1]
	if len(frame.Spans) > 0 {
		return in.Asm.Span(frame.Spans[len(frame.Spans)-1].Span)
	}
	return in.Asm.Span(frame.CallSpan)
}

// Errorf implements ir.Exec, building a Run-kind error at the current span.
func (in *Interp) Errorf(format string, args ...any) error {
	return enginerr.NewRunError(in.CurrentSpan(), fmt.Sprintf(format, args...))
}

// Reset clears per-run state (stacks, call frames, locals, test
// results, thread registry) while preserving the backend, execution
// limit, time-instruction flag, output comments, and reports — per
// spec.md §4.G's "On any top-level failure, reset the runtime
// preserving backend, execution limit, time-instruction flag,
// accumulated output comments, and reports."
func (in *Interp) Reset() {
	in.Stacks = value.NewStacks()
	in.CallStack = nil
	in.RecurStack = nil
	in.ArrayDepth = 0
	in.Locals = make(map[int][]value.Value)
	in.TestResults = nil
	in.Thread = threads.NewRootThread()
	in.ExecutionStart = in.Backend.Now()
}
