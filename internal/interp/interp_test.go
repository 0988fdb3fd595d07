package interp

import (
	"testing"
	"time"

	"uiuacore/internal/assembly"
	"uiuacore/internal/backend"
	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

func newTestInterp() *Interp {
	asm := assembly.New()
	return New(backend.NewNativeBackend()).WithAssembly(asm)
}

// S1: a function whose body doesn't move the stack by the amount its
// declared signature promises raises an exact, descriptive error.
func TestSignatureDriftMessage(t *testing.T) {
	in := newTestInterp()
	f := in.Asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "liar"},
		ir.Signature{Args: 0, Outputs: 1}, ir.Run{})
	err := in.CallWithSpan(f, 0)
	if err == nil {
		t.Fatal("expected a signature-drift error")
	}
	ee, ok := err.(*enginerr.EngineError)
	if !ok {
		t.Fatalf("error is %T, want *enginerr.EngineError", err)
	}
	want := "Function modified the stack by 0 values, but its signature of (0,1) implies a change of 1"
	if ee.Message != want {
		t.Fatalf("message = %q, want %q", ee.Message, want)
	}
}

// S2: PushUnder/PopUnder round trip through the dispatcher restores the
// main stack to its original order.
func TestPushUnderPopUnderThroughDispatcher(t *testing.T) {
	in := newTestInterp()
	in.Stacks.Push(value.FromNumber(1))
	in.Stacks.Push(value.FromNumber(2))
	body := ir.Run{ir.PushUnder{N: 1}, ir.Push{Value: value.FromNumber(99)}, ir.PopUnder{N: 1}}
	if err := in.Exec(body); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	vals, err := in.Stacks.PopN(3)
	if err != nil {
		t.Fatalf("PopN: %v", err)
	}
	got := make([]float64, 3)
	for i, v := range vals {
		got[i] = v.(*value.NumberArray).Data[0]
	}
	want := []float64{1, 99, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack after under round trip = %v, want %v", got, want)
		}
	}
}

// S3: Format interleaves literal parts with popped, stringified args.
func TestFormatInterpolation(t *testing.T) {
	in := newTestInterp()
	in.Stacks.Push(value.FromString("Bob"))
	in.Stacks.Push(value.FromNumber(30))
	node := ir.Format{Parts: []string{"Hello, ", "! You are ", " years old."}}
	if err := in.Exec(node); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	v, err := in.Stacks.Pop("formatted")
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	got := value.AsString(v)
	want := "Hello, Bob! You are 30 years old."
	if got != want {
		t.Fatalf("formatted = %q, want %q", got, want)
	}
}

// S4: ValidateType reports field name, expected plural type name, and
// found type name in its error message.
func TestValidateTypeErrorMessage(t *testing.T) {
	in := newTestInterp()
	in.Stacks.Push(value.FromString("x"))
	node := ir.ValidateType{Index: "1", Name: "count", TypeNum: int(value.TypeNumber)}
	err := in.Exec(node)
	if err == nil {
		t.Fatal("expected a type-validation error")
	}
	ee, ok := err.(*enginerr.EngineError)
	if !ok {
		t.Fatalf("error is %T, want *enginerr.EngineError", err)
	}
	want := "Field `count` should be numbers but found character"
	if ee.Message != want {
		t.Fatalf("message = %q, want %q", ee.Message, want)
	}
}

// S5: execution past the wall-clock limit raises a Timeout error.
func TestExecutionLimitTimeout(t *testing.T) {
	in := newTestInterp()
	in.WithExecutionLimit(-1 * time.Second)
	err := in.Exec(ir.Run{})
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	ee, ok := err.(*enginerr.EngineError)
	if !ok || ee.Kind != enginerr.TimeoutKind {
		t.Fatalf("error = %+v, want a TimeoutKind EngineError", err)
	}
}

// S6: a spawned thread's captured argument round-trips back through Wait.
func TestThreadSpawnWaitRoundTrip(t *testing.T) {
	in := newTestInterp()
	in.Stacks.Push(value.FromNumber(5))
	echo := ir.SigNode{Sig: ir.Signature{Args: 1, Outputs: 1}, Node: ir.Run{}}
	if err := in.Spawn(1, false, echo); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	idVal, err := in.Stacks.Pop("thread id")
	if err != nil {
		t.Fatalf("pop id: %v", err)
	}
	if err := in.Wait(idVal); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	result, err := in.Stacks.Pop("result")
	if err != nil {
		t.Fatalf("pop result: %v", err)
	}
	if result.(*value.NumberArray).Data[0] != 5 {
		t.Fatalf("result = %+v, want scalar 5", result)
	}
}

// Reset clears per-run state while preserving the backend and limits.
func TestResetPreservesBackendAndLimits(t *testing.T) {
	in := newTestInterp()
	in.WithExecutionLimit(5 * time.Second)
	in.Stacks.Push(value.FromNumber(1))
	in.TestResults = append(in.TestResults, TestResult{Passed: true})
	in.Reset()
	if in.Stacks.Height() != 0 {
		t.Fatalf("Stacks.Height() after Reset = %d, want 0", in.Stacks.Height())
	}
	if len(in.TestResults) != 0 {
		t.Fatalf("TestResults after Reset = %v, want empty", in.TestResults)
	}
	if in.ExecutionLimit == nil || *in.ExecutionLimit != 5*time.Second {
		t.Fatalf("ExecutionLimit after Reset = %v, want preserved 5s", in.ExecutionLimit)
	}
}

// Memoize computes once and serves the cached result on a repeat call
// with structurally-equal args.
func TestMemoizeCachesByStructuralEquality(t *testing.T) {
	in := newTestInterp()
	calls := 0
	compute := func() ([]value.Value, error) {
		calls++
		return []value.Value{value.FromNumber(42)}, nil
	}
	node := ir.Push{Value: value.FromNumber(1)}
	args := []value.Value{value.FromNumber(7)}
	if _, err := in.Memoize(node, args, compute); err != nil {
		t.Fatalf("Memoize: %v", err)
	}
	if _, err := in.Memoize(ir.Push{Value: value.FromNumber(1)}, []value.Value{value.FromNumber(7)}, compute); err != nil {
		t.Fatalf("Memoize (second call): %v", err)
	}
	if calls != 1 {
		t.Fatalf("compute was called %d times, want 1", calls)
	}
}
