package enginerr

import (
	"strings"
	"testing"

	"uiuacore/internal/ir"
)

func TestNewRunErrorKindAndMessage(t *testing.T) {
	span := ir.Span{File: "demo.ua", Line: 2, Column: 5}
	err := NewRunError(span, "something broke")
	if err.Kind != RunKind {
		t.Fatalf("Kind = %v, want RunKind", err.Kind)
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Fatalf("Error() = %q, want it to contain the message", err.Error())
	}
	if !strings.Contains(err.Error(), "demo.ua:2:5") {
		t.Fatalf("Error() = %q, want it to contain the span", err.Error())
	}
}

func TestTrackCallerOverridesEffectiveSpan(t *testing.T) {
	bodySpan := ir.Span{Line: 10}
	callerSpan := ir.Span{Line: 1}
	err := NewRunError(bodySpan, "boom")
	if err.EffectiveSpan() != bodySpan {
		t.Fatalf("EffectiveSpan() before TrackCaller = %+v, want %+v", err.EffectiveSpan(), bodySpan)
	}
	err.TrackCaller(callerSpan)
	if err.EffectiveSpan() != callerSpan {
		t.Fatalf("EffectiveSpan() after TrackCaller = %+v, want %+v", err.EffectiveSpan(), callerSpan)
	}
}

func TestPushTraceAccumulates(t *testing.T) {
	err := NewRunError(ir.Span{}, "boom")
	err.PushTrace(TraceFrame{ID: &ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "f"}, Span: ir.Span{Line: 3}})
	err.PushTrace(TraceFrame{ID: &ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "g"}, Span: ir.Span{Line: 4}})
	if len(err.Trace) != 2 {
		t.Fatalf("len(Trace) = %d, want 2", len(err.Trace))
	}
	rendered := err.Error()
	if !strings.Contains(rendered, "f") || !strings.Contains(rendered, "g") {
		t.Fatalf("Error() = %q, want both trace frame names", rendered)
	}
}

func TestAddSecondaryRendersBothErrors(t *testing.T) {
	primary := NewRunError(ir.Span{}, "first failure")
	secondary := NewRunError(ir.Span{}, "second failure")
	primary.AddSecondary(secondary)
	rendered := primary.Error()
	if !strings.Contains(rendered, "first failure") || !strings.Contains(rendered, "second failure") {
		t.Fatalf("Error() = %q, want both failures", rendered)
	}
}

func TestNewTimeoutAndInterruptedErrors(t *testing.T) {
	timeout := NewTimeoutError(ir.Span{Line: 1})
	if timeout.Kind != TimeoutKind {
		t.Fatalf("timeout.Kind = %v, want TimeoutKind", timeout.Kind)
	}
	interrupted := NewInterruptedError()
	if interrupted.Kind != InterruptedKind {
		t.Fatalf("interrupted.Kind = %v, want InterruptedKind", interrupted.Kind)
	}
}

func TestWrapBackendError(t *testing.T) {
	cause := strErr("dial failed")
	wrapped := WrapBackendError(ir.Span{}, "open_socket", cause)
	if wrapped.Kind != RunKind {
		t.Fatalf("Kind = %v, want RunKind", wrapped.Kind)
	}
	if !strings.Contains(wrapped.Message, "open_socket") || !strings.Contains(wrapped.Message, "dial failed") {
		t.Fatalf("Message = %q, want it to mention the syscall name and cause", wrapped.Message)
	}
}

type strErr string

func (e strErr) Error() string { return string(e) }
