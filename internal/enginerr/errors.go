// Package enginerr defines the engine's error kinds and trace
// construction, generalized from the teacher's internal/errors package
// (SentraError/ErrorType/StackFrame) to the three kinds spec.md §7
// requires: Run, Timeout, and Interrupted, plus the "multi" aggregation
// slot used when folding test-assertion failures into a top-level error.
package enginerr

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"uiuacore/internal/ir"
)

// Kind is the engine error category, mirroring the teacher's ErrorType
// but scoped to the three kinds the runtime actually raises.
type Kind string

const (
	RunKind         Kind = "RuntimeError"
	TimeoutKind     Kind = "Timeout"
	InterruptedKind Kind = "Interrupted"
)

// TraceFrame is one entry of a Run error's call trace, pushed by
// exec_with_frame_span around every function call that doesn't set
// TrackCaller.
type TraceFrame struct {
	ID   *ir.FunctionID
	Span ir.Span
}

// EngineError is the single error type this engine raises. Its shape
// generalizes the teacher's SentraError: Span replaces SourceLocation,
// Trace replaces CallStack, and Multi is new — it collects secondary
// failures discovered while reporting test results (spec.md §7).
type EngineError struct {
	Kind    Kind
	Message string
	Span    ir.Span
	Info    []string
	Trace   []TraceFrame
	Multi   []*EngineError

	// CallerOverride, when set by TrackCaller handling, replaces Span in
	// rendering — the diagnostic points at the call site, not the body.
	CallerOverride *ir.Span
}

// NewRunError builds a Run-kind error at span with message.
func NewRunError(span ir.Span, message string) *EngineError {
	return &EngineError{Kind: RunKind, Message: message, Span: span}
}

// NewTimeoutError builds a Timeout-kind error at span.
func NewTimeoutError(span ir.Span) *EngineError {
	return &EngineError{Kind: TimeoutKind, Message: "Execution timed out", Span: span}
}

// NewInterruptedError builds the (span-less) Interrupted error.
func NewInterruptedError() *EngineError {
	return &EngineError{Kind: InterruptedKind, Message: "Execution was interrupted"}
}

// WrapBackendError folds an error surfaced by a SysBackend syscall into
// an EngineError, using github.com/pkg/errors the way the teacher's
// transitive dependency graph (modernc.org/sqlite -> pkg/errors) already
// pulls it in — this is the one seam where a host-originated error
// crosses into the engine's error type.
func WrapBackendError(span ir.Span, syscall string, cause error) *EngineError {
	wrapped := pkgerrors.Wrap(cause, fmt.Sprintf("syscall %q failed", syscall))
	return NewRunError(span, wrapped.Error())
}

// TrackCaller replaces this error's attributed span with the caller's,
// per spec.md §4.D: a TrackCaller frame blames its call site instead of
// appending a trace frame.
func (e *EngineError) TrackCaller(span ir.Span) {
	e.CallerOverride = &span
}

// PushTrace appends a trace frame, used by exec_with_frame_span when
// TrackCaller was not set for the returning frame.
func (e *EngineError) PushTrace(frame TraceFrame) {
	e.Trace = append(e.Trace, frame)
}

// EffectiveSpan is the span that should be reported: the caller override
// if TrackCaller fired, otherwise the error's own span.
func (e *EngineError) EffectiveSpan() ir.Span {
	if e.CallerOverride != nil {
		return *e.CallerOverride
	}
	return e.Span
}

func (e *EngineError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s\n", e.Kind, e.Message)
	span := e.EffectiveSpan()
	if span.File != "" || span.Line != 0 {
		fmt.Fprintf(&sb, "  at %s\n", span)
		if span.Text != "" {
			fmt.Fprintf(&sb, "\n  %d | %s\n", span.Line, span.Text)
		}
	}
	if len(e.Trace) > 0 {
		sb.WriteString("\nCall Trace:\n")
		for _, frame := range e.Trace {
			name := "?"
			if frame.ID != nil {
				name = frame.ID.String()
			}
			fmt.Fprintf(&sb, "  at %s (%s)\n", name, frame.Span)
		}
	}
	for _, sub := range e.Multi {
		sb.WriteString("\n---\n")
		sb.WriteString(sub.Error())
	}
	return sb.String()
}

// AddSecondary folds another error into this one's Multi slot, matching
// run_asm's push_error behavior: the first failure becomes the primary
// error, subsequent ones accumulate underneath it.
func (e *EngineError) AddSecondary(other *EngineError) {
	e.Multi = append(e.Multi, other)
}
