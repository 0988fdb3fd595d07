package ir

import "uiuacore/internal/value"

// SpanIdx indexes into an assembly's span table. Spans are resolved once
// at compile time and referenced by index everywhere in the tree so that
// Node values stay cheap to clone.
type SpanIdx int

// Exec is the minimal surface a Primitive or Modifier needs from the
// running interpreter. It exists so this package (and the primitive
// library, which is out of scope here) never has to import the
// interpreter package — the interpreter implements Exec, primitives
// consume it.
type Exec interface {
	Pop(arg string) (value.Value, error)
	Push(v value.Value)
	PopN(n int) ([]value.Value, error)
	StackHeight() int
	CurrentSpan() Span
	Errorf(format string, args ...any) error
}

// Primitive is the abstract contract for an array-library primitive.
// Lexing, parsing and the primitive implementations themselves are
// out of scope; this interface is the seam the dispatcher calls through.
type Primitive interface {
	Name() string
	Run(env Exec) error
}

// ImplPrimitive is the same contract for internal/implementation-only
// primitives that aren't surfaced to source code (e.g. ValidateVariant,
// TagVariant, UnBox — emitted only by the data-definition lowering pass).
type ImplPrimitive interface {
	Name() string
	Run(env Exec) error
}

// Modifier is a primitive that takes function operands (SigNodes)
// rather than running directly against the stack.
type Modifier interface {
	Name() string
	RunMod(args []SigNode, env Exec) error
}

// Node is the sum type of IR instructions. Implementations are the
// concrete variants listed below; the dispatcher type-switches on Node.
type Node interface {
	isNode()
}

// Run executes a sequence of nodes in order; the first error terminates.
type Run []Node

func (Run) isNode() {}

// Push pushes a literal value.
type Push struct {
	Value value.Value
}

func (Push) isNode() {}

// Prim invokes a surfaced primitive.
type Prim struct {
	Prim Primitive
	Span SpanIdx
}

func (Prim) isNode() {}

// ImplPrimNode invokes an implementation-only primitive.
type ImplPrimNode struct {
	Prim ImplPrimitive
	Span SpanIdx
}

func (ImplPrimNode) isNode() {}

// Mod invokes a modifier with its function operands.
type Mod struct {
	Mod     Modifier
	SigArgs []SigNode
	Span    SpanIdx
}

func (Mod) isNode() {}

// ImplMod is the implementation-only counterpart of Mod.
type ImplMod struct {
	Mod     Modifier
	SigArgs []SigNode
	Span    SpanIdx
}

func (ImplMod) isNode() {}

// Call invokes a function by value.
type Call struct {
	Func *Function
	Span SpanIdx
}

func (Call) isNode() {}

// CallGlobal resolves and invokes a binding (constant, function, or an
// error-tagged non-callable) by assembly index.
type CallGlobal struct {
	Index int
	Span  SpanIdx
}

func (CallGlobal) isNode() {}

// CallMacro is a recursive macro call; it must resolve to a function
// binding at the given index.
type CallMacro struct {
	Index int
	Span  SpanIdx
}

func (CallMacro) isNode() {}

// BindGlobal pops the top value, compresses it, and stores it as a
// constant binding at Index.
type BindGlobal struct {
	Index int
	Span  SpanIdx
}

func (BindGlobal) isNode() {}

// ArrayLenKind distinguishes a statically known array length from one
// discovered dynamically by comparing stack heights.
type ArrayLenKind int

const (
	ArrayLenStatic ArrayLenKind = iota
	ArrayLenDynamic
)

// ArrayLen is either a fixed row count or a dynamic marker (the stack
// height captured before the inner node ran).
type ArrayLen struct {
	Kind   ArrayLenKind
	Static int
}

// Array runs Inner, then collects the newly produced values (in reverse
// order) into an array, optionally boxing each element.
type Array struct {
	Len   ArrayLen
	Inner Node
	Boxed bool
	Span  SpanIdx
}

func (Array) isNode() {}

// CustomInverse carries the forward, un-inverse, and under-inverse forms
// of a transformation. Only the forward path is exercised at runtime
// here; inversion itself is compiled elsewhere (out of scope).
type CustomInverse struct {
	Normal    SigNode
	NormalErr error
	Un        *SigNode
	Under     *[2]SigNode
	Span      SpanIdx
}

func (CustomInverse) isNode() {}

// Switch dispatches one of Branches based on a popped selector (and,
// if UnderCond, also the under-stack top).
type Switch struct {
	Branches  []SigNode
	Sig       Signature
	UnderCond bool
	Span      SpanIdx
}

func (Switch) isNode() {}

// Format interleaves string parts with the formatted forms of popped
// arguments.
type Format struct {
	Parts []string
	Span  SpanIdx
}

func (Format) isNode() {}

// MatchFormatPattern is the inverse of Format: it matches a string
// against the parts and pushes the captured pieces.
type MatchFormatPattern struct {
	Parts []string
	Span  SpanIdx
}

func (MatchFormatPattern) isNode() {}

// Label tags the top value with a name; an empty name clears it.
type Label struct {
	Name string
	Span SpanIdx
}

func (Label) isNode() {}

// RemoveLabel clears the top value's label.
type RemoveLabel struct {
	Hint string // the label expected to be present, for diagnostics only
	Span SpanIdx
}

func (RemoveLabel) isNode() {}

// ValidateType asserts the top value's TypeID matches TypeNum.
type ValidateType struct {
	Index   string // argument name used in the underflow message
	Name    string // field name, for the error message
	TypeNum int
	Span    SpanIdx
}

func (ValidateType) isNode() {}

// DynamicFunc is a host-supplied trampoline, looked up by index in the
// assembly's dynamic function table.
type DynamicFunc func(env Exec) error

// Dynamic invokes a host-supplied callable by index.
type Dynamic struct {
	Index int
}

func (Dynamic) isNode() {}

// Unpack splits an array into its rows, optionally unboxing each one.
type Unpack struct {
	Count int
	Unbox bool
	Span  SpanIdx
}

func (Unpack) isNode() {}

// SetOutputComment records the top N stack values under key I, for
// tooling (not consulted by the dispatcher's control flow).
type SetOutputComment struct {
	I int
	N int
}

func (SetOutputComment) isNode() {}

// PushUnder moves N values from main to under, reversed.
type PushUnder struct {
	N    int
	Span SpanIdx
}

func (PushUnder) isNode() {}

// CopyToUnder copies (without removing) the top N values to under,
// reversed.
type CopyToUnder struct {
	N    int
	Span SpanIdx
}

func (CopyToUnder) isNode() {}

// PopUnder moves N values from under back to main, reversed.
type PopUnder struct {
	N    int
	Span SpanIdx
}

func (PopUnder) isNode() {}

// NoInline is identical to Inner at run time; it only suppresses
// compile-time inlining (a compile-time-only concern, preserved here
// as a transparent pass-through).
type NoInline struct {
	Inner Node
}

func (NoInline) isNode() {}

// TrackCaller marks the current call frame so that an error produced
// by Inner attributes its span to the caller instead of the callee.
type TrackCaller struct {
	Inner Node
}

func (TrackCaller) isNode() {}

// GetLocal reads the current "self" value bound for data definition Def.
type GetLocal struct {
	Def  int
	Span SpanIdx
}

func (GetLocal) isNode() {}

// WithLocal scopes a "self" binding (popped from the stack beforehand by
// the surrounding constructor glue) around Inner.
type WithLocal struct {
	Def   int
	Inner Node
	Span  SpanIdx
}

func (WithLocal) isNode() {}

// NormalizeSoA normalizes a struct-of-arrays value after construction so
// all populated fields share a common leading axis.
type NormalizeSoA struct {
	LenIndex int
	Mask     uint64
	Span     SpanIdx
}

func (NormalizeSoA) isNode() {}
