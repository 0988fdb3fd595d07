// Package value defines the array-language Value type this engine moves
// between stacks. The array-primitive library that gives these values
// their numerical semantics is out of scope (spec.md §1); this package
// only carries the shape of a Value far enough to drive the dispatcher,
// fill/unfill masking, labeling, and the Array/Unpack node behavior.
package value

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TypeID mirrors the four type tags a ValidateType node checks against.
type TypeID int

const (
	TypeNumber TypeID = iota
	TypeComplex
	TypeChar
	TypeBox
)

func (t TypeID) pluralName() string {
	switch t {
	case TypeNumber:
		return "numbers"
	case TypeComplex:
		return "complex numbers"
	case TypeChar:
		return "characters"
	case TypeBox:
		return "boxes"
	default:
		return "values"
	}
}

// PluralName renders the plural English name of a type tag, used by
// ValidateType's error message ("should be numbers but found...").
func (t TypeID) PluralName() string {
	return t.pluralName()
}

func (t TypeID) singularName() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeComplex:
		return "complex number"
	case TypeChar:
		return "character"
	case TypeBox:
		return "box"
	default:
		return "value"
	}
}

// Value is a tagged, possibly-labeled, multi-dimensional array. Its
// interior is reference-counted sharing in spirit: Go's garbage collector
// already gives a cloned Value O(1)-amortized copies of its backing
// slice header, so the engine never has to mutate a shared interior to
// get cheap channel sends and stack duplication.
type Value interface {
	// TypeID reports which of the four primitive type tags this value
	// carries.
	TypeID() TypeID
	// Shape returns the value's dimensions, outermost first.
	Shape() []int
	// ElementCount is the product of Shape.
	ElementCount() int
	// ElemSize is the size in bytes of one element, used by the Array
	// node's total-size validation.
	ElemSize() int
	// Label returns the value's current label, or nil if unlabeled.
	Label() *string
	// SetLabel mutates the value's label in place.
	SetLabel(label *string)
	// Row returns the i'th row (the value with the leading axis peeled
	// off), used by Unpack.
	Row(i int) Value
	// RowCount is Shape()[0] for a non-scalar, 1 for a scalar.
	RowCount() int
}

func typeName(v Value) string {
	if v.ElementCount() == 1 {
		return v.TypeID().singularName()
	}
	return v.TypeID().pluralName()
}

// TypeNameFor renders the found-type clause of a ValidateType error
// message ("numbers", "character", etc.) matching the original's
// type_name()/type_name_plural() split on element count.
func TypeNameFor(v Value) string {
	return typeName(v)
}

// Compress is a no-op placeholder for the array library's in-place
// normalization step the original runs before storing a popped value as
// a constant binding (BindGlobal). It exists so BindGlobal's contract
// documented in spec.md §4.C has a concrete call site; the actual
// normalization rules belong to the primitive library.
func Compress(v Value) Value {
	return v
}

// Boxed wraps a Value one level deep, the way Array{boxed: true}
// produces a box per element.
type Boxed struct {
	Inner Value
	label *string
}

func NewBoxed(inner Value) *Boxed {
	return &Boxed{Inner: inner}
}

func (b *Boxed) TypeID() TypeID      { return TypeBox }
func (b *Boxed) Shape() []int        { return nil }
func (b *Boxed) ElementCount() int   { return 1 }
func (b *Boxed) ElemSize() int       { return 8 }
func (b *Boxed) Label() *string      { return b.label }
func (b *Boxed) SetLabel(l *string)  { b.label = l }
func (b *Boxed) Row(int) Value       { return b }
func (b *Boxed) RowCount() int       { return 1 }
func (b *Boxed) Unboxed() Value      { return b.Inner }
func (b *Boxed) String() string      { return fmt.Sprintf("<box %v>", b.Inner) }

// rowMajor is embedded by the three concrete array kinds below to share
// shape/label bookkeeping.
type rowMajor struct {
	shape []int
	label *string
}

func (r *rowMajor) Shape() []int { return r.shape }
func (r *rowMajor) ElementCount() int {
	n := 1
	for _, d := range r.shape {
		n *= d
	}
	return n
}
func (r *rowMajor) Label() *string     { return r.label }
func (r *rowMajor) SetLabel(l *string) { r.label = l }
func (r *rowMajor) RowCount() int {
	if len(r.shape) == 0 {
		return 1
	}
	return r.shape[0]
}

func rowShape(shape []int) []int {
	if len(shape) <= 1 {
		return nil
	}
	return append([]int(nil), shape[1:]...)
}

func rowSpan(shape []int) int {
	n := 1
	for _, d := range rowShape(shape) {
		n *= d
	}
	return n
}

// NumberArray is a dense array of float64 numbers.
type NumberArray struct {
	rowMajor
	Data []float64
}

func NewNumberArray(shape []int, data []float64) *NumberArray {
	return &NumberArray{rowMajor: rowMajor{shape: shape}, Data: data}
}

func (a *NumberArray) TypeID() TypeID  { return TypeNumber }
func (a *NumberArray) ElemSize() int   { return 8 }
func (a *NumberArray) Row(i int) Value {
	span := rowSpan(a.shape)
	start := i * span
	return &NumberArray{rowMajor: rowMajor{shape: rowShape(a.shape)}, Data: a.Data[start : start+span]}
}

// CharArray is a dense array of runes.
type CharArray struct {
	rowMajor
	Data []rune
}

func NewCharArray(shape []int, data []rune) *CharArray {
	return &CharArray{rowMajor: rowMajor{shape: shape}, Data: data}
}

func (a *CharArray) TypeID() TypeID  { return TypeChar }
func (a *CharArray) ElemSize() int   { return 4 }
func (a *CharArray) Row(i int) Value {
	span := rowSpan(a.shape)
	start := i * span
	return &CharArray{rowMajor: rowMajor{shape: rowShape(a.shape)}, Data: a.Data[start : start+span]}
}

func (a *CharArray) String() string { return string(a.Data) }

// BoxArray is a dense array of boxed values.
type BoxArray struct {
	rowMajor
	Data []*Boxed
}

func NewBoxArray(shape []int, data []*Boxed) *BoxArray {
	return &BoxArray{rowMajor: rowMajor{shape: shape}, Data: data}
}

func (a *BoxArray) TypeID() TypeID  { return TypeBox }
func (a *BoxArray) ElemSize() int   { return 8 }
func (a *BoxArray) Row(i int) Value {
	span := rowSpan(a.shape)
	start := i * span
	return &BoxArray{rowMajor: rowMajor{shape: rowShape(a.shape)}, Data: a.Data[start : start+span]}
}

// FromString builds a 1-D CharArray the way string literals arrive on
// the stack (used by Format's result and the constant-string path).
func FromString(s string) *CharArray {
	runes := []rune(s)
	return NewCharArray([]int{len(runes)}, runes)
}

// FromNumber builds a scalar NumberArray.
func FromNumber(n float64) *NumberArray {
	return NewNumberArray(nil, []float64{n})
}

// AsString renders a CharArray back to a Go string and a NumberArray as
// its numbers (a scalar bare, anything else as a flat bracketed list);
// any other kind renders via fmt.Sprint (used by Format's argument
// interpolation).
func AsString(v Value) string {
	if c, ok := v.(*CharArray); ok {
		return c.String()
	}
	if n, ok := v.(*NumberArray); ok {
		parts := make([]string, len(n.Data))
		for i, f := range n.Data {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		if len(n.shape) == 0 && len(parts) == 1 {
			return parts[0]
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprint(v)
}

// FromRowValues stacks a slice of rows into a single array, equivalent
// to the host's Value::from_row_values used by the Array node and by
// thread Wait result aggregation. All rows must share a type and
// shape; that agreement is enforced by the primitive library in the
// real system; here it's enforced structurally for the three concrete
// array kinds this package defines (bare *Boxed rows have no shape).
func FromRowValues(rows []Value, elemSize func(Value) int) (Value, error) {
	if len(rows) == 0 {
		return NewNumberArray([]int{0}, nil), nil
	}
	switch first := rows[0].(type) {
	case *NumberArray:
		shape := append([]int{len(rows)}, first.shape...)
		data := make([]float64, 0, len(rows)*len(first.Data))
		for _, r := range rows {
			na, ok := r.(*NumberArray)
			if !ok {
				return nil, fmt.Errorf("cannot combine rows of different types into an array")
			}
			if !slices.Equal(na.shape, first.shape) {
				return nil, fmt.Errorf("cannot combine rows of different shapes into an array")
			}
			data = append(data, na.Data...)
		}
		return NewNumberArray(shape, data), nil
	case *CharArray:
		shape := append([]int{len(rows)}, first.shape...)
		data := make([]rune, 0, len(rows)*len(first.Data))
		for _, r := range rows {
			ca, ok := r.(*CharArray)
			if !ok {
				return nil, fmt.Errorf("cannot combine rows of different types into an array")
			}
			if !slices.Equal(ca.shape, first.shape) {
				return nil, fmt.Errorf("cannot combine rows of different shapes into an array")
			}
			data = append(data, ca.Data...)
		}
		return NewCharArray(shape, data), nil
	case *BoxArray:
		shape := append([]int{len(rows)}, first.shape...)
		data := make([]*Boxed, 0, len(rows)*len(first.Data))
		for _, r := range rows {
			ba, ok := r.(*BoxArray)
			if !ok {
				return nil, fmt.Errorf("cannot combine rows of different types into an array")
			}
			if !slices.Equal(ba.shape, first.shape) {
				return nil, fmt.Errorf("cannot combine rows of different shapes into an array")
			}
			data = append(data, ba.Data...)
		}
		return NewBoxArray(shape, data), nil
	case *Boxed:
		data := make([]*Boxed, len(rows))
		for i, r := range rows {
			b, ok := r.(*Boxed)
			if !ok {
				return nil, fmt.Errorf("cannot combine rows of different types into an array")
			}
			data[i] = b
		}
		return NewBoxArray([]int{len(rows)}, data), nil
	default:
		return nil, fmt.Errorf("unsupported row value kind %T", first)
	}
}
