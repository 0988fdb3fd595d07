package interp

import (
	"fmt"

	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// execArray runs an Array node: execute Inner inside an incremented
// array-depth, then drain the newly produced values off the main stack
// into a single array value, per spec.md §4.C.
func (in *Interp) execArray(n ir.Array) error {
	preHeight := in.Stacks.Height()
	in.ArrayDepth++
	err := in.Exec(n.Inner)
	in.ArrayDepth--
	if err != nil {
		return err
	}

	var start int
	switch n.Len.Kind {
	case ir.ArrayLenStatic:
		h, rerr := in.Stacks.RequireHeight(n.Len.Static)
		if rerr != nil {
			return rerr
		}
		start = h
	case ir.ArrayLenDynamic:
		start = preHeight
	default:
		return in.Errorf("bug in the interpreter: unknown array length kind")
	}

	rows := in.Stacks.Truncate(start)
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	if n.Boxed {
		for i, v := range rows {
			rows[i] = value.NewBoxed(v)
		}
		if len(rows) == 0 {
			in.Stacks.Push(value.NewBoxArray([]int{0}, nil))
			return nil
		}
	}

	totalElems, elemSize := 0, 0
	for _, r := range rows {
		totalElems += r.ElementCount()
		elemSize = r.ElemSize()
	}
	if err := value.ValidateSize(elemSize, totalElems); err != nil {
		return enginerr.NewRunError(in.Asm.Span(n.Span), err.Error())
	}

	result, err := value.FromRowValues(rows, value.Value.ElemSize)
	if err != nil {
		return enginerr.NewRunError(in.Asm.Span(n.Span), err.Error())
	}
	in.Stacks.Push(result)
	return nil
}

// execUnpack pops an array, verifies its row count, and pushes its rows
// in reverse so the first row ends up topmost — the standard
// array-language destructuring convention (spec.md §4.C).
func (in *Interp) execUnpack(n ir.Unpack) error {
	v, err := in.Stacks.Pop("array to unpack")
	if err != nil {
		return err
	}
	if v.RowCount() != n.Count {
		return enginerr.NewRunError(in.Asm.Span(n.Span), fmt.Sprintf(
			"Cannot unpack array with %d rows into %d values", v.RowCount(), n.Count))
	}
	for i := n.Count - 1; i >= 0; i-- {
		row := v.Row(i)
		if n.Unbox {
			if b, ok := row.(*value.Boxed); ok {
				row = b.Unboxed()
			}
		}
		in.Stacks.Push(row)
	}
	return nil
}

// execSwitch pops a selector and dispatches the matching branch. If
// UnderCond is set and the under stack's top is a single number, that
// number is used as the selector instead of the popped one.
func (in *Interp) execSwitch(n ir.Switch) error {
	selector, err := in.Stacks.Pop("switch selector")
	if err != nil {
		return err
	}
	idx, err := scalarIndex(selector)
	if err != nil {
		return enginerr.NewRunError(in.Asm.Span(n.Span), err.Error())
	}
	if n.UnderCond && len(in.Stacks.Under) > 0 {
		if underIdx, uerr := scalarIndex(in.Stacks.Under[len(in.Stacks.Under)-1]); uerr == nil {
			idx = underIdx
		}
	}
	if idx < 0 || idx >= len(n.Branches) {
		return enginerr.NewRunError(in.Asm.Span(n.Span), fmt.Sprintf(
			"Switch selector %d out of range for %d branches", idx, len(n.Branches)))
	}
	return in.Exec(n.Branches[idx].Node)
}

func scalarIndex(v value.Value) (int, error) {
	num, ok := v.(*value.NumberArray)
	if !ok || len(num.Data) != 1 {
		return 0, fmt.Errorf("expected a single number as a selector")
	}
	return int(num.Data[0]), nil
}

// execNormalizeSoA broadcasts the one field lacking an explicit batch
// axis (LenIndex) up to the common row count shared by the fields
// marked in Mask, per spec.md §4.H step 12. The array-primitive
// semantics behind the real broadcasting rules are out of scope; this
// gives the node a structurally faithful, if simplified, body.
func (in *Interp) execNormalizeSoA(n ir.NormalizeSoA) error {
	v, err := in.Stacks.Pop("struct-of-arrays value")
	if err != nil {
		return err
	}
	ba, ok := v.(*value.BoxArray)
	if !ok {
		in.Stacks.Push(v)
		return nil
	}
	batchLen, err := soaBatchLen(ba, n.Mask, n.LenIndex)
	if err != nil {
		return enginerr.NewRunError(in.Asm.Span(n.Span), err.Error())
	}
	if n.LenIndex >= 0 && n.LenIndex < len(ba.Data) {
		field := ba.Data[n.LenIndex].Unboxed()
		if field.RowCount() != batchLen {
			broadcast := make([]value.Value, batchLen)
			for i := range broadcast {
				broadcast[i] = field
			}
			repeated, rerr := value.FromRowValues(broadcast, value.Value.ElemSize)
			if rerr != nil {
				return enginerr.NewRunError(in.Asm.Span(n.Span), rerr.Error())
			}
			ba.Data[n.LenIndex] = value.NewBoxed(repeated)
		}
	}
	in.Stacks.Push(ba)
	return nil
}

func soaBatchLen(ba *value.BoxArray, mask uint64, lenIndex int) (int, error) {
	for i, b := range ba.Data {
		if i == lenIndex {
			continue
		}
		if mask&(1<<uint(i)) != 0 {
			return b.Unboxed().RowCount(), nil
		}
	}
	return 0, fmt.Errorf("struct-of-arrays normalization found no field to infer length from")
}
