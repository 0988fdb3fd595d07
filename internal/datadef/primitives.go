package datadef

import (
	"fmt"
	"strconv"
	"strings"

	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// The data-definition lowering pass is the only caller that needs
// Pick/Dup and the ValidateVariant/ValidateNonBoxedVariant/TagVariant/
// UnBox implementation primitives original_source's data_def emits:
// the general array-primitive library they'd otherwise belong to is
// out of scope (spec §1), so this file gives each of them just enough
// of a body to make datadef-generated getters/constructors run, using
// a string-encoded tag on Value.Label rather than a real tagged-union
// representation (see DESIGN.md, "Variant tagging").

const variantTagPrefix = "\x00variant#"

func encodeVariantTag(index int, name *string) string {
	if name != nil {
		return fmt.Sprintf("%s%d:%s", variantTagPrefix, index, *name)
	}
	return fmt.Sprintf("%s%d", variantTagPrefix, index)
}

func decodeVariantTag(label *string) (index int, name *string, ok bool) {
	if label == nil || !strings.HasPrefix(*label, variantTagPrefix) {
		return 0, nil, false
	}
	rest := strings.TrimPrefix(*label, variantTagPrefix)
	idxPart, namePart, hasName := strings.Cut(rest, ":")
	idx, err := strconv.Atoi(idxPart)
	if err != nil {
		return 0, nil, false
	}
	if hasName {
		n := namePart
		return idx, &n, true
	}
	return idx, nil, true
}

func scalarIndexOf(v value.Value) (int, bool) {
	num, ok := v.(*value.NumberArray)
	if !ok || len(num.Data) != 1 {
		return 0, false
	}
	return int(num.Data[0]), true
}

// dupPrim duplicates the top stack value, standing in for
// Primitive::Dup which data_def prepends to a validation-only field
// validator so it keeps a (1,1) signature.
type dupPrim struct{}

func (dupPrim) Name() string { return "Dup" }
func (dupPrim) Run(env ir.Exec) error {
	v, err := env.Pop("duplicand")
	if err != nil {
		return err
	}
	env.Push(v)
	env.Push(v)
	return nil
}

// pickPrim pops an index and an array and pushes the array's row at
// that index, standing in for Primitive::Pick as used by generated
// field getters.
type pickPrim struct{}

func (pickPrim) Name() string { return "Pick" }
func (pickPrim) Run(env ir.Exec) error {
	idxVal, err := env.Pop("pick index")
	if err != nil {
		return err
	}
	target, err := env.Pop("pick target")
	if err != nil {
		return err
	}
	idx, ok := scalarIndexOf(idxVal)
	if !ok {
		return env.Errorf("pick index must be a single number")
	}
	if idx < 0 || idx >= target.RowCount() {
		return env.Errorf("pick index %d out of range for %d rows", idx, target.RowCount())
	}
	row := target.Row(idx)
	// A picked row of a 1-D box array comes back as a length-1 BoxArray
	// rather than the bare *Boxed element, since Value.Row always
	// returns the receiver's own concrete type; unwrap it so boxed
	// scalars behave the way number/char scalars already do.
	if ba, ok := row.(*value.BoxArray); ok && len(ba.Shape()) == 0 && len(ba.Data) == 1 {
		row = ba.Data[0]
	}
	env.Push(row)
	return nil
}

// validateVariantImpl checks that an instance carries the variant tag
// a getter expects, then pushes the untagged instance back so the
// following Pick can index into it.
type validateVariantImpl struct{}

func (validateVariantImpl) Name() string { return "ValidateVariant" }
func (validateVariantImpl) Run(env ir.Exec) error {
	wantVal, err := env.Pop("variant tag")
	if err != nil {
		return err
	}
	instance, err := env.Pop("variant instance")
	if err != nil {
		return err
	}
	wantIdx, ok := scalarIndexOf(wantVal)
	if !ok {
		return env.Errorf("variant tag must be a single number")
	}
	wantName := wantVal.Label()
	boxed, ok := instance.(*value.Boxed)
	if !ok {
		return env.Errorf("expected a tagged variant instance")
	}
	gotIdx, gotName, ok := decodeVariantTag(boxed.Label())
	if !ok || gotIdx != wantIdx || (wantName != nil && (gotName == nil || *gotName != *wantName)) {
		return env.Errorf("instance does not match the expected variant")
	}
	env.Push(boxed.Unboxed())
	return nil
}

// validateNonBoxedVariantImpl checks that a field value bound for a
// non-boxed variant's constructor is of a type that can live in a
// dense (non-boxed) array alongside other variants' fields.
type validateNonBoxedVariantImpl struct{}

func (validateNonBoxedVariantImpl) Name() string { return "ValidateNonBoxedVariant" }
func (validateNonBoxedVariantImpl) Run(env ir.Exec) error {
	v, err := env.Pop("field value")
	if err != nil {
		return err
	}
	switch v.TypeID() {
	case value.TypeNumber, value.TypeChar:
		env.Push(v)
		return nil
	default:
		return env.Errorf("non-boxed variant fields must be numbers or characters, found %s", value.TypeNameFor(v))
	}
}

// tagVariantImpl pops a labeled variant-index scalar and the fields
// value a constructor just built, and combines them into a single
// boxed, tagged instance a getter's ValidateVariant can check against.
type tagVariantImpl struct{}

func (tagVariantImpl) Name() string { return "TagVariant" }
func (tagVariantImpl) Run(env ir.Exec) error {
	tagVal, err := env.Pop("variant tag")
	if err != nil {
		return err
	}
	fields, err := env.Pop("variant fields")
	if err != nil {
		return err
	}
	idx, ok := scalarIndexOf(tagVal)
	if !ok {
		return env.Errorf("variant tag must be a single number")
	}
	tag := encodeVariantTag(idx, tagVal.Label())
	boxed := value.NewBoxed(fields)
	boxed.SetLabel(&tag)
	env.Push(boxed)
	return nil
}

// unboxImpl pops a value and, if boxed, pushes its interior; otherwise
// pushes the value unchanged.
type unboxImpl struct{}

func (unboxImpl) Name() string { return "UnBox" }
func (unboxImpl) Run(env ir.Exec) error {
	v, err := env.Pop("boxed value")
	if err != nil {
		return err
	}
	if b, ok := v.(*value.Boxed); ok {
		env.Push(b.Unboxed())
		return nil
	}
	env.Push(v)
	return nil
}
