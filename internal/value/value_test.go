package value

import "testing"

func TestFromNumberIsScalar(t *testing.T) {
	v := FromNumber(42)
	if v.Shape() != nil {
		t.Fatalf("scalar shape = %v, want nil", v.Shape())
	}
	if v.ElementCount() != 1 {
		t.Fatalf("scalar ElementCount = %d, want 1", v.ElementCount())
	}
	if v.Data[0] != 42 {
		t.Fatalf("scalar Data[0] = %v, want 42", v.Data[0])
	}
}

func TestNumberArrayRow(t *testing.T) {
	a := NewNumberArray([]int{3}, []float64{10, 20, 30})
	row := a.Row(1)
	na, ok := row.(*NumberArray)
	if !ok {
		t.Fatalf("Row returned %T, want *NumberArray", row)
	}
	if na.Shape() != nil || len(na.Data) != 1 || na.Data[0] != 20 {
		t.Fatalf("Row(1) = %+v, want scalar 20", na)
	}
}

func TestBoxArrayRowYieldsLengthOneBoxArray(t *testing.T) {
	boxed := NewBoxed(FromNumber(7))
	ba := NewBoxArray([]int{2}, []*Boxed{boxed, NewBoxed(FromNumber(8))})
	row := ba.Row(0)
	rowBA, ok := row.(*BoxArray)
	if !ok || len(rowBA.Shape()) != 0 || len(rowBA.Data) != 1 {
		t.Fatalf("Row(0) = %+v, want a length-1 BoxArray", row)
	}
	if rowBA.Data[0] != boxed {
		t.Fatalf("Row(0) did not preserve the underlying *Boxed pointer")
	}
}

func TestLabelRoundTrip(t *testing.T) {
	v := FromString("hi")
	if v.Label() != nil {
		t.Fatalf("fresh value has label %v, want nil", v.Label())
	}
	name := "greeting"
	v.SetLabel(&name)
	if v.Label() == nil || *v.Label() != "greeting" {
		t.Fatalf("Label() after SetLabel = %v, want \"greeting\"", v.Label())
	}
}

func TestAsString(t *testing.T) {
	s := FromString("hello")
	if got := AsString(s); got != "hello" {
		t.Fatalf("AsString(%v) = %q, want %q", s, got, "hello")
	}
}

func TestTypeNameForSingularVsPlural(t *testing.T) {
	scalar := FromNumber(1)
	if got := TypeNameFor(scalar); got != "number" {
		t.Fatalf("TypeNameFor(scalar) = %q, want %q", got, "number")
	}
	arr := NewNumberArray([]int{2}, []float64{1, 2})
	if got := TypeNameFor(arr); got != "numbers" {
		t.Fatalf("TypeNameFor(arr) = %q, want %q", got, "numbers")
	}
}

func TestFromRowValuesNumberArrays(t *testing.T) {
	rows := []Value{FromNumber(1), FromNumber(2), FromNumber(3)}
	combined, err := FromRowValues(rows, Value.ElemSize)
	if err != nil {
		t.Fatalf("FromRowValues: %v", err)
	}
	na, ok := combined.(*NumberArray)
	if !ok {
		t.Fatalf("combined is %T, want *NumberArray", combined)
	}
	if len(na.Shape()) != 1 || na.Shape()[0] != 3 {
		t.Fatalf("combined shape = %v, want [3]", na.Shape())
	}
	if na.Data[0] != 1 || na.Data[1] != 2 || na.Data[2] != 3 {
		t.Fatalf("combined data = %v, want [1 2 3]", na.Data)
	}
}

func TestFromRowValuesRejectsMixedTypes(t *testing.T) {
	rows := []Value{FromNumber(1), FromString("x")}
	if _, err := FromRowValues(rows, Value.ElemSize); err == nil {
		t.Fatal("expected an error combining a number row with a char row")
	}
}

func TestFromRowValuesEmpty(t *testing.T) {
	combined, err := FromRowValues(nil, Value.ElemSize)
	if err != nil {
		t.Fatalf("FromRowValues(nil): %v", err)
	}
	if combined.RowCount() != 0 {
		t.Fatalf("empty combination has RowCount %d, want 0", combined.RowCount())
	}
}
