package datadef

import (
	"testing"

	"uiuacore/internal/assembly"
	"uiuacore/internal/backend"
	"uiuacore/internal/interp"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

func identityInverter(sn ir.SigNode) (ir.SigNode, error) {
	return sn, nil
}

func TestLowerDataDefRecordGetterAndConstructor(t *testing.T) {
	asm := assembly.New()
	def := DataDef{
		Fields: &DataFields{
			Fields: []FieldDef{
				{Name: "X"},
				{Name: "Y"},
			},
		},
	}
	res, err := LowerDataDef(asm, def, false, BindingPrelude{}, identityInverter)
	if err != nil {
		t.Fatalf("LowerDataDef: %v", err)
	}
	if len(res.FieldGetterIndex) != 2 {
		t.Fatalf("expected 2 getters, got %d", len(res.FieldGetterIndex))
	}

	xBinding := asm.Bindings[res.FieldGetterIndex["X"]]
	if xBinding.Kind != assembly.BindingFunc || xBinding.Name != "X" {
		t.Fatalf("unexpected X getter binding: %+v", xBinding)
	}

	ctor := asm.Bindings[res.ConstructorIndex]
	if ctor.Func.Sig.Args != 2 || ctor.Func.Sig.Outputs != 1 {
		t.Fatalf("constructor signature = %v, want (2,1)", ctor.Func.Sig)
	}

	fieldsConst := asm.Bindings[res.FieldsConstIndex]
	names, ok := fieldsConst.Const.(*value.BoxArray)
	if !ok || len(names.Data) != 2 {
		t.Fatalf("Fields constant did not hold 2 boxed names: %+v", fieldsConst.Const)
	}
}

func TestLowerDataDefTopLevelNamedDefBindsModule(t *testing.T) {
	asm := assembly.New()
	name := "Point"
	def := DataDef{
		Name: &name,
		Fields: &DataFields{
			Fields: []FieldDef{{Name: "X"}, {Name: "Y"}},
		},
	}
	res, err := LowerDataDef(asm, def, true, BindingPrelude{Comment: "a 2D point"}, identityInverter)
	if err != nil {
		t.Fatalf("LowerDataDef: %v", err)
	}
	if res.ModuleIndex == nil {
		t.Fatal("expected a module binding for a top-level named def")
	}
	mod := asm.Bindings[*res.ModuleIndex]
	if mod.Kind != assembly.BindingModule || mod.Name != "Point" || mod.Comment != "a 2D point" {
		t.Fatalf("unexpected module binding: %+v", mod)
	}

	ctorBinding := asm.Bindings[res.ConstructorIndex]
	if ctorBinding.Name != "Point.New" {
		t.Fatalf("expected prefixed constructor name, got %q", ctorBinding.Name)
	}
}

func TestLowerDataDefVariantRequiresName(t *testing.T) {
	asm := assembly.New()
	def := DataDef{Variant: true}
	if _, err := LowerDataDef(asm, def, false, BindingPrelude{}, identityInverter); err == nil {
		t.Fatal("expected an error for an unnamed variant")
	}
}

func TestLowerDataDefVariantGetterRoundTrip(t *testing.T) {
	asm := assembly.New()
	someName := "Some"
	def := DataDef{
		Name:         &someName,
		Variant:      true,
		VariantIndex: 0,
		Fields: &DataFields{
			Boxed:  true,
			Fields: []FieldDef{{Name: "Value"}},
		},
	}
	res, err := LowerDataDef(asm, def, false, BindingPrelude{}, identityInverter)
	if err != nil {
		t.Fatalf("LowerDataDef: %v", err)
	}

	ctor := asm.Bindings[res.ConstructorIndex].Func
	in := interp.New(backend.NewSafeBackend()).WithAssembly(asm)
	in.Push(value.FromNumber(42))
	if err := in.CallWithSpan(ctor, 0); err != nil {
		t.Fatalf("constructor: %v", err)
	}
	instance, err := in.Stacks.Pop("constructed instance")
	if err != nil {
		t.Fatalf("pop instance: %v", err)
	}

	getter := asm.Bindings[res.FieldGetterIndex["Value"]].Func
	in.Push(instance)
	if err := in.CallWithSpan(getter, 0); err != nil {
		t.Fatalf("getter: %v", err)
	}
	got, err := in.Stacks.Pop("field value")
	if err != nil {
		t.Fatalf("pop field value: %v", err)
	}
	num, ok := got.(*value.NumberArray)
	if !ok || len(num.Data) != 1 || num.Data[0] != 42 {
		t.Fatalf("getter returned %+v, want scalar 42", got)
	}
}

func TestLowerDataDefSoAConstructorOnlyWhenBoxedAndUnfilledFieldExists(t *testing.T) {
	asm := assembly.New()
	def := DataDef{
		Fields: &DataFields{
			Boxed:  true,
			Fields: []FieldDef{{Name: "A"}, {Name: "B"}},
		},
	}
	res, err := LowerDataDef(asm, def, false, BindingPrelude{}, identityInverter)
	if err != nil {
		t.Fatalf("LowerDataDef: %v", err)
	}
	if res.SoAIndex == nil {
		t.Fatal("expected an SoA constructor when boxed with no initializers")
	}

	asm2 := assembly.New()
	def2 := DataDef{
		Fields: &DataFields{
			Fields: []FieldDef{{Name: "A"}, {Name: "B"}},
		},
	}
	res2, err := LowerDataDef(asm2, def2, false, BindingPrelude{}, identityInverter)
	if err != nil {
		t.Fatalf("LowerDataDef: %v", err)
	}
	if res2.SoAIndex != nil {
		t.Fatal("did not expect an SoA constructor for a non-boxed def")
	}
}
