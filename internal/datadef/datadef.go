// Package datadef lowers a parsed data/variant/record declaration into
// the IR for its getters, constructor, SoA constructor, field-name
// constant, field validators (with best-effort inverses), and optional
// attached method, the way original_source/src/compile/data.rs's
// Compiler::data_def does for the host compiler's binding tables.
//
// Parsing, identifier resolution, and scope chains are out of scope
// here (they belong to the host compiler, which this package never
// implements): DataDef's field validators/initializers arrive already
// compiled into SigNodes, and an attached function's body is compiled
// lazily via FuncDef.Compile once the method scope it may reference
// (field getters, Self) has been bound — standing in for the host's
// deferred words_sig call against those identifiers.
package datadef

import (
	"fmt"
	"strings"

	"uiuacore/internal/assembly"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// Inverter attempts to produce the inverse of a compiled field
// transform. Inversion itself is out of scope (spec §1); this package
// only needs a place to plug a real inverter in, matching the forward
// compile / attempt-inversion split original_source performs with
// Node::un_inverse.
type Inverter func(ir.SigNode) (ir.SigNode, error)

// BindingPrelude carries the doc comment accumulated for the def's own
// binding (or its enclosing module binding, for a top-level named def).
type BindingPrelude struct {
	Comment string
}

// FieldDef is one data-field declaration. Validator and Init are
// already compiled by the host (signature inference is out of scope);
// nil means the field carries none.
type FieldDef struct {
	Name      string
	NameSpan  ir.SpanIdx
	Span      ir.SpanIdx
	Comment   string
	Validator *ir.SigNode // (1,1) or (1,0) before normalization
	Init      *ir.SigNode // must yield exactly 1 output
}

// DataFields is the field block of a data definition.
type DataFields struct {
	Boxed  bool
	Fields []FieldDef
}

// MethodScope exposes the method-scope bindings (field getters re-bound
// against "self", plus Self itself) that an attached function's body
// may reference.
type MethodScope struct {
	Self   ir.Node
	Fields map[string]ir.Node
}

// FuncDef is an attached data function (original_source's data.func).
type FuncDef struct {
	// Compile lowers the attached function's body once MethodScope
	// exists, analogous to the host calling words_sig inside
	// in_method after the method-scope getters are registered.
	Compile func(scope MethodScope) (ir.SigNode, error)
	Span    ir.SpanIdx
}

// DataDef is one data/variant/record declaration.
type DataDef struct {
	Name     *string
	NameSpan ir.SpanIdx
	Fields   *DataFields
	Variant  bool
	// VariantIndex is the index this variant occupies in its enclosing
	// module's variant sequence. The host owns the data_variants
	// counter (a property of a scope chain this package doesn't
	// model); it allocates and passes the index in.
	VariantIndex int
	Func         *FuncDef
	InitSpan     ir.SpanIdx
}

// Result reports the assembly indices LowerDataDef bound, for a test
// or a caller that needs to wire further references to them.
type Result struct {
	DefIndex         int
	ModuleIndex      *int
	FieldGetterIndex map[string]int
	FieldsConstIndex int
	ConstructorIndex int
	CallIndex        *int
	SoAIndex         *int
	SelfIndex        int
	MethodFieldIndex map[string]int
}

var subscriptDigits = [10]rune{'₀', '₁', '₂', '₃', '₄', '₅', '₆', '₇', '₈', '₉'}

// compiledField is one field after its validator has been folded into
// its initializer, ready for getter/constructor emission.
type compiledField struct {
	name         string
	nameSpan     ir.SpanIdx
	span         ir.SpanIdx
	comment      string
	globalIndex  int
	validatorInv ir.Node
	init         *ir.SigNode
}

// LowerDataDef implements spec.md §4.H steps 1-13 against asm, grounded
// line-for-line on original_source/src/compile/data.rs's data_def.
func LowerDataDef(asm *assembly.Assembly, def DataDef, topLevel bool, prelude BindingPrelude, invert Inverter) (*Result, error) {
	return lower(asm, def, topLevel, prelude, invert, "")
}

func lower(asm *assembly.Assembly, def DataDef, topLevel bool, prelude BindingPrelude, invert Inverter, prefix string) (*Result, error) {
	// Step 3: a top-level named def is wrapped as a module: bind one
	// Module entry, then lower the same def again, unprefixed
	// namewise falls back to prefixed binding names since this
	// package has no scope chain to nest bindings inside.
	if topLevel && def.Name != nil {
		name := *def.Name
		moduleIndex := len(asm.Bindings)
		asm.Bindings = append(asm.Bindings, assembly.Binding{
			Kind: assembly.BindingModule, Name: name, Public: true, Comment: prelude.Comment,
		})
		res, err := lower(asm, def, false, prelude, invert, name+".")
		if err != nil {
			return nil, err
		}
		res.ModuleIndex = &moduleIndex
		return res, nil
	}

	if def.Variant && def.Name == nil {
		return nil, fmt.Errorf("variants must have a name")
	}

	defName := strings.TrimSuffix(prefix, ".")
	var defNamePtr *string
	if defName != "" {
		defNamePtr = &defName
	}

	defIndex := asm.BindDef(assembly.DefInfo{Name: defName})

	hasFields := def.Fields != nil
	boxed := hasFields && def.Fields.Boxed
	var compiled []compiledField

	// Step 5: collect fields, compiling each validator and folding it
	// into the field's initializer.
	if hasFields {
		for _, f := range def.Fields.Fields {
			var validatorInv ir.Node
			var forwardValidator ir.Node
			if f.Validator != nil {
				v := *f.Validator
				if v.Sig.Outputs == 0 {
					v.Node = ir.Run{ir.Prim{Prim: dupPrim{}, Span: f.Span}, v.Node}
					v.Sig.Outputs = 1
				}
				forwardValidator = v.Node
				if inv, err := invert(v); err == nil {
					validatorInv = inv.Node
				} else {
					validatorInv = ir.Run{}
				}
			}
			init := f.Init
			switch {
			case init != nil && forwardValidator != nil:
				merged := ir.NewSigNode(init.Sig, ir.Run{init.Node, forwardValidator})
				init = &merged
			case init == nil && forwardValidator != nil:
				merged := ir.NewSigNode(ir.NewSignature(1, 1), forwardValidator)
				init = &merged
			}
			compiled = append(compiled, compiledField{
				name: f.Name, nameSpan: f.NameSpan, span: f.Span,
				comment: f.Comment, validatorInv: validatorInv, init: init,
			})
		}
	}

	// Step 7: getters.
	fieldGetterIndex := make(map[string]int, len(compiled))
	for i := range compiled {
		field := &compiled[i]
		var body []ir.Node
		if def.Variant {
			body = append(body, ir.Push{Value: value.FromNumber(float64(def.VariantIndex))})
			if def.Name != nil {
				body = append(body, ir.Label{Name: *def.Name, Span: field.span})
			}
			body = append(body, ir.ImplPrimNode{Prim: validateVariantImpl{}, Span: field.span})
		}
		body = append(body, ir.Push{Value: value.FromNumber(float64(i))})
		body = append(body, ir.Prim{Prim: pickPrim{}, Span: field.span})
		var node ir.Node = ir.TrackCaller{Inner: ir.Run(body)}
		if boxed {
			node = ir.Run{node, ir.ImplPrimNode{Prim: unboxImpl{}, Span: field.span}, ir.RemoveLabel{Hint: field.name, Span: field.span}}
		}
		if field.validatorInv != nil {
			node = ir.Run{node, field.validatorInv}
		}
		id := ir.FunctionID{Kind: ir.FunctionIDNamed, Name: field.name}
		fn := asm.AddFunction(id, ir.NewSignature(1, 1), node)
		comment := getterComment(defNamePtr, field.name, field.comment)
		idx := bindFunc(asm, prefix+field.name, fn, comment)
		field.globalIndex = idx
		fieldGetterIndex[field.name] = idx
	}

	// Step 8: Fields constant.
	fieldBoxes := make([]*value.Boxed, len(compiled))
	for i, f := range compiled {
		fieldBoxes[i] = value.NewBoxed(value.FromString(f.name))
	}
	fieldsConstIndex := bindConst(asm, prefix+"Fields", value.NewBoxArray([]int{len(compiled)}, fieldBoxes), fieldsConstComment(defNamePtr))

	// Step 9: constructor.
	constructorArgs := 0
	for _, f := range compiled {
		if f.init != nil {
			constructorArgs += f.init.Sig.Args
		} else {
			constructorArgs++
		}
	}
	var inner ir.Node = ir.Run{}
	for i := len(compiled) - 1; i >= 0; i-- {
		f := compiled[i]
		var arg ir.SigNode
		if f.init != nil {
			arg = *f.init
		} else {
			arg = ir.NewSigNode(ir.NewSignature(1, 1), ir.Run{})
		}
		argNode := arg.Node
		switch {
		case boxed:
			argNode = ir.Run{argNode, ir.Label{Name: f.name, Span: f.span}}
		case def.Variant:
			argNode = ir.Run{argNode, ir.TrackCaller{Inner: ir.ImplPrimNode{Prim: validateNonBoxedVariantImpl{}, Span: f.span}}}
		}
		if !isEmptyNode(inner) {
			for k := 0; k < arg.Sig.Args; k++ {
				inner = dipWrap(inner)
			}
		}
		inner = ir.Run{inner, argNode}
	}
	ctorSpan := def.InitSpan
	var ctorNode ir.Node = ir.Run{}
	if hasFields {
		ctorNode = ir.Array{
			Len:   ir.ArrayLen{Kind: ir.ArrayLenStatic, Static: len(compiled)},
			Inner: inner,
			Boxed: boxed,
			Span:  ctorSpan,
		}
	}
	if def.Variant {
		tagged := []ir.Node{ctorNode, ir.Push{Value: value.FromNumber(float64(def.VariantIndex))}}
		if def.Name != nil {
			tagged = append(tagged, ir.Label{Name: *def.Name, Span: ctorSpan})
		}
		if hasFields {
			tagged = append(tagged, ir.ImplPrimNode{Prim: tagVariantImpl{}, Span: ctorSpan})
		}
		ctorNode = ir.Run(tagged)
	}
	constructorFunc := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "New"}, ir.NewSignature(constructorArgs, 1), ctorNode)
	constructorComment := constructorDocComment(defNamePtr, compiled)
	constructorIndex := bindFunc(asm, prefix+"New", constructorFunc, constructorComment)

	// Step 10-11: method scope (local field getters re-bound against
	// self, plus Self).
	methodFieldIndex := make(map[string]int, len(compiled))
	methodScopeFields := make(map[string]ir.Node, len(compiled))
	for _, f := range compiled {
		node := ir.Run{ir.GetLocal{Def: defIndex, Span: f.span}, ir.CallGlobal{Index: f.globalIndex, Span: f.span}}
		fn := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: f.name}, ir.NewSignature(0, 1), node)
		idx := bindFunc(asm, prefix+"."+f.name, fn, methodFieldComment(defNamePtr, f.name))
		methodFieldIndex[f.name] = idx
		methodScopeFields[f.name] = ir.CallGlobal{Index: idx, Span: f.span}
	}
	selfNode := ir.GetLocal{Def: defIndex, Span: ctorSpan}
	selfFn := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "Self"}, ir.NewSignature(0, 1), selfNode)
	selfIndex := bindFunc(asm, prefix+".Self", selfFn, selfComment(defNamePtr))

	// Step 12: attached function, compiled against the method scope
	// just bound, then wired through the constructor and WithLocal.
	var callIndex *int
	if def.Func != nil {
		sn, err := def.Func.Compile(MethodScope{Self: selfNode, Fields: methodScopeFields})
		if err != nil {
			return nil, err
		}
		var construct ir.Node = ir.Call{Func: constructorFunc, Span: ctorSpan}
		for k := 0; k < sn.Sig.Args; k++ {
			construct = dipWrap(construct)
		}
		node := ir.Run{construct, ir.WithLocal{Def: defIndex, Inner: sn.Node, Span: ctorSpan}}
		fn := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "Call"}, ir.NewSignature(sn.Sig.Args, 1), node)
		idx := bindFunc(asm, prefix+"Call", fn, "")
		callIndex = &idx
	}

	// Step 13: SoA constructor, only when boxed and at least one field
	// lacks an initializer (the batch-length field).
	var soaIndex *int
	if boxed {
		lenIndex := -1
		for i, f := range compiled {
			if f.init == nil {
				lenIndex = i
				break
			}
		}
		if lenIndex >= 0 {
			var mask uint64
			for i, f := range compiled {
				if f.init != nil {
					mask |= 1 << uint(i)
				}
			}
			node := ir.TrackCaller{Inner: ir.Run{
				ir.Call{Func: constructorFunc, Span: ctorSpan},
				ir.NormalizeSoA{LenIndex: lenIndex, Mask: mask, Span: ctorSpan},
			}}
			fn := asm.AddFunction(ir.FunctionID{Kind: ir.FunctionIDNamed, Name: "SoA"}, ir.NewSignature(constructorArgs, 1), node)
			idx := bindFunc(asm, prefix+"SoA", fn, soaDocComment(defNamePtr))
			soaIndex = &idx
		}
	}

	return &Result{
		DefIndex:         defIndex,
		FieldGetterIndex: fieldGetterIndex,
		FieldsConstIndex: fieldsConstIndex,
		ConstructorIndex: constructorIndex,
		CallIndex:        callIndex,
		SoAIndex:         soaIndex,
		SelfIndex:        selfIndex,
		MethodFieldIndex: methodFieldIndex,
	}, nil
}

func bindFunc(asm *assembly.Assembly, name string, fn *ir.Function, comment string) int {
	idx := asm.BindFunc(name, fn)
	asm.Bindings[idx].Comment = comment
	return idx
}

func bindConst(asm *assembly.Assembly, name string, v value.Value, comment string) int {
	idx := asm.BindConst(name, v, false)
	asm.Bindings[idx].Comment = comment
	return idx
}

// dipWrap protects the top value while body runs underneath it,
// standing in for original_source's `Node::Mod(Primitive::Dip, ...)`
// wrapping: the PushUnder/PopUnder pair already gives exactly that
// protect-and-restore discipline over the under stack, so no Dip
// Modifier (which the minimal ir.Exec interface can't invoke anyway,
// since it has no way to execute a nested node) is needed here.
func dipWrap(body ir.Node) ir.Node {
	return ir.Run{ir.PushUnder{N: 1}, body, ir.PopUnder{N: 1}}
}

func isEmptyNode(n ir.Node) bool {
	if n == nil {
		return true
	}
	r, ok := n.(ir.Run)
	return ok && len(r) == 0
}

func getterComment(defName *string, fieldName, comment string) string {
	var head string
	if defName != nil {
		head = fmt.Sprintf("Get `%s`'s `%s`", *defName, fieldName)
	} else {
		head = fmt.Sprintf("Get `%s`", fieldName)
	}
	if comment != "" {
		return head + "\n" + comment
	}
	return head
}

func fieldsConstComment(defName *string) string {
	if defName != nil {
		return fmt.Sprintf("Names of `%s`'s fields", *defName)
	}
	return "Names of fields"
}

func methodFieldComment(defName *string, fieldName string) string {
	if defName != nil {
		return fmt.Sprintf("`%s`'s `%s` argument", *defName, fieldName)
	}
	return fmt.Sprintf("`%s` argument", fieldName)
}

func selfComment(defName *string) string {
	if defName != nil {
		return fmt.Sprintf("Get bound `%s`", *defName)
	}
	return "Get bound data instance"
}

func soaDocComment(defName *string) string {
	if defName != nil {
		return fmt.Sprintf("Create a new `%s` SoA\n%s ?", *defName, *defName)
	}
	return "Create a new SoA instance\nInstance ?"
}

func constructorDocComment(defName *string, compiled []compiledField) string {
	var sb strings.Builder
	if defName != nil {
		sb.WriteString(fmt.Sprintf("Create a new `%s`\n%s ?", *defName, *defName))
	} else {
		sb.WriteString("Create a new data instance\nInstance ?")
	}
	for _, f := range compiled {
		argCount := 1
		if f.init != nil {
			argCount = f.init.Sig.Args
		}
		if argCount == 0 {
			continue
		}
		if argCount == 1 {
			sb.WriteString(" ")
			sb.WriteString(f.name)
			continue
		}
		for i := 0; i < argCount; i++ {
			sb.WriteString(" ")
			sb.WriteString(f.name)
			appendSubscript(&sb, i+1)
		}
	}
	return sb.String()
}

// appendSubscript mirrors original_source's exact (unreversed,
// least-significant-digit-first) subscript rendering.
func appendSubscript(sb *strings.Builder, i int) {
	for i > 0 {
		sb.WriteRune(subscriptDigits[i%10])
		i /= 10
	}
}
