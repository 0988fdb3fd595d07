// cmd/uiuacore/main.go
package main

import (
	"fmt"
	"os"

	"uiuacore/internal/assembly"
	"uiuacore/internal/backend"
	"uiuacore/internal/datadef"
	"uiuacore/internal/interp"
	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

const VERSION = "0.1.0"

// Lexing, parsing, and the primitive library that would turn real
// Uiua-like source into an assembly are out of scope here (spec.md §1):
// this driver instead assembles one small demo program directly against
// the assembly/ir/datadef packages and runs it, the way the teacher's
// cmd/sentra exercises its VM against a compiled chunk.
func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Println("uiuacore", VERSION)
			return
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	asm, entry, err := buildDemoAssembly()
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
	asm.Root = entry

	in := interp.New(backend.NewNativeBackend()).
		WithAssembly(asm).
		WithCLIArguments(args)

	if err := in.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, report := range in.TakeReports() {
		fmt.Println(report)
	}
	for in.Stacks.Height() > 0 {
		v, err := in.Stacks.Pop("result")
		if err != nil {
			break
		}
		fmt.Printf("%s\n", value.TypeNameFor(v))
	}
}

func showUsage() {
	fmt.Println("uiuacore - a data-definition and array-stack runtime")
	fmt.Println()
	fmt.Println("usage:")
	fmt.Println("  uiuacore            run the built-in demo program")
	fmt.Println("  uiuacore version    print the engine version")
	fmt.Println("  uiuacore help       show this message")
}

// buildDemoAssembly lowers one record data definition (a 2D point) via
// datadef.LowerDataDef, then builds a root node that constructs a point
// from two pushed numbers and reads its Y field back, to exercise the
// constructor/getter IR end to end without any parser in front of it.
func buildDemoAssembly() (*assembly.Assembly, ir.Node, error) {
	asm := assembly.New()
	name := "Point"
	def := datadef.DataDef{
		Name: &name,
		Fields: &datadef.DataFields{
			Fields: []datadef.FieldDef{
				{Name: "X"},
				{Name: "Y"},
			},
		},
	}
	res, err := datadef.LowerDataDef(asm, def, true, datadef.BindingPrelude{
		Comment: "a point in the plane",
	}, func(sn ir.SigNode) (ir.SigNode, error) { return sn, nil })
	if err != nil {
		return nil, nil, fmt.Errorf("lower Point: %w", err)
	}

	ctor := asm.Bindings[res.ConstructorIndex].Func
	getY := asm.Bindings[res.FieldGetterIndex["Y"]].Func

	root := ir.Run{
		ir.Push{Value: value.FromNumber(3)},
		ir.Push{Value: value.FromNumber(4)},
		ir.Call{Func: ctor},
		ir.Call{Func: getY},
	}
	return asm, root, nil
}
