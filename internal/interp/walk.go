package interp

import "uiuacore/internal/ir"

// countPrimOccurrences walks node counting Prim/ImplPrim leaves whose
// primitive name equals name, used by Run to know how many
// test-assertion call sites exist in the compiled tree so it can report
// "not run" tests (ones present in the tree but never reached) distinct
// from ones that ran and failed.
func countPrimOccurrences(node ir.Node, name string) int {
	switch n := node.(type) {
	case nil:
		return 0
	case ir.Run:
		total := 0
		for _, sub := range n {
			total += countPrimOccurrences(sub, name)
		}
		return total
	case ir.Prim:
		if n.Prim != nil && n.Prim.Name() == name {
			return 1
		}
		return 0
	case ir.ImplPrimNode:
		if n.Prim != nil && n.Prim.Name() == name {
			return 1
		}
		return 0
	case ir.Mod:
		total := 0
		for _, sa := range n.SigArgs {
			total += countPrimOccurrences(sa.Node, name)
		}
		return total
	case ir.ImplMod:
		total := 0
		for _, sa := range n.SigArgs {
			total += countPrimOccurrences(sa.Node, name)
		}
		return total
	case ir.Array:
		return countPrimOccurrences(n.Inner, name)
	case ir.CustomInverse:
		total := countPrimOccurrences(n.Normal.Node, name)
		if n.Un != nil {
			total += countPrimOccurrences(n.Un.Node, name)
		}
		if n.Under != nil {
			total += countPrimOccurrences(n.Under[0].Node, name)
			total += countPrimOccurrences(n.Under[1].Node, name)
		}
		return total
	case ir.Switch:
		total := 0
		for _, b := range n.Branches {
			total += countPrimOccurrences(b.Node, name)
		}
		return total
	case ir.NoInline:
		return countPrimOccurrences(n.Inner, name)
	case ir.TrackCaller:
		return countPrimOccurrences(n.Inner, name)
	case ir.WithLocal:
		return countPrimOccurrences(n.Inner, name)
	default:
		return 0
	}
}
