//go:build debug

package interp

import (
	"fmt"

	"uiuacore/internal/ir"
)

// defaultRecursionLimit is 20 under the debug build tag, matching the
// original's lower cfg!(debug_assertions) default — cheap stack depth
// for catching runaway recursion quickly during development.
func defaultRecursionLimit() int {
	return 20
}

// checkSignatureDrift panics on drift in a debug build, matching the
// original's debug_assert!: invaluable for IR soundness testing, not
// something a release build should pay for.
func checkSignatureDrift(sig ir.Signature, preHeight, postHeight int, span ir.Span) error {
	delta := postHeight - preHeight
	if delta != sig.Delta() {
		panic(fmt.Sprintf(
			"Function modified the stack by %d values, but its signature of (%d,%d) implies a change of %d (at %s)",
			delta, sig.Args, sig.Outputs, sig.Delta(), span))
	}
	return nil
}
