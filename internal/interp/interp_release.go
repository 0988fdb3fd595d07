//go:build !debug

package interp

import (
	"fmt"
	"os"
	"strconv"

	"uiuacore/internal/enginerr"
	"uiuacore/internal/ir"
)

// defaultRecursionLimit is 100 in a release build, overridable by the
// UIUA_RECURSION_LIMIT environment variable — matches the original's
// cfg!(debug_assertions) split, env override applying only on this
// (release) side.
func defaultRecursionLimit() int {
	if v := os.Getenv("UIUA_RECURSION_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 100
}

// checkSignatureDrift raises a runtime error at span rather than
// panicking, the release half of the original's debug_assertions-gated
// fatal check.
func checkSignatureDrift(sig ir.Signature, preHeight, postHeight int, span ir.Span) error {
	delta := postHeight - preHeight
	if delta != sig.Delta() {
		return enginerr.NewRunError(span, fmt.Sprintf(
			"Function modified the stack by %d values, but its signature of (%d,%d) implies a change of %d",
			delta, sig.Args, sig.Outputs, sig.Delta()))
	}
	return nil
}
