package value

import "github.com/dustin/go-humanize"

// maxArrayBytes bounds how large an Array node's constructed value may
// be, mirroring the original's validate_size_impl guard against
// runaway allocation from a malformed or adversarial array literal.
const maxArrayBytes = 1 << 32 // 4 GiB

// ValidateSize checks that elemSize*elemCount doesn't exceed the
// engine's array size ceiling, producing a humanized byte-count message
// the way a CLI tool reports "out of memory" style errors to a user.
func ValidateSize(elemSize, elemCount int) error {
	total := uint64(elemSize) * uint64(elemCount)
	if total > maxArrayBytes {
		return sizeError{total: total}
	}
	return nil
}

type sizeError struct{ total uint64 }

func (e sizeError) Error() string {
	return "array of " + humanize.Bytes(e.total) + " would exceed the maximum array size of " + humanize.Bytes(maxArrayBytes)
}
