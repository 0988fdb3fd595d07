package backend

import (
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether stdin is a terminal. The dispatcher does
// not consult it: it pauses the execution clock around the terminal-read
// primitive (ScanLine) whether or not stdin is a terminal.
func (b *NativeBackend) IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// NewCorrelationID mints a UUID string for diagnostics, matching the
// teacher's string-keyed Job/Worker ids (internal/concurrency.Job.ID)
// but using a real UUID rather than an incrementing counter so ids stay
// unique across a process's lifetime. Nothing else in this module calls
// it; spawned threads are identified by their integer ids.
func (b *NativeBackend) NewCorrelationID() string {
	return uuid.NewString()
}
