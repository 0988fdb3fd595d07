// Package backend defines the SysBackend capability contract (§6) and
// the handful of concrete backends this engine ships: a no-capability
// SafeBackend, a NativeBackend offering the clock/TTY/thread-spawn
// capabilities, and a CapabilityBackend layering opt-in syscalls (SQL
// store, websocket dial, content hash) on top of NativeBackend. Lexing,
// parsing, and the primitive library that would actually issue most
// syscalls are out of scope; this package only gives the abstract
// contract a real body to exercise.
package backend

import (
	"sync"
	"time"
)

// SysBackend is the capability interface a running interpreter consults
// for anything that isn't pure array computation: the wall clock,
// whether thread spawning is permitted, and arbitrary named syscalls.
type SysBackend interface {
	// Now returns the current time in fractional seconds, the way the
	// original's `now() -> f64` does — used for execution-limit
	// accounting and the ScanLine clock-pause.
	Now() float64
	// AllowThreadSpawning reports whether the thread subsystem may spawn
	// real OS threads (or a worker-pool task) at all.
	AllowThreadSpawning() bool
	// Syscall dispatches an opaque, named host capability. Most
	// syscalls (the actual array-primitive I/O surface) are out of
	// scope; this is the generic seam CapabilityBackend's concrete
	// syscalls are registered under.
	Syscall(id SyscallID, args []any) (any, error)
}

// SyscallID names a backend capability reachable through Syscall.
type SyscallID int

const (
	// SyscallNone is never issued; it is the zero value.
	SyscallNone SyscallID = iota
	// SyscallOpenStore opens a SQL handle. args: [driver string, dsn string].
	SyscallOpenStore
	// SyscallOpenSocket dials a websocket. args: [url string].
	SyscallOpenSocket
	// SyscallHash returns a content hash of args[0].([]byte).
	SyscallHash
)

// SafeBackend permits nothing beyond the clock: no thread spawning, no
// syscalls, mirroring Uiua::with_safe_sys. interp.New always takes an
// explicit backend; callers pass a SafeBackend when they want no I/O
// capabilities.
type SafeBackend struct {
	start time.Time
}

// NewSafeBackend returns a SafeBackend whose clock starts now.
func NewSafeBackend() *SafeBackend {
	return &SafeBackend{start: time.Now()}
}

func (b *SafeBackend) Now() float64 {
	return time.Since(b.start).Seconds()
}

func (b *SafeBackend) AllowThreadSpawning() bool { return false }

func (b *SafeBackend) Syscall(id SyscallID, args []any) (any, error) {
	return nil, errNotPermitted(id)
}

func errNotPermitted(id SyscallID) error {
	return &backendError{msg: "syscall not permitted by this backend"}
}

type backendError struct{ msg string }

func (e *backendError) Error() string { return e.msg }

// NativeBackend permits thread spawning and reports TTY status, but no
// further syscalls — the middle tier between SafeBackend and
// CapabilityBackend, and the backend cmd/uiuacore uses by default.
type NativeBackend struct {
	start time.Time
	mu    sync.Mutex
}

// NewNativeBackend returns a NativeBackend whose clock starts now.
func NewNativeBackend() *NativeBackend {
	return &NativeBackend{start: time.Now()}
}

func (b *NativeBackend) Now() float64 {
	return time.Since(b.start).Seconds()
}

func (b *NativeBackend) AllowThreadSpawning() bool { return true }

func (b *NativeBackend) Syscall(id SyscallID, args []any) (any, error) {
	return nil, errNotPermitted(id)
}
