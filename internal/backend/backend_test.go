package backend

import "testing"

func TestSafeBackendDeniesThreadsAndSyscalls(t *testing.T) {
	b := NewSafeBackend()
	if b.AllowThreadSpawning() {
		t.Fatal("SafeBackend.AllowThreadSpawning() = true, want false")
	}
	if _, err := b.Syscall(SyscallHash, []any{[]byte("x")}); err == nil {
		t.Fatal("SafeBackend.Syscall should deny every syscall")
	}
}

func TestSafeBackendClockAdvances(t *testing.T) {
	b := NewSafeBackend()
	first := b.Now()
	second := b.Now()
	if second < first {
		t.Fatalf("Now() went backwards: %v then %v", first, second)
	}
}

func TestNativeBackendAllowsThreadsButNotSyscalls(t *testing.T) {
	b := NewNativeBackend()
	if !b.AllowThreadSpawning() {
		t.Fatal("NativeBackend.AllowThreadSpawning() = false, want true")
	}
	if _, err := b.Syscall(SyscallOpenStore, []any{"sqlite", ":memory:"}); err == nil {
		t.Fatal("NativeBackend.Syscall should deny capability syscalls it doesn't implement")
	}
}

func TestCapabilityBackendHash(t *testing.T) {
	b := NewCapabilityBackend()
	out, err := b.Syscall(SyscallHash, []any{[]byte("hello")})
	if err != nil {
		t.Fatalf("Syscall(SyscallHash): %v", err)
	}
	sum, ok := out.([]byte)
	if !ok || len(sum) != 32 {
		t.Fatalf("hash result = %+v, want a 32-byte digest", out)
	}
}

func TestCapabilityBackendOpenStoreAndClose(t *testing.T) {
	b := NewCapabilityBackend()
	out, err := b.Syscall(SyscallOpenStore, []any{"sqlite", ":memory:"})
	if err != nil {
		t.Fatalf("Syscall(SyscallOpenStore): %v", err)
	}
	id, ok := out.(string)
	if !ok || id == "" {
		t.Fatalf("store id = %+v, want a non-empty string", out)
	}
	if err := b.CloseStore(id); err != nil {
		t.Fatalf("CloseStore: %v", err)
	}
	if err := b.CloseStore(id); err == nil {
		t.Fatal("expected an error closing an already-closed store id")
	}
}

func TestCapabilityBackendFallsThroughToNative(t *testing.T) {
	b := NewCapabilityBackend()
	if !b.AllowThreadSpawning() {
		t.Fatal("CapabilityBackend should inherit NativeBackend's thread-spawning permission")
	}
}
