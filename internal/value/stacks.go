package value

import "fmt"

// Growth tuning for the main and under stacks, adapted from the
// teacher's StackManager (internal/vm/vm_stack_manager.go): start small,
// grow geometrically, warn once past a threshold rather than failing —
// Go's append already amortizes this, so Stacks just tracks the
// high-water mark (reported by Stats) and sets an internal warning flag
// once past the threshold; that flag is not exposed to callers.
const (
	stackWarningThreshold = 1 << 18 // 256K entries
)

// Stacks bundles the six ordered sequences one interpreter thread owns,
// per spec.md §3: main, under, fill, unfill, fill-boundary, and (held
// separately by the interp package) call/recur stacks.
type Stacks struct {
	Main  []Value
	Under []Value

	Fill         []Value
	Unfill       []Value
	FillBoundary [][2]int

	maxReached    int
	warningIssued bool
}

// NewStacks returns an empty Stacks ready to run from.
func NewStacks() *Stacks {
	return &Stacks{}
}

// Push appends a value to the main stack.
func (s *Stacks) Push(v Value) {
	s.Main = append(s.Main, v)
	if len(s.Main) > s.maxReached {
		s.maxReached = len(s.Main)
	}
	if len(s.Main) > stackWarningThreshold && !s.warningIssued {
		s.warningIssued = true
	}
}

// PushAll appends several values in order.
func (s *Stacks) PushAll(vs []Value) {
	for _, v := range vs {
		s.Push(v)
	}
}

// Height is the current main-stack depth.
func (s *Stacks) Height() int {
	return len(s.Main)
}

// UnderHeight is the current under-stack depth.
func (s *Stacks) UnderHeight() int {
	return len(s.Under)
}

// RequireHeight errors with the standard underflow message unless the
// main stack holds at least n values, otherwise returning the index at
// which the n values start.
func (s *Stacks) RequireHeight(n int) (int, error) {
	if len(s.Main) < n {
		return 0, fmt.Errorf("Stack was empty when getting argument %d", len(s.Main)+1)
	}
	return len(s.Main) - n, nil
}

// Pop removes and returns the top value, or an underflow error naming
// arg.
func (s *Stacks) Pop(arg string) (Value, error) {
	if len(s.Main) == 0 {
		return nil, fmt.Errorf("Stack was empty when evaluating %s", arg)
	}
	v := s.Main[len(s.Main)-1]
	s.Main = s.Main[:len(s.Main)-1]
	return v, nil
}

// Top returns the main stack's top value without removing it, or an
// underflow error naming arg.
func (s *Stacks) Top(arg string) (Value, error) {
	if len(s.Main) == 0 {
		return nil, fmt.Errorf("Stack was empty when evaluating %s", arg)
	}
	return s.Main[len(s.Main)-1], nil
}

// PopN removes and returns the top n values, bottom of the popped
// segment first (the order they were pushed in).
func (s *Stacks) PopN(n int) ([]Value, error) {
	start, err := s.RequireHeight(n)
	if err != nil {
		return nil, err
	}
	out := append([]Value(nil), s.Main[start:]...)
	s.Main = s.Main[:start]
	return out, nil
}

// CopyN returns the top n values without removing them, in push order.
func (s *Stacks) CopyN(n int) ([]Value, error) {
	start, err := s.RequireHeight(n)
	if err != nil {
		return nil, err
	}
	return append([]Value(nil), s.Main[start:]...), nil
}

// TakeN is PopN's name in the original (Uiua::take_n); kept as an alias
// so call sites read the way spec.md §4.B names it.
func (s *Stacks) TakeN(n int) ([]Value, error) {
	return s.PopN(n)
}

// Truncate drops the main stack back to height, returning what was cut.
func (s *Stacks) Truncate(height int) []Value {
	if height > len(s.Main) {
		height = len(s.Main)
	}
	cut := append([]Value(nil), s.Main[height:]...)
	s.Main = s.Main[:height]
	return cut
}

// TruncateUnder drops the under stack back to height.
func (s *Stacks) TruncateUnder(height int) {
	if height > len(s.Under) {
		height = len(s.Under)
	}
	s.Under = s.Under[:height]
}

// DupValues copies the n values that start depth places from the top
// and places the copies directly beneath those top depth values (on top
// when n == depth), preserving relative order — depth must be >= n.
func (s *Stacks) DupValues(n, depth int) error {
	start, err := s.RequireHeight(depth)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		s.Main = append(s.Main, s.Main[start+i])
	}
	if n != depth {
		rotateRight(s.Main[start:], n)
	}
	return nil
}

// RotateUp rotates the top `depth` values right by n (the value n from
// the top moves to the top).
func (s *Stacks) RotateUp(n, depth int) error {
	start, err := s.RequireHeight(depth)
	if err != nil {
		return err
	}
	rotateRight(s.Main[start:], n)
	return nil
}

// RotateDown rotates the top `depth` values left by n.
func (s *Stacks) RotateDown(n, depth int) error {
	start, err := s.RequireHeight(depth)
	if err != nil {
		return err
	}
	rotateLeft(s.Main[start:], n)
	return nil
}

// PrepareFork returns the arguments for the f-branch of a fork whose
// g-branch takes g_args values, per spec.md §4.B. When f takes more
// arguments than g, the extra ones are drained (not copied) from below
// g's share so that g's eventual pop sees only its own arguments.
func (s *Stacks) PrepareFork(fArgs, gArgs int) ([]Value, error) {
	if fArgs > gArgs {
		if _, err := s.RequireHeight(fArgs); err != nil {
			return nil, err
		}
		n := len(s.Main)
		vals := append([]Value(nil), s.Main[n-fArgs:n-gArgs]...)
		vals = append(vals, s.Main[n-gArgs:]...)
		s.Main = append(s.Main[:n-fArgs], s.Main[n-gArgs:]...)
		return vals, nil
	}
	return s.CopyN(fArgs)
}

// PushUnder drains the top n values from main into under, reversed.
func (s *Stacks) PushUnder(n int) error {
	start, err := s.RequireHeight(n)
	if err != nil {
		return err
	}
	segment := s.Main[start:]
	for i := len(segment) - 1; i >= 0; i-- {
		s.Under = append(s.Under, segment[i])
	}
	s.Main = s.Main[:start]
	return nil
}

// CopyToUnder copies (without removing) the top n values to under,
// reversed.
func (s *Stacks) CopyToUnder(n int) error {
	start, err := s.RequireHeight(n)
	if err != nil {
		return err
	}
	segment := s.Main[start:]
	for i := len(segment) - 1; i >= 0; i-- {
		s.Under = append(s.Under, segment[i])
	}
	return nil
}

// PopUnder moves the top n values from under back onto main, reversed.
func (s *Stacks) PopUnder(n int) error {
	if s.UnderHeight() < n {
		return fmt.Errorf("Stack was empty when getting context value")
	}
	start := len(s.Under) - n
	segment := s.Under[start:]
	for i := len(segment) - 1; i >= 0; i-- {
		s.Main = append(s.Main, segment[i])
	}
	s.Under = s.Under[:start]
	return nil
}

func rotateRight(s []Value, n int) {
	if len(s) == 0 {
		return
	}
	n = ((n % len(s)) + len(s)) % len(s)
	reverse(s)
	reverse(s[:n])
	reverse(s[n:])
}

func rotateLeft(s []Value, n int) {
	if len(s) == 0 {
		return
	}
	n = ((n % len(s)) + len(s)) % len(s)
	rotateRight(s, len(s)-n)
}

func reverse(s []Value) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Stats reports stack usage, mirroring the teacher's StackManager.Stats
// profiling hook.
func (s *Stacks) Stats() map[string]int {
	return map[string]int{
		"current":    len(s.Main),
		"under":      len(s.Under),
		"maxReached": s.maxReached,
	}
}
