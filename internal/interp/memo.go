package interp

import (
	"reflect"
	"sync"

	"uiuacore/internal/ir"
	"uiuacore/internal/value"
)

// memoTable is the per-thread-shared, reference-counted memo cell
// spec.md §9 calls for: "a per-thread cell keyed by (node_identity,
// arg_values) — must use structural equality of Node and Value." A
// linear scan under reflect.DeepEqual is the most direct way to get
// genuine structural equality out of Go's type system without
// hand-rolling a second, weaker equality check; it is shared by pointer
// across a spawned thread's clone (protecting it with its own mutex)
// rather than copied, matching "reference-counted memo map."
type memoTable struct {
	mu      sync.Mutex
	entries []memoEntry
}

type memoEntry struct {
	node   ir.Node
	args   []value.Value
	result []value.Value
}

func newMemoTable() *memoTable {
	return &memoTable{}
}

func (m *memoTable) lookup(node ir.Node, args []value.Value) ([]value.Value, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if reflect.DeepEqual(e.node, node) && reflect.DeepEqual(e.args, args) {
			return e.result, true
		}
	}
	return nil, false
}

func (m *memoTable) store(node ir.Node, args, result []value.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, memoEntry{node: node, args: args, result: result})
}

// Memoize returns a cached result for (node, args) if one exists,
// otherwise runs compute and caches its result. The primitive library
// that would actually drive this (a memoizing combinator) is out of
// scope; this is the seam it would call through.
func (in *Interp) Memoize(node ir.Node, args []value.Value, compute func() ([]value.Value, error)) ([]value.Value, error) {
	if cached, ok := in.memo.lookup(node, args); ok {
		return cached, nil
	}
	result, err := compute()
	if err != nil {
		return nil, err
	}
	in.memo.store(node, args, result)
	return result, nil
}
