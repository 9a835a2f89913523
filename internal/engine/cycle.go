package engine

import "github.com/roach88/ahghee/internal/ir"

// visitSet tracks the nodes a traversal has already reached, so cyclic
// graphs terminate and each node is emitted at most once per source.
//
// Keys are ir.NodeKey: two references that differ only in Remote or
// Pointer are the same node.
//
// Not safe for concurrent use; each traversal owns its own set.
type visitSet struct {
	seen  map[ir.NodeKey]struct{}
	order []ir.NodeKey
}

func newVisitSet() *visitSet {
	return &visitSet{seen: make(map[ir.NodeKey]struct{})}
}

// Visit records key and reports whether it was new.
func (v *visitSet) Visit(key ir.NodeKey) bool {
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	v.order = append(v.order, key)
	return true
}

// Seen reports whether key has been visited.
func (v *visitSet) Seen(key ir.NodeKey) bool {
	_, ok := v.seen[key]
	return ok
}

// Len returns the number of visited nodes.
func (v *visitSet) Len() int {
	return len(v.order)
}
