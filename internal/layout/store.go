package layout

import "github.com/axon-ml/axon/internal/expr"

// store is the per-invocation annotation store: an identity-keyed map from
// graph node to its current layout annotation, with change tracking.
//
// Each entry records the round stamp at which it was last visited or
// assigned. An entry stamped before the store's current round is stale and
// must be re-derived; this is what forces re-evaluation after a fixed-point
// round. Entries are never removed during a traversal.
type store struct {
	entries  map[expr.Node]*entry
	now      uint64
	modified bool
}

type entry struct {
	layout expr.ValueLayout
	ts     uint64
}

func newStore() *store {
	return &store{entries: make(map[expr.Node]*entry), now: 1}
}

// get returns the node's annotation, creating and recording the default
// annotation (undefined layouts shaped by the node's output count) on
// first access. The fresh entry is stamped stale so the node is still
// visited in the current round.
func (s *store) get(n expr.Node) expr.ValueLayout {
	if e, ok := s.entries[n]; ok {
		return e.layout
	}
	l := expr.DefaultLayout(n)
	s.entries[n] = &entry{layout: l, ts: 0}
	return l
}

// set overwrites the node's annotation. When the new value differs from
// the prior one (value comparison, not identity) the modified flag is
// raised and the node is stamped with the current round.
func (s *store) set(n expr.Node, l expr.ValueLayout) {
	e, ok := s.entries[n]
	if !ok {
		s.entries[n] = &entry{layout: l, ts: s.now}
		s.modified = true
		return
	}
	if e.layout.Equal(l) {
		return
	}
	e.layout = l
	e.ts = s.now
	s.modified = true
}

// touch stamps the node with the current round without changing its
// annotation, marking it freshly derived.
func (s *store) touch(n expr.Node) {
	if e, ok := s.entries[n]; ok {
		e.ts = s.now
		return
	}
	s.entries[n] = &entry{layout: expr.DefaultLayout(n), ts: s.now}
}

// stale reports whether the node must be re-derived: it has never been
// visited, or its stamp is behind the current round.
func (s *store) stale(n expr.Node) bool {
	e, ok := s.entries[n]
	return !ok || e.ts < s.now
}

// advance begins a new round: every existing entry becomes stale.
func (s *store) advance() { s.now++ }
