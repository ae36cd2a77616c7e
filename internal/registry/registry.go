// Package registry tracks which stories have already been dispatched for
// processing so the poll loop never reprocesses one.
package registry

// Seen is a set of story IDs believed already dispatched or completed.
//
// It is intentionally unsynchronized: the poll loop is its single writer
// and only reader. It is passed to the poller explicitly rather than held
// as package state, and entries are never removed for the lifetime of the
// process. There is no persistence across restarts; a restart reprocesses
// the currently listed stories, which is acceptable because downloads
// overwrite idempotently.
type Seen struct {
	ids map[int64]struct{}
}

// NewSeen creates an empty registry.
func NewSeen() *Seen {
	return &Seen{ids: make(map[int64]struct{})}
}

// Has reports whether the story ID was already marked seen.
func (s *Seen) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// MarkSeen records a story ID. Marking an already-seen ID is a no-op.
func (s *Seen) MarkSeen(id int64) {
	s.ids[id] = struct{}{}
}

// Len returns the number of stories seen so far.
func (s *Seen) Len() int {
	return len(s.ids)
}
