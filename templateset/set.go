// Package templateset maintains the working set of accepted template
// fingerprints: the append-only Set, the similarity Oracle that decides
// near-duplication, and the bootstrap loader that reconstructs the set
// from the backing directory on resume.
package templateset

import "github.com/gaurav-prasanna/tmplscan/core"

// Entry pairs one fingerprint with the filename of its backing document.
// Created exactly once, never mutated.
type Entry struct {
	Filename    string
	Fingerprint core.Fingerprint
}

// Set is the bounded, append-only working set of accepted templates.
// It has a single writer (the discovery driver), so no locking is needed.
type Set struct {
	capacity int
	entries  []Entry
}

// NewSet creates an empty Set with the given target capacity.
func NewSet(capacity int) *Set {
	return &Set{capacity: capacity}
}

// Accept appends an entry unconditionally. Callers must have confirmed
// non-duplication via the Oracle first; the set does not re-check.
func (s *Set) Accept(e Entry) {
	s.entries = append(s.entries, e)
}

// Size returns the number of accepted templates.
func (s *Set) Size() int {
	return len(s.entries)
}

// Capacity returns the target limit.
func (s *Set) Capacity() int {
	return s.capacity
}

// IsFull reports whether the target limit has been reached.
func (s *Set) IsFull() bool {
	return len(s.entries) >= s.capacity
}

// Entries returns the accepted entries in insertion order.
// The returned slice is shared; callers must not mutate it.
func (s *Set) Entries() []Entry {
	return s.entries
}
