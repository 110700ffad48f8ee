package templateset

import "github.com/gaurav-prasanna/tmplscan/core"

// Oracle applies the fixed near-duplicate decision rule: a candidate is
// a duplicate of the set if its Hamming distance to any accepted
// fingerprint is at or below Threshold.
//
// The scan is linear over the set in insertion order, short-circuiting
// on the first hit. O(set size) per candidate is a deliberate choice:
// the set is capped at the target limit, so an index would buy nothing.
type Oracle struct {
	Threshold int
}

// IsDuplicate reports whether candidate is a near-duplicate of any
// entry already in the set.
func (o Oracle) IsDuplicate(candidate core.Fingerprint, set *Set) bool {
	for _, e := range set.Entries() {
		if candidate.Distance(e.Fingerprint) <= o.Threshold {
			return true
		}
	}
	return false
}

// NearestDistance returns the minimum distance from candidate to the
// set, and false if the set is empty.
func (o Oracle) NearestDistance(candidate core.Fingerprint, set *Set) (int, bool) {
	entries := set.Entries()
	if len(entries) == 0 {
		return 0, false
	}
	min := candidate.Distance(entries[0].Fingerprint)
	for _, e := range entries[1:] {
		if d := candidate.Distance(e.Fingerprint); d < min {
			min = d
		}
	}
	return min, true
}
