// Package core — the Fingerprint type.
// A fingerprint is the 64-bit perceptual hash of a rendered page.
// Two fingerprints are compared by Hamming distance; visually similar
// pages land within a small bit distance of each other.
package core

import (
	"fmt"
	"image"

	"github.com/corona10/goimagehash"
)

// hashBits is the fixed fingerprint width. Held constant across the
// discovery and bootstrap paths so all fingerprints are comparable.
const hashBits = 64

// Fingerprint wraps a perceptual hash. Immutable once computed.
type Fingerprint struct {
	hash *goimagehash.ImageHash
}

// FingerprintImage computes the perceptual hash of a rendered page.
func FingerprintImage(img image.Image) (Fingerprint, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("computing perceptual hash: %w", err)
	}
	return Fingerprint{hash: h}, nil
}

// FingerprintFromBits builds a fingerprint from raw hash bits.
// Used by tests to construct fingerprints at known distances.
func FingerprintFromBits(bits uint64) Fingerprint {
	return Fingerprint{hash: goimagehash.NewImageHash(bits, goimagehash.PHash)}
}

// Distance returns the Hamming distance to another fingerprint.
// All computed fingerprints share one kind and width, so the degenerate
// cases (a zero-value operand, a kind mismatch) map to the maximum
// possible distance plus one rather than ever comparing equal.
func (f Fingerprint) Distance(other Fingerprint) int {
	if f.hash == nil || other.hash == nil {
		return hashBits + 1
	}
	d, err := f.hash.Distance(other.hash)
	if err != nil {
		return hashBits + 1
	}
	return d
}

// IsZero reports whether the fingerprint was never computed.
func (f Fingerprint) IsZero() bool {
	return f.hash == nil
}

// String renders the hash as fixed-width hex.
func (f Fingerprint) String() string {
	if f.hash == nil {
		return ""
	}
	return fmt.Sprintf("%016x", f.hash.GetHash())
}
