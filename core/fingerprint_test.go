package core

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xdeadbeefcafef00d, 0xdeadbeefcafef00d, 0},
		{"one bit", 0x0, 0x1, 1},
		{"eight bits", 0x0, 0xff, 8},
		{"all bits", 0x0, 0xffffffffffffffff, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := FingerprintFromBits(tt.a)
			b := FingerprintFromBits(tt.b)
			assert.Equal(t, tt.want, a.Distance(b))
			assert.Equal(t, tt.want, b.Distance(a), "distance must be symmetric")
		})
	}
}

func TestFingerprintImageDeterministic(t *testing.T) {
	img := checkerboard(128, 16)

	a, err := FingerprintImage(img)
	require.NoError(t, err)
	b, err := FingerprintImage(img)
	require.NoError(t, err)

	assert.Equal(t, 0, a.Distance(b))
	assert.Equal(t, a.String(), b.String())
}

func TestFingerprintZeroAndString(t *testing.T) {
	var zero Fingerprint
	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())

	fp := FingerprintFromBits(0xab)
	assert.False(t, fp.IsZero())
	assert.Equal(t, "00000000000000ab", fp.String())
}

func TestFingerprintDistanceZeroValueOperand(t *testing.T) {
	// A never-computed fingerprint must compare as maximally distant,
	// not panic or match anything.
	var zero Fingerprint
	fp := FingerprintFromBits(0xab)

	assert.Equal(t, hashBits+1, zero.Distance(fp))
	assert.Equal(t, hashBits+1, fp.Distance(zero))
	assert.Equal(t, hashBits+1, zero.Distance(zero))
}

// checkerboard builds a deterministic grayscale test image.
func checkerboard(size, cell int) image.Image {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
