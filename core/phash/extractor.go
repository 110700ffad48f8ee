// Package phash implements the Extractor interface.
// It renders the first page of a PDF and reduces it to a perceptual
// fingerprint. The rendered image is discarded immediately after hashing,
// so memory use is bounded to one page per call.
package phash

import (
	"fmt"

	"github.com/gaurav-prasanna/tmplscan/core"
)

// Extractor fingerprints PDF documents via a PageRenderer.
type Extractor struct {
	renderer core.PageRenderer
}

// New creates an Extractor backed by the given renderer.
func New(renderer core.PageRenderer) *Extractor {
	return &Extractor{renderer: renderer}
}

// FromBytes fingerprints an in-memory PDF (the discovery path).
func (e *Extractor) FromBytes(pdf []byte) (core.Fingerprint, error) {
	img, err := e.renderer.RenderFirstPage(pdf)
	if err != nil {
		return core.Fingerprint{}, fmt.Errorf("rendering first page: %w", err)
	}
	return core.FingerprintImage(img)
}

// FromFile fingerprints a PDF on disk (the bootstrap path).
func (e *Extractor) FromFile(path string) (core.Fingerprint, error) {
	img, err := e.renderer.RenderFirstPageFile(path)
	if err != nil {
		return core.Fingerprint{}, fmt.Errorf("rendering first page of %s: %w", path, err)
	}
	return core.FingerprintImage(img)
}
