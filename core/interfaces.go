// Package core defines the contracts between the stages of the tmplscan
// engine. Each external collaborator (object store, page renderer,
// fingerprint extractor) is a clean, testable interface.
package core

import (
	"context"
	"image"
)

// ObjectRef identifies one candidate object in the remote store.
type ObjectRef struct {
	Key  string
	Size int64
}

// ObjectLister pages through object references under a prefix.
// It mirrors the shape of the S3 ListObjectsV2 paginator so the real
// adapter is a thin wrapper and fakes are trivial.
type ObjectLister interface {
	HasMorePages() bool
	NextPage(ctx context.Context) ([]ObjectRef, error)
}

// ObjectStore enumerates and retrieves objects from the remote collection.
// A per-object Get failure is recoverable (the candidate is skipped);
// a listing failure terminates the run.
type ObjectStore interface {
	List(prefix string) ObjectLister
	Get(ctx context.Context, key string) ([]byte, error)
}

// PageRenderer rasterizes the first page of a PDF document.
// Byte input and file input must produce identical images so that
// fingerprints computed during discovery and during bootstrap are
// directly comparable.
type PageRenderer interface {
	RenderFirstPage(pdf []byte) (image.Image, error)
	RenderFirstPageFile(path string) (image.Image, error)
}

// Extractor turns one document into its perceptual fingerprint.
// A render failure (corrupt or empty document) surfaces as an error the
// caller treats as "skip this candidate".
type Extractor interface {
	FromBytes(pdf []byte) (Fingerprint, error)
	FromFile(path string) (Fingerprint, error)
}
