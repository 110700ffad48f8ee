// Package render implements the PageRenderer interface.
// It rasterizes the first page of a PDF with MuPDF (go-fitz), after a
// cheap pdfcpu structural preflight so corrupt or empty documents are
// rejected before the heavier raster work.
//
// File input is read into memory and routed through the byte path, so
// both inputs produce bit-identical images and therefore comparable
// fingerprints.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNoPages is returned for structurally valid PDFs with no pages.
var ErrNoPages = errors.New("document has no pages")

// PDFRenderer renders the first page of PDF documents.
type PDFRenderer struct {
	conf *model.Configuration
}

// New creates a PDFRenderer.
func New() *PDFRenderer {
	return &PDFRenderer{conf: model.NewDefaultConfiguration()}
}

// RenderFirstPage validates the document and rasterizes page 1.
func (r *PDFRenderer) RenderFirstPage(pdf []byte) (image.Image, error) {
	if err := r.preflight(pdf); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrNoPages
	}

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rasterizing page 1: %w", err)
	}
	return img, nil
}

// RenderFirstPageFile renders page 1 of a PDF on disk.
func (r *PDFRenderer) RenderFirstPageFile(path string) (image.Image, error) {
	pdf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return r.RenderFirstPage(pdf)
}

// preflight parses and validates the PDF structure without rendering.
func (r *PDFRenderer) preflight(pdf []byte) error {
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), r.conf)
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if ctx.PageCount == 0 {
		return ErrNoPages
	}
	return nil
}
