// Package mupdf rasterizes PDF pages with MuPDF so scanned documents can be
// passed to an OCR engine page by page.
package mupdf

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"alfredoptarigan/resume-analyzer/internal/ocr"
)

const defaultDPI = 300

// Renderer implements ocr.PageRenderer.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderPages implements ocr.PageRenderer.
func (r *Renderer) RenderPages(ctx context.Context, path string, dpi int) ([]ocr.Page, error) {
	if dpi <= 0 {
		dpi = defaultDPI
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	pages := make([]ocr.Page, 0, doc.NumPage())
	for n := 0; n < doc.NumPage(); n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(n, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", n+1, err)
		}
		pages = append(pages, ocr.Page{Number: n + 1, Image: img})
	}

	return pages, nil
}
