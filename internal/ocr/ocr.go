// Package ocr defines the small engine abstraction used to turn resume images
// into text, together with the image preparation applied before recognition.
package ocr

import (
	"context"
	"image"
)

// Input is a single encoded image submitted for recognition.
type Input struct {
	// ID is echoed back in log lines and errors.
	ID string
	// Image holds PNG, JPEG or TIFF bytes.
	Image []byte
	// Languages are Tesseract language codes such as "eng" or "deu".
	Languages []string
	// DPI is the effective resolution of the image; zero means unknown.
	DPI int
}

// Engine recognizes text in an image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (string, error)
}

// Page is one rasterized document page. Number is 1-based.
type Page struct {
	Number int
	Image  image.Image
}

// PageRenderer rasterizes every page of a document at the given resolution.
type PageRenderer interface {
	RenderPages(ctx context.Context, path string, dpi int) ([]Page, error)
}

// Options carries the recognition settings shared by every input.
type Options struct {
	Languages []string
	DPI       int
	// MinWidth is the width below which images are upscaled before recognition.
	MinWidth int
}

func (o Options) input(id string, image []byte) Input {
	return Input{
		ID:        id,
		Image:     image,
		Languages: append([]string(nil), o.Languages...),
		DPI:       o.DPI,
	}
}

// RecognizeImage prepares raw image bytes with Preprocess and runs the engine on
// the result.
func RecognizeImage(ctx context.Context, engine Engine, id string, data []byte, opts Options) (string, error) {
	prepared, err := Preprocess(data, opts.MinWidth)
	if err != nil {
		return "", err
	}

	return engine.Recognize(ctx, opts.input(id, prepared))
}

// RecognizePage runs the engine on an already decoded page image.
func RecognizePage(ctx context.Context, engine Engine, id string, page image.Image, opts Options) (string, error) {
	prepared, err := prepare(page, 1, opts.MinWidth)
	if err != nil {
		return "", err
	}

	return engine.Recognize(ctx, opts.input(id, prepared))
}
