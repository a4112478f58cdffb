package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/ocr"
)

// ErrNoTextExtracted means every extraction path for a file came back empty.
var ErrNoTextExtracted = errors.New("no text could be extracted")

type ExtractionResult struct {
	Text      string
	Method    models.ExtractionMethod
	PageCount int
}

// TextExtractor turns an uploaded file into plain text. On failure it still
// returns a result (with empty text) alongside an error wrapping ErrNoTextExtracted.
type TextExtractor interface {
	Extract(ctx context.Context, filePath string, fileType models.FileType) (*ExtractionResult, error)
}

type textExtractor struct {
	pdfParser    PDFParserService
	docxParser   DocxParserService
	ocrEngine    ocr.Engine
	pageRenderer ocr.PageRenderer
	ocrOptions   ocr.Options
}

// NewTextExtractor builds a TextExtractor. pageRenderer may be nil, in which
// case scanned PDFs are recognized from their embedded images only.
func NewTextExtractor(
	pdfParser PDFParserService,
	docxParser DocxParserService,
	ocrEngine ocr.Engine,
	pageRenderer ocr.PageRenderer,
	ocrOptions ocr.Options,
) TextExtractor {
	return &textExtractor{
		pdfParser:    pdfParser,
		docxParser:   docxParser,
		ocrEngine:    ocrEngine,
		pageRenderer: pageRenderer,
		ocrOptions:   ocrOptions,
	}
}

func (e *textExtractor) Extract(ctx context.Context, filePath string, fileType models.FileType) (*ExtractionResult, error) {
	switch fileType {
	case models.FileTypePDF:
		return e.extractPDF(ctx, filePath)
	case models.FileTypeImage:
		return e.extractImage(ctx, filePath)
	case models.FileTypeDocx:
		return e.extractDocx(filePath)
	default:
		return &ExtractionResult{Method: models.ExtractionNone}, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
}

func (e *textExtractor) extractPDF(ctx context.Context, filePath string) (*ExtractionResult, error) {
	result := &ExtractionResult{Method: models.ExtractionNone}

	content, err := e.pdfParser.ExtractText(filePath)
	if err != nil {
		log.Printf("⚠️  Direct text extraction failed: %v", err)
	} else {
		result.PageCount = content.PageCount
		if content.Text != "" {
			log.Printf("✅ Text extracted directly from %d pages", content.PageCount)
			result.Text = content.Text
			result.Method = models.ExtractionDirect
			return result, nil
		}
	}

	log.Println("⚙️  Falling back to OCR for scanned PDF...")
	text, pages, ocrErr := e.ocrPDF(ctx, filePath, result.PageCount)
	if pages > result.PageCount {
		result.PageCount = pages
	}
	if text == "" {
		if ocrErr == nil {
			ocrErr = err
		}
		log.Printf("❌ OCR extraction failed: %v", ocrErr)
		return result, wrapNoText(ocrErr)
	}

	log.Println("✅ Text extracted using OCR")
	result.Text = text
	result.Method = models.ExtractionOCR
	return result, nil
}

// ocrPDF recognizes every page and joins the results under page markers.
// Embedded page images are tried first. A page they leave empty is rasterized
// and recognized as a whole.
func (e *textExtractor) ocrPDF(ctx context.Context, filePath string, pageCount int) (string, int, error) {
	embedded, lastErr := e.pdfParser.ExtractPageImages(filePath)
	if lastErr != nil {
		log.Printf("⚠️  Embedded image extraction failed: %v", lastErr)
	}

	byPage := make(map[int][]PageImage)
	for _, img := range embedded {
		byPage[img.PageNr] = append(byPage[img.PageNr], img)
		if img.PageNr > pageCount {
			pageCount = img.PageNr
		}
	}

	var (
		rendered  map[int]image.Image
		didRender bool
	)
	render := func() {
		if didRender || e.pageRenderer == nil {
			return
		}
		didRender = true

		pages, err := e.pageRenderer.RenderPages(ctx, filePath, e.ocrOptions.DPI)
		if err != nil {
			log.Printf("⚠️  Page rendering failed: %v", err)
			lastErr = err
			return
		}
		rendered = make(map[int]image.Image, len(pages))
		for _, page := range pages {
			rendered[page.Number] = page.Image
			if page.Number > pageCount {
				pageCount = page.Number
			}
		}
	}

	if pageCount == 0 {
		render()
	}
	if pageCount == 0 {
		if lastErr == nil {
			lastErr = errors.New("no pages to recognize")
		}
		return "", 0, lastErr
	}

	var (
		builder strings.Builder
		hasText bool
	)
	for pageNr := 1; pageNr <= pageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", pageCount, err
		}

		text, err := e.recognizeEmbedded(ctx, byPage[pageNr])
		if err != nil {
			lastErr = err
		}
		if text == "" {
			render()
			if img, ok := rendered[pageNr]; ok {
				id := fmt.Sprintf("page-%d-render", pageNr)
				text, err = ocr.RecognizePage(ctx, e.ocrEngine, id, img, e.ocrOptions)
				if err != nil {
					log.Printf("⚠️  OCR failed for %s: %v", id, err)
					lastErr = err
				}
				text = strings.TrimSpace(text)
			}
		}
		if text != "" {
			hasText = true
		}
		builder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n%s", pageNr, text))
	}

	if !hasText {
		if lastErr == nil {
			lastErr = errors.New("OCR produced no text")
		}
		return "", pageCount, lastErr
	}

	return strings.TrimSpace(builder.String()), pageCount, nil
}

// recognizeEmbedded joins the OCR text of a page's embedded images.
func (e *textExtractor) recognizeEmbedded(ctx context.Context, images []PageImage) (string, error) {
	var (
		parts   []string
		lastErr error
	)
	for _, img := range images {
		id := fmt.Sprintf("page-%d-obj-%d", img.PageNr, img.ObjNr)
		text, err := ocr.RecognizeImage(ctx, e.ocrEngine, id, img.Data, e.ocrOptions)
		if err != nil {
			log.Printf("⚠️  OCR failed for %s (%s): %v", id, img.FileType, err)
			lastErr = err
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n"), lastErr
}

func (e *textExtractor) extractImage(ctx context.Context, filePath string) (*ExtractionResult, error) {
	result := &ExtractionResult{Method: models.ExtractionNone, PageCount: 1}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return result, fmt.Errorf("failed to read image: %w", err)
	}

	text, err := ocr.RecognizeImage(ctx, e.ocrEngine, "image", data, e.ocrOptions)
	if err != nil {
		log.Printf("❌ Image OCR failed: %v", err)
		return result, wrapNoText(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return result, ErrNoTextExtracted
	}

	log.Println("✅ Text extracted from image using OCR")
	result.Text = text
	result.Method = models.ExtractionOCR
	return result, nil
}

func (e *textExtractor) extractDocx(filePath string) (*ExtractionResult, error) {
	result := &ExtractionResult{Method: models.ExtractionNone}

	text, err := e.docxParser.ExtractText(filePath)
	if err != nil {
		log.Printf("❌ DOCX extraction failed: %v", err)
		return result, wrapNoText(err)
	}
	if text == "" {
		return result, ErrNoTextExtracted
	}

	result.Text = text
	result.Method = models.ExtractionDocx
	return result, nil
}

func wrapNoText(cause error) error {
	if cause == nil {
		return ErrNoTextExtracted
	}
	return fmt.Errorf("%w: %w", ErrNoTextExtracted, cause)
}
