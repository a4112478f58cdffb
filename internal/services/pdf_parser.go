package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

type PDFParserService interface {
	// ExtractText reads the embedded text layer. An image-only PDF yields empty text and no error.
	ExtractText(filePath string) (*PDFContent, error)
	// ExtractPageImages returns the raster images embedded in each page, in page order.
	ExtractPageImages(filePath string) ([]PageImage, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FilePath  string
}

type PageImage struct {
	PageNr   int
	ObjNr    int
	FileType string
	Data     []byte
}

type pdfParserService struct {
	conf *model.Configuration
}

var disableConfigDir sync.Once

func NewPDFParserService() PDFParserService {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &pdfParserService{conf: conf}
}

func (p *pdfParserService) ExtractText(filePath string) (content *PDFContent, err error) {
	if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("⚠️  Skipping unreadable page %d of %s: %v", pageIndex, filePath, err)
			continue
		}
		if text == "" {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return &PDFContent{
		Text:      strings.TrimSpace(textBuilder.String()),
		PageCount: totalPage,
		FilePath:  filePath,
	}, nil
}

func (p *pdfParserService) ExtractPageImages(filePath string) ([]PageImage, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pages, err := api.ExtractImagesRaw(f, nil, p.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page images: %w", err)
	}

	var images []PageImage
	for _, pageImages := range pages {
		for _, img := range pageImages {
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("failed to read image %s on page %d: %w", img.Name, img.PageNr, err)
			}
			if len(data) == 0 {
				continue
			}
			images = append(images, PageImage{
				PageNr:   img.PageNr,
				ObjNr:    img.ObjNr,
				FileType: img.FileType,
				Data:     data,
			})
		}
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].PageNr != images[j].PageNr {
			return images[i].PageNr < images[j].PageNr
		}
		return images[i].ObjNr < images[j].ObjNr
	})

	return images, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleanedLines := lines[:0]

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
