package services

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	docxBreakPattern = regexp.MustCompile(`<w:(?:br|cr)\b[^>]*/>`)
	docxTabPattern   = regexp.MustCompile(`<w:tab\b[^>]*/>`)
	docxTagPattern   = regexp.MustCompile(`<[^>]+>`)
	docxSpacePattern = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
)

type DocxParserService interface {
	ExtractText(filePath string) (string, error)
}

type docxParserService struct{}

func NewDocxParserService() DocxParserService {
	return &docxParserService{}
}

func (d *docxParserService) ExtractText(filePath string) (string, error) {
	doc, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return DocxXMLToText(doc.Editable().GetContent()), nil
}

// DocxXMLToText flattens WordprocessingML into plain text, one paragraph per line.
func DocxXMLToText(xml string) string {
	xml = strings.ReplaceAll(xml, "</w:p>", "\n")
	xml = docxBreakPattern.ReplaceAllString(xml, "\n")
	xml = docxTabPattern.ReplaceAllString(xml, " ")

	text := docxTagPattern.ReplaceAllString(xml, "")
	text = html.UnescapeString(text)
	text = docxSpacePattern.ReplaceAllString(text, " ")

	return CleanText(text)
}
