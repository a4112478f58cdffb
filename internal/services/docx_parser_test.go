package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDocx writes a minimal .docx package whose body is the given WordprocessingML.
func writeDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body +
			`</w:body></w:document>`,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return path
}

func TestDocxParser_ExtractText(t *testing.T) {
	path := writeDocx(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Senior Go Engineer</w:t><w:br w:type="page"/><w:t>Berlin</w:t></w:r></w:p>`)

	text, err := NewDocxParserService().ExtractText(path)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Go Engineer\nBerlin", text)
}

func TestDocxParser_RejectsNonDocx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := NewDocxParserService().ExtractText(path)

	assert.Error(t, err)
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:document><w:body>` +
		`<w:p><w:r><w:t>Jane   Doe</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go &amp; SQL</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	assert.Equal(t, "Jane Doe\nSkills: Go & SQL\nLine one\nLine two", DocxXMLToText(xml))
}

func TestDocxXMLToText_BreakVariants(t *testing.T) {
	xml := `<w:p><w:r>` +
		`<w:t>Page one</w:t><w:br w:type="page"/>` +
		`<w:t>Page two</w:t><w:cr/>` +
		`<w:t>Column</w:t><w:br w:type="column" w:clear="all"/>` +
		`<w:t>Name</w:t><w:tab w:val="left"/><w:t>Jane</w:t>` +
		`</w:r></w:p>`

	assert.Equal(t, "Page one\nPage two\nColumn\nName Jane", DocxXMLToText(xml))
}

func TestDocxXMLToText_Empty(t *testing.T) {
	assert.Empty(t, DocxXMLToText(`<w:document><w:body><w:p></w:p></w:body></w:document>`))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a\nb", CleanText("  \n a \n\n\t\n b  \n"))
	assert.Empty(t, CleanText(" \n "))
}
