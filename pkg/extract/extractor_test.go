package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"edushelf-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestSupported(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".pdf", true},
		{"PDF", true},
		{".Docx", true},
		{"txt", true},
		{".exe", false},
		{"", false},
		{".doc", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, Supported(tt.ext))
		})
	}
}

func TestExtractTXT(t *testing.T) {
	e := NewFileExtractor()

	pages, err := e.ExtractPages(strings.NewReader("Hello.\nWorld."), ".TXT")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "Hello.\nWorld.", pages[0].Text)
}

func TestExtractTXTDropsInvalidUTF8(t *testing.T) {
	e := NewFileExtractor()

	text, err := e.ExtractText(bytes.NewReader([]byte{'o', 'k', 0xff, '!'}), "txt")
	require.NoError(t, err)
	assert.Equal(t, "ok!", text)
}

func TestExtractDOCX(t *testing.T) {
	e := NewFileExtractor()
	doc := buildDOCX(t,
		`<w:p><w:r><w:t>Newton's first law.</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Objects </w:t></w:r><w:r><w:t>stay at rest.</w:t></w:r></w:p>`)

	text, err := e.ExtractText(bytes.NewReader(doc), ".docx")
	require.NoError(t, err)
	assert.Equal(t, "Newton's first law.\nObjects stay at rest.", text)
}

func TestExtractDOCXWithoutDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = NewFileExtractor().ExtractPages(bytes.NewReader(buf.Bytes()), ".docx")
	assert.Equal(t, apperror.KindParse, apperror.KindOf(err))
}

func TestExtractUnsupported(t *testing.T) {
	_, err := NewFileExtractor().ExtractPages(strings.NewReader("x"), ".exe")
	assert.ErrorIs(t, err, apperror.ErrUnsupportedFileType)
}

func TestExtractCorruptPDF(t *testing.T) {
	_, err := NewFileExtractor().ExtractPages(strings.NewReader("not a pdf"), ".pdf")
	assert.Equal(t, apperror.KindParse, apperror.KindOf(err))
}
