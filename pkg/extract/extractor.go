package extract

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"edushelf-be/internal/apperror"
)

// Page is a unit of extracted text. Formats without pages yield a single page 1.
type Page struct {
	Number int
	Text   string
}

type Extractor interface {
	ExtractPages(r io.Reader, ext string) ([]Page, error)
	ExtractText(r io.Reader, ext string) (string, error)
}

var supported = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// Supported reports whether ext (with or without the leading dot, any case) can be extracted.
func Supported(ext string) bool {
	return supported[NormalizeExt(ext)]
}

// Extensions lists the supported extensions, dot included, in sorted order.
func Extensions() []string {
	out := make([]string, 0, len(supported))
	for ext := range supported {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) ExtractPages(r io.Reader, ext string) ([]Page, error) {
	switch NormalizeExt(ext) {
	case ".pdf":
		return extractPDF(r)
	case ".docx":
		return extractDOCX(r)
	case ".txt":
		return extractTXT(r)
	default:
		return nil, fmt.Errorf("extract %q: %w", ext, apperror.ErrUnsupportedFileType)
	}
}

// ExtractText joins page texts with blank lines.
func (e *FileExtractor) ExtractText(r io.Reader, ext string) (string, error) {
	pages, err := e.ExtractPages(r, ext)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

func extractTXT(r io.Reader) ([]Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "read text file", err)
	}
	text := string(b)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return []Page{{Number: 1, Text: text}}, nil
}
