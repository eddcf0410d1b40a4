package extract

import (
	"bytes"
	"io"

	"edushelf-be/internal/apperror"

	"github.com/ledongthuc/pdf"
)

func extractPDF(r io.Reader) ([]Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "read pdf", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "open pdf", err)
	}

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, apperror.E(apperror.KindParse, "read pdf page", err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
