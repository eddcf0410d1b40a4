package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"edushelf-be/internal/apperror"
)

const documentPart = "word/document.xml"

// extractDOCX walks word/document.xml and keeps the text runs. Paragraphs end
// with a newline. DOCX carries no reliable page numbers so everything is page 1.
func extractDOCX(r io.Reader) ([]Page, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "read docx", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "open docx archive", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, apperror.E(apperror.KindParse, "docx has no "+documentPart, nil)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "open "+documentPart, err)
	}
	defer rc.Close()

	text, err := docxText(rc)
	if err != nil {
		return nil, apperror.E(apperror.KindParse, "parse "+documentPart, err)
	}
	return []Page{{Number: 1, Text: text}}, nil
}

func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
