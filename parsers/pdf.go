package parsers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParser produces one unit per non-empty page, tagged with the 1-based
// page number. Reading order inside a page is best-effort.
type PDFParser struct{}

func (p *PDFParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

func (p *PDFParser) Parse(path string) (units []Unit, err error) {
	// The pdf library faults on some malformed files instead of returning
	// an error; fold that into ParseError so the batch keeps going.
	defer func() {
		if r := recover(); r != nil {
			units = nil
			err = &ParseError{Path: path, Err: fmt.Errorf("pdf reader panic: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("page %d: %w", i, err)}
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		units = append(units, Unit{
			Text:     text,
			Location: fmt.Sprintf("Page %d", i),
		})
	}

	return units, nil
}
