package parsers

import (
	"path/filepath"
	"strings"

	"code.sajari.com/docconv/v2"
)

// TextParser is the fallback for flat formats that carry no finer position
// information than the document itself.
type TextParser struct{}

func (p *TextParser) CanParse(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".odt", ".rtf", ".html":
		return true
	}

	return false
}

func (p *TextParser) Parse(path string) ([]Unit, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	text := strings.TrimSpace(res.Body)
	if text == "" {
		return nil, nil
	}

	return []Unit{{Text: text, Location: "Document"}}, nil
}
