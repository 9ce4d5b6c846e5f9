// Package parsers turns source documents into location-tagged text units.
package parsers

import (
	"errors"
	"fmt"
)

// Unit is the smallest piece of text a parser produces. Location is a
// human-findable label inside the original file ("Page 3", "Sheet: Tarifs",
// "Paragraph 12", "Table 2").
type Unit struct {
	Text     string
	Location string
}

// Parser extracts units from one family of file formats. Implementations must
// be swappable without the pipeline caring which library does the parsing.
type Parser interface {
	CanParse(path string) bool
	Parse(path string) ([]Unit, error)
}

// ErrUnsupportedFormat signals an extension no registered parser handles.
// Callers skip the file and continue the run.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError marks a file that matched a parser but could not be read
// (corrupted, encrypted, malformed). Non-fatal to a batch run.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ForPath picks the parser claiming the given path, or ErrUnsupportedFormat.
func ForPath(parsers []Parser, path string) (Parser, error) {
	for _, p := range parsers {
		if p.CanParse(path) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Default returns the parser set for all supported formats.
func Default() []Parser {
	return []Parser{
		&PDFParser{},
		&ExcelParser{},
		&WordParser{},
		&TextParser{},
	}
}
