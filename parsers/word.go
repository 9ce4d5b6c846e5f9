package parsers

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// WordParser walks word/document.xml and emits one unit per paragraph and one
// per table, in document order. Legacy binary .doc is not supported; the
// detector reports those as an unsupported format instead of mis-parsing.
type WordParser struct{}

func (p *WordParser) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".docx"
}

func (p *WordParser) Parse(path string) ([]Unit, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer zr.Close()

	rc, err := openDocumentXML(&zr.Reader)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer rc.Close()

	units, err := walkDocumentXML(rc)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	return units, nil
}

func openDocumentXML(zr *zip.Reader) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return f.Open()
		}
	}

	return nil, errors.New("word/document.xml not found")
}

func walkDocumentXML(r io.Reader) ([]Unit, error) {
	dec := xml.NewDecoder(r)

	var units []Unit
	paragraphs, tables := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "tbl":
			tables++
			text, err := readTable(dec)
			if err != nil {
				return nil, err
			}
			if text != "" {
				units = append(units, Unit{
					Text:     text,
					Location: fmt.Sprintf("Table %d", tables),
				})
			}
		case "p":
			paragraphs++
			text, err := readParagraph(dec)
			if err != nil {
				return nil, err
			}
			if text != "" {
				units = append(units, Unit{
					Text:     text,
					Location: fmt.Sprintf("Paragraph %d", paragraphs),
				})
			}
		}
	}

	return units, nil
}

// readParagraph consumes tokens until the matching </w:p>, concatenating the
// text runs it contains.
func readParagraph(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "t":
				inText = true
			case "br":
				b.WriteString("\n")
			case "tab":
				b.WriteString("\t")
			}
		case xml.EndElement:
			depth--
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// readTable consumes tokens until the matching </w:tbl>, serializing the
// table one row per line with cells joined by " | ".
func readTable(dec *xml.Decoder) (string, error) {
	var rows []string
	var cells []string
	var cell strings.Builder
	depth := 1
	inText := false

	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			switch el.Name.Local {
			case "tr":
				cells = cells[:0]
			case "tc":
				cell.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			depth--
			switch el.Name.Local {
			case "t":
				inText = false
			case "tc":
				if text := strings.TrimSpace(cell.String()); text != "" {
					cells = append(cells, text)
				}
			case "tr":
				if len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
					cells = nil
				}
			}
		case xml.CharData:
			if inText {
				cell.Write(el)
			}
		}
	}

	return strings.Join(rows, "\n"), nil
}
