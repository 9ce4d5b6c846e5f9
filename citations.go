package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/avrillon/normrag/docstore"
)

// FormatCitations renders a source block for retrieved chunks: one entry per
// document, in the order the retrieval ranking first mentions it, with merged
// locations and a bounded excerpt of the best matching chunk. It never
// re-ranks or filters; that already happened upstream.
func FormatCitations(results []docstore.SearchResult, excerptLen int) string {
	if len(results) == 0 {
		return "Sources: none."
	}

	type source struct {
		file      string
		category  string
		locations []string
		excerpt   string
	}

	var order []string
	byFile := make(map[string]*source)
	for _, r := range results {
		s, ok := byFile[r.File]
		if !ok {
			s = &source{
				file:     r.File,
				category: r.Category,
				excerpt:  excerpt(r.Text, excerptLen),
			}
			byFile[r.File] = s
			order = append(order, r.File)
		}

		for _, loc := range r.Locations {
			if loc = strings.TrimSpace(loc); loc != "" {
				s.locations = addLocation(s.locations, loc)
			}
		}
	}

	var b strings.Builder
	b.WriteString("Sources:\n")
	for i, file := range order {
		s := byFile[file]
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, filepath.Base(s.file), s.category)
		if len(s.locations) > 0 {
			fmt.Fprintf(&b, "   Location: %s\n", strings.Join(s.locations, ", "))
		}
		if s.excerpt != "" {
			fmt.Fprintf(&b, "   Excerpt: %q\n", s.excerpt)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func excerpt(text string, n int) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) <= n {
		return text
	}

	return string(r[:n]) + "..."
}
