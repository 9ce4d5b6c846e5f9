package main

import (
	"strings"
	"unicode/utf8"

	"github.com/avrillon/normrag/parsers"
)

// Chunk is a bounded window of document text together with every source
// location that contributed to it.
type Chunk struct {
	Text      string
	Locations []string
}

// Chunker windows extracted units into chunks of at most size characters,
// carrying the trailing overlap characters across chunk boundaries. The size
// bound is hard: units that do not fit are split mid-text.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) *Chunker {
	return &Chunker{size: size, overlap: overlap}
}

func (c *Chunker) Chunk(units []parsers.Unit) []Chunk {
	var chunks []Chunk
	var text string
	var locs []string

	flush := func() {
		if text != "" {
			chunks = append(chunks, Chunk{Text: text, Locations: locs})
		}
		text = ""
		locs = nil
	}

	for _, u := range units {
		t := strings.TrimSpace(u.Text)
		if t == "" {
			continue
		}

		if len(t) > c.size {
			flush()
			for _, window := range slide(t, c.size, c.overlap) {
				chunks = append(chunks, Chunk{Text: window, Locations: []string{u.Location}})
			}
			continue
		}

		if text != "" && len(text)+1+len(t) > c.size {
			tail := text[cutAfter(text, len(text)-c.overlap):]
			tailLoc := locs[len(locs)-1]
			flush()

			// Seed the next chunk with the previous tail when the unit
			// still fits next to it.
			if tail != "" && len(tail)+1+len(t) <= c.size {
				text = tail
				locs = []string{tailLoc}
			}
		}

		if text != "" {
			text += "\n"
		}
		text += t
		locs = addLocation(locs, u.Location)
	}

	flush()
	return chunks
}

// slide cuts text into windows of at most size bytes that overlap by at most
// overlap bytes. Window edges only ever fall on rune boundaries, so every
// window is valid UTF-8 on its own.
func slide(text string, size, overlap int) []string {
	l := len(text)
	if l == 0 {
		return nil
	}

	pos := 0
	res := make([]string, 0, l/max(1, size-overlap)+1)

	for {
		end := cutBefore(text, pos+size)
		if end <= pos {
			// A single rune wider than size; emit it whole.
			end = cutAfter(text, pos+1)
		}

		res = append(res, text[pos:end])
		if end >= l {
			break
		}

		next := cutAfter(text, end-overlap)
		if next <= pos {
			next = end
		}
		pos = next
	}

	return res
}

// cutBefore returns the largest rune boundary in text that is <= i.
func cutBefore(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// cutAfter returns the smallest rune boundary in text that is >= i.
func cutAfter(text string, i int) int {
	if i < 0 {
		return 0
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}

// addLocation appends loc unless already present, preserving insertion order.
func addLocation(locs []string, loc string) []string {
	for _, l := range locs {
		if l == loc {
			return locs
		}
	}

	return append(locs, loc)
}
