package main

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/avrillon/normrag/parsers"
)

func Test_Chunk(t *testing.T) {
	var cases = []struct {
		name    string
		units   []parsers.Unit
		size    int
		overlap int
		output  []Chunk
	}{
		{
			name:   "empty",
			units:  nil,
			size:   10,
			output: nil,
		},
		{
			name: "units merge into one chunk",
			units: []parsers.Unit{
				{Text: "abc", Location: "Page 1"},
				{Text: "def", Location: "Page 2"},
			},
			size: 10,
			output: []Chunk{
				{Text: "abc\ndef", Locations: []string{"Page 1", "Page 2"}},
			},
		},
		{
			name: "overflow carries trailing overlap",
			units: []parsers.Unit{
				{Text: "abc", Location: "Page 1"},
				{Text: "def", Location: "Page 2"},
				{Text: "ghi", Location: "Page 3"},
			},
			size:    7,
			overlap: 2,
			output: []Chunk{
				{Text: "abc\ndef", Locations: []string{"Page 1", "Page 2"}},
				{Text: "ef\nghi", Locations: []string{"Page 2", "Page 3"}},
			},
		},
		{
			name: "oversize unit is split on its own",
			units: []parsers.Unit{
				{Text: "abcdefg", Location: "Page 1"},
			},
			size:    3,
			overlap: 1,
			output: []Chunk{
				{Text: "abc", Locations: []string{"Page 1"}},
				{Text: "cde", Locations: []string{"Page 1"}},
				{Text: "efg", Locations: []string{"Page 1"}},
			},
		},
		{
			name: "oversize unit flushes the pending chunk first",
			units: []parsers.Unit{
				{Text: "ab", Location: "Page 1"},
				{Text: "abcdefg", Location: "Page 2"},
			},
			size:    3,
			overlap: 0,
			output: []Chunk{
				{Text: "ab", Locations: []string{"Page 1"}},
				{Text: "abc", Locations: []string{"Page 2"}},
				{Text: "def", Locations: []string{"Page 2"}},
				{Text: "g", Locations: []string{"Page 2"}},
			},
		},
		{
			name: "blank units are dropped",
			units: []parsers.Unit{
				{Text: "   ", Location: "Page 1"},
				{Text: "abc", Location: "Page 2"},
			},
			size: 10,
			output: []Chunk{
				{Text: "abc", Locations: []string{"Page 2"}},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := NewChunker(c.size, c.overlap).Chunk(c.units)
			assert.Equal(t, c.output, out)
		})
	}
}

func Test_Chunk_SizeAndOverlapBounds(t *testing.T) {
	const size, overlap = 40, 10

	units := make([]parsers.Unit, 0, 30)
	for i := range 30 {
		units = append(units, parsers.Unit{
			Text:     strings.Repeat(fmt.Sprintf("%d", i%10), 7+i%13),
			Location: fmt.Sprintf("Page %d", i+1),
		})
	}

	chunks := NewChunker(size, overlap).Chunk(units)
	assert.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), size, "chunk %d exceeds size bound", i)
		assert.NotEmpty(t, c.Locations)
	}

	for i := 1; i < len(chunks); i++ {
		shared := commonBoundary(chunks[i-1].Text, chunks[i].Text)
		assert.LessOrEqual(t, shared, overlap, "chunks %d and %d overlap too much", i-1, i)
	}
}

func Test_Chunk_KeepsMultibyteRunesIntact(t *testing.T) {
	oversize := []parsers.Unit{{Text: strings.Repeat("é", 20), Location: "Page 1"}}

	var cases = []struct {
		name    string
		units   []parsers.Unit
		size    int
		overlap int
	}{
		{name: "oversize unit, no overlap", units: oversize, size: 5, overlap: 0},
		{name: "oversize unit, with overlap", units: oversize, size: 7, overlap: 3},
		{
			name: "overlap carried across units",
			units: []parsers.Unit{
				{Text: "ééé", Location: "Page 1"},
				{Text: "ééé", Location: "Page 2"},
				{Text: "ééé", Location: "Page 3"},
			},
			size:    10,
			overlap: 3,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			chunks := NewChunker(c.size, c.overlap).Chunk(c.units)
			assert.NotEmpty(t, chunks)

			for i, ch := range chunks {
				assert.True(t, utf8.ValidString(ch.Text), "chunk %d is not valid UTF-8: %q", i, ch.Text)
				assert.LessOrEqual(t, len(ch.Text), c.size, "chunk %d exceeds size bound", i)
			}
		})
	}
}

func Test_Chunk_MultibyteSplitLosesNothing(t *testing.T) {
	unit := parsers.Unit{Text: strings.Repeat("é", 20), Location: "Page 1"}

	chunks := NewChunker(5, 0).Chunk([]parsers.Unit{unit})

	var joined strings.Builder
	for _, c := range chunks {
		joined.WriteString(c.Text)
	}
	assert.Equal(t, unit.Text, joined.String())
}

// commonBoundary is the longest suffix of a that is a prefix of b.
func commonBoundary(a, b string) int {
	maxLen := min(len(a), len(b))
	for n := maxLen; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return n
		}
	}

	return 0
}
