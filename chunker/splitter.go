// Package chunker splits extracted text into overlapping retrieval-sized
// segments while preserving source metadata.
package chunker

import (
	"strings"

	"github.com/poiesic/docit/core"
)

// DefaultChunkSize is the default maximum chunk length in runes.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of trailing runes repeated at the
// start of the next chunk.
const DefaultOverlap = 200

// Splitter produces overlapping chunks of bounded length. Splitting is a pure
// function of the input text and the configured parameters: identical input
// always yields an identical chunk sequence.
//
// Cut points prefer, in order, a paragraph boundary ("\n\n"), a line boundary
// ("\n"), a space, and finally a hard cut at the length limit. Boundary search
// is confined to the trailing overlap-sized window of each chunk, so every
// chunk after the first begins with exactly Overlap runes repeated from the
// end of its predecessor. Concatenating the chunks with those prefixes
// stripped reproduces the original text.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum chunk length in runes.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in runes.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a Splitter with the given options. An overlap larger than half
// the chunk size is clamped to a quarter of it, so chunks always advance.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.overlap*2 > s.chunkSize {
		s.overlap = s.chunkSize / 4
	}
	return s
}

// ChunkSize returns the configured maximum chunk length.
func (s *Splitter) ChunkSize() int { return s.chunkSize }

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int { return s.overlap }

// Split splits text into chunk strings. Empty or whitespace-only text yields
// no chunks.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= s.chunkSize {
		return []string{text}
	}

	var out []string
	// end of the previous chunk; new material for the next chunk starts here
	prev := 0
	for prev < n {
		start := prev - s.overlap
		if start < 0 {
			start = 0
		}
		limit := start + s.chunkSize
		if limit >= n {
			out = append(out, string(runes[start:n]))
			break
		}
		cut := s.cutPoint(runes, prev, limit)
		out = append(out, string(runes[start:cut]))
		prev = cut
	}
	return out
}

// cutPoint picks the end of the next chunk. The allowed span is (prev, limit];
// separators are only considered inside the trailing overlap-sized window
// [limit-overlap, limit] so chunks stay near-full and the overlap prefix of
// the following chunk is exact.
func (s *Splitter) cutPoint(runes []rune, prev, limit int) int {
	lo := limit - s.overlap
	if lo <= prev {
		lo = prev + 1
	}

	// Paragraph boundary: cut just after the last "\n\n" in the window.
	for i := limit; i >= lo+1; i-- {
		if runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}
	// Line boundary.
	for i := limit; i >= lo; i-- {
		if runes[i-1] == '\n' {
			return i
		}
	}
	// Word boundary.
	for i := limit; i >= lo; i-- {
		if runes[i-1] == ' ' {
			return i
		}
	}
	return limit
}

// SplitUnits chunks every unit of one document in order, copying each unit's
// metadata verbatim into the chunks derived from it. Chunk indices are
// zero-based and continuous across the document's units.
func (s *Splitter) SplitUnits(units []core.Unit) []core.Chunk {
	var chunks []core.Chunk
	idx := 0
	for _, unit := range units {
		for _, text := range s.Split(unit.Text) {
			chunks = append(chunks, core.Chunk{
				Text:  text,
				Index: idx,
				Meta:  unit.Meta,
			})
			idx++
		}
	}
	return chunks
}
