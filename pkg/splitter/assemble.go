// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Chunk is one bounded segment of a document.
type Chunk struct {
	Index  int    // 0-based position in the document's chunk sequence
	Source string // caller-supplied document label
	Text   string
	// Overlap is the byte length of the prefix of Text copied from the
	// previous chunk. Text[Overlap:] is new content.
	Overlap int
	// Start and End are byte offsets of Text in the decomposed source text.
	Start int
	End   int
	// Length is Text measured with the configured length function.
	Length int
}

// ID returns the stable chunk identifier "{source}_{index}".
func (c Chunk) ID() string {
	return fmt.Sprintf("%s_%d", c.Source, c.Index)
}

// Fresh returns the part of Text not shared with the previous chunk.
func (c Chunk) Fresh() string {
	return c.Text[c.Overlap:]
}

// Reconstruct concatenates the non-overlapping portion of every chunk.
// For chunks produced by one Split call this is the original text.
func Reconstruct(chunks []Chunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.Fresh())
	}
	return sb.String()
}

// Assemble greedily packs pieces into chunks no longer than the target,
// seeding each chunk after the first with the tail of its predecessor.
func (s *Splitter) Assemble(source string, pieces []string) []Chunk {
	a := &assembler{
		target:  s.cfg.TargetLength,
		overlap: s.cfg.OverlapLength,
		length:  s.length,
		source:  source,
	}
	for _, piece := range pieces {
		a.add(piece)
	}
	if a.fresh {
		a.emit(a.buf, a.seed)
	}
	return a.chunks
}

type assembler struct {
	target  int
	overlap int
	length  LengthFunc
	source  string

	chunks []Chunk
	buf    string
	seed   int    // bytes at the front of buf copied from prev
	fresh  bool   // buf holds content beyond the seed
	prev   string // text of the last emitted chunk
	pos    int    // byte offset just past the consumed pieces
}

func (a *assembler) add(piece string) {
	if piece == "" {
		return
	}
	if a.fresh {
		candidate := a.buf + piece
		if a.length(candidate) <= a.target {
			a.buf = candidate
			a.pos += len(piece)
			return
		}
		a.emit(a.buf, a.seed)
	}

	// An oversized piece becomes its own chunk; cutting it is Decompose's job.
	if a.length(piece) > a.target {
		a.pos += len(piece)
		a.emit(piece, 0)
		return
	}

	seed := a.seedFor(piece)
	a.buf = seed + piece
	a.seed = len(seed)
	a.fresh = true
	a.pos += len(piece)
}

// seedFor returns the longest tail of the previous chunk that measures at
// most the overlap length and still lets piece fit within the target.
func (a *assembler) seedFor(piece string) string {
	if a.overlap == 0 || a.prev == "" {
		return ""
	}
	seed := a.prev[suffixWithin(a.prev, a.overlap, a.length):]
	for seed != "" && a.length(seed+piece) > a.target {
		_, size := utf8.DecodeRuneInString(seed)
		seed = seed[size:]
	}
	return seed
}

func (a *assembler) emit(text string, overlap int) {
	a.chunks = append(a.chunks, Chunk{
		Index:   len(a.chunks),
		Source:  a.source,
		Text:    text,
		Overlap: overlap,
		Start:   a.pos - len(text),
		End:     a.pos,
		Length:  a.length(text),
	})
	a.prev = text
	a.buf = ""
	a.seed = 0
	a.fresh = false
}
