// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package splitter

import "strings"

// Decompose breaks text into an ordered sequence of pieces that each fit the
// target length. Concatenating the pieces reproduces text exactly. Empty
// pieces produced by adjacent separators are kept; Assemble drops them.
func (s *Splitter) Decompose(text string) []string {
	if text == "" {
		return nil
	}
	return s.decompose(text, s.cfg.Separators, nil)
}

// decompose appends the pieces of text to out. seps is the part of the
// hierarchy not yet tried on this branch, so recursion depth is bounded by
// the hierarchy length.
func (s *Splitter) decompose(text string, seps []string, out []string) []string {
	if s.length(text) <= s.cfg.TargetLength {
		return append(out, text)
	}
	for i, sep := range seps {
		if !strings.Contains(text, sep) {
			continue
		}
		rest := seps[i+1:]
		for _, piece := range splitKeep(text, sep, s.cfg.KeepSeparator) {
			out = s.decompose(piece, rest, out)
		}
		return out
	}
	return s.forceSplit(text, out)
}

// forceSplit cuts text at rune boundaries with no separator awareness.
// Slices leave room for a full overlap seed so that the assembler can carry
// context across forced boundaries without exceeding the target.
func (s *Splitter) forceSplit(text string, out []string) []string {
	width := s.cfg.TargetLength - s.cfg.OverlapLength
	for text != "" {
		n := prefixWithin(text, width, s.length)
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

// splitKeep splits text on every non-overlapping occurrence of sep and keeps
// the separator on the side selected by pos.
func splitKeep(text, sep string, pos SeparatorPosition) []string {
	var pieces []string
	start, search := 0, 0
	for {
		i := strings.Index(text[search:], sep)
		if i < 0 {
			break
		}
		at := search + i
		cut := at
		if pos == SeparatorEnd {
			cut = at + len(sep)
		}
		pieces = append(pieces, text[start:cut])
		start = cut
		search = at + len(sep)
	}
	return append(pieces, text[start:])
}
