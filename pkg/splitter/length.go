// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package splitter

import (
	"sort"
	"unicode/utf8"
)

// LengthFunc measures a string in some unit (characters, bytes, tokens).
// It must return 0 for the empty string and must not decrease when text is
// appended.
type LengthFunc func(string) int

// RuneCount counts Unicode code points. This is the default unit.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

// ByteCount counts UTF-8 bytes.
func ByteCount(s string) int {
	return len(s)
}

// runeBoundaries returns the byte offset of every rune start in s, plus len(s).
func runeBoundaries(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// prefixWithin returns the byte length of the longest prefix of s measuring
// at most limit. At least one rune is always included so callers progress.
// Only a window of s is measured; the window doubles until it overflows
// limit or covers s, so the cost tracks the prefix and not len(s).
func prefixWithin(s string, limit int, length LengthFunc) int {
	runes := limit + 1
	if runes < 1 {
		runes = 1
	}
	for {
		end := runeOffset(s, runes)
		if end == len(s) || length(s[:end]) > limit {
			return lastFit(s[:end], limit, length)
		}
		runes *= 2
	}
}

// lastFit binary-searches the rune boundaries of window for the longest
// prefix within limit, never returning less than one rune.
func lastFit(window string, limit int, length LengthFunc) int {
	bounds := runeBoundaries(window)
	// bounds[0] is 0; search the remaining boundaries for the last fit.
	n := sort.Search(len(bounds)-1, func(i int) bool {
		return length(window[:bounds[i+1]]) > limit
	})
	if n == 0 {
		return bounds[1]
	}
	return bounds[n]
}

// runeOffset returns the byte offset just past the first n runes of s, or
// len(s) when s is shorter.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// suffixWithin returns the byte offset where the longest suffix of s
// measuring at most limit begins. It returns len(s) when no rune fits.
func suffixWithin(s string, limit int, length LengthFunc) int {
	if limit <= 0 || s == "" {
		return len(s)
	}
	start := len(s)
	for start > 0 {
		_, size := utf8.DecodeLastRuneInString(s[:start])
		if length(s[start-size:]) > limit {
			break
		}
		start -= size
	}
	return start
}
