// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package normalize cleans extracted text before it is chunked.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	lineBreaks     = regexp.MustCompile(`\r\n|\r`)
	horizontalRuns = regexp.MustCompile(`[ \t\f\v\x{00A0}\x{3000}]+`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
	spaceAroundNL  = regexp.MustCompile(` *\n *`)

	// Lines that hold nothing but a page marker: "12", "- 12 -", "Page 3",
	// "page 3 of 10", "3 / 10". The line break goes with the marker.
	pageMarker = regexp.MustCompile(`(?mi)^[ \t]*(?:-[ \t]*\d+[ \t]*-|(?:page[ \t]+)?\d+(?:[ \t]*(?:/|of)[ \t]*\d+)?)[ \t]*(?:\n|$)`)
)

// Options selects which cleanup steps run.
type Options struct {
	StripPageNumbers bool
	CollapseSpace    bool
}

// DefaultOptions enables every step.
func DefaultOptions() Options {
	return Options{StripPageNumbers: true, CollapseSpace: true}
}

// Normalizer is a pure text-to-text transform.
type Normalizer struct {
	opts Options
}

// New creates a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize runs the configured steps. Line endings are always unified and
// the result is always NFC and trimmed.
func (n *Normalizer) Normalize(text string) string {
	text = lineBreaks.ReplaceAllString(text, "\n")
	text = norm.NFC.String(text)
	if n.opts.StripPageNumbers {
		text = pageMarker.ReplaceAllString(text, "")
	}
	if n.opts.CollapseSpace {
		text = horizontalRuns.ReplaceAllString(text, " ")
		text = spaceAroundNL.ReplaceAllString(text, "\n")
		text = blankRuns.ReplaceAllString(text, "\n\n")
	}
	return strings.TrimSpace(text)
}

// Text normalizes with DefaultOptions.
func Text(text string) string {
	return New(DefaultOptions()).Normalize(text)
}
