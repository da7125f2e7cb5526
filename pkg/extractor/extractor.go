// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extractor turns document bytes into a single text string.
package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrExtraction is wrapped by every extraction failure.
var ErrExtraction = errors.New("extraction failed")

// ExtractionError reports a document that could not be read.
type ExtractionError struct {
	Document string
	Format   string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Document, e.Format, e.Err)
}

// Unwrap returns both the cause and ErrExtraction for errors.Is matching.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// Format names the extractor selected for a filename.
func Format(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".html", ".htm":
		return "html"
	case ".csv":
		return "csv"
	case ".json":
		return "json"
	case ".jsonl":
		return "jsonl"
	default:
		return "text"
	}
}

// Extract extracts plain text from content based on the file extension.
// Unknown extensions are treated as plain text.
func Extract(content []byte, filename string) (string, error) {
	format := Format(filename)
	var (
		text string
		err  error
	)
	switch format {
	case "pdf":
		text, err = extractPDF(content)
	case "html":
		text, err = extractHTML(content)
	case "csv":
		text, err = extractCSV(content)
	case "json":
		text, err = extractJSON(content)
	case "jsonl":
		text, err = extractJSONL(content)
	default:
		text, err = extractText(content)
	}
	if err != nil {
		return "", &ExtractionError{Document: filename, Format: format, Err: err}
	}
	return text, nil
}
