// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs documents through extraction, normalization and
// splitting, one at a time or as a concurrent batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/leseb/docsplit/pkg/extractor"
	"github.com/leseb/docsplit/pkg/normalize"
	"github.com/leseb/docsplit/pkg/observability/logging"
	"github.com/leseb/docsplit/pkg/splitter"
)

// ErrEmptyInput marks a document that yielded no text to chunk. It is
// reported as a Result warning, not a failure.
var ErrEmptyInput = errors.New("document produced no chunks")

// Document is one named input.
type Document struct {
	Name    string
	Content []byte
}

// Result is the outcome for one document.
type Result struct {
	Document string
	Format   string
	// Length is the normalized text measured in splitter units.
	Length  int
	Chunks  []splitter.Chunk
	Warning error // ErrEmptyInput when no chunks were produced
	Err     error // set by Batch when the document failed
}

// Processor turns a document into chunks.
type Processor struct {
	splitter   *splitter.Splitter
	normalizer *normalize.Normalizer
	logger     *logging.Logger
}

// NewProcessor creates a Processor. A nil normalizer leaves extracted text
// untouched; a nil logger discards log output.
func NewProcessor(s *splitter.Splitter, n *normalize.Normalizer, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Processor{splitter: s, normalizer: n, logger: logger}
}

// Splitter returns the splitter in use.
func (p *Processor) Splitter() *splitter.Splitter {
	return p.splitter
}

// Process extracts, normalizes and splits doc.
func (p *Processor) Process(ctx context.Context, doc Document) (Result, error) {
	res := Result{Document: doc.Name, Format: extractor.Format(doc.Name)}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	text, err := extractor.Extract(doc.Content, doc.Name)
	if err != nil {
		return res, err
	}
	return p.finish(res, text), nil
}

// ProcessText normalizes and splits text that is already extracted.
func (p *Processor) ProcessText(name, text string) Result {
	return p.finish(Result{Document: name, Format: "text"}, text)
}

func (p *Processor) finish(res Result, text string) Result {
	if p.normalizer != nil {
		text = p.normalizer.Normalize(text)
	}
	res.Length = p.splitter.Len(text)
	res.Chunks = p.splitter.Split(res.Document, text)
	if len(res.Chunks) == 0 {
		res.Warning = fmt.Errorf("%s: %w", res.Document, ErrEmptyInput)
	}
	p.logger.Debug("split document",
		"document", res.Document,
		"format", res.Format,
		"length", res.Length,
		"chunks", len(res.Chunks),
	)
	return res
}
