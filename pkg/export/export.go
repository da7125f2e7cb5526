// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package export serializes batch results for downstream consumers.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leseb/docsplit/pkg/pipeline"
)

// DefaultFileName is the name the combined JSON export is usually saved as.
const DefaultFileName = "bulk_processed_data.json"

// Document is one entry of the combined JSON export.
type Document struct {
	FileName    string  `json:"file_name"`
	TotalLength int     `json:"total_length"`
	ChunkCount  int     `json:"chunk_count"`
	Chunks      []Chunk `json:"chunks"`
	Error       string  `json:"error,omitempty"`
}

// Chunk is a chunk inside Document.
type Chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Record is one line of the JSONL export.
type Record struct {
	ID             string `json:"id"`
	Document       string `json:"document"`
	DocumentLength int    `json:"document_length"`
	Index          int    `json:"index"`
	Text           string `json:"text"`
	Overlap        int    `json:"overlap"`
	Start          int    `json:"start"`
	End            int    `json:"end"`
	Length         int    `json:"length"`
}

// Documents converts results to export entries. Failed results keep their
// name and error so the export accounts for every input.
func Documents(results []pipeline.Result) []Document {
	docs := make([]Document, len(results))
	for i, r := range results {
		d := Document{
			FileName:    r.Document,
			TotalLength: r.Length,
			ChunkCount:  len(r.Chunks),
			Chunks:      make([]Chunk, len(r.Chunks)),
		}
		for j, c := range r.Chunks {
			d.Chunks[j] = Chunk{ID: c.ID(), Text: c.Text}
		}
		if r.Err != nil {
			d.Error = r.Err.Error()
		}
		docs[i] = d
	}
	return docs
}

// WriteJSON writes results as one indented JSON array.
func WriteJSON(w io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(Documents(results)); err != nil {
		return fmt.Errorf("write json export: %w", err)
	}
	return nil
}

// WriteJSONL writes one chunk per line. Failed results are skipped.
func WriteJSONL(w io.Writer, results []pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, c := range r.Chunks {
			rec := Record{
				ID:             c.ID(),
				Document:       r.Document,
				DocumentLength: r.Length,
				Index:          c.Index,
				Text:           c.Text,
				Overlap:        c.Overlap,
				Start:          c.Start,
				End:            c.End,
				Length:         c.Length,
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("write jsonl export: %w", err)
			}
		}
	}
	return nil
}

// Writer picks the writer for a format name: "json" or "jsonl".
func Writer(format string) (func(io.Writer, []pipeline.Result) error, error) {
	switch format {
	case "", "json":
		return WriteJSON, nil
	case "jsonl":
		return WriteJSONL, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}
