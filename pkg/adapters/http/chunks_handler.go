// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leseb/docsplit/pkg/pipeline"
	"github.com/leseb/docsplit/pkg/splitter"
)

// ChunkRequest is the body of POST /v1/chunks.
type ChunkRequest struct {
	Name          string   `json:"name"`
	Text          string   `json:"text"`
	TargetLength  *int     `json:"target_length,omitempty"`
	OverlapLength *int     `json:"overlap_length,omitempty"`
	Separators    []string `json:"separators,omitempty"`
	KeepSeparator string   `json:"keep_separator,omitempty"`
	Normalize     *bool    `json:"normalize,omitempty"`
}

// ChunkResponse is returned by the chunking and upload routes.
type ChunkResponse struct {
	Name       string       `json:"name"`
	Length     int          `json:"length"`
	ChunkCount int          `json:"chunk_count"`
	Chunks     []ChunkEntry `json:"chunks"`
	Warning    string       `json:"warning,omitempty"`
}

// ChunkEntry is one chunk in a ChunkResponse.
type ChunkEntry struct {
	ID      string `json:"id"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Overlap int    `json:"overlap"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// handleChunks handles POST /v1/chunks
func (h *Handler) handleChunks(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to parse request", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if req.Name == "" {
		req.Name = "document"
	}

	proc, err := h.processor(req)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}

	res := proc.ProcessText(req.Name, req.Text)
	h.logger.Info("Chunked text", "document", res.Document, "chunks", len(res.Chunks), "length", res.Length)
	h.writeJSON(w, http.StatusOK, toResponse(res))
}

// processor builds a Processor from the base configuration and the
// request's overrides.
func (h *Handler) processor(req ChunkRequest) (*pipeline.Processor, error) {
	cfg := h.base
	if req.TargetLength != nil {
		cfg.TargetLength = *req.TargetLength
	}
	if req.OverlapLength != nil {
		cfg.OverlapLength = *req.OverlapLength
	}
	if req.Separators != nil {
		cfg.Separators = req.Separators
	}
	if req.KeepSeparator != "" {
		pos, err := splitter.ParseSeparatorPosition(req.KeepSeparator)
		if err != nil {
			return nil, err
		}
		cfg.KeepSeparator = pos
	}

	s, err := splitter.New(cfg)
	if err != nil {
		return nil, err
	}

	normalizer := h.normalizer
	if req.Normalize != nil && !*req.Normalize {
		normalizer = nil
	}
	return pipeline.NewProcessor(s, normalizer, h.logger), nil
}

func (h *Handler) writeConfigError(w http.ResponseWriter, err error) {
	if errors.Is(err, splitter.ErrConfiguration) {
		h.writeError(w, http.StatusBadRequest, "invalid_config", err.Error())
		return
	}
	h.logger.Error("Failed to build splitter", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func toResponse(res pipeline.Result) ChunkResponse {
	out := ChunkResponse{
		Name:       res.Document,
		Length:     res.Length,
		ChunkCount: len(res.Chunks),
		Chunks:     make([]ChunkEntry, len(res.Chunks)),
	}
	for i, c := range res.Chunks {
		out.Chunks[i] = ChunkEntry{
			ID:      c.ID(),
			Index:   c.Index,
			Text:    c.Text,
			Overlap: c.Overlap,
			Start:   c.Start,
			End:     c.End,
		}
	}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	return out
}
