// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"
)

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchHit is one search result.
type SearchHit struct {
	Document string  `json:"document"`
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// handleSearch handles POST /v1/search
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if h.indexer == nil {
		h.writeError(w, http.StatusNotFound, "not_configured", "No vector store is configured")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Query is required")
		return
	}

	results, err := h.indexer.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		h.logger.Error("Search failed", "error", err)
		h.writeError(w, http.StatusBadGateway, "search_error", err.Error())
		return
	}

	hits := make([]SearchHit, len(results))
	for i, res := range results {
		hits[i] = SearchHit{
			Document: res.Document,
			ChunkID:  res.ChunkID,
			Text:     res.Content,
			Score:    res.Score,
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": hits})
}
