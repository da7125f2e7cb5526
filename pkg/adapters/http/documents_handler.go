// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/extractor"
	"github.com/leseb/docsplit/pkg/pipeline"
)

// DocumentObject describes a stored document.
type DocumentObject struct {
	Name       string `json:"name"`
	RunID      string `json:"run_id,omitempty"`
	Length     int    `json:"length"`
	ChunkCount int    `json:"chunk_count"`
	CreatedAt  int64  `json:"created_at"`
}

// handleUploadDocument handles POST /v1/documents. The multipart form
// carries the document in "file" and optional "target_length" and
// "overlap_length" overrides.
func (h *Handler) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		h.logger.Error("Failed to parse multipart form", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read file content", "error", err)
		h.writeError(w, http.StatusInternalServerError, "read_error", "Failed to read file content")
		return
	}

	req := ChunkRequest{Name: header.Filename}
	for field, dst := range map[string]**int{
		"target_length":  &req.TargetLength,
		"overlap_length": &req.OverlapLength,
	} {
		v := r.FormValue(field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_config", field+" must be an integer")
			return
		}
		*dst = &n
	}
	if v := r.FormValue("keep_separator"); v != "" {
		req.KeepSeparator = v
	}

	proc, err := h.processor(req)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}

	res, err := proc.Process(r.Context(), pipeline.Document{Name: header.Filename, Content: content})
	if err != nil {
		if errors.Is(err, extractor.ErrExtraction) {
			h.writeError(w, http.StatusUnprocessableEntity, "extraction_error", err.Error())
			return
		}
		h.logger.Error("Failed to process document", "document", header.Filename, "error", err)
		h.writeError(w, http.StatusInternalServerError, "processing_error", err.Error())
		return
	}

	if h.store != nil {
		rec := chunkstore.Record{
			RunID:     uuid.NewString(),
			Document:  res.Document,
			Length:    res.Length,
			Chunks:    res.Chunks,
			CreatedAt: time.Now(),
		}
		if err := h.store.SaveDocument(r.Context(), rec); err != nil {
			h.logger.Error("Failed to store chunks", "document", res.Document, "error", err)
			h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
			return
		}
	}
	if h.indexer != nil {
		if err := h.indexer.Index(r.Context(), res.Document, res.Chunks); err != nil {
			h.logger.Error("Failed to index chunks", "document", res.Document, "error", err)
			h.writeError(w, http.StatusBadGateway, "indexing_error", err.Error())
			return
		}
	}

	h.logger.Info("Document uploaded", "document", res.Document, "bytes", len(content), "chunks", len(res.Chunks))
	h.writeJSON(w, http.StatusOK, toResponse(res))
}

// handleListDocuments handles GET /v1/documents
func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	infos, err := h.store.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error("Failed to list documents", "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}

	data := make([]DocumentObject, len(infos))
	for i, info := range infos {
		data[i] = DocumentObject{
			Name:       info.Document,
			RunID:      info.RunID,
			Length:     info.Length,
			ChunkCount: info.ChunkCount,
			CreatedAt:  info.CreatedAt.Unix(),
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": data})
}

// handleListChunks handles GET /v1/documents/{name}/chunks
func (h *Handler) handleListChunks(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	name := r.PathValue("name")
	chunks, err := h.store.ListChunks(r.Context(), name)
	if errors.Is(err, chunkstore.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "not_found", "Document not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to list chunks", "document", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}

	res := pipeline.Result{Document: name, Chunks: chunks}
	if infos, err := h.store.ListDocuments(r.Context()); err == nil {
		for _, info := range infos {
			if info.Document == name {
				res.Length = info.Length
				break
			}
		}
	}
	h.writeJSON(w, http.StatusOK, toResponse(res))
}

// handleDeleteDocument handles DELETE /v1/documents/{name}
func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	name := r.PathValue("name")
	if err := h.store.DeleteDocument(r.Context(), name); err != nil {
		if errors.Is(err, chunkstore.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		h.logger.Error("Failed to delete document", "document", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	if h.indexer != nil {
		if err := h.indexer.Remove(r.Context(), name); err != nil {
			h.logger.Error("Failed to remove indexed chunks", "document", name, "error", err)
		}
	}

	h.logger.Info("Document deleted", "document", name)
	h.writeJSON(w, http.StatusOK, map[string]any{"name": name, "deleted": true})
}

func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, "not_configured", "No chunk store is configured")
		return false
	}
	return true
}
