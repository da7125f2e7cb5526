// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package http

import (
	"encoding/json"
	"net/http"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/normalize"
	"github.com/leseb/docsplit/pkg/observability/logging"
	"github.com/leseb/docsplit/pkg/splitter"
	"github.com/leseb/docsplit/pkg/vectorstore"
)

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 10 << 20

// Options configures a Handler. Store and Indexer are optional; the routes
// that need them answer 404 not_configured without them.
type Options struct {
	Splitter     splitter.Config
	Normalizer   *normalize.Normalizer
	Store        chunkstore.Store
	Indexer      *vectorstore.Indexer
	MaxBodyBytes int64
}

// Handler implements the HTTP adapter
type Handler struct {
	base         splitter.Config
	normalizer   *normalize.Normalizer
	store        chunkstore.Store
	indexer      *vectorstore.Indexer
	maxBodyBytes int64
	logger       *logging.Logger
	mux          *http.ServeMux
}

// New creates a new HTTP handler. opts.Splitter must be valid; request
// overrides are validated against it on every call.
func New(opts Options, logger *logging.Logger) (*Handler, error) {
	if err := opts.Splitter.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = logging.Discard()
	}

	h := &Handler{
		base:         opts.Splitter,
		normalizer:   opts.Normalizer,
		store:        opts.Store,
		indexer:      opts.Indexer,
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger,
		mux:          http.NewServeMux(),
	}

	// Register routes
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /openapi.json", h.handleOpenAPI)

	// Chunking API
	h.mux.HandleFunc("POST /v1/chunks", h.handleChunks)

	// Documents API
	h.mux.HandleFunc("POST /v1/documents", h.handleUploadDocument)
	h.mux.HandleFunc("GET /v1/documents", h.handleListDocuments)
	h.mux.HandleFunc("GET /v1/documents/{name}/chunks", h.handleListChunks)
	h.mux.HandleFunc("DELETE /v1/documents/{name}", h.handleDeleteDocument)

	// Search API
	h.mux.HandleFunc("POST /v1/search", h.handleSearch)

	return h, nil
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	h.mux.ServeHTTP(w, r)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		h.logger.Error("Failed to write response", "error", err)
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, errType, message string) {
	h.writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": message,
		},
	})
}
