// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunkstore persists the chunk sequence of each processed document.
package chunkstore

import (
	"context"
	"errors"
	"time"

	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/splitter"
)

// ErrNotFound is returned when a document has no stored chunks.
var ErrNotFound = errors.New("document not found")

// Providers is the registry of chunk store implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/docsplit/pkg/chunkstore/sqlite"
//	import _ "github.com/leseb/docsplit/pkg/chunkstore/postgres"
var Providers = provider.NewRegistry[Store]("chunk_store")

// Record is everything stored for one document.
type Record struct {
	RunID     string
	Document  string
	Length    int // document length in splitter units
	Chunks    []splitter.Chunk
	CreatedAt time.Time
}

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	Document   string
	RunID      string
	Length     int
	ChunkCount int
	CreatedAt  time.Time
}

// Store is a chunk persistence backend.
type Store interface {
	// SaveDocument replaces any chunks previously stored for rec.Document.
	SaveDocument(ctx context.Context, rec Record) error
	// ListChunks returns a document's chunks in sequence order.
	ListChunks(ctx context.Context, document string) ([]splitter.Chunk, error)
	// ListDocuments returns every stored document sorted by name.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	DeleteDocument(ctx context.Context, document string) error
	Close() error
}
