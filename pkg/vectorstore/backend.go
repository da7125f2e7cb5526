// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package vectorstore indexes embedded chunks for similarity search.
package vectorstore

import (
	"context"
	"errors"

	"github.com/leseb/docsplit/pkg/provider"
)

// Providers is the registry of vector store backend implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/docsplit/pkg/vectorstore/milvus"
var Providers = provider.NewRegistry[Backend]("vector_store")

// ErrDimensionMismatch is returned when a vector does not match the store's
// dimensionality.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Chunk is a piece of document text with its embedding, ready for insertion.
type Chunk struct {
	ID       string // splitter chunk id, "{document}_{index}"
	Document string
	Store    string
	Content  string
	Vector   []float32
}

// SearchResult is a single hit from a vector similarity search.
type SearchResult struct {
	Document string
	ChunkID  string
	Content  string
	Score    float64
}

// Backend is the interface for vector store storage backends.
type Backend interface {
	// CreateStore provisions a vector store (e.g. a Milvus collection).
	// Creating a store that already exists is not an error.
	CreateStore(ctx context.Context, store string, dimensions int) error

	// DeleteStore removes a vector store and all its data.
	DeleteStore(ctx context.Context, store string) error

	// InsertChunks inserts embedded chunks. All chunks must belong to the same store.
	InsertChunks(ctx context.Context, chunks []Chunk) error

	// DeleteDocument removes all chunks of a document from a store.
	DeleteDocument(ctx context.Context, store, document string) error

	// Search returns the topK chunks most similar to queryVector.
	Search(ctx context.Context, store string, queryVector []float32, topK int) ([]SearchResult, error)

	// Close releases any resources held by the backend.
	Close(ctx context.Context) error
}
