// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"fmt"

	"github.com/leseb/docsplit/pkg/embedding"
	"github.com/leseb/docsplit/pkg/splitter"
)

// DefaultTopK is used when Search is called without a positive topK.
const DefaultTopK = 10

// Indexer embeds document chunks and writes them to one store of a Backend.
type Indexer struct {
	embedder   embedding.Embedder
	backend    Backend
	store      string
	dimensions int
}

// NewIndexer creates an Indexer writing to store.
func NewIndexer(embedder embedding.Embedder, backend Backend, store string, dimensions int) *Indexer {
	return &Indexer{
		embedder:   embedder,
		backend:    backend,
		store:      store,
		dimensions: dimensions,
	}
}

// Store returns the target store name.
func (ix *Indexer) Store() string {
	return ix.store
}

// EnsureStore creates the target store if needed.
func (ix *Indexer) EnsureStore(ctx context.Context) error {
	if err := ix.backend.CreateStore(ctx, ix.store, ix.dimensions); err != nil {
		return fmt.Errorf("create vector store %s: %w", ix.store, err)
	}
	return nil
}

// Index replaces the document's chunks in the store with freshly embedded ones.
func (ix *Indexer) Index(ctx context.Context, document string, chunks []splitter.Chunk) error {
	if err := ix.backend.DeleteDocument(ctx, ix.store, document); err != nil {
		return fmt.Errorf("remove previous chunks for %s: %w", document, err)
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks for %s: %w", document, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(chunks))
	}

	vsChunks := make([]Chunk, len(chunks))
	for i, c := range chunks {
		vsChunks[i] = Chunk{
			ID:       c.ID(),
			Document: document,
			Store:    ix.store,
			Content:  c.Text,
			Vector:   vectors[i],
		}
	}

	if err := ix.backend.InsertChunks(ctx, vsChunks); err != nil {
		return fmt.Errorf("insert chunks for %s: %w", document, err)
	}
	return nil
}

// Remove deletes a document's chunks from the store.
func (ix *Indexer) Remove(ctx context.Context, document string) error {
	return ix.backend.DeleteDocument(ctx, ix.store, document)
}

// Search embeds query and returns the most similar chunks.
func (ix *Indexer) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	return ix.backend.Search(ctx, ix.store, vectors[0], topK)
}
