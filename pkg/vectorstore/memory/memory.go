// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package memory is an in-process vector store with brute-force cosine search.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/vectorstore"
)

func init() {
	vectorstore.Providers.Register("memory", func(_ context.Context, _ provider.Params) (vectorstore.Backend, error) {
		return New(), nil
	})
}

// compile-time check
var _ vectorstore.Backend = (*Backend)(nil)

type collection struct {
	dimensions int
	chunks     map[string]vectorstore.Chunk // by chunk id
}

// Backend keeps every store in memory.
type Backend struct {
	mu     sync.RWMutex
	stores map[string]*collection
}

// New creates an empty backend.
func New() *Backend {
	return &Backend{stores: make(map[string]*collection)}
}

func (b *Backend) CreateStore(_ context.Context, store string, dimensions int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.stores[store]; ok {
		if c.dimensions != dimensions && dimensions > 0 && c.dimensions > 0 {
			return fmt.Errorf("store %s has %d dimensions, not %d: %w", store, c.dimensions, dimensions, vectorstore.ErrDimensionMismatch)
		}
		return nil
	}
	b.stores[store] = &collection{dimensions: dimensions, chunks: make(map[string]vectorstore.Chunk)}
	return nil
}

func (b *Backend) DeleteStore(_ context.Context, store string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.stores, store)
	return nil
}

func (b *Backend) InsertChunks(_ context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	store := chunks[0].Store
	c, ok := b.stores[store]
	if !ok {
		return fmt.Errorf("store %s does not exist", store)
	}
	for _, ch := range chunks {
		if c.dimensions == 0 {
			c.dimensions = len(ch.Vector)
		}
		if len(ch.Vector) != c.dimensions {
			return fmt.Errorf("chunk %s has %d dimensions, store wants %d: %w", ch.ID, len(ch.Vector), c.dimensions, vectorstore.ErrDimensionMismatch)
		}
	}
	for _, ch := range chunks {
		ch.Vector = append([]float32(nil), ch.Vector...)
		c.chunks[ch.ID] = ch
	}
	return nil
}

func (b *Backend) DeleteDocument(_ context.Context, store, document string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.stores[store]
	if !ok {
		return nil
	}
	for id, ch := range c.chunks {
		if ch.Document == document {
			delete(c.chunks, id)
		}
	}
	return nil
}

func (b *Backend) Search(_ context.Context, store string, queryVector []float32, topK int) ([]vectorstore.SearchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.stores[store]
	if !ok {
		return nil, nil
	}
	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}

	results := make([]vectorstore.SearchResult, 0, len(c.chunks))
	for _, ch := range c.chunks {
		if len(ch.Vector) != len(queryVector) {
			return nil, fmt.Errorf("query has %d dimensions, store has %d: %w", len(queryVector), len(ch.Vector), vectorstore.ErrDimensionMismatch)
		}
		results = append(results, vectorstore.SearchResult{
			Document: ch.Document,
			ChunkID:  ch.ID,
			Content:  ch.Content,
			Score:    cosine(queryVector, ch.Vector),
		})
	}

	// Ties break on chunk id so results are stable.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ChunkID < results[j].ChunkID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (b *Backend) Close(_ context.Context) error {
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
