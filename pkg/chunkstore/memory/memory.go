// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/splitter"
)

func init() {
	chunkstore.Providers.Register("memory", func(_ context.Context, _ provider.Params) (chunkstore.Store, error) {
		return New(), nil
	})
}

// compile-time check
var _ chunkstore.Store = (*Store)(nil)

// Store keeps records in a map.
type Store struct {
	mu      sync.RWMutex
	records map[string]chunkstore.Record
}

// New creates an empty in-memory chunk store.
func New() *Store {
	return &Store{records: make(map[string]chunkstore.Record)}
}

// SaveDocument stores a copy of rec.
func (s *Store) SaveDocument(_ context.Context, rec chunkstore.Record) error {
	rec.Chunks = append([]splitter.Chunk(nil), rec.Chunks...)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Document] = rec
	return nil
}

// ListChunks returns a copy of the stored chunks.
func (s *Store) ListChunks(_ context.Context, document string) ([]splitter.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[document]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", document, chunkstore.ErrNotFound)
	}
	return append([]splitter.Chunk(nil), rec.Chunks...), nil
}

// ListDocuments returns stored documents sorted by name.
func (s *Store) ListDocuments(_ context.Context) ([]chunkstore.DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]chunkstore.DocumentInfo, 0, len(s.records))
	for _, rec := range s.records {
		infos = append(infos, chunkstore.DocumentInfo{
			Document:   rec.Document,
			RunID:      rec.RunID,
			Length:     rec.Length,
			ChunkCount: len(rec.Chunks),
			CreatedAt:  rec.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Document < infos[j].Document })
	return infos, nil
}

// DeleteDocument removes a document.
func (s *Store) DeleteDocument(_ context.Context, document string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[document]; !ok {
		return fmt.Errorf("document %s: %w", document, chunkstore.ErrNotFound)
	}
	delete(s.records, document)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
