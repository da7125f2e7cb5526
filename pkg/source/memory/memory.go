// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/source"
)

func init() {
	source.Providers.Register("memory", func(_ context.Context, params provider.Params) (source.Source, error) {
		return New(source.ParseExtensions(params["extensions"])), nil
	})
}

// compile-time check
var (
	_ source.Source = (*Store)(nil)
	_ source.Writer = (*Store)(nil)
)

type document struct {
	content []byte
	modTime time.Time
}

// Store is an in-memory document source.
type Store struct {
	mu   sync.RWMutex
	docs map[string]document
	exts []string
}

// New creates an empty in-memory source. exts filters List; nil lists all.
func New(exts []string) *Store {
	return &Store{
		docs: make(map[string]document),
		exts: exts,
	}
}

// Put stores or replaces a document.
func (s *Store) Put(_ context.Context, name string, content []byte) error {
	name, err := source.CleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = document{
		content: append([]byte(nil), content...),
		modTime: time.Now(),
	}
	return nil
}

// List returns the stored documents sorted by name.
func (s *Store) List(_ context.Context) ([]source.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]source.Ref, 0, len(s.docs))
	for name, doc := range s.docs {
		if !source.MatchExtension(name, s.exts) {
			continue
		}
		refs = append(refs, source.Ref{Name: name, Size: int64(len(doc.content)), ModTime: doc.modTime})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Read returns a copy of the document bytes.
func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", name, source.ErrNotFound)
	}
	return append([]byte(nil), doc.content...), nil
}

// Close is a no-op for the in-memory source.
func (s *Store) Close(_ context.Context) error {
	return nil
}
