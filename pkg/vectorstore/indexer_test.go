// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package vectorstore_test

import (
	"context"
	"strings"
	"testing"

	"github.com/leseb/docsplit/pkg/splitter"
	"github.com/leseb/docsplit/pkg/vectorstore"
	"github.com/leseb/docsplit/pkg/vectorstore/memory"
)

// letterEmbedder maps text to counts of the letters a, b and c.
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, in := range inputs {
		out[i] = []float32{
			float32(strings.Count(in, "a")),
			float32(strings.Count(in, "b")),
			float32(strings.Count(in, "c")),
		}
	}
	return out, nil
}

func TestIndexer_IndexAndSearch(t *testing.T) {
	ctx := context.Background()
	ix := vectorstore.NewIndexer(letterEmbedder{}, memory.New(), "docs", 3)
	if err := ix.EnsureStore(ctx); err != nil {
		t.Fatalf("EnsureStore: %v", err)
	}

	chunks, err := splitter.Split(splitter.Config{TargetLength: 9, Separators: []string{" "}}, "letters.txt", "aaaa bbbb cccc")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if err := ix.Index(ctx, "letters.txt", chunks); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := ix.Search(ctx, "ccc", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Content, "cccc") {
		t.Fatalf("unexpected search results: %+v", results)
	}
	if results[0].ChunkID != chunks[len(chunks)-1].ID() {
		t.Errorf("ChunkID = %q, want %q", results[0].ChunkID, chunks[len(chunks)-1].ID())
	}
}

func TestIndexer_ReindexReplaces(t *testing.T) {
	ctx := context.Background()
	ix := vectorstore.NewIndexer(letterEmbedder{}, memory.New(), "docs", 3)
	ix.EnsureStore(ctx)

	first, _ := splitter.Split(splitter.Config{TargetLength: 4, Separators: []string{" "}}, "d", "aaaa bbbb")
	second, _ := splitter.Split(splitter.Config{TargetLength: 4, Separators: []string{" "}}, "d", "cccc")
	if err := ix.Index(ctx, "d", first); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := ix.Index(ctx, "d", second); err != nil {
		t.Fatalf("Index (again): %v", err)
	}

	results, err := ix.Search(ctx, "abc", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Content != "cccc" {
		t.Errorf("expected only the re-indexed chunk, got %+v", results)
	}

	if err := ix.Remove(ctx, "d"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if results, _ := ix.Search(ctx, "abc", 10); len(results) != 0 {
		t.Errorf("expected no results after Remove, got %+v", results)
	}
}
