// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package milvus

import (
	"context"
	"os"
	"testing"
	"unicode/utf8"

	"github.com/leseb/docsplit/pkg/vectorstore"
)

func TestCollectionName(t *testing.T) {
	tests := map[string]string{
		"docs":         "docs",
		"my-docs.v2":   "my_docs_v2",
		"2024_reports": "_2024_reports",
		"":             "_",
		"run_abc123":   "run_abc123",
	}
	for in, want := range tests {
		if got := collectionName(in); got != want {
			t.Errorf("collectionName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeExpr(t *testing.T) {
	if got := escapeExpr(`a "quoted" \ name`); got != `a \"quoted\" \\ name` {
		t.Errorf("escapeExpr() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	s := "ééé" // 6 bytes
	got := truncate(s, 3)
	if got != "é" || !utf8.ValidString(got) {
		t.Errorf("truncate(%q, 3) = %q, want %q", s, got, "é")
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Errorf("truncate short string = %q", got)
	}
}

func TestBackendIntegration(t *testing.T) {
	addr := os.Getenv("MILVUS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Milvus integration test: MILVUS_ADDRESS must be set")
	}

	ctx := context.Background()
	b, err := NewBackend(ctx, addr)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	defer b.Close(ctx)

	const store = "docsplit_test"
	b.DeleteStore(ctx, store)
	if err := b.CreateStore(ctx, store, 2); err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	defer b.DeleteStore(ctx, store)

	err = b.InsertChunks(ctx, []vectorstore.Chunk{
		{ID: "a_0", Document: "a", Store: store, Content: "east", Vector: []float32{1, 0}},
		{ID: "b_0", Document: "b", Store: store, Content: "north", Vector: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("InsertChunks: %v", err)
	}

	results, err := b.Search(ctx, store, []float32{1, 0.1}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "a_0" {
		t.Errorf("unexpected results: %+v", results)
	}
}
