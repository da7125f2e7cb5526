// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunkstoretest provides a shared conformance test suite for
// chunkstore.Store implementations. Each backend calls RunConformanceTests
// from its own _test.go file.
package chunkstoretest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/splitter"
)

// NewStore returns a fresh, empty store for one subtest.
type NewStore func(t *testing.T) chunkstore.Store

// Purge deletes every document in store. Shared databases call it before
// handing the store to a subtest.
func Purge(t *testing.T, store chunkstore.Store) {
	t.Helper()
	ctx := context.Background()
	docs, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	for _, d := range docs {
		if err := store.DeleteDocument(ctx, d.Document); err != nil {
			t.Fatalf("DeleteDocument(%s): %v", d.Document, err)
		}
	}
}

func record(t *testing.T, document, text string) chunkstore.Record {
	t.Helper()
	chunks, err := splitter.Split(splitter.Config{
		TargetLength:  12,
		OverlapLength: 3,
		Separators:    []string{" "},
	}, document, text)
	if err != nil {
		t.Fatalf("splitter.Split: %v", err)
	}
	return chunkstore.Record{
		RunID:     "run-1",
		Document:  document,
		Length:    len([]rune(text)),
		Chunks:    chunks,
		CreatedAt: time.Unix(1700000000, 0),
	}
}

// RunConformanceTests exercises a Store against the shared contract.
func RunConformanceTests(t *testing.T, newStore NewStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndList", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		rec := record(t, "a.txt", "the quick brown fox jumps over the lazy dog")
		if err := store.SaveDocument(ctx, rec); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}

		got, err := store.ListChunks(ctx, "a.txt")
		if err != nil {
			t.Fatalf("ListChunks: %v", err)
		}
		if !reflect.DeepEqual(got, rec.Chunks) {
			t.Errorf("ListChunks() = %+v, want %+v", got, rec.Chunks)
		}
		if splitter.Reconstruct(got) != "the quick brown fox jumps over the lazy dog" {
			t.Error("stored chunks do not reconstruct the document")
		}
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		if err := store.SaveDocument(ctx, record(t, "a.txt", "one two three four five six seven eight")); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
		replacement := record(t, "a.txt", "short")
		replacement.RunID = "run-2"
		if err := store.SaveDocument(ctx, replacement); err != nil {
			t.Fatalf("SaveDocument (replace): %v", err)
		}

		got, err := store.ListChunks(ctx, "a.txt")
		if err != nil {
			t.Fatalf("ListChunks: %v", err)
		}
		if len(got) != 1 || got[0].Text != "short" {
			t.Errorf("expected the replacement's single chunk, got %+v", got)
		}

		docs, err := store.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments: %v", err)
		}
		if len(docs) != 1 || docs[0].RunID != "run-2" || docs[0].ChunkCount != 1 {
			t.Errorf("unexpected documents after replace: %+v", docs)
		}
	})

	t.Run("ListDocumentsSorted", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
			if err := store.SaveDocument(ctx, record(t, name, "some body text for "+name)); err != nil {
				t.Fatalf("SaveDocument(%s): %v", name, err)
			}
		}
		docs, err := store.ListDocuments(ctx)
		if err != nil {
			t.Fatalf("ListDocuments: %v", err)
		}
		var names []string
		for _, d := range docs {
			names = append(names, d.Document)
		}
		if want := []string{"a.txt", "b.txt", "c.txt"}; !reflect.DeepEqual(names, want) {
			t.Errorf("ListDocuments() = %v, want %v", names, want)
		}
		if !docs[0].CreatedAt.Equal(time.Unix(1700000000, 0)) {
			t.Errorf("CreatedAt = %v, want %v", docs[0].CreatedAt, time.Unix(1700000000, 0))
		}
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		rec := record(t, "empty.txt", "")
		if err := store.SaveDocument(ctx, rec); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
		got, err := store.ListChunks(ctx, "empty.txt")
		if err != nil {
			t.Fatalf("ListChunks: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected no chunks, got %d", len(got))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		if err := store.SaveDocument(ctx, record(t, "a.txt", "to be deleted soon enough")); err != nil {
			t.Fatalf("SaveDocument: %v", err)
		}
		if err := store.DeleteDocument(ctx, "a.txt"); err != nil {
			t.Fatalf("DeleteDocument: %v", err)
		}
		if _, err := store.ListChunks(ctx, "a.txt"); !errors.Is(err, chunkstore.ErrNotFound) {
			t.Errorf("ListChunks after delete = %v, want ErrNotFound", err)
		}
		if err := store.DeleteDocument(ctx, "a.txt"); !errors.Is(err, chunkstore.ErrNotFound) {
			t.Errorf("second DeleteDocument = %v, want ErrNotFound", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		if _, err := store.ListChunks(ctx, "missing.txt"); !errors.Is(err, chunkstore.ErrNotFound) {
			t.Errorf("ListChunks(missing) = %v, want ErrNotFound", err)
		}
	})
}
