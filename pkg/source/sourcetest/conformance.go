// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package sourcetest provides a shared conformance suite for source.Source
// implementations that also implement source.Writer. Each backend calls
// RunConformanceTests from its own _test.go file.
package sourcetest

import (
	"context"
	"errors"
	"testing"

	"github.com/leseb/docsplit/pkg/source"
)

// NewSource returns an empty, isolated source filtered by exts.
type NewSource func(t *testing.T, exts []string) source.Source

func put(t *testing.T, src source.Source, name, content string) {
	t.Helper()
	w, ok := src.(source.Writer)
	if !ok {
		t.Fatalf("%T does not implement source.Writer", src)
	}
	if err := w.Put(context.Background(), name, []byte(content)); err != nil {
		t.Fatalf("Put(%s): %v", name, err)
	}
}

// RunConformanceTests exercises a Source against the shared contract.
func RunConformanceTests(t *testing.T, newSource NewSource) {
	t.Helper()

	t.Run("PutAndRead", func(t *testing.T) {
		src := newSource(t, nil)
		defer src.Close(context.Background())

		put(t, src, "hello.txt", "hello world")
		got, err := src.Read(context.Background(), "hello.txt")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(got) != "hello world" {
			t.Errorf("Read = %q, want %q", got, "hello world")
		}
	})

	t.Run("ListSorted", func(t *testing.T) {
		src := newSource(t, nil)
		defer src.Close(context.Background())

		for _, name := range []string{"c.txt", "a.txt", "sub/b.txt"} {
			put(t, src, name, "x")
		}
		refs, err := src.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"a.txt", "c.txt", "sub/b.txt"}
		if len(refs) != len(want) {
			t.Fatalf("List returned %d refs, want %d: %+v", len(refs), len(want), refs)
		}
		for i, ref := range refs {
			if ref.Name != want[i] {
				t.Errorf("refs[%d] = %q, want %q", i, ref.Name, want[i])
			}
			if ref.Size != 1 {
				t.Errorf("refs[%d] size = %d, want 1", i, ref.Size)
			}
		}
	})

	t.Run("ExtensionFilter", func(t *testing.T) {
		src := newSource(t, []string{".pdf"})
		defer src.Close(context.Background())

		put(t, src, "keep.pdf", "%PDF")
		put(t, src, "skip.txt", "text")
		refs, err := src.List(context.Background())
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(refs) != 1 || refs[0].Name != "keep.pdf" {
			t.Errorf("List = %+v, want only keep.pdf", refs)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		src := newSource(t, nil)
		defer src.Close(context.Background())

		put(t, src, "doc.txt", "first")
		put(t, src, "doc.txt", "second")
		got, err := src.Read(context.Background(), "doc.txt")
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Read = %q, want %q", got, "second")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		src := newSource(t, nil)
		defer src.Close(context.Background())

		_, err := src.Read(context.Background(), "missing.txt")
		if !errors.Is(err, source.ErrNotFound) {
			t.Errorf("Read expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("RejectsEscapingNames", func(t *testing.T) {
		src := newSource(t, nil)
		defer src.Close(context.Background())

		w := src.(source.Writer)
		if err := w.Put(context.Background(), "../outside.txt", []byte("x")); err == nil {
			t.Error("expected Put to reject a name outside the source root")
		}
	})
}
