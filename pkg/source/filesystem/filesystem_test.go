// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leseb/docsplit/pkg/source"
	"github.com/leseb/docsplit/pkg/source/filesystem"
	"github.com/leseb/docsplit/pkg/source/sourcetest"
)

func TestFilesystemConformance(t *testing.T) {
	sourcetest.RunConformanceTests(t, func(t *testing.T, exts []string) source.Source {
		store, err := filesystem.New(t.TempDir(), exts)
		if err != nil {
			t.Fatalf("filesystem.New: %v", err)
		}
		return store
	})
}

func TestFilesystem_SkipsHiddenAndNested(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":          "a",
		"nested/b.txt":   "b",
		".hidden.txt":    "h",
		".git/config":    "g",
		"nested/.tmp/cc": "c",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store, err := filesystem.New(dir, nil)
	if err != nil {
		t.Fatalf("filesystem.New: %v", err)
	}
	refs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 || refs[0].Name != "a.txt" || refs[1].Name != "nested/b.txt" {
		t.Errorf("List() = %+v, want [a.txt nested/b.txt]", refs)
	}
}

func TestFilesystem_NewRejectsMissingDir(t *testing.T) {
	if _, err := filesystem.New(filepath.Join(t.TempDir(), "missing"), nil); err == nil {
		t.Error("expected error for missing base dir")
	}
}
