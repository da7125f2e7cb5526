// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package sqlstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/splitter"

	_ "modernc.org/sqlite"
)

func TestStore_Placeholders(t *testing.T) {
	query := `INSERT INTO t (a, b) VALUES (?, ?)`
	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"sqlite", Dialect{Name: "sqlite", Placeholder: QuestionMark}, query},
		{"postgres", Dialect{Name: "postgres", Placeholder: Dollar}, `INSERT INTO t (a, b) VALUES ($1, $2)`},
		{"none", Dialect{Name: "raw"}, query},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Store{dialect: tt.dialect}
			if got := s.q(query); got != tt.want {
				t.Errorf("q() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newSQLiteStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	s, err := New(context.Background(), db, Dialect{Name: "sqlite", Placeholder: QuestionMark})
	if err != nil {
		db.Close()
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, db
}

func TestStore_DeleteDocumentIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)

	chunks, err := splitter.Split(splitter.Config{TargetLength: 8, Separators: []string{" "}}, "a.txt", "alpha beta gamma")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if err := s.SaveDocument(ctx, chunkstore.Record{Document: "a.txt", Length: 16, Chunks: chunks}); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	// Make the second statement fail; the document row must survive.
	if _, err := db.ExecContext(ctx, `DROP TABLE chunks`); err != nil {
		t.Fatalf("drop chunks: %v", err)
	}
	if err := s.DeleteDocument(ctx, "a.txt"); err == nil {
		t.Fatal("DeleteDocument succeeded without a chunks table")
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE name = ?`, "a.txt").Scan(&n); err != nil {
		t.Fatalf("count documents: %v", err)
	}
	if n != 1 {
		t.Errorf("document rows after failed delete = %d, want 1", n)
	}
}

func TestStore_DeleteDocumentRemovesChunks(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)

	chunks, err := splitter.Split(splitter.Config{TargetLength: 8, Separators: []string{" "}}, "a.txt", "alpha beta gamma")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if err := s.SaveDocument(ctx, chunkstore.Record{Document: "a.txt", Length: 16, Chunks: chunks}); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, "a.txt"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE document = ?`, "a.txt").Scan(&n); err != nil {
		t.Fatalf("count chunks: %v", err)
	}
	if n != 0 {
		t.Errorf("chunk rows after delete = %d, want 0", n)
	}
}
