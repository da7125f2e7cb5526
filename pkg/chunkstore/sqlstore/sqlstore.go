// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlstore implements chunkstore.Store over database/sql. The
// sqlite and postgres packages open a driver and pick a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/splitter"
)

// Dialect captures the SQL differences between drivers.
type Dialect struct {
	Name string
	// Placeholder returns the bind marker for the n-th argument (1-based).
	Placeholder func(n int) string
}

// QuestionMark is the sqlite placeholder style.
func QuestionMark(int) string { return "?" }

// Dollar is the postgres placeholder style.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Store is a SQL-backed chunk store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// compile-time check
var _ chunkstore.Store = (*Store)(nil)

// New wraps an open database and creates the schema if needed.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Store, error) {
	s := &Store{db: db, dialect: dialect}
	if err := s.createTables(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			run_id TEXT NOT NULL DEFAULT '',
			length BIGINT NOT NULL DEFAULT 0,
			chunk_count BIGINT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			document TEXT NOT NULL,
			idx BIGINT NOT NULL,
			chunk_id TEXT NOT NULL,
			text TEXT NOT NULL,
			overlap BIGINT NOT NULL DEFAULT 0,
			start_offset BIGINT NOT NULL,
			end_offset BIGINT NOT NULL,
			length BIGINT NOT NULL,
			PRIMARY KEY (document, idx)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_chunk_id ON chunks(chunk_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s create tables: %w", s.dialect.Name, err)
		}
	}
	return nil
}

// q rewrites "?" markers into the dialect's placeholder style.
func (s *Store) q(query string) string {
	if s.dialect.Placeholder == nil {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(s.dialect.Placeholder(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SaveDocument replaces the document row and its chunks in one transaction.
func (s *Store) SaveDocument(ctx context.Context, rec chunkstore.Record) (err error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, s.q(`DELETE FROM chunks WHERE document = ?`), rec.Document); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}
	if _, err = tx.ExecContext(ctx, s.q(`DELETE FROM documents WHERE name = ?`), rec.Document); err != nil {
		return fmt.Errorf("delete old document: %w", err)
	}
	if _, err = tx.ExecContext(ctx,
		s.q(`INSERT INTO documents (name, run_id, length, chunk_count, created_at) VALUES (?, ?, ?, ?, ?)`),
		rec.Document, rec.RunID, rec.Length, len(rec.Chunks), createdAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert document %s: %w", rec.Document, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.q(
		`INSERT INTO chunks (document, idx, chunk_id, text, overlap, start_offset, end_offset, length)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rec.Chunks {
		if _, err = stmt.ExecContext(ctx,
			rec.Document, c.Index, c.ID(), c.Text, c.Overlap, c.Start, c.End, c.Length,
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ID(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListChunks returns a document's chunks ordered by index.
func (s *Store) ListChunks(ctx context.Context, document string) ([]splitter.Chunk, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, s.q(`SELECT 1 FROM documents WHERE name = ?`), document).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", document, chunkstore.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.q(
		`SELECT idx, text, overlap, start_offset, end_offset, length
		 FROM chunks WHERE document = ? ORDER BY idx`), document)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	var chunks []splitter.Chunk
	for rows.Next() {
		c := splitter.Chunk{Source: document}
		if err := rows.Scan(&c.Index, &c.Text, &c.Overlap, &c.Start, &c.End, &c.Length); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ListDocuments returns every stored document sorted by name.
func (s *Store) ListDocuments(ctx context.Context) ([]chunkstore.DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, run_id, length, chunk_count, created_at FROM documents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var infos []chunkstore.DocumentInfo
	for rows.Next() {
		var (
			info      chunkstore.DocumentInfo
			createdAt int64
		)
		if err := rows.Scan(&info.Document, &info.RunID, &info.Length, &info.ChunkCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		info.CreatedAt = time.Unix(0, createdAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteDocument removes a document and its chunks in one transaction.
func (s *Store) DeleteDocument(ctx context.Context, document string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM documents WHERE name = ?`), document)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document %s: %w", document, chunkstore.ErrNotFound)
	}
	if _, err = tx.ExecContext(ctx, s.q(`DELETE FROM chunks WHERE document = ?`), document); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
