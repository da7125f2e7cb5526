// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/chunkstore/sqlstore"
	"github.com/leseb/docsplit/pkg/provider"

	_ "modernc.org/sqlite"
)

func init() {
	chunkstore.Providers.Register("sqlite", func(ctx context.Context, params provider.Params) (chunkstore.Store, error) {
		return New(ctx, params.Get("path", "docsplit.db"))
	})
}

// New opens (or creates) a SQLite database. Use ":memory:" for a private
// in-process database.
func New(ctx context.Context, path string) (*sqlstore.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes
	// writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}

	s, err := sqlstore.New(ctx, db, sqlstore.Dialect{Name: "sqlite", Placeholder: sqlstore.QuestionMark})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
