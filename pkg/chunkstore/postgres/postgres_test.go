// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/chunkstore/chunkstoretest"
	"github.com/leseb/docsplit/pkg/chunkstore/postgres"
)

func TestPostgresConformance(t *testing.T) {
	dsn := os.Getenv("CHUNK_STORE_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("Skipping Postgres conformance tests: CHUNK_STORE_POSTGRES_DSN must be set")
	}

	chunkstoretest.RunConformanceTests(t, func(t *testing.T) chunkstore.Store {
		store, err := postgres.New(context.Background(), dsn)
		if err != nil {
			t.Fatalf("postgres.New: %v", err)
		}
		chunkstoretest.Purge(t, store)
		return store
	})
}

func TestNew_RequiresDSN(t *testing.T) {
	if _, err := postgres.New(context.Background(), ""); err == nil {
		t.Error("expected error for empty dsn")
	}
}
