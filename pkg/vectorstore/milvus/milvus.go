// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package milvus

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/vectorstore"
	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	fieldChunkID   = "chunk_id"
	fieldDocument  = "document"
	fieldContent   = "content"
	fieldEmbedding = "embedding"

	maxContentLength = 65535
	maxChunkIDLength  = 512
	maxDocumentLength = 512
)

func init() {
	vectorstore.Providers.Register("milvus", func(ctx context.Context, params provider.Params) (vectorstore.Backend, error) {
		return NewBackend(ctx, params.Get("address", "localhost:19530"))
	})
}

// compile-time check
var _ vectorstore.Backend = (*Backend)(nil)

// Backend implements vectorstore.Backend using Milvus.
// One Milvus collection is created per vector store.
type Backend struct {
	client milvusclient.Client
}

// NewBackend connects to Milvus and returns a Backend.
func NewBackend(ctx context.Context, address string) (*Backend, error) {
	c, err := milvusclient.NewClient(ctx, milvusclient.Config{
		Address: address,
	})
	if err != nil {
		return nil, fmt.Errorf("milvus connect %s: %w", address, err)
	}
	return &Backend{client: c}, nil
}

// collectionName maps a store name onto Milvus' [A-Za-z_][A-Za-z0-9_]*
// naming rule.
func collectionName(store string) string {
	var sb strings.Builder
	for i, r := range store {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// CreateStore creates a Milvus collection, an HNSW index, and loads it.
// An existing collection is left as is.
func (b *Backend) CreateStore(ctx context.Context, store string, dimensions int) error {
	coll := collectionName(store)

	exists, err := b.client.HasCollection(ctx, coll)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", coll, err)
	}
	if exists {
		return b.client.LoadCollection(ctx, coll, false)
	}
	if dimensions <= 0 {
		return fmt.Errorf("create collection %s: dimensions must be positive", coll)
	}

	schema := entity.NewSchema().
		WithName(coll).
		WithField(entity.NewField().
			WithName(fieldChunkID).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(int64(maxChunkIDLength)).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldDocument).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(int64(maxDocumentLength))).
		WithField(entity.NewField().
			WithName(fieldContent).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(int64(maxContentLength))).
		WithField(entity.NewField().
			WithName(fieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dimensions)))

	if err := b.client.CreateCollection(ctx, schema, 1); err != nil {
		return fmt.Errorf("create collection %s: %w", coll, err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, 16, 200)
	if err != nil {
		return fmt.Errorf("create HNSW index params: %w", err)
	}

	if err := b.client.CreateIndex(ctx, coll, fieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("create index on %s: %w", coll, err)
	}

	if err := b.client.LoadCollection(ctx, coll, false); err != nil {
		return fmt.Errorf("load collection %s: %w", coll, err)
	}

	return nil
}

// DeleteStore drops the Milvus collection for the given store.
func (b *Backend) DeleteStore(ctx context.Context, store string) error {
	coll := collectionName(store)

	exists, err := b.client.HasCollection(ctx, coll)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", coll, err)
	}
	if !exists {
		return nil
	}

	if err := b.client.DropCollection(ctx, coll); err != nil {
		return fmt.Errorf("drop collection %s: %w", coll, err)
	}
	return nil
}

// InsertChunks inserts embedded chunks into the appropriate Milvus collection.
// All chunks must belong to the same vector store.
func (b *Backend) InsertChunks(ctx context.Context, chunks []vectorstore.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	coll := collectionName(chunks[0].Store)

	chunkIDs := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	contents := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))

	dim := len(chunks[0].Vector)
	for i, c := range chunks {
		if len(c.Vector) != dim {
			return fmt.Errorf("chunk %s has %d dimensions, want %d: %w", c.ID, len(c.Vector), dim, vectorstore.ErrDimensionMismatch)
		}
		chunkIDs[i] = c.ID
		documents[i] = c.Document
		contents[i] = truncate(c.Content, maxContentLength)
		vectors[i] = c.Vector
	}

	_, err := b.client.Upsert(ctx, coll, "",
		entity.NewColumnVarChar(fieldChunkID, chunkIDs),
		entity.NewColumnVarChar(fieldDocument, documents),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnFloatVector(fieldEmbedding, dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", coll, err)
	}

	if err := b.client.Flush(ctx, coll, false); err != nil {
		return fmt.Errorf("flush %s: %w", coll, err)
	}

	return nil
}

// DeleteDocument removes all chunks of a document from the store.
func (b *Backend) DeleteDocument(ctx context.Context, store, document string) error {
	coll := collectionName(store)

	exists, err := b.client.HasCollection(ctx, coll)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", coll, err)
	}
	if !exists {
		return nil
	}

	expr := fmt.Sprintf(`%s == "%s"`, fieldDocument, escapeExpr(document))
	if err := b.client.Delete(ctx, coll, "", expr); err != nil {
		return fmt.Errorf("delete document chunks from %s: %w", coll, err)
	}
	return nil
}

// Search performs a vector similarity search in the given store.
func (b *Backend) Search(ctx context.Context, store string, queryVector []float32, topK int) ([]vectorstore.SearchResult, error) {
	coll := collectionName(store)

	exists, err := b.client.HasCollection(ctx, coll)
	if err != nil {
		return nil, fmt.Errorf("check collection %s: %w", coll, err)
	}
	if !exists {
		return nil, nil
	}

	if topK <= 0 {
		topK = vectorstore.DefaultTopK
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("create search params: %w", err)
	}

	results, err := b.client.Search(
		ctx,
		coll,
		nil,
		"",
		[]string{fieldChunkID, fieldDocument, fieldContent},
		[]entity.Vector{entity.FloatVector(queryVector)},
		fieldEmbedding,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", coll, err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	sr := results[0]
	if sr.Err != nil {
		return nil, fmt.Errorf("search result error: %w", sr.Err)
	}

	chunkIDCol := sr.Fields.GetColumn(fieldChunkID)
	documentCol := sr.Fields.GetColumn(fieldDocument)
	contentCol := sr.Fields.GetColumn(fieldContent)

	var out []vectorstore.SearchResult
	for i := 0; i < sr.ResultCount; i++ {
		chunkID, _ := chunkIDCol.GetAsString(i)
		document, _ := documentCol.GetAsString(i)
		content, _ := contentCol.GetAsString(i)

		out = append(out, vectorstore.SearchResult{
			Document: document,
			ChunkID:  chunkID,
			Content:  content,
			Score:    float64(sr.Scores[i]),
		})
	}

	return out, nil
}

// Close releases the Milvus client connection.
func (b *Backend) Close(ctx context.Context) error {
	return b.client.Close()
}

// escapeExpr escapes backslashes and double quotes for Milvus filter expressions.
func escapeExpr(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
