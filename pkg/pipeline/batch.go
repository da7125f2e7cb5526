// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/observability/logging"
	"github.com/leseb/docsplit/pkg/source"
	"github.com/leseb/docsplit/pkg/vectorstore"
)

// Batch processes many documents with a bounded number of workers and
// forwards each result to the configured sinks.
type Batch struct {
	processor *Processor
	workers   int
	store     chunkstore.Store
	indexer   *vectorstore.Indexer
	logger    *logging.Logger
	runID     string
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithWorkers bounds concurrency. Values below 1 select runtime.NumCPU().
func WithWorkers(n int) BatchOption {
	return func(b *Batch) { b.workers = n }
}

// WithChunkStore persists every successful result.
func WithChunkStore(s chunkstore.Store) BatchOption {
	return func(b *Batch) { b.store = s }
}

// WithIndexer embeds and indexes every successful result.
func WithIndexer(ix *vectorstore.Indexer) BatchOption {
	return func(b *Batch) { b.indexer = ix }
}

// WithLogger sets the logger for per-document lines.
func WithLogger(l *logging.Logger) BatchOption {
	return func(b *Batch) { b.logger = l }
}

// WithRunID overrides the generated run id.
func WithRunID(id string) BatchOption {
	return func(b *Batch) { b.runID = id }
}

// NewBatch creates a Batch around p.
func NewBatch(p *Processor, opts ...BatchOption) *Batch {
	b := &Batch{processor: p}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = runtime.NumCPU()
	}
	if b.logger == nil {
		b.logger = logging.Discard()
	}
	if b.runID == "" {
		b.runID = uuid.NewString()
	}
	return b
}

// RunID identifies this batch in stored records.
func (b *Batch) RunID() string {
	return b.runID
}

// Run processes docs. Results are returned in input order, and a failing
// document never affects the others. When ctx is cancelled, documents not
// yet started are abandoned with the context error and Run returns it.
func (b *Batch) Run(ctx context.Context, docs []Document) ([]Result, error) {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return b.run(ctx, names, func(_ context.Context, i int) (Document, error) {
		return docs[i], nil
	})
}

// RunSource processes every document listed by src. Reads happen inside
// the workers, so at most Workers documents are held in memory at once.
func (b *Batch) RunSource(ctx context.Context, src source.Source) ([]Result, error) {
	refs, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return b.run(ctx, names, func(ctx context.Context, i int) (Document, error) {
		content, err := src.Read(ctx, names[i])
		if err != nil {
			return Document{Name: names[i]}, err
		}
		return Document{Name: names[i], Content: content}, nil
	})
}

type loadFunc func(ctx context.Context, i int) (Document, error)

func (b *Batch) run(ctx context.Context, names []string, load loadFunc) ([]Result, error) {
	results := make([]Result, len(names))
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(b.workers)

	for i := range names {
		if ctx.Err() != nil {
			abandon(results[i:], names[i:], ctx.Err())
			break
		}
		g.Go(func() error {
			results[i] = b.one(ctx, i, names[i], load)
			return nil
		})
	}
	g.Wait()

	sum := Summarize(results)
	b.logger.Info("batch finished",
		"run_id", b.runID,
		"files", sum.Files,
		"failed", sum.Failed,
		"empty", sum.Empty,
		"chunks", sum.TotalChunks,
		"length", sum.TotalLength,
		"duration", time.Since(start),
	)
	return results, ctx.Err()
}

func abandon(results []Result, names []string, err error) {
	for i := range results {
		results[i] = Result{Document: names[i], Err: err}
	}
}

func (b *Batch) one(ctx context.Context, i int, name string, load loadFunc) Result {
	if err := ctx.Err(); err != nil {
		return Result{Document: name, Err: err}
	}

	doc, err := load(ctx, i)
	if err != nil {
		b.logger.Error("failed to read document", "document", name, "error", err)
		return Result{Document: name, Err: err}
	}

	res, err := b.processor.Process(ctx, doc)
	if err != nil {
		res.Err = err
		b.logger.Error("failed to process document", "document", name, "error", err)
		return res
	}

	if err := b.sink(ctx, res); err != nil {
		res.Err = err
		b.logger.Error("failed to store document", "document", name, "error", err)
		return res
	}

	if errors.Is(res.Warning, ErrEmptyInput) {
		b.logger.Warn("document produced no chunks", "document", name)
	} else {
		b.logger.Info("processed document", "document", name, "chunks", len(res.Chunks), "length", res.Length)
	}
	return res
}

func (b *Batch) sink(ctx context.Context, res Result) error {
	if b.store != nil {
		rec := chunkstore.Record{
			RunID:     b.runID,
			Document:  res.Document,
			Length:    res.Length,
			Chunks:    res.Chunks,
			CreatedAt: time.Now(),
		}
		if err := b.store.SaveDocument(ctx, rec); err != nil {
			return fmt.Errorf("save chunks: %w", err)
		}
	}
	if b.indexer != nil {
		if err := b.indexer.Index(ctx, res.Document, res.Chunks); err != nil {
			return fmt.Errorf("index chunks: %w", err)
		}
	}
	return nil
}
