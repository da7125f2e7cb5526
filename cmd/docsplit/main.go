// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/config"
	"github.com/leseb/docsplit/pkg/embedding"
	"github.com/leseb/docsplit/pkg/export"
	"github.com/leseb/docsplit/pkg/observability/logging"
	"github.com/leseb/docsplit/pkg/pipeline"
	"github.com/leseb/docsplit/pkg/source"
	"github.com/leseb/docsplit/pkg/splitter"
	"github.com/leseb/docsplit/pkg/vectorstore"

	_ "github.com/leseb/docsplit/pkg/chunkstore/memory"
	_ "github.com/leseb/docsplit/pkg/chunkstore/postgres"
	_ "github.com/leseb/docsplit/pkg/chunkstore/sqlite"
	_ "github.com/leseb/docsplit/pkg/source/filesystem"
	_ "github.com/leseb/docsplit/pkg/source/memory"
	_ "github.com/leseb/docsplit/pkg/source/s3"
	_ "github.com/leseb/docsplit/pkg/vectorstore/memory"
	_ "github.com/leseb/docsplit/pkg/vectorstore/milvus"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	src := flag.String("source", "", "Directory (or S3 prefix) to read documents from")
	exts := flag.String("ext", "", "Comma-separated extensions to include, e.g. .pdf,.txt")
	out := flag.String("out", "", "Export file path (default stdout)")
	format := flag.String("format", "", "Export format: json or jsonl")
	workers := flag.Int("workers", 0, "Concurrent documents (default one per CPU)")
	target := flag.Int("target", 0, "Target chunk length")
	overlap := flag.Int("overlap", -1, "Overlap length")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *version {
		fmt.Printf("docsplit\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		return 0
	}

	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docsplit: invalid configuration: %v\n", err)
		return 2
	}

	// Flags win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			if cfg.Source.Type == "s3" {
				cfg.Source.S3.Prefix = *src
			} else {
				cfg.Source.Path = *src
			}
		case "ext":
			cfg.Source.Extensions = source.ParseExtensions(*exts)
		case "out":
			cfg.Output.Path = *out
		case "format":
			cfg.Output.Format = *format
		case "workers":
			cfg.Batch.Workers = *workers
		case "target":
			cfg.Splitter.TargetLength = *target
		case "overlap":
			cfg.Splitter.OverlapLength = *overlap
		}
	})

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if !found {
		logger.Info("No config file, using defaults", "path", *configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	splitCfg, err := cfg.Splitter.Resolve()
	if err != nil {
		logger.Error("Invalid splitter configuration", "error", err)
		return 2
	}
	spl, err := splitter.New(splitCfg)
	if err != nil {
		logger.Error("Invalid splitter configuration", "error", err)
		return 2
	}

	write, err := export.Writer(cfg.Output.Format)
	if err != nil {
		logger.Error("Invalid output configuration", "error", err)
		return 2
	}

	docs, err := source.Providers.New(ctx, cfg.Source.Type, cfg.Source.Params())
	if err != nil {
		logger.Error("Failed to open document source", "error", err)
		return 1
	}
	defer docs.Close(context.Background())
	logger.Info("Opened document source", "type", cfg.Source.Type, "path", cfg.Source.Path)

	opts := []pipeline.BatchOption{
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithLogger(logger),
	}

	if cfg.ChunkStore.Type != "" {
		store, err := chunkstore.Providers.New(ctx, cfg.ChunkStore.Type, cfg.ChunkStore.Params())
		if err != nil {
			logger.Error("Failed to open chunk store", "error", err)
			return 1
		}
		defer store.Close()
		opts = append(opts, pipeline.WithChunkStore(store))
		logger.Info("Initialized chunk store", "type", cfg.ChunkStore.Type)
	}

	if cfg.VectorStore.Type != "" {
		ix, closeFn, err := newIndexer(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize indexing", "error", err)
			return 1
		}
		defer closeFn()
		opts = append(opts, pipeline.WithIndexer(ix))
		logger.Info("Initialized vector store", "type", cfg.VectorStore.Type, "collection", cfg.VectorStore.Collection, "model", cfg.Embedding.Model)
	}

	proc := pipeline.NewProcessor(spl, cfg.Normalize.Normalizer(), logger)
	batch := pipeline.NewBatch(proc, opts...)
	logger.Info("Starting batch",
		"run_id", batch.RunID(),
		"target_length", splitCfg.TargetLength,
		"overlap_length", splitCfg.OverlapLength,
		"length_unit", cfg.Splitter.LengthUnit)

	results, runErr := batch.RunSource(ctx, docs)
	if results == nil && runErr != nil {
		logger.Error("Batch failed", "error", runErr)
		return 1
	}

	if err := writeExport(cfg.Output.Path, write, results); err != nil {
		logger.Error("Failed to write export", "error", err)
		return 1
	}

	sum := pipeline.Summarize(results)
	if runErr != nil {
		logger.Warn("Batch interrupted", "error", runErr, "files", sum.Files, "failed", sum.Failed)
		return 130
	}
	if sum.Failed > 0 {
		var failed []string
		for _, r := range results {
			if r.Err != nil {
				failed = append(failed, r.Document)
			}
		}
		logger.Warn("Some documents failed", "count", sum.Failed, "documents", strings.Join(failed, ","))
		return 1
	}
	return 0
}

func newIndexer(ctx context.Context, cfg *config.Config) (*vectorstore.Indexer, func(), error) {
	emb, err := embedding.NewOpenAI(embedding.Options{
		BaseURL:    cfg.Embedding.Endpoint,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	})
	if err != nil {
		return nil, nil, err
	}

	backend, err := vectorstore.Providers.New(ctx, cfg.VectorStore.Type, cfg.VectorStore.Params())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { backend.Close(context.Background()) }

	ix := vectorstore.NewIndexer(emb, backend, cfg.VectorStore.Collection, cfg.Embedding.Dimensions)
	if err := ix.EnsureStore(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ix, closeFn, nil
}

func writeExport(path string, write func(io.Writer, []pipeline.Result) error, results []pipeline.Result) error {
	if path == "" || path == "-" {
		return write(os.Stdout, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
