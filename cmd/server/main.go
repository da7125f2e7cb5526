// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/leseb/docsplit/pkg/adapters/http"
	"github.com/leseb/docsplit/pkg/chunkstore"
	"github.com/leseb/docsplit/pkg/config"
	"github.com/leseb/docsplit/pkg/embedding"
	"github.com/leseb/docsplit/pkg/observability/logging"
	"github.com/leseb/docsplit/pkg/vectorstore"

	_ "github.com/leseb/docsplit/pkg/chunkstore/memory"
	_ "github.com/leseb/docsplit/pkg/chunkstore/postgres"
	_ "github.com/leseb/docsplit/pkg/chunkstore/sqlite"
	_ "github.com/leseb/docsplit/pkg/vectorstore/memory"
	_ "github.com/leseb/docsplit/pkg/vectorstore/milvus"
)

var (
	// Version is set via ldflags during build
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.Int("port", 8080, "HTTP port to listen on")
	version := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Print version
	if *version {
		fmt.Printf("docsplit server\nVersion: %s\nBuild Time: %s\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "docsplit server: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Override port if specified
	if *port != 8080 {
		cfg.Server.Port = *port
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info("Starting docsplit server",
		"version", Version,
		"build_time", BuildTime)
	if !found {
		logger.Info("No config file, using defaults", "path", *configPath)
	}

	splitCfg, err := cfg.Splitter.Resolve()
	if err != nil {
		logger.Error("Invalid splitter configuration", "error", err)
		os.Exit(1)
	}

	initCtx := context.Background()
	opts := httpAdapter.Options{
		Splitter:     splitCfg,
		Normalizer:   cfg.Normalize.Normalizer(),
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	// Initialize chunk store (optional)
	if cfg.ChunkStore.Type != "" {
		store, err := chunkstore.Providers.New(initCtx, cfg.ChunkStore.Type, cfg.ChunkStore.Params())
		if err != nil {
			logger.Error("Failed to initialize chunk store", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		opts.Store = store
		logger.Info("Initialized chunk store", "type", cfg.ChunkStore.Type)
	}

	// Initialize embedding client and vector store backend (optional)
	if cfg.VectorStore.Type != "" {
		embedder, err := embedding.NewOpenAI(embedding.Options{
			BaseURL:    cfg.Embedding.Endpoint,
			APIKey:     cfg.Embedding.APIKey,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			BatchSize:  cfg.Embedding.BatchSize,
		})
		if err != nil {
			logger.Error("Failed to initialize embedding client", "error", err)
			os.Exit(1)
		}
		logger.Info("Initialized embedding client", "endpoint", cfg.Embedding.Endpoint, "model", cfg.Embedding.Model)

		backend, err := vectorstore.Providers.New(initCtx, cfg.VectorStore.Type, cfg.VectorStore.Params())
		if err != nil {
			logger.Error("Failed to initialize vector store backend", "error", err)
			os.Exit(1)
		}
		defer backend.Close(context.Background())

		ix := vectorstore.NewIndexer(embedder, backend, cfg.VectorStore.Collection, cfg.Embedding.Dimensions)
		if err := ix.EnsureStore(initCtx); err != nil {
			logger.Error("Failed to create vector store", "error", err)
			os.Exit(1)
		}
		opts.Indexer = ix
		logger.Info("Initialized vector store", "type", cfg.VectorStore.Type, "collection", cfg.VectorStore.Collection)
	}

	// Initialize HTTP adapter
	handler, err := httpAdapter.New(opts, logger)
	if err != nil {
		logger.Error("Failed to initialize HTTP adapter", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized HTTP adapter")

	// Create HTTP server
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	go func() {
		logger.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
