// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leseb/docsplit/pkg/normalize"
	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/splitter"
	"github.com/leseb/docsplit/pkg/tokenizer"
)

// Config represents the main configuration
type Config struct {
	Splitter    SplitterConfig    `yaml:"splitter"`
	Normalize   NormalizeConfig   `yaml:"normalize"`
	Batch       BatchConfig       `yaml:"batch"`
	Source      SourceConfig      `yaml:"source"`
	Output      OutputConfig      `yaml:"output"`
	ChunkStore  ChunkStoreConfig  `yaml:"chunk_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SplitterConfig contains chunking parameters
type SplitterConfig struct {
	TargetLength  int      `yaml:"target_length"`  // default 600
	OverlapLength int      `yaml:"overlap_length"` // default 100
	Separators    []string `yaml:"separators"`     // coarsest first
	KeepSeparator string   `yaml:"keep_separator"` // "start" (default) or "end"
	LengthUnit    string   `yaml:"length_unit"`    // "chars" (default), "bytes" or "tokens"
	Encoding      string   `yaml:"encoding"`       // tiktoken encoding or model, for "tokens"
}

// NormalizeConfig selects text cleanup steps
type NormalizeConfig struct {
	Enabled          bool `yaml:"enabled"`
	StripPageNumbers bool `yaml:"strip_page_numbers"`
	CollapseSpace    bool `yaml:"collapse_space"`
}

// BatchConfig controls batch concurrency
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// SourceConfig selects where documents are read from
type SourceConfig struct {
	Type       string   `yaml:"type"` // "filesystem" (default), "s3" or "memory"
	Path       string   `yaml:"path"`
	Extensions []string `yaml:"extensions"`
	S3         S3Config `yaml:"s3"`
}

// S3Config contains S3 source settings
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"` // set for MinIO and other S3-compatible servers
}

// OutputConfig controls the export file
type OutputConfig struct {
	Path   string `yaml:"path"`   // empty writes to stdout
	Format string `yaml:"format"` // "json" (default) or "jsonl"
}

// ChunkStoreConfig selects chunk persistence
type ChunkStoreConfig struct {
	Type string `yaml:"type"` // "" (disabled), "memory", "sqlite" or "postgres"
	Path string `yaml:"path"` // sqlite database file
	DSN  string `yaml:"dsn"`  // postgres connection string
}

// EmbeddingConfig contains embedding service configuration
type EmbeddingConfig struct {
	Endpoint   string `yaml:"endpoint"` // e.g. "https://api.openai.com/v1"
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`      // e.g. "text-embedding-3-small"
	Dimensions int    `yaml:"dimensions"` // default 1536
	BatchSize  int    `yaml:"batch_size"`
}

// VectorStoreConfig contains vector store backend configuration
type VectorStoreConfig struct {
	Type          string `yaml:"type"`           // "" (disabled), "memory" or "milvus"
	Collection    string `yaml:"collection"`     // default "docsplit"
	MilvusAddress string `yaml:"milvus_address"` // e.g. "localhost:19530"
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from a YAML file. Keys absent from the file keep
// their default values; environment variables override both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyEmbeddingDefaults(&cfg.Embedding)
	applyVectorStoreDefaults(&cfg.VectorStore)

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults
// with environment overrides applied. found reports whether the file
// existed. A file that exists but cannot be parsed, and malformed
// environment variables, are errors.
func LoadOrDefault(path string) (cfg *Config, found bool, err error) {
	cfg, err = Load(path)
	if err == nil {
		return cfg, true, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, true, err
	}
	cfg = defaults()
	if err := applyEnv(cfg); err != nil {
		return nil, false, err
	}
	applyEmbeddingDefaults(&cfg.Embedding)
	applyVectorStoreDefaults(&cfg.VectorStore)
	return cfg, false, nil
}

// Default returns default configuration with environment overrides applied.
// Malformed numeric variables are ignored.
func Default() *Config {
	cfg := defaults()
	_ = applyEnv(cfg)
	applyEmbeddingDefaults(&cfg.Embedding)
	applyVectorStoreDefaults(&cfg.VectorStore)
	return cfg
}

func defaults() *Config {
	return &Config{
		Splitter: SplitterConfig{
			TargetLength:  splitter.DefaultTargetLength,
			OverlapLength: splitter.DefaultOverlapLength,
			KeepSeparator: "start",
			LengthUnit:    "chars",
		},
		Normalize: NormalizeConfig{
			Enabled:          true,
			StripPageNumbers: true,
			CollapseSpace:    true,
		},
		Source: SourceConfig{
			Type:       "filesystem",
			Path:       ".",
			Extensions: []string{".pdf"},
		},
		Output: OutputConfig{
			Format: "json",
		},
		ChunkStore: ChunkStoreConfig{
			Path: "docsplit.db",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			Timeout:      60 * time.Second,
			MaxBodyBytes: 10 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyEnv overrides file values from environment variables.
func applyEnv(cfg *Config) error {
	if err := envInt("DOCSPLIT_TARGET_LENGTH", &cfg.Splitter.TargetLength); err != nil {
		return err
	}
	if err := envInt("DOCSPLIT_OVERLAP_LENGTH", &cfg.Splitter.OverlapLength); err != nil {
		return err
	}
	if err := envInt("DOCSPLIT_WORKERS", &cfg.Batch.Workers); err != nil {
		return err
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Embedding env overrides
	if v := os.Getenv("EMBEDDING_ENDPOINT"); v != "" {
		cfg.Embedding.Endpoint = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	// Vector store env overrides
	if v := os.Getenv("MILVUS_ADDRESS"); v != "" {
		cfg.VectorStore.MilvusAddress = v
		cfg.VectorStore.Type = "milvus"
	}

	// Chunk store env overrides
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.ChunkStore.DSN = v
		cfg.ChunkStore.Type = "postgres"
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func applyEmbeddingDefaults(cfg *EmbeddingConfig) {
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 1536
	}
}

func applyVectorStoreDefaults(cfg *VectorStoreConfig) {
	if cfg.Collection == "" {
		cfg.Collection = "docsplit"
	}
}

// Resolve builds and validates the splitter configuration. A "tokens"
// length unit loads the tiktoken encoding.
func (c SplitterConfig) Resolve() (splitter.Config, error) {
	pos, err := splitter.ParseSeparatorPosition(c.KeepSeparator)
	if err != nil {
		return splitter.Config{}, err
	}

	seps := c.Separators
	if seps == nil {
		seps = splitter.DefaultSeparators()
	}

	out := splitter.Config{
		TargetLength:  c.TargetLength,
		OverlapLength: c.OverlapLength,
		Separators:    seps,
		KeepSeparator: pos,
	}

	switch strings.ToLower(c.LengthUnit) {
	case "", "chars", "characters", "runes":
		out.Length = splitter.RuneCount
	case "bytes":
		out.Length = splitter.ByteCount
	case "tokens":
		counter, err := tokenizer.New(c.Encoding)
		if err != nil {
			return splitter.Config{}, err
		}
		out.Length = counter.LengthFunc()
	default:
		return splitter.Config{}, &splitter.ConfigError{Field: "length_unit", Reason: fmt.Sprintf("unknown unit %q", c.LengthUnit)}
	}

	if err := out.Validate(); err != nil {
		return splitter.Config{}, err
	}
	return out, nil
}

// Normalizer returns the configured normalizer, or nil when disabled.
func (c NormalizeConfig) Normalizer() *normalize.Normalizer {
	if !c.Enabled {
		return nil
	}
	return normalize.New(normalize.Options{
		StripPageNumbers: c.StripPageNumbers,
		CollapseSpace:    c.CollapseSpace,
	})
}

// Params returns the source registry parameters.
func (c SourceConfig) Params() provider.Params {
	return provider.Params{
		"base_dir":   c.Path,
		"extensions": strings.Join(c.Extensions, ","),
		"bucket":     c.S3.Bucket,
		"region":     c.S3.Region,
		"prefix":     c.S3.Prefix,
		"endpoint":   c.S3.Endpoint,
	}
}

// Params returns the chunk store registry parameters.
func (c ChunkStoreConfig) Params() provider.Params {
	return provider.Params{"path": c.Path, "dsn": c.DSN}
}

// Params returns the vector store registry parameters.
func (c VectorStoreConfig) Params() provider.Params {
	return provider.Params{"address": c.MilvusAddress}
}

// Addr returns the server listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
