// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package splitter cuts long text into bounded, overlapping chunks.
//
// Text is first decomposed along a hierarchy of separators, coarsest first,
// falling back to finer separators and finally to a raw cut for any piece
// still longer than the target. The pieces are then packed greedily into
// chunks, each seeded with a short tail of the previous one.
//
// A Splitter is immutable and safe for concurrent use.
package splitter

// Splitter applies a validated Config.
type Splitter struct {
	cfg    Config
	length LengthFunc
}

// New validates cfg and returns a Splitter that owns a private copy of it.
func New(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Separators = append([]string(nil), cfg.Separators...)
	if cfg.Length == nil {
		cfg.Length = RuneCount
	}
	return &Splitter{cfg: cfg, length: cfg.Length}, nil
}

// Config returns a copy of the configuration in use.
func (s *Splitter) Config() Config {
	cfg := s.cfg
	cfg.Separators = append([]string(nil), s.cfg.Separators...)
	return cfg
}

// Len measures text with the configured length function.
func (s *Splitter) Len(text string) int {
	return s.length(text)
}

// Split decomposes text and assembles the pieces into chunks labelled with
// source. Empty text yields no chunks.
func (s *Splitter) Split(source, text string) []Chunk {
	return s.Assemble(source, s.Decompose(text))
}

// Split is a one-shot helper that validates cfg and splits text.
func Split(cfg Config, source, text string) ([]Chunk, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return s.Split(source, text), nil
}
