// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package tokenizer measures text in model tokens so chunk sizes can be
// expressed in the same unit an embedding model consumes.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/leseb/docsplit/pkg/splitter"
)

// DefaultEncoding is used when no encoding or model is configured.
const DefaultEncoding = "cl100k_base"

// Encodings are served from the ranks embedded in tiktoken-go-loader instead
// of being downloaded on first use.
var offlineLoader sync.Once

// Counter counts tokens with a tiktoken encoding.
type Counter struct {
	encoding string
	mu       sync.Mutex
	tke      *tiktoken.Tiktoken
}

// New loads the encoding named by nameOrModel. A model name such as
// "text-embedding-3-small" is resolved to its encoding; an empty value
// selects DefaultEncoding.
func New(nameOrModel string) (*Counter, error) {
	if nameOrModel == "" {
		nameOrModel = DefaultEncoding
	}
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	tke, err := tiktoken.GetEncoding(nameOrModel)
	if err == nil {
		return &Counter{encoding: nameOrModel, tke: tke}, nil
	}
	tke, modelErr := tiktoken.EncodingForModel(nameOrModel)
	if modelErr != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", nameOrModel, err)
	}
	return &Counter{encoding: nameOrModel, tke: tke}, nil
}

// Encoding returns the encoding or model name the counter was built from.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Len returns the number of tokens in s.
func (c *Counter) Len(s string) int {
	if s == "" {
		return 0
	}
	// Guarded so one Counter can be shared by batch workers.
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tke.Encode(s, nil, nil))
}

// LengthFunc adapts the counter to splitter.LengthFunc.
func (c *Counter) LengthFunc() splitter.LengthFunc {
	return c.Len
}
