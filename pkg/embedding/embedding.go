// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package embedding turns chunk text into vectors through an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBatchSize caps the number of inputs sent in one request.
const DefaultBatchSize = 64

// Embedder generates vector embeddings from text inputs. The i-th vector
// corresponds to the i-th input.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Options configures an OpenAI client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // 0 lets the server pick
	BatchSize  int
}

// OpenAI implements Embedder using the OpenAI SDK.
type OpenAI struct {
	client     openai.Client
	model      string
	dimensions int
	batchSize  int
}

// compile-time check
var _ Embedder = (*OpenAI)(nil)

// NewOpenAI creates an embedding client with its own base URL and API key.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.Model == "" {
		return nil, fmt.Errorf("embedding: model is required")
	}

	reqOpts := []option.RequestOption{}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	} else {
		// Local servers (vLLM, Ollama) accept any key.
		reqOpts = append(reqOpts, option.WithAPIKey("dummy"))
	}

	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}

	return &OpenAI{
		client:     openai.NewClient(reqOpts...),
		model:      opts.Model,
		dimensions: opts.Dimensions,
		batchSize:  batch,
	}, nil
}

// Model returns the configured embedding model.
func (c *OpenAI) Model() string {
	return c.model
}

// Embed generates embeddings for inputs, issuing one request per batch.
func (c *OpenAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	results := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += c.batchSize {
		end := min(start+c.batchSize, len(inputs))
		vecs, err := c.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		results = append(results, vecs...)
	}
	return results, nil
}

func (c *OpenAI) embedBatch(ctx context.Context, inputs []string) ([][]float32, error) {
	// A single string uses OfString, otherwise OfArrayOfStrings.
	var input openai.EmbeddingNewParamsInputUnion
	if len(inputs) == 1 {
		input = openai.EmbeddingNewParamsInputUnion{OfString: openai.String(inputs[0])}
	} else {
		input = openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs}
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: input,
	}
	if c.dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.dimensions))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	// The server may reorder; Index is authoritative.
	results := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(inputs) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		results[d.Index] = vec
	}
	return results, nil
}
