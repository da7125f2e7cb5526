// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "errors"

// Summary aggregates a batch.
type Summary struct {
	Files       int
	Failed      int
	Empty       int
	TotalLength int
	TotalChunks int
}

// Summarize counts results. Failed results contribute nothing to the totals.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		if errors.Is(r.Warning, ErrEmptyInput) {
			s.Empty++
		}
		s.TotalLength += r.Length
		s.TotalChunks += len(r.Chunks)
	}
	return s
}

// Succeeded returns the results without an error, in order.
func Succeeded(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	return out
}
