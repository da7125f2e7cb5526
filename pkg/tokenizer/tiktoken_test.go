// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tokenizer

import (
	"strings"
	"testing"

	"github.com/leseb/docsplit/pkg/splitter"
)

func newCounter(t *testing.T) *Counter {
	t.Helper()
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestCounter_Len(t *testing.T) {
	c := newCounter(t)
	if c.Encoding() != DefaultEncoding {
		t.Errorf("Encoding() = %q, want %q", c.Encoding(), DefaultEncoding)
	}
	if got := c.Len(""); got != 0 {
		t.Errorf("Len(\"\") = %d, want 0", got)
	}
	if got := c.Len("hello world"); got != 2 {
		t.Errorf("Len(\"hello world\") = %d, want 2", got)
	}
}

func TestCounter_SplitterIntegration(t *testing.T) {
	c := newCounter(t)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)

	s, err := splitter.New(splitter.Config{
		TargetLength:  50,
		OverlapLength: 10,
		Separators:    splitter.DefaultSeparators(),
		Length:        c.LengthFunc(),
	})
	if err != nil {
		t.Fatalf("splitter.New: %v", err)
	}

	chunks := s.Split("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if n := c.Len(ch.Text); n > 50 {
			t.Errorf("chunk[%d] has %d tokens, more than 50", i, n)
		}
	}
	if splitter.Reconstruct(chunks) != text {
		t.Error("token-measured chunks do not reconstruct the input")
	}
}

func TestNew_ModelName(t *testing.T) {
	c, err := New("gpt-4")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Len("hello world"); got != 2 {
		t.Errorf("Len(\"hello world\") = %d, want 2", got)
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	if _, err := New("not-a-real-encoding"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}
