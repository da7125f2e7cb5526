// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package source defines where batch documents are read from.
package source

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/leseb/docsplit/pkg/provider"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Providers is the registry of document source implementations.
// Import implementation packages with blank imports to register them:
//
//	import _ "github.com/leseb/docsplit/pkg/source/filesystem"
//	import _ "github.com/leseb/docsplit/pkg/source/s3"
var Providers = provider.NewRegistry[Source]("source")

// Ref identifies a document without its content.
type Ref struct {
	Name    string // slash-separated, relative to the source root
	Size    int64
	ModTime time.Time
}

// Source lists and reads documents.
type Source interface {
	// List returns every document, sorted by name.
	List(ctx context.Context) ([]Ref, error)
	// Read returns the raw bytes of a document.
	Read(ctx context.Context, name string) ([]byte, error)
	Close(ctx context.Context) error
}

// Writer is implemented by sources that accept new documents.
type Writer interface {
	Put(ctx context.Context, name string, content []byte) error
}

// ParseExtensions turns a comma-separated list such as ".pdf,txt" into
// normalized lowercase extensions with a leading dot.
func ParseExtensions(list string) []string {
	var exts []string
	for _, e := range strings.Split(list, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return exts
}

// MatchExtension reports whether name has one of exts. An empty exts
// matches every name.
func MatchExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// CleanName validates a document name: it must be relative and must not
// climb out of the source root.
func CleanName(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if name == "" || cleaned == "." || path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return cleaned, nil
}
