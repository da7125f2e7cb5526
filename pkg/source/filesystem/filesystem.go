// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/leseb/docsplit/pkg/provider"
	"github.com/leseb/docsplit/pkg/source"
)

func init() {
	source.Providers.Register("filesystem", func(_ context.Context, params provider.Params) (source.Source, error) {
		return New(params.Get("base_dir", "."), source.ParseExtensions(params["extensions"]))
	})
}

// compile-time check
var (
	_ source.Source = (*Store)(nil)
	_ source.Writer = (*Store)(nil)
)

// Store reads documents from a directory tree. Names are paths relative to
// baseDir using forward slashes.
type Store struct {
	baseDir string
	exts    []string
}

// New creates a filesystem source rooted at baseDir, which must exist.
func New(baseDir string, exts []string) (*Store, error) {
	info, err := os.Stat(baseDir)
	if err != nil {
		return nil, fmt.Errorf("stat base dir %s: %w", baseDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base dir %s is not a directory", baseDir)
	}
	return &Store{baseDir: baseDir, exts: exts}, nil
}

// List walks baseDir and returns every regular file that matches the
// extension filter. Hidden files and directories are skipped.
func (s *Store) List(ctx context.Context) ([]source.Ref, error) {
	var refs []source.Ref
	err := filepath.WalkDir(s.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p != s.baseDir && d.Name()[0] == '.' {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !source.MatchExtension(name, s.exts) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		refs = append(refs, source.Ref{Name: name, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.baseDir, err)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Read returns the file bytes.
func (s *Store) Read(_ context.Context, name string) ([]byte, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", name, source.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Put writes a document atomically (temp file + rename).
func (s *Store) Put(_ context.Context, name string, content []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}

// Close is a no-op for the filesystem source.
func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) path(name string) (string, error) {
	cleaned, err := source.CleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(cleaned)), nil
}
