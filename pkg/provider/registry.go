// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package provider implements a generic factory registry for pluggable backends.
//
// Each subsystem (document source, chunk store, vector store) creates a typed
// Registry and implementations self-register via init(). Blank-import an
// implementation package to activate it, then call Registry.New(name, params).
package provider

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Params carries backend settings as flat string pairs, as they appear in
// the config file.
type Params map[string]string

// Get returns the value for key, or fallback when it is unset or empty.
func (p Params) Get(key, fallback string) string {
	if v := p[key]; v != "" {
		return v
	}
	return fallback
}

// Int returns key parsed as an integer, or fallback when unset.
func (p Params) Int(key string, fallback int) (int, error) {
	v := p[key]
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %s: %w", key, err)
	}
	return n, nil
}

// Factory builds a backend from its params. Implementations read the keys
// they need and ignore the rest.
type Factory[T any] func(ctx context.Context, params Params) (T, error)

// Registry is a thread-safe set of named factories for backend type T.
type Registry[T any] struct {
	subsystem string
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

// NewRegistry creates a Registry. The subsystem name appears in errors.
func NewRegistry[T any](subsystem string) *Registry[T] {
	return &Registry[T]{
		subsystem: subsystem,
		factories: make(map[string]Factory[T]),
	}
}

// Register adds a named factory. It panics on a duplicate name, which can
// only come from two init() functions claiming the same backend.
func (r *Registry[T]) Register(name string, f Factory[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("provider: %s backend %q already registered", r.subsystem, name))
	}
	r.factories[name] = f
}

// New creates a backend by name.
func (r *Registry[T]) New(ctx context.Context, name string, params Params) (T, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s provider: %q (available: %v)", r.subsystem, name, r.Available())
	}
	backend, err := f(ctx, params)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s provider %q: %w", r.subsystem, name, err)
	}
	return backend, nil
}

// Available returns the sorted list of registered backend names.
func (r *Registry[T]) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
