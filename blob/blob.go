// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package blob implements temporary local handles
// (blob URLs) that refer to in-memory files.
package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	// ErrRevoked means that a URL was already revoked
	// or was never created by the registry.
	ErrRevoked = errors.New("blob: URL not live")

	// ErrScheme means that a URL does not use the
	// blob scheme.
	ErrScheme = errors.New("blob: not a blob URL")
)

// Scheme is the prefix of every URL created by a
// Registry.
const Scheme = "blob:"

// File is a named file whose contents can be read
// any number of times.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type memFile struct {
	name string
	data []byte
}

func (f *memFile) Name() string { return f.name }

func (f *memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

// Bytes creates a File from data.
// data must not be modified afterwards.
func Bytes(name string, data []byte) File { return &memFile{name, data} }

// Registry maps blob URLs to files.
// The zero value is an empty registry ready for use.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	next  uint64
	files map[string]File
}

// IsURL returns whether s uses the blob scheme.
func IsURL(s string) bool { return strings.HasPrefix(s, Scheme) }

// CreateURL creates a new URL referring to f.
// Every call returns a distinct URL, which remains
// live until revoked.
func (r *Registry) CreateURL(f File) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.files == nil {
		r.files = make(map[string]File)
	}
	r.next++
	url := fmt.Sprintf("%s%d/%s", Scheme, r.next, f.Name())
	r.files[url] = f
	return url
}

// Revoke releases url.
// It fails with ErrRevoked if url is not live.
func (r *Registry) Revoke(url string) error {
	if !IsURL(url) {
		return ErrScheme
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[url]; !ok {
		return fmt.Errorf("%w: %s", ErrRevoked, url)
	}
	delete(r.files, url)
	return nil
}

// Resolve returns the file referred to by url.
func (r *Registry) Resolve(url string) (File, error) {
	if !IsURL(url) {
		return nil, ErrScheme
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRevoked, url)
	}
	return f, nil
}

// Open opens the file referred to by url.
func (r *Registry) Open(url string) (io.ReadCloser, error) {
	f, err := r.Resolve(url)
	if err != nil {
		return nil, err
	}
	return f.Open()
}

// Live returns the number of live URLs.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}
