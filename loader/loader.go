// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package loader loads models and environments from
// files and URLs.
//
// Files are always accessed through a temporary blob
// URL, which is revoked exactly once before the load
// returns, regardless of its outcome.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/gviegas/modelview/asset"
	"github.com/gviegas/modelview/blob"
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/texture"
)

// ErrDecode means that an asset could not be read or
// decoded.
var ErrDecode = errors.New("loader: decode failure")

func newErr(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecode, what, err)
}

// ModelDecoder decodes a model asset.
type ModelDecoder func(ctx context.Context, r io.Reader) (*model.Model, error)

// EnvDecoder decodes an environment image.
// name is the file name or URL of the image.
type EnvDecoder func(ctx context.Context, name string, r io.Reader) (*texture.Texture, error)

// Source identifies an environment image, either by
// URL or as a file.
// If File is not nil, URL is ignored.
type Source struct {
	URL  string
	File blob.File
}

// URL creates a Source from a URL.
// The URL is resolved against the presets of
// Environment unless it uses the blob scheme.
func URL(url string) Source { return Source{URL: url} }

// File creates a Source from a file.
func File(f blob.File) Source { return Source{File: f} }

func (s Source) String() string {
	if s.File != nil {
		return s.File.Name()
	}
	return s.URL
}

// result is the outcome of an asynchronous decode.
type result[T any] struct {
	v   T
	err error
}

// await runs decode in a new goroutine and waits for
// either its completion or ctx's cancellation.
// rc is closed when decode returns. If ctx is done
// first, drop is called on the late result, if any.
func await[T any](ctx context.Context, rc io.ReadCloser, decode func(io.Reader) (T, error), drop func(T)) (T, error) {
	ch := make(chan result[T])
	go func() {
		defer rc.Close()
		v, err := decode(rc)
		select {
		case ch <- result[T]{v, err}:
		case <-ctx.Done():
			if err == nil && drop != nil {
				drop(v)
			}
		}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// open creates a temporary URL for f and opens it.
// The returned func revokes the URL and must be called
// exactly once.
func open(reg *blob.Registry, f blob.File) (io.ReadCloser, func() error, error) {
	url := reg.CreateURL(f)
	revoke := func() error { return reg.Revoke(url) }
	rc, err := reg.Open(url)
	if err != nil {
		return nil, revoke, err
	}
	return rc, revoke, nil
}

// Model decodes the model stored in f.
// If dec is nil, asset.Decode is used.
func Model(ctx context.Context, reg *blob.Registry, f blob.File, dec ModelDecoder) (m *model.Model, err error) {
	if dec == nil {
		dec = asset.Decode
	}
	rc, revoke, err := open(reg, f)
	defer func() {
		if rerr := revoke(); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if err != nil {
		return nil, newErr(f.Name(), err)
	}
	m, err = await(ctx, rc, func(r io.Reader) (*model.Model, error) {
		return dec(ctx, r)
	}, nil)
	switch {
	case err == nil:
		return m, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil, err
	default:
		return nil, newErr(f.Name(), err)
	}
}

// Environment decodes the environment image identified
// by src.
// URLs other than blob URLs are resolved as paths in
// presets; network URLs are not supported.
// If dec is nil, DecodeEnvironment is used.
// The returned texture uses EquirectangularReflection
// mapping.
func Environment(ctx context.Context, reg *blob.Registry, presets fs.FS, src Source, dec EnvDecoder) (tex *texture.Texture, err error) {
	if dec == nil {
		dec = DecodeEnvironment
	}
	name := src.String()
	var rc io.ReadCloser
	switch {
	case src.File != nil:
		var revoke func() error
		rc, revoke, err = open(reg, src.File)
		defer func() {
			if rerr := revoke(); rerr != nil && err == nil {
				if tex != nil {
					tex.Release()
				}
				tex, err = nil, rerr
			}
		}()
	case blob.IsURL(src.URL):
		rc, err = reg.Open(src.URL)
	default:
		rc, err = openPreset(presets, src.URL)
	}
	if err != nil {
		return nil, newErr(name, err)
	}
	tex, err = await(ctx, rc, func(r io.Reader) (*texture.Texture, error) {
		return dec(ctx, name, r)
	}, (*texture.Texture).Release)
	switch {
	case err == nil:
		tex.Mapping = texture.EquirectangularReflection
		return tex, nil
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil, err
	default:
		return nil, newErr(name, err)
	}
}

// ErrNetwork means that a URL refers to a remote
// resource.
var ErrNetwork = errors.New("loader: network URLs are not supported")

func openPreset(presets fs.FS, url string) (io.ReadCloser, error) {
	if i := strings.Index(url, "://"); i > 0 {
		return nil, ErrNetwork
	}
	if presets == nil {
		return nil, fs.ErrNotExist
	}
	p := path.Clean(strings.TrimPrefix(url, "/"))
	if !fs.ValidPath(p) {
		return nil, fs.ErrInvalid
	}
	return presets.Open(p)
}
