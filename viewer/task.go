// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package viewer

import (
	"context"

	"github.com/gviegas/modelview/blob"
	"github.com/gviegas/modelview/loader"
	"github.com/gviegas/modelview/material"
	"github.com/gviegas/modelview/texture"
)

// Task is a load running in the background.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	v      T
	err    error
}

func start[T any](ctx context.Context, f func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(t.done)
		defer cancel()
		t.v, t.err = f(ctx)
	}()
	return t
}

// Done returns a channel that is closed when t
// completes.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Wait waits for t to complete and returns its result.
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.v, t.err
}

// Cancel cancels t.
// It does not wait for t to complete.
func (t *Task[T]) Cancel() { t.cancel() }

// GoLoadModel calls LoadModel in a new goroutine.
func (v *Viewer) GoLoadModel(ctx context.Context, f blob.File) *Task[[]*material.Material] {
	return start(ctx, func(ctx context.Context) ([]*material.Material, error) {
		return v.LoadModel(ctx, f)
	})
}

// GoLoadEnvironment calls LoadEnvironment in a new
// goroutine.
func (v *Viewer) GoLoadEnvironment(ctx context.Context, src loader.Source, blur float32, skybox bool) *Task[*texture.Texture] {
	return start(ctx, func(ctx context.Context) (*texture.Texture, error) {
		return v.LoadEnvironment(ctx, src, blur, skybox)
	})
}
