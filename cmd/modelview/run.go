// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gviegas/modelview/blob"
	"github.com/gviegas/modelview/loader"
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/render"
	"github.com/gviegas/modelview/texture"
	"github.com/gviegas/modelview/viewer"
)

// headless is a surface with no display.
type headless struct {
	width, height int
	ratio         float32
}

func (s headless) Size() (int, int)     { return s.width, s.height }
func (s headless) PixelRatio() float32 { return s.ratio }

// readFile reads the named file into a blob.File.
func readFile(name string) (blob.File, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return blob.Bytes(filepath.Base(name), b), nil
}

func run(ctx context.Context, out io.Writer, log *slog.Logger, opts *options) error {
	cfg := viewer.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = viewer.LoadConfig(opts.config); err != nil {
			return err
		}
	}
	v, err := viewer.New(
		headless{opts.width, opts.height, opts.pixelRatio},
		cfg,
		viewer.WithLogger(log),
		viewer.WithPresets(os.DirFS(opts.presets)),
	)
	if err != nil {
		return err
	}
	defer v.Close()

	var src *loader.Source
	switch {
	case opts.env != "":
		f, err := readFile(opts.env)
		if err != nil {
			return err
		}
		s := loader.File(f)
		src = &s
	case opts.preset != "":
		s := loader.URL(opts.preset)
		src = &s
	}

	// Both loads run while the first frames are
	// produced.
	var envTask *viewer.Task[*texture.Texture]
	if src != nil {
		envTask = v.GoLoadEnvironment(ctx, *src, opts.blur, opts.skybox)
	}
	if opts.model != "" {
		if err := loadModel(ctx, v, opts.model); err != nil {
			return err
		}
	}
	if envTask != nil {
		if _, err := envTask.Wait(); err != nil {
			return err
		}
	}
	if err := report(out, v); err != nil {
		return err
	}
	if opts.preview != "" {
		if err := writePreview(v, opts.preview); err != nil {
			return err
		}
		log.Info("preview written", "path", opts.preview)
	}
	if opts.watch && opts.model != "" {
		return watch(ctx, out, log, v, opts.model)
	}
	return nil
}

func loadModel(ctx context.Context, v *viewer.Viewer, name string) error {
	f, err := readFile(name)
	if err != nil {
		return err
	}
	_, err = v.LoadModel(ctx, f)
	return err
}

// report prints the materials and bounds of the
// active model and a summary of the next frame.
func report(out io.Writer, v *viewer.Viewer) error {
	f := v.Frame()
	if m := v.Model(); m != nil {
		fmt.Fprintf(out, "model %q", m.Name)
		if m.Generator != "" {
			fmt.Fprintf(out, " (%s)", m.Generator)
		}
		fmt.Fprintln(out)
		if m.Copyright != "" {
			fmt.Fprintf(out, "copyright %s\n", m.Copyright)
		}
		b := model.WorldBounds(m)
		fmt.Fprintf(out, "bounds %v %v\n", b.Min, b.Max)
		for i, mat := range v.Materials() {
			c := mat.BaseColor.Factor
			fmt.Fprintf(out, "material %d %q color=%.3g,%.3g,%.3g metalness=%.3g roughness=%.3g\n",
				i, mat.Name, c[0], c[1], c[2], mat.MetalRough.Metalness, mat.MetalRough.Roughness)
		}
		for _, a := range m.Animations {
			fmt.Fprintf(out, "animation %q (not played)\n", a)
		}
	}
	if env := v.Environment(); env != nil {
		fmt.Fprintf(out, "environment %q %dx%d\n", env.Name, env.Width(), env.Height())
	}
	_, err := fmt.Fprintf(out, "frame %dx%d draws=%d shadow_casters=%d lights=%d\n",
		f.Width, f.Height, len(f.Draws), f.ShadowCasters, len(f.Lights))
	return err
}

func writePreview(v *viewer.Viewer, name string) (err error) {
	img, err := v.Frame().BackgroundImage()
	if err != nil {
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render.EncodeWebP(f, img)
}

// watch reloads the model whenever its file is written
// until ctx is done.
// Failed reloads are logged and keep the previous
// model.
func watch(ctx context.Context, out io.Writer, log *slog.Logger, v *viewer.Viewer, name string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace files, so the directory
	// is watched instead.
	if err := w.Add(filepath.Dir(name)); err != nil {
		return err
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}
	log.Info("watching model", "path", name)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			p, err := filepath.Abs(ev.Name)
			if err != nil || p != abs || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if err := loadModel(ctx, v, name); err != nil {
				if errors.Is(err, viewer.ErrSuperseded) || errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("model reload failed", "err", err)
				continue
			}
			if err := report(out, v); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "err", err)
		}
	}
}
