// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package viewer implements a session of the model
// viewer: a scene displayed on a surface by a camera
// with orbit controls, into which models and
// environments are loaded.
//
// Loads decode off the caller's goroutine and may
// overlap with calls to Frame. Only the most recently
// started load of each kind is installed; older loads
// that complete afterwards fail with ErrSuperseded.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/gviegas/modelview/blob"
	"github.com/gviegas/modelview/camera"
	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/loader"
	"github.com/gviegas/modelview/material"
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/render"
	"github.com/gviegas/modelview/scene"
	"github.com/gviegas/modelview/texture"
)

var (
	// ErrConfig means that the configuration or the
	// surface size is invalid.
	ErrConfig = errors.New("viewer: configuration error")

	// ErrDecode means that an asset could not be
	// loaded.
	ErrDecode = loader.ErrDecode

	// ErrSuperseded means that a load completed after
	// a newer load of the same kind was started.
	ErrSuperseded = errors.New("viewer: load superseded")
)

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger of a Viewer.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option { return func(v *Viewer) { v.log = l } }

// WithPresets sets the file system against which
// environment URLs are resolved.
func WithPresets(presets fs.FS) Option { return func(v *Viewer) { v.presets = presets } }

// WithRegistry sets the registry of blob URLs.
// Default is a new registry.
func WithRegistry(reg *blob.Registry) Option { return func(v *Viewer) { v.reg = reg } }

// WithModelDecoder replaces the model decoder.
func WithModelDecoder(dec loader.ModelDecoder) Option {
	return func(v *Viewer) { v.modelDec = dec }
}

// WithEnvironmentDecoder replaces the environment
// decoder.
func WithEnvironmentDecoder(dec loader.EnvDecoder) Option {
	return func(v *Viewer) { v.envDec = dec }
}

// Viewer is a model viewer session.
// Loads may be called concurrently with each other
// and with Frame; other methods must not be called
// concurrently.
type Viewer struct {
	cfg      Config
	log      *slog.Logger
	reg      *blob.Registry
	presets  fs.FS
	modelDec loader.ModelDecoder
	envDec   loader.EnvDecoder

	// mu guards the scene and the sequence numbers
	// of loads.
	mu        sync.Mutex
	scene     *scene.Scene
	materials []*material.Material
	modelSeq  uint64
	envSeq    uint64

	camera   *camera.Perspective
	renderer *render.Renderer
	controls *camera.Orbit
}

// New creates a viewer for surface.
// It fails with ErrConfig if cfg is invalid or if the
// surface has a zero or negative dimension.
func New(surface render.Surface, cfg Config, opts ...Option) (*Viewer, error) {
	if surface == nil {
		return nil, newCfgErr("nil surface")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w, h := surface.Size()
	aspect, err := camera.AspectOf(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: surface size %dx%d", ErrConfig, w, h)
	}

	cam := camera.NewPerspective(cfg.FOV, aspect, cfg.Near, cfg.Far)
	cam.Position = linear.V3(cfg.CameraPosition)
	cam.Target = linear.V3{}

	rend, err := render.New(surface)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if rend.ToneMapping, err = render.ParseToneMapping(cfg.ToneMapping); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	rend.Exposure = cfg.Exposure
	rend.Shadow.MapSize = cfg.ShadowMapSize

	ctrl := camera.NewOrbit(cam, surface)
	ctrl.Damping = cfg.Damping

	scn := scene.New()
	lc := &cfg.Light
	scn.AddLight((&scene.DistantLight{
		Direction:  linear.V3(lc.Direction),
		Intensity:  lc.Intensity,
		R:          lc.Color[0],
		G:          lc.Color[1],
		B:          lc.Color[2],
		CastShadow: lc.CastShadow,
	}).Light())

	v := &Viewer{
		cfg:      cfg,
		scene:    scn,
		camera:   cam,
		renderer: rend,
		controls: ctrl,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = slog.Default()
	}
	if v.reg == nil {
		v.reg = new(blob.Registry)
	}
	v.log.Debug("viewer created", "width", w, "height", h, "aspect", aspect)
	return v, nil
}

// Config returns the configuration of v.
func (v *Viewer) Config() Config { return v.cfg }

// Scene returns the scene of v.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the camera of v.
func (v *Viewer) Camera() *camera.Perspective { return v.camera }

// Renderer returns the renderer of v.
func (v *Viewer) Renderer() *render.Renderer { return v.renderer }

// Controls returns the orbit controls of v.
func (v *Viewer) Controls() *camera.Orbit { return v.controls }

// Registry returns the registry of blob URLs used by
// v.
func (v *Viewer) Registry() *blob.Registry { return v.reg }

// Materials returns the distinct materials of the
// active model, in traversal order.
// The materials may be edited.
func (v *Viewer) Materials() []*material.Material {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.materials
}

// Model returns the active model, or nil.
func (v *Viewer) Model() *model.Model {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scene.Model()
}

// Environment returns the active environment, or nil.
func (v *Viewer) Environment() *texture.Texture {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scene.Environment()
}

// Resize adapts the camera and the renderer to a new
// surface size.
// It fails with ErrConfig if either dimension is not
// positive, in which case nothing is changed.
func (v *Viewer) Resize(width, height int) error {
	if err := v.camera.SetAspect(width, height); err != nil {
		return fmt.Errorf("%w: surface size %dx%d", ErrConfig, width, height)
	}
	// Cannot fail after SetAspect.
	v.renderer.SetSize(width, height)
	return nil
}

// Frame updates the orbit controls and renders the
// scene.
func (v *Viewer) Frame() *render.Frame {
	v.controls.Update()
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderer.Render(v.scene, v.camera)
}

// LoadModel decodes the model stored in f, normalizes
// it to the configured target size, enables its
// shadows and makes it the active model.
// It returns the distinct materials of the model.
// On failure, the active model is not changed.
func (v *Viewer) LoadModel(ctx context.Context, f blob.File) ([]*material.Material, error) {
	v.mu.Lock()
	v.modelSeq++
	seq := v.modelSeq
	v.mu.Unlock()

	log := v.log.With("model", f.Name(), "seq", seq)
	log.Info("loading model")
	start := time.Now()

	m, err := loader.Model(ctx, v.reg, f, v.modelDec)
	if err != nil {
		log.Warn("model load failed", "err", err)
		return nil, err
	}
	if err := model.Normalize(m, v.cfg.TargetSize); err != nil {
		log.Warn("model normalization failed", "err", err)
		return nil, fmt.Errorf("viewer: %s: %w", f.Name(), err)
	}
	model.EnableShadows(m)
	mats := model.Materials(m)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.modelSeq {
		log.Info("model load superseded", "newest", v.modelSeq)
		return nil, ErrSuperseded
	}
	v.scene.SetModel(m)
	v.materials = mats
	log.Info("model loaded",
		"meshes", len(m.Meshes()),
		"materials", len(mats),
		"elapsed", time.Since(start))
	return mats, nil
}

// LoadEnvironment decodes the environment image
// identified by src and applies it as ApplyEnvironment
// does.
// The environment it replaces is released.
// It returns the decoded texture, which may be
// applied again later while it stays in use.
// On failure, the active environment is not changed.
func (v *Viewer) LoadEnvironment(ctx context.Context, src loader.Source, blur float32, skybox bool) (*texture.Texture, error) {
	v.mu.Lock()
	v.envSeq++
	seq := v.envSeq
	v.mu.Unlock()

	log := v.log.With("environment", src.String(), "seq", seq)
	log.Info("loading environment")
	start := time.Now()

	tex, err := loader.Environment(ctx, v.reg, v.presets, src, v.envDec)
	if err != nil {
		log.Warn("environment load failed", "err", err)
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.envSeq {
		log.Info("environment load superseded", "newest", v.envSeq)
		tex.Release()
		return nil, ErrSuperseded
	}
	if prev := v.scene.SetEnvironment(tex, skybox, blur); prev != nil && prev != tex {
		prev.Release()
	}
	log.Info("environment loaded",
		"width", tex.Width(),
		"height", tex.Height(),
		"elapsed", time.Since(start))
	return tex, nil
}

// ApplyEnvironment makes tex the lighting environment
// of the scene. If skybox is set, tex is also the
// background; otherwise the background is flat white.
// blur sets the background blurriness.
// Environment loads in progress are superseded.
// The environment it replaces is not released, so
// it can be applied again.
func (v *Viewer) ApplyEnvironment(tex *texture.Texture, blur float32, skybox bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.envSeq++
	v.scene.SetEnvironment(tex, skybox, blur)
}

// Close discards the active model and releases the
// active environment.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modelSeq++
	v.envSeq++
	v.scene.SetModel(nil)
	v.materials = nil
	if prev := v.scene.SetEnvironment(nil, false, 0); prev != nil {
		prev.Release()
	}
}
