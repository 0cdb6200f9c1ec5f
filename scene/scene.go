// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package scene provides the root of the displayed
// scene: its lights, the active model and the
// environment.
package scene

import (
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/texture"
)

// White is the flat background color used when the
// environment is not displayed.
var White = [3]float32{1, 1, 1}

// Background is what is drawn behind the model.
// If Texture is nil, the background is the flat Color.
type Background struct {
	Texture *texture.Texture
	Color   [3]float32
}

// Scene holds at most one model and one environment.
// It is not safe for concurrent use.
type Scene struct {
	Lights []Light

	model       *model.Model
	modelLights []Light
	env   *texture.Texture
	bg    Background
	blur  float32
}

// New creates an initialized scene.
func New() *Scene { return new(Scene).Init() }

// Init initializes a scene.
// It removes any lights, model and environment.
func (s *Scene) Init() *Scene {
	*s = Scene{bg: Background{Color: White}}
	return s
}

// AddLight adds a light to s.
func (s *Scene) AddLight(l Light) { s.Lights = append(s.Lights, l) }

// Model returns the active model, or nil.
func (s *Scene) Model() *model.Model { return s.model }

// SetModel replaces the active model and returns the
// previous one.
// The lights that m defines replace those of the
// previous model.
// m may be nil.
func (s *Scene) SetModel(m *model.Model) (prev *model.Model) {
	prev, s.model = s.model, m
	s.modelLights = lightsOf(m)
	return
}

// ModelLights returns the lights defined by the active
// model.
func (s *Scene) ModelLights() []Light { return s.modelLights }

// AllLights returns s.Lights followed by the lights of
// the active model.
func (s *Scene) AllLights() []Light {
	if len(s.modelLights) == 0 {
		return s.Lights
	}
	return append(s.Lights[:len(s.Lights):len(s.Lights)], s.modelLights...)
}

// Environment returns the texture that lights the
// scene, or nil.
func (s *Scene) Environment() *texture.Texture { return s.env }

// Background returns the scene background.
func (s *Scene) Background() Background { return s.bg }

// BackgroundBlurriness returns the blurriness of a
// textured background, in the range [0, 1].
func (s *Scene) BackgroundBlurriness() float32 { return s.blur }

// SetEnvironment makes tex the lighting environment
// of s and returns the previous one.
// If skybox is set, tex is also the background;
// otherwise the background is flat white.
// blur is clamped to [0, 1].
// The previous texture is not released, since it may
// be applied again later.
func (s *Scene) SetEnvironment(tex *texture.Texture, skybox bool, blur float32) (prev *texture.Texture) {
	prev, s.env = s.env, tex
	if skybox && tex != nil {
		s.bg = Background{Texture: tex}
	} else {
		s.bg = Background{Color: White}
	}
	// NaN becomes 0.
	if !(blur > 0) {
		blur = 0
	}
	s.blur = min(blur, 1)
	return
}
