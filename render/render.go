// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package render prepares scenes for display on a
// surface.
package render

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/camera"
	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/material"
	"github.com/gviegas/modelview/node"
	"github.com/gviegas/modelview/scene"
	"github.com/gviegas/modelview/texture"
)

const (
	// The maximum number of lights per frame.
	MaxLight = 16

	// The maximum number of shadow maps per frame.
	MaxShadow = 4

	// Default size of shadow maps.
	DefaultShadowMapSize = 2048
)

// ErrSize means that a surface has a zero or negative
// dimension.
var ErrSize = errors.New("render: invalid surface size")

func newRendErr(s string) error { return errors.New("render: " + s) }

// Surface is the display surface of a Renderer.
type Surface interface {
	// Size returns the size in logical pixels.
	Size() (width, height int)
	// PixelRatio returns the number of device
	// pixels per logical pixel.
	PixelRatio() float32
}

// ToneMapping is the operator that maps HDR colors to
// the display range.
type ToneMapping int

// Tone mapping operators.
const (
	NoToneMapping ToneMapping = iota
	Linear
	Reinhard
	ACESFilmic
)

func (t ToneMapping) String() string {
	switch t {
	case NoToneMapping:
		return "none"
	case Linear:
		return "linear"
	case Reinhard:
		return "reinhard"
	case ACESFilmic:
		return "aces"
	}
	return "ToneMapping(?)"
}

// ParseToneMapping parses the name returned by
// ToneMapping.String.
func ParseToneMapping(s string) (ToneMapping, error) {
	for t := NoToneMapping; t <= ACESFilmic; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, newRendErr("unknown tone mapping " + s)
}

// ShadowType is the filtering of shadow maps.
type ShadowType int

// Shadow map filters.
const (
	BasicShadow ShadowType = iota
	PCFShadow
	PCFSoftShadow
)

// Shadow configures shadow mapping.
type Shadow struct {
	Enabled bool
	Type    ShadowType
	MapSize int
}

// Renderer renders scenes on a Surface.
type Renderer struct {
	ToneMapping ToneMapping
	Exposure    float32
	Shadow      Shadow

	surface Surface
	width   int
	height  int
	ratio   float32
	nframe  int64
}

// New creates a renderer sized to s, with ACES filmic
// tone mapping at unit exposure and soft shadows.
// It fails with ErrSize if s has a zero or negative
// dimension.
func New(s Surface) (*Renderer, error) {
	if s == nil {
		return nil, newRendErr("nil Surface in call to New")
	}
	r := &Renderer{
		ToneMapping: ACESFilmic,
		Exposure:    1,
		Shadow: Shadow{
			Enabled: true,
			Type:    PCFSoftShadow,
			MapSize: DefaultShadowMapSize,
		},
		surface: s,
	}
	r.SetPixelRatio(s.PixelRatio())
	if err := r.SetSize(s.Size()); err != nil {
		return nil, err
	}
	return r, nil
}

// Surface returns the surface associated with r.
func (r *Renderer) Surface() Surface { return r.surface }

// SetSize sets the size of r in logical pixels.
// If it fails, the size is not changed.
func (r *Renderer) SetSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrSize
	}
	r.width, r.height = width, height
	return nil
}

// Size returns the size of r in logical pixels.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// SetPixelRatio sets the number of device pixels per
// logical pixel.
// Non-positive ratios are treated as 1.
func (r *Renderer) SetPixelRatio(ratio float32) {
	if !(ratio > 0) || math32.IsInf(ratio, 1) {
		ratio = 1
	}
	r.ratio = ratio
}

// PixelRatio returns the pixel ratio of r.
func (r *Renderer) PixelRatio() float32 { return r.ratio }

// DrawingBufferSize returns the size of r in device
// pixels.
func (r *Renderer) DrawingBufferSize() (width, height int) {
	width = max(1, int(float32(r.width)*r.ratio+0.5))
	height = max(1, int(float32(r.height)*r.ratio+0.5))
	return
}

// Draw describes how to render a mesh node.
// Mat has one element per primitive of the mesh.
type Draw struct {
	Node          node.Node
	Name          string
	World         linear.M4
	Normal        linear.M3
	Bounds        linear.Box
	Mat           []*material.Material
	CastShadow    bool
	ReceiveShadow bool
}

// Frame is the result of rendering a scene.
type Frame struct {
	Seq    int64
	Width  int
	Height int

	View       linear.M4
	Projection linear.M4

	Draws  []Draw
	Lights []scene.Light

	// Number of draws that cast/receive shadows.
	// Both are zero if shadows are disabled.
	ShadowCasters   int
	ShadowReceivers int
	// Number of lights that cast shadows, at most
	// MaxShadow.
	ShadowMaps int

	Environment *texture.Texture
	Background  scene.Background
	Blurriness  float32

	ToneMapping ToneMapping
	Exposure    float32
}

// Render builds the frame that displays s as seen
// by cam.
// It does not modify s or cam.
func (r *Renderer) Render(s *scene.Scene, cam *camera.Perspective) *Frame {
	r.nframe++
	w, h := r.DrawingBufferSize()
	f := &Frame{
		Seq:         r.nframe,
		Width:       w,
		Height:      h,
		View:        cam.View(),
		Projection:  cam.Projection(),
		Environment: s.Environment(),
		Background:  s.Background(),
		Blurriness:  s.BackgroundBlurriness(),
		ToneMapping: r.ToneMapping,
		Exposure:    r.Exposure,
	}
	lights := s.AllLights()
	f.Lights = lights[:min(len(lights), MaxLight)]
	if r.Shadow.Enabled {
		for i := range f.Lights {
			if f.Lights[i].CastShadow() && f.ShadowMaps < MaxShadow {
				f.ShadowMaps++
			}
		}
	}
	if m := s.Model(); m != nil {
		for _, n := range m.Meshes() {
			data := m.Graph.Data(n)
			if data.Mesh == nil {
				continue
			}
			d := Draw{
				Node:          n,
				Name:          data.Name,
				World:         m.Graph.World(n),
				Mat:           data.Mesh.Mat,
				CastShadow:    data.Mesh.CastShadow,
				ReceiveShadow: data.Mesh.ReceiveShadow,
			}
			var u linear.M3
			u.Upper(&d.World)
			u.Invert(&u)
			d.Normal.Transpose(&u)
			d.Bounds.Transform(&d.World, &data.Mesh.Bounds)
			if r.Shadow.Enabled {
				if d.CastShadow {
					f.ShadowCasters++
				}
				if d.ReceiveShadow {
					f.ShadowReceivers++
				}
			}
			f.Draws = append(f.Draws, d)
		}
	}
	return f
}
