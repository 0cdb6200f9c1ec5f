// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package material implements the surface material model
// of loaded assets.
//
// Materials are compared by identity: two mesh slots
// referring to the same *Material share it, regardless
// of whether other materials hold equal parameters.
package material

import (
	"errors"
	"image"
)

const matPrefix = "material: "

func newMatErr(reason string) error { return errors.New(matPrefix + reason) }

// TexRef identifies a decoded 2D image and the UV set
// used to sample it.
// The zero value refers to no image.
type TexRef struct {
	Image image.Image
	Name  string
	UVSet int
}

// UV sets matching TEXCOORD_n semantics.
const (
	// TEXCOORD_0.
	UVSet0 = iota
	// TEXCOORD_1.
	UVSet1
)

// BaseColor is the material's base color.
type BaseColor struct {
	TexRef
	Factor [4]float32
}

// MetalRough is the material's metallic-roughness.
type MetalRough struct {
	TexRef
	Metalness float32
	Roughness float32
}

// Normal is the material's normal map.
type Normal struct {
	TexRef
	Scale float32
}

// Occlusion is the material's occlusion map.
type Occlusion struct {
	TexRef
	Strength float32
}

// Emissive is the material's emissive map.
type Emissive struct {
	TexRef
	Factor [3]float32
}

// Alpha modes.
const (
	// No transparency.
	AlphaOpaque = iota
	// Composition with background.
	AlphaBlend
	// Either fully opaque or fully transparent,
	// as determined by a cutoff value.
	AlphaMask
)

// Material defines the appearance of a surface.
type Material struct {
	Name        string
	BaseColor   BaseColor
	MetalRough  MetalRough
	Normal      Normal
	Occlusion   Occlusion
	Emissive    Emissive
	AlphaMode   int
	AlphaCutoff float32
	DoubleSided bool
}

// New creates a new material with default parameters.
// The defaults match those of glTF's metallic-roughness
// model: white, fully metallic and fully rough.
func New(name string) *Material {
	return &Material{
		Name:        name,
		BaseColor:   BaseColor{Factor: [4]float32{1, 1, 1, 1}},
		MetalRough:  MetalRough{Metalness: 1, Roughness: 1},
		Normal:      Normal{Scale: 1},
		Occlusion:   Occlusion{Strength: 1},
		AlphaCutoff: 0.5,
	}
}

// SetColor sets the RGB components of the base color
// factor, clamped to [0, 1].
func (m *Material) SetColor(r, g, b float32) {
	m.BaseColor.Factor[0] = clamp01(r)
	m.BaseColor.Factor[1] = clamp01(g)
	m.BaseColor.Factor[2] = clamp01(b)
}

// SetMetalness sets the metalness factor, clamped
// to [0, 1].
func (m *Material) SetMetalness(x float32) { m.MetalRough.Metalness = clamp01(x) }

// SetRoughness sets the roughness factor, clamped
// to [0, 1].
func (m *Material) SetRoughness(x float32) { m.MetalRough.Roughness = clamp01(x) }

// Textures returns the non-empty texture references
// of m.
func (m *Material) Textures() (refs []*TexRef) {
	for _, r := range [...]*TexRef{
		&m.BaseColor.TexRef,
		&m.MetalRough.TexRef,
		&m.Normal.TexRef,
		&m.Occlusion.TexRef,
		&m.Emissive.TexRef,
	} {
		if r.Image != nil {
			refs = append(refs, r)
		}
	}
	return
}

func clamp01(x float32) float32 { return max(0, min(x, 1)) }

// Validate checks that m's parameters are in range.
func (m *Material) Validate() error {
	for _, x := range m.BaseColor.Factor {
		if x < 0 || x > 1 {
			return newMatErr("BaseColor.Factor outside [0.0, 1.0] interval")
		}
	}
	if x := m.MetalRough.Metalness; x < 0 || x > 1 {
		return newMatErr("MetalRough.Metalness outside [0.0, 1.0] interval")
	}
	if x := m.MetalRough.Roughness; x < 0 || x > 1 {
		return newMatErr("MetalRough.Roughness outside [0.0, 1.0] interval")
	}
	if m.Normal.Scale < 0 {
		return newMatErr("Normal.Scale less than 0.0")
	}
	if x := m.Occlusion.Strength; x < 0 || x > 1 {
		return newMatErr("Occlusion.Strength outside [0.0, 1.0] interval")
	}
	for _, x := range m.Emissive.Factor {
		if x < 0 {
			return newMatErr("Emissive.Factor less than 0.0")
		}
	}
	switch m.AlphaMode {
	case AlphaOpaque, AlphaBlend, AlphaMask:
	default:
		return newMatErr("undefined alpha mode constant")
	}
	for _, r := range m.Textures() {
		switch r.UVSet {
		case UVSet0, UVSet1:
		default:
			return newMatErr("undefined UV set constant")
		}
	}
	return nil
}
