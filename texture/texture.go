// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package texture implements environment textures.
package texture

import (
	"errors"
	"image"
	"sync"

	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/rgbe"
)

const texPrefix = "texture: "

func newTexErr(reason string) error { return errors.New(texPrefix + reason) }

// Mapping is the projection used to sample a texture.
type Mapping int

// Mappings.
const (
	// Sampled with mesh texture coordinates.
	UVMapping Mapping = iota
	// Equirectangular projection sampled by the
	// reflected view direction.
	EquirectangularReflection
)

func (m Mapping) String() string {
	switch m {
	case UVMapping:
		return "UVMapping"
	case EquirectangularReflection:
		return "EquirectangularReflection"
	}
	return "Mapping(?)"
}

// Texture is a decoded image in linear RGB.
// It is safe for concurrent use.
type Texture struct {
	Name    string
	Mapping Mapping

	mu     sync.RWMutex
	width  int
	height int
	// Linear RGB triplets, row by row.
	// Nil after Release.
	pix []float32
}

// New creates a texture of the given size filled
// with black.
func New(name string, width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, newTexErr("invalid size")
	}
	return &Texture{
		Name:   name,
		width:  width,
		height: height,
		pix:    make([]float32, width*height*3),
	}, nil
}

// FromRGBE creates a texture from a decoded Radiance
// image.
// The pixel data is shared, not copied.
func FromRGBE(name string, m *rgbe.Image) *Texture {
	return &Texture{
		Name:   name,
		width:  m.Width,
		height: m.Height,
		pix:    m.Pix,
	}
}

// FromImage creates a texture from a low dynamic range
// image, converting its sRGB-encoded colors to linear.
// Alpha is discarded.
func FromImage(name string, img image.Image) (*Texture, error) {
	rect := img.Bounds()
	t, err := New(name, rect.Dx(), rect.Dy())
	if err != nil {
		return nil, err
	}
	for y := range t.height {
		for x := range t.width {
			r, g, b, _ := img.At(rect.Min.X+x, rect.Min.Y+y).RGBA()
			i := (y*t.width + x) * 3
			t.pix[i] = lut[r>>8]
			t.pix[i+1] = lut[g>>8]
			t.pix[i+2] = lut[b>>8]
		}
	}
	return t, nil
}

// lut maps 8-bit sRGB values to linear values.
var lut = func() (t [256]float32) {
	for i := range t {
		t[i] = SRGBToLinear(float32(i) / 255)
	}
	return
}()

// SRGBToLinear decodes an sRGB component.
func SRGBToLinear(c float32) float32 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math32.Pow((c+0.055)/1.055, 2.4)
}

// LinearToSRGB encodes a linear component as sRGB.
func LinearToSRGB(c float32) float32 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math32.Pow(c, 1/2.4) - 0.055
}

// Width returns the width of t in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the height of t in pixels.
func (t *Texture) Height() int { return t.height }

// At returns the linear color at (x, y), or black if
// (x, y) is out of bounds or t has been released.
func (t *Texture) At(x, y int) (c [3]float32) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.pix == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	i := (y*t.width + x) * 3
	copy(c[:], t.pix[i:i+3])
	return
}

// Set sets the linear color at (x, y).
func (t *Texture) Set(x, y int, c [3]float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pix == nil || x < 0 || y < 0 || x >= t.width || y >= t.height {
		return
	}
	i := (y*t.width + x) * 3
	copy(t.pix[i:i+3], c[:])
}

// Release frees the pixel memory of t.
// Calling it more than once has no effect.
func (t *Texture) Release() {
	t.mu.Lock()
	t.pix = nil
	t.mu.Unlock()
}

// Released returns whether Release was called.
func (t *Texture) Released() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pix == nil
}
