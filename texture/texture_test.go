// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/modelview/rgbe"
)

func TestNew(t *testing.T) {
	tex, err := New("t", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width())
	assert.Equal(t, 3, tex.Height())
	assert.Equal(t, UVMapping, tex.Mapping)
	assert.Equal(t, [3]float32{}, tex.At(1, 2))

	for _, sz := range [][2]int{{0, 1}, {1, 0}, {-1, 4}} {
		_, err := New("", sz[0], sz[1])
		assert.Error(t, err, "%v", sz)
	}
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	img.Set(10, 10, color.NRGBA{255, 0, 128, 255})
	img.Set(11, 10, color.NRGBA{0, 0, 0, 0})
	tex, err := FromImage("ldr", img)
	require.NoError(t, err)
	assert.Equal(t, 2, tex.Width())
	assert.Equal(t, 1, tex.Height())
	c := tex.At(0, 0)
	assert.InDelta(t, 1, c[0], 1e-6)
	assert.InDelta(t, 0, c[1], 1e-6)
	assert.InDelta(t, 0.2158, c[2], 1e-3)
	assert.Equal(t, [3]float32{}, tex.At(1, 0))

	_, err = FromImage("empty", image.NewNRGBA(image.Rectangle{}))
	assert.Error(t, err)
}

func TestFromRGBE(t *testing.T) {
	m := &rgbe.Image{
		Config: rgbe.Config{Width: 2, Height: 1, Exposure: 1},
		Pix:    []float32{1, 2, 3, 40, 50, 60},
	}
	tex := FromRGBE("hdr", m)
	assert.Equal(t, [3]float32{40, 50, 60}, tex.At(1, 0))
	assert.Equal(t, [3]float32{}, tex.At(2, 0))
}

func TestSRGB(t *testing.T) {
	for _, x := range []float32{0, 0.001, 0.04, 0.2, 0.5, 0.9, 1} {
		assert.InDelta(t, x, LinearToSRGB(SRGBToLinear(x)), 1e-5)
	}
}

func TestRelease(t *testing.T) {
	tex, err := New("t", 1, 1)
	require.NoError(t, err)
	tex.Set(0, 0, [3]float32{1, 1, 1})
	assert.Equal(t, [3]float32{1, 1, 1}, tex.At(0, 0))
	assert.False(t, tex.Released())
	tex.Release()
	assert.True(t, tex.Released())
	tex.Release()
	assert.True(t, tex.Released())
	assert.Equal(t, [3]float32{}, tex.At(0, 0))
	assert.Equal(t, "EquirectangularReflection", EquirectangularReflection.String())
}
