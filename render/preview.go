// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package render

import (
	"image"
	"image/color"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"

	"github.com/gviegas/modelview/texture"
)

// Blur radius, in pixels of the output, at full
// blurriness.
const maxBlurRadius = 16

// PreviewOptions configures Preview.
type PreviewOptions struct {
	// Output size. If zero, the texture size is used.
	Width, Height int

	ToneMapping ToneMapping
	Exposure    float32

	// In the range [0, 1].
	Blurriness float32
}

// Preview creates a displayable image of tex, tone
// mapped and sRGB encoded, resized and blurred as
// described by opt.
func Preview(tex *texture.Texture, opt PreviewOptions) (*image.RGBA, error) {
	if tex.Released() {
		return nil, newRendErr("texture was released")
	}
	w, h := tex.Width(), tex.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := ToneMap(opt.ToneMapping, opt.Exposure, tex.At(x, y))
			img.SetRGBA(x, y, color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: 0xff,
			})
		}
	}
	if opt.Width > 0 && opt.Height > 0 && (opt.Width != w || opt.Height != h) {
		img = transform.Resize(img, opt.Width, opt.Height, transform.Linear)
	}
	if r := float64(saturate(opt.Blurriness)) * maxBlurRadius; r > 0 {
		img = blur.Gaussian(img, r)
	}
	return img, nil
}

// Fill creates an image of the given size filled
// with the linear color rgb.
func Fill(width, height int, rgb [3]float32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(1, width), max(1, height)))
	c := color.RGBA{toByte(rgb[0]), toByte(rgb[1]), toByte(rgb[2]), 0xff}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func toByte(c float32) uint8 {
	return uint8(texture.LinearToSRGB(saturate(c))*255 + 0.5)
}

// BackgroundImage creates an image of f's background at
// the frame's size.
func (f *Frame) BackgroundImage() (*image.RGBA, error) {
	bg := f.Background
	if bg.Texture == nil {
		return Fill(f.Width, f.Height, bg.Color), nil
	}
	return Preview(bg.Texture, PreviewOptions{
		Width:       f.Width,
		Height:      f.Height,
		ToneMapping: f.ToneMapping,
		Exposure:    f.Exposure,
		Blurriness:  f.Blurriness,
	})
}

// EncodeWebP writes img to w in the lossless WebP
// format.
func EncodeWebP(w io.Writer, img image.Image) error {
	return nativewebp.Encode(w, img, nil)
}
