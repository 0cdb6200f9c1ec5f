// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package imgdec

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(2, 1, color.NRGBA{0, 0, 0xff, 0xff})
	return img
}

// tgaImage creates an uncompressed 24-bit TGA image,
// stored bottom to top.
func tgaImage(w, h int, c [3]byte) []byte {
	hdr := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, byte(w), byte(w >> 8), byte(h), byte(h >> 8), 24, 0}
	b := append([]byte(nil), hdr...)
	for range w * h {
		// BGR.
		b = append(b, c[2], c[1], c[0])
	}
	return b
}

func TestDecode(t *testing.T) {
	var pbuf, jbuf bytes.Buffer
	require.NoError(t, png.Encode(&pbuf, testImage()))
	require.NoError(t, jpeg.Encode(&jbuf, testImage(), nil))

	img, typ, err := Decode(pbuf.Bytes(), "a.tga")
	require.NoError(t, err)
	assert.Equal(t, "png", typ)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	_, _, b, _ := img.At(2, 1).RGBA()
	assert.Equal(t, uint32(0xffff), b)

	img, typ, err = Decode(jbuf.Bytes(), "")
	require.NoError(t, err)
	assert.Equal(t, "jpg", typ)
	assert.Equal(t, 3, img.Bounds().Dx())

	img, typ, err = Decode(tgaImage(4, 2, [3]byte{255, 0, 0}), "sky.TGA")
	require.NoError(t, err)
	assert.Equal(t, "tga", typ)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())
	r, g, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
}

func TestDecodeUnsupported(t *testing.T) {
	for _, tc := range []struct {
		b    []byte
		name string
	}{
		{[]byte("plain text"), "a.png"},
		{tgaImage(1, 1, [3]byte{}), "a.bin"},
		{nil, ""},
	} {
		_, _, err := Decode(tc.b, tc.name)
		assert.ErrorIs(t, err, ErrFormat, "%s", tc.name)
		assert.Equal(t, "", Type(tc.b, tc.name))
	}
}
