// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package imgdec decodes LDR images by content type.
//
// Decoders are called directly instead of through
// image.Decode, since TGA has no signature and would
// otherwise match any input.
package imgdec

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// ErrFormat means that the data is in none of the
// supported formats.
var ErrFormat = errors.New("imgdec: unsupported image format")

var decoders = map[string]func(io.Reader) (image.Image, error){
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"webp": webp.Decode,
	"bmp":  bmp.Decode,
}

// Type returns the name of the format of b, or the
// empty string if it is not supported.
// name is only used to identify TGA images.
func Type(b []byte, name string) string {
	kind, _ := filetype.Match(b)
	if _, ok := decoders[kind.Extension]; ok {
		return kind.Extension
	}
	if strings.EqualFold(path.Ext(name), ".tga") {
		return "tga"
	}
	return ""
}

// Decode decodes b as a PNG, JPEG, WebP, BMP or
// TGA image.
func Decode(b []byte, name string) (image.Image, string, error) {
	typ := Type(b, name)
	switch typ {
	case "":
		return nil, "", ErrFormat
	case "tga":
		img, err := tga.Decode(bytes.NewReader(b))
		return img, typ, err
	}
	img, err := decoders[typ](bytes.NewReader(b))
	return img, typ, err
}
