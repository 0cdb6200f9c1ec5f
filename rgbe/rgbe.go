// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package rgbe decodes Radiance HDR (RGBE) images.
package rgbe

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrFormat means that the data is not a valid
// Radiance HDR image.
var ErrFormat = errors.New("rgbe: invalid format")

func newErr(reason string) error { return fmt.Errorf("%w: %s", ErrFormat, reason) }

// Signature is the prefix of every Radiance file.
const Signature = "#?"

// Maximum length of a header line.
const maxLine = 4096

// Maximum number of pixels in a decoded image.
const maxPixels = 1 << 26

// Maximum width of a decoded image.
const maxWidth = 1 << 16

// Config describes an image without its pixels.
type Config struct {
	Width, Height int
	// EXPOSURE value from the header, or 1 if absent.
	// Pixel values are not scaled by it.
	Exposure float32
}

// Image is a decoded Radiance image.
// Pix holds linear RGB triplets, row by row, top to
// bottom.
// It implements image.Image by clamping each component
// to [0, 1].
type Image struct {
	Config
	Pix []float32
}

// RGB returns the linear color at (x, y).
func (m *Image) RGB(x, y int) (c [3]float32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	i := (y*m.Width + x) * 3
	copy(c[:], m.Pix[i:i+3])
	return
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model { return color.RGBA64Model }

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	c := m.RGB(x, y)
	var px [3]uint16
	for i, x := range c {
		px[i] = uint16(max(0, min(x, 1))*0xffff + 0.5)
	}
	return color.RGBA64{px[0], px[1], px[2], 0xffff}
}

// IsRGBE returns whether b starts with the Radiance
// signature.
func IsRGBE(b []byte) bool { return strings.HasPrefix(string(b[:min(len(b), 2)]), Signature) }

func readLine(r *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return "", err
		}
		if b == '\n' {
			return sb.String(), nil
		}
		if sb.Len() == maxLine {
			return "", newErr("header line too long")
		}
		sb.WriteByte(b)
	}
}

func readConfig(r *bufio.Reader) (cfg Config, err error) {
	line, err := readLine(r)
	if err != nil {
		return
	}
	if !strings.HasPrefix(line, Signature) {
		err = newErr("missing signature")
		return
	}
	cfg.Exposure = 1
	for {
		if line, err = readLine(r); err != nil {
			return
		}
		if line == "" {
			break
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			// Comments and commands.
			continue
		}
		switch strings.TrimSpace(key) {
		case "FORMAT":
			if strings.TrimSpace(val) != "32-bit_rle_rgbe" {
				err = newErr("unsupported pixel format " + val)
				return
			}
		case "EXPOSURE":
			x, perr := strconv.ParseFloat(strings.TrimSpace(val), 32)
			if perr != nil || !(x > 0) {
				err = newErr("invalid exposure " + val)
				return
			}
			cfg.Exposure *= float32(x)
		}
	}
	if line, err = readLine(r); err != nil {
		return
	}
	f := strings.Fields(line)
	if len(f) != 4 || f[0] != "-Y" || f[2] != "+X" {
		err = newErr("unsupported resolution line " + line)
		return
	}
	if cfg.Height, err = strconv.Atoi(f[1]); err != nil {
		err = newErr("invalid height " + f[1])
		return
	}
	if cfg.Width, err = strconv.Atoi(f[3]); err != nil {
		err = newErr("invalid width " + f[3])
		return
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxWidth || cfg.Width > maxPixels/cfg.Height {
		err = newErr("invalid dimensions")
	}
	return
}

// DecodeConfig reads the header of a Radiance image.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg, err := readConfig(bufio.NewReader(r))
	return cfg, unexpected(err)
}

// Decode reads a Radiance image from r.
// Scanlines may be flat or new-style run-length
// encoded.
// Pixel memory grows with the scanlines actually read,
// so a header alone never commits the full image size.
func Decode(r io.Reader) (*Image, error) {
	br := bufio.NewReader(r)
	cfg, err := readConfig(br)
	if err != nil {
		return nil, unexpected(err)
	}
	m := &Image{Config: cfg, Pix: make([]float32, 0, cfg.Width*3)}
	line := make([]byte, cfg.Width*4)
	for range cfg.Height {
		if err := readScanline(br, line); err != nil {
			return nil, unexpected(err)
		}
		for x := range cfg.Width {
			rgb := convert(line[x*4 : x*4+4])
			m.Pix = append(m.Pix, rgb[:]...)
		}
	}
	return m, nil
}

func unexpected(err error) error {
	if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return err
}

// readScanline reads one scanline into dst as
// interleaved RGBE quadruplets.
func readScanline(r *bufio.Reader, dst []byte) error {
	w := len(dst) / 4
	if _, err := io.ReadFull(r, dst[:4]); err != nil {
		return err
	}
	if w < 8 || w > 0x7fff || dst[0] != 2 || dst[1] != 2 || dst[2]&0x80 != 0 {
		_, err := io.ReadFull(r, dst[4:])
		return err
	}
	if int(dst[2])<<8|int(dst[3]) != w {
		return newErr("scanline width mismatch")
	}
	// Each component is stored separately.
	for c := range 4 {
		for x := 0; x < w; {
			n, err := r.ReadByte()
			if err != nil {
				return err
			}
			if n > 128 {
				n -= 128
				if x+int(n) > w {
					return newErr("run overflows scanline")
				}
				b, err := r.ReadByte()
				if err != nil {
					return err
				}
				for range n {
					dst[x*4+c] = b
					x++
				}
				continue
			}
			if n == 0 || x+int(n) > w {
				return newErr("invalid run length")
			}
			for range n {
				b, err := r.ReadByte()
				if err != nil {
					return err
				}
				dst[x*4+c] = b
				x++
			}
		}
	}
	return nil
}

// convert converts an RGBE quadruplet to linear RGB.
func convert(p []byte) (rgb [3]float32) {
	if p[3] == 0 {
		return
	}
	f := float32(math.Ldexp(1, int(p[3])-(128+8)))
	for i := range rgb {
		rgb[i] = (float32(p[i]) + 0.5) * f
	}
	return
}
