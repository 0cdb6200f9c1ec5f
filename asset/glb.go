// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"bytes"
	"encoding/binary"
)

// GLB header.
type glbHeader [3]uint32

// Indices in glbHeader.
const (
	headerMagic   = 0
	headerVersion = 1
	headerLength  = 2
)

const (
	// glbHeader[headerMagic].
	magic = 0x46546c67

	glbHeaderSize = 12
)

// Asset container formats.
const (
	formatUnknown = iota
	formatGLB
	formatJSON
)

// IsGLB returns whether b starts with the header of a
// binary glTF (version 2) blob whose declared length
// fits in b.
func IsGLB(b []byte) bool {
	if len(b) < glbHeaderSize {
		return false
	}
	var h glbHeader
	for i := range h {
		h[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return h[headerMagic] == magic && h[headerVersion] == 2 &&
		int64(h[headerLength]) <= int64(len(b))
}

// sniff identifies the container format of b.
func sniff(b []byte) int {
	if IsGLB(b) {
		return formatGLB
	}
	if t := bytes.TrimLeft(b, " \t\r\n\xef\xbb\xbf"); len(t) > 0 && t[0] == '{' {
		return formatJSON
	}
	return formatUnknown
}
