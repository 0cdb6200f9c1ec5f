// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package bitm defines a bitmap type useful for resource management
// (e.g., memory allocation and free list implementations).
package bitm

import (
	"math/bits"
	"unsafe"
)

// Uint represents the granularity of a bitmap.
type Uint interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Bitm is a growable bitmap with custom granularity.
type Bitm[T Uint] struct {
	m   []T
	rem int
}

// nbit returns the number of bits in T.
func (m *Bitm[T]) nbit() int { return int(unsafe.Sizeof(T(0))) * 8 }

// Len returns the number of bits set in the map.
func (m *Bitm[_]) Len() int { return len(m.m)*m.nbit() - m.rem }

// Cap returns the number of bits in the map.
func (m *Bitm[_]) Cap() int { return len(m.m) * m.nbit() }

// Rem returns the number of unset bits in the map.
func (m *Bitm[_]) Rem() int { return m.rem }

// Grow adds n words of unset bits to the map.
// It returns the index of the first new bit.
func (m *Bitm[T]) Grow(n int) int {
	idx := m.Cap()
	if n > 0 {
		m.m = append(m.m, make([]T, n)...)
		m.rem += n * m.nbit()
	}
	return idx
}

// Set sets the bit at index idx.
func (m *Bitm[T]) Set(idx int) {
	nb := m.nbit()
	w, b := idx/nb, T(1)<<(idx%nb)
	if m.m[w]&b == 0 {
		m.m[w] |= b
		m.rem--
	}
}

// Unset unsets the bit at index idx.
func (m *Bitm[T]) Unset(idx int) {
	nb := m.nbit()
	w, b := idx/nb, T(1)<<(idx%nb)
	if m.m[w]&b != 0 {
		m.m[w] &^= b
		m.rem++
	}
}

// IsSet returns whether the bit at index idx is set.
func (m *Bitm[T]) IsSet(idx int) bool {
	nb := m.nbit()
	return m.m[idx/nb]&(T(1)<<(idx%nb)) != 0
}

// Search returns the index of the first unset bit.
// It returns false if every bit is set.
func (m *Bitm[T]) Search() (idx int, ok bool) {
	if m.rem == 0 {
		return
	}
	nb := m.nbit()
	for i, w := range m.m {
		if ^w == 0 {
			continue
		}
		return i*nb + bits.TrailingZeros64(uint64(^w)), true
	}
	return
}
