// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// Box is an axis-aligned bounding box.
// A Box whose Min is greater than its Max in any
// dimension is empty.
type Box struct {
	Min V3
	Max V3
}

// Empty makes b an empty box.
func (b *Box) Empty() {
	inf := math32.Inf(1)
	b.Min = V3{inf, inf, inf}
	b.Max = V3{-inf, -inf, -inf}
}

// IsEmpty returns whether b contains no points.
func (b *Box) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// Extend grows b to contain p.
func (b *Box) Extend(p *V3) {
	b.Min.Min(&b.Min, p)
	b.Max.Max(&b.Max, p)
}

// Union grows b to contain c.
// Empty boxes are ignored.
func (b *Box) Union(c *Box) {
	if c.IsEmpty() {
		return
	}
	b.Min.Min(&b.Min, &c.Min)
	b.Max.Max(&b.Max, &c.Max)
}

// Size returns the extent of b in each dimension.
// It returns the zero vector if b is empty.
func (b *Box) Size() (s V3) {
	if b.IsEmpty() {
		return
	}
	s.Sub(&b.Max, &b.Min)
	return
}

// Center returns the center point of b.
func (b *Box) Center() (c V3) {
	c.Add(&b.Min, &b.Max)
	c.Scale(0.5, &c)
	return
}

// MaxExtent returns the largest of b's extents.
func (b *Box) MaxExtent() float32 {
	s := b.Size()
	return max(s[0], s[1], s[2])
}

// Transform sets b to contain the box c transformed by
// the affine matrix m.
// The result bounds the eight transformed corners of c.
func (b *Box) Transform(m *M4, c *Box) {
	if c.IsEmpty() {
		b.Empty()
		return
	}
	var d Box
	d.Empty()
	for i := range 8 {
		p := V3{c.Min[0], c.Min[1], c.Min[2]}
		if i&1 != 0 {
			p[0] = c.Max[0]
		}
		if i&2 != 0 {
			p[1] = c.Max[1]
		}
		if i&4 != 0 {
			p[2] = c.Max[2]
		}
		p.Transform(m, &p)
		d.Extend(&p)
	}
	*b = d
}
