// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// M3 is a column-major 3x3 matrix of float32.
type M3 [3]V3

// I makes m an identity matrix.
func (m *M3) I() { *m = M3{{1}, {0, 1}, {0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M3) Mul(l, r *M3) {
	var n M3
	for i := range n {
		for j := range n {
			for k := range n {
				n[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = n
}

// Transpose sets m to contain the transpose of n.
func (m *M3) Transpose(n *M3) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}

// Invert sets m to contain the inverse of n.
func (m *M3) Invert(n *M3) {
	s0 := n[1][1]*n[2][2] - n[1][2]*n[2][1]
	s1 := n[1][0]*n[2][2] - n[1][2]*n[2][0]
	s2 := n[1][0]*n[2][1] - n[1][1]*n[2][0]
	idet := 1 / (n[0][0]*s0 - n[0][1]*s1 + n[0][2]*s2)
	var o M3
	o[0][0] = s0 * idet
	o[0][1] = -(n[0][1]*n[2][2] - n[0][2]*n[2][1]) * idet
	o[0][2] = (n[0][1]*n[1][2] - n[0][2]*n[1][1]) * idet
	o[1][0] = -s1 * idet
	o[1][1] = (n[0][0]*n[2][2] - n[0][2]*n[2][0]) * idet
	o[1][2] = -(n[0][0]*n[1][2] - n[0][2]*n[1][0]) * idet
	o[2][0] = s2 * idet
	o[2][1] = -(n[0][0]*n[2][1] - n[0][1]*n[2][0]) * idet
	o[2][2] = (n[0][0]*n[1][1] - n[0][1]*n[1][0]) * idet
	*m = o
}

// Upper sets m to contain the upper-left 3x3 of n.
func (m *M3) Upper(n *M4) {
	for i := range m {
		m[i] = V3{n[i][0], n[i][1], n[i][2]}
	}
}

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var n M4
	for i := range n {
		for j := range n {
			for k := range n {
				n[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = n
}

// Transpose sets m to contain the transpose of n.
func (m *M4) Transpose(n *M4) {
	for i := range m {
		m[i][i] = n[i][i]
		for j := i + 1; j < len(m); j++ {
			m[i][j], m[j][i] = n[j][i], n[i][j]
		}
	}
}

// Invert sets m to contain the inverse of n.
func (m *M4) Invert(n *M4) {
	s0 := n[0][0]*n[1][1] - n[0][1]*n[1][0]
	s1 := n[0][0]*n[1][2] - n[0][2]*n[1][0]
	s2 := n[0][0]*n[1][3] - n[0][3]*n[1][0]
	s3 := n[0][1]*n[1][2] - n[0][2]*n[1][1]
	s4 := n[0][1]*n[1][3] - n[0][3]*n[1][1]
	s5 := n[0][2]*n[1][3] - n[0][3]*n[1][2]
	c0 := n[2][0]*n[3][1] - n[2][1]*n[3][0]
	c1 := n[2][0]*n[3][2] - n[2][2]*n[3][0]
	c2 := n[2][0]*n[3][3] - n[2][3]*n[3][0]
	c3 := n[2][1]*n[3][2] - n[2][2]*n[3][1]
	c4 := n[2][1]*n[3][3] - n[2][3]*n[3][1]
	c5 := n[2][2]*n[3][3] - n[2][3]*n[3][2]
	idet := 1 / (s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0)
	var o M4
	o[0][0] = (c5*n[1][1] - c4*n[1][2] + c3*n[1][3]) * idet
	o[0][1] = (-c5*n[0][1] + c4*n[0][2] - c3*n[0][3]) * idet
	o[0][2] = (s5*n[3][1] - s4*n[3][2] + s3*n[3][3]) * idet
	o[0][3] = (-s5*n[2][1] + s4*n[2][2] - s3*n[2][3]) * idet
	o[1][0] = (-c5*n[1][0] + c2*n[1][2] - c1*n[1][3]) * idet
	o[1][1] = (c5*n[0][0] - c2*n[0][2] + c1*n[0][3]) * idet
	o[1][2] = (-s5*n[3][0] + s2*n[3][2] - s1*n[3][3]) * idet
	o[1][3] = (s5*n[2][0] - s2*n[2][2] + s1*n[2][3]) * idet
	o[2][0] = (c4*n[1][0] - c2*n[1][1] + c0*n[1][3]) * idet
	o[2][1] = (-c4*n[0][0] + c2*n[0][1] - c0*n[0][3]) * idet
	o[2][2] = (s4*n[3][0] - s2*n[3][1] + s0*n[3][3]) * idet
	o[2][3] = (-s4*n[2][0] + s2*n[2][1] - s0*n[2][3]) * idet
	o[3][0] = (-c3*n[1][0] + c1*n[1][1] - c0*n[1][2]) * idet
	o[3][1] = (c3*n[0][0] - c1*n[0][1] + c0*n[0][2]) * idet
	o[3][2] = (-s3*n[3][0] + s1*n[3][1] - s0*n[3][2]) * idet
	o[3][3] = (s3*n[2][0] - s1*n[2][1] + s0*n[2][2]) * idet
	*m = o
}

// RotateQ sets m to contain the rotation described by
// the unit quaternion q.
func (m *M4) RotateQ(q *Q) {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	*m = M4{
		{1 - 2*(y*y+z*z), 2 * (x*y + z*w), 2 * (x*z - y*w), 0},
		{2 * (x*y - z*w), 1 - 2*(x*x+z*z), 2 * (y*z + x*w), 0},
		{2 * (x*z + y*w), 2 * (y*z - x*w), 1 - 2*(x*x+y*y), 0},
		{0, 0, 0, 1},
	}
}

// Compose sets m to contain T ⋅ R ⋅ S, where T, R and S
// are the translation t, rotation r and scale s.
func (m *M4) Compose(t *V3, r *Q, s *V3) {
	m.RotateQ(r)
	for i := range 3 {
		for j := range 3 {
			m[i][j] *= s[i]
		}
	}
	m[3] = V4{t[0], t[1], t[2], 1}
}

// Perspective sets m to contain a perspective projection.
// yfov is in radians. Clip space depth is in [-1, 1].
func (m *M4) Perspective(yfov, aspect, znear, zfar float32) {
	f := 1 / math32.Tan(yfov*0.5)
	d := 1 / (znear - zfar)
	*m = M4{
		{f / aspect},
		{1: f},
		{2: (zfar + znear) * d, 3: -1},
		{2: 2 * zfar * znear * d},
	}
}

// LookAt sets m to contain a view matrix positioned at
// eye, facing center and oriented by up.
func (m *M4) LookAt(eye, center, up *V3) {
	var f, s, u V3
	f.Sub(center, eye)
	f.Norm(&f)
	s.Cross(&f, up)
	s.Norm(&s)
	u.Cross(&s, &f)
	*m = M4{
		{s[0], u[0], -f[0], 0},
		{s[1], u[1], -f[1], 0},
		{s[2], u[2], -f[2], 0},
		{-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1},
	}
}
