// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"github.com/chewxy/math32"
)

// Q is a quaternion of float32.
type Q struct {
	V V3
	R float32
}

// I makes q an identity quaternion.
func (q *Q) I() { *q = Q{R: 1} }

// Mul sets q to contain l ⋅ r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Rotate sets q to contain a rotation of angle radians
// around axis.
// axis must be a unit vector.
func (q *Q) Rotate(angle float32, axis *V3) {
	s, c := math32.Sincos(angle * 0.5)
	q.V.Scale(s, axis)
	q.R = c
}

// Apply sets v to contain w rotated by q.
// q must be a unit quaternion.
func (q *Q) Apply(v, w *V3) {
	// t = 2 (q.V × w); v = w + q.R t + q.V × t
	var t, u V3
	t.Cross(&q.V, w)
	t.Scale(2, &t)
	u.Cross(&q.V, &t)
	t.Scale(q.R, &t)
	t.Add(&t, &u)
	v.Add(w, &t)
}
