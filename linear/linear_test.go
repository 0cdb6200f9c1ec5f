// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import (
	"math"
	"testing"
)

func TestV(t *testing.T) {
	var u V3
	v := V3{1, 2, 4}
	w := V3{0, -1, 2}

	if u.Add(&v, &w); u != (V3{1, 1, 6}) {
		t.Fatalf("V3.Add\nhave %v\nwant [1 1 6]", u)
	}
	if u.Sub(&v, &w); u != (V3{1, 3, 2}) {
		t.Fatalf("V3.Sub\nhave %v\nwant [1 3 2]", u)
	}
	if u.Scale(-1, &v); u != (V3{-1, -2, -4}) {
		t.Fatalf("V3.Scale\nhave %v\nwant [-1 -2 -4]", u)
	}
	if u.Scale(2, &w); u != (V3{0, -2, 4}) {
		t.Fatalf("V3.Scale\nhave %v\nwant [0 -2 4]", u)
	}
	if d := v.Dot(&w); d != 6 {
		t.Fatalf("V3.Dot\nhave %v\nwant 6\n", d)
	}
	if d := v.Dot(&v); d != 21 {
		t.Fatalf("V3.Dot\nhave %v\nwant 21\n", d)
	}
	if l := v.Len(); l != float32(math.Sqrt(21)) {
		t.Fatalf("V3.Len\nhave %v\nwant %v\n", l, math.Sqrt(21))
	}
	if l := w.Len(); l != float32(math.Sqrt(5)) {
		t.Fatalf("V3.Len\nhave %v\nwant %v\n", l, math.Sqrt(5))
	}

	v = V3{0, 0, -2}
	w = V3{0, 4, 0}

	if v.Norm(&v); v != (V3{0, 0, -1}) {
		t.Fatalf("V3.Norm\nhave %v\nwant [0 0 -1]", v)
	}
	if w.Norm(&w); w != (V3{0, 1, 0}) {
		t.Fatalf("V3.Norm\nhave %v\nwant [0 1 0]", w)
	}
	if u.Cross(&v, &w); u != (V3{1, 0, 0}) {
		t.Fatalf("V3.Cross\nhave %v\nwant [1 0 0]", u)
	}
	if u.Cross(&w, &v); u != (V3{-1, 0, 0}) {
		t.Fatalf("V3.Cross\nhave %v\nwant [-1 0 0]", u)
	}

	m := M3{
		{2, 0, 1},
		{1, 3, 2},
		{4, 2, 3},
	}
	v = V3{-1, 0, 1}

	if u.Mul(&m, &v); u != (V3{2, 2, 2}) {
		t.Fatalf("V3.Mul\nhave %v\nwant [2 2 2]", u)
	}
	m.I()
	if u.Mul(&m, &v); u != v {
		t.Fatalf("V3.Mul\nhave %v\nwant %v", u, v)
	}
}

func TestM(t *testing.T) {
	var l M3
	m := M3{
		{1, 4, 7},
		{2, 5, 8},
		{3, 6, 9},
	}
	n := M3{
		{0, 1, 0},
		{0, 0, 1},
		{1, 0, 0},
	}

	if l.I(); l != (M3{{1}, {0, 1}, {0, 0, 1}}) {
		t.Fatalf("M3.I\nhave %v\nwant [%v %v %v]", l, V3{1}, V3{0, 1}, V3{0, 0, 1})
	}
	if l.Mul(&m, &n); l != (M3{m[1], m[2], m[0]}) {
		t.Fatalf("M3.Mul\nhave %v\nwant [%v %v %v]", l, m[1], m[2], m[0])
	}
	if l.Mul(&n, &m); l != (M3{{7, 1, 4}, {8, 2, 5}, {9, 3, 6}}) {
		t.Fatalf("M3.Mul\nhave %v\nwant %v", l, M3{{7, 1, 4}, {8, 2, 5}, {9, 3, 6}})
	}
	if l.Transpose(&m); l != (M3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}) {
		t.Fatalf("M3.Transpose\nhave %v\nwant %v", l, M3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	}
	if l.Invert(&n); l != (M3{n[1], n[2], n[0]}) {
		t.Fatalf("M3.Invert\nhave %v\nwant %v", l, M3{n[1], n[2], n[0]})
	}
}

func TestQ(t *testing.T) {
	var r Q
	q := Q{V: V3{1, 0, 0}, R: 3}
	p := Q{V: V3{0, 1, 0}, R: 3}

	if r.Mul(&q, &p); r.V != (V3{3, 3, 1}) || r.R != 9 {
		t.Fatalf("Q.Mul\nhave %v\nwant {[3 3 1] 9}", r)
	}
	if r.Mul(&p, &q); r.V != (V3{3, 3, -1}) || r.R != 9 {
		t.Fatalf("Q.Mul\nhave %v\nwant {[3 3 -1] 9}", r)
	}
	if q.Mul(&q, &q); q.V != (V3{6}) || q.R != 8 {
		t.Fatalf("Q.Mul\nhave %v\nwant {[6 0 0] 8}", q)
	}
}

func TestTRS(t *testing.T) {
	var r M4
	var q Q

	x := M4{{1}, {1: 1}, {2: 1}, {-1, -2, -3, 1}}
	s := M4{{5}, {1: 5}, {2: 5}, {3: 1}}
	q.Rotate(0, &V3{1})
	r.RotateQ(&q)
	x.Mul(&x, &r)
	x.Mul(&x, &s)
	if x != (M4{{5}, {1: 5}, {2: 5}, {-1, -2, -3, 1}}) {
		t.Fatalf("T*R*S\nhave %v\nwant %v", x, M4{{5}, {1: 5}, {2: 5}, {-1, -2, -3, 1}})
	}
	v := V4{1, 1, 1, 1}
	v.Mul(&x, &v)
	if v != (V4{4, 3, 2, 1}) {
		t.Fatalf("TRS*v\nhave %v\nwant %v", v, V4{4, 3, 2, 1})
	}
}

func TestCompose(t *testing.T) {
	var m, x M4
	var q Q
	q.Rotate(math.Pi/2, &V3{0, 1, 0})
	m.Compose(&V3{1, 2, 3}, &q, &V3{2, 2, 2})

	var p V3
	p.Transform(&m, &V3{1, 0, 0})
	want := V3{1, 2, 1}
	for i := range p {
		if d := p[i] - want[i]; d > 1e-5 || d < -1e-5 {
			t.Fatalf("M4.Compose\nhave %v\nwant %v", p, want)
		}
	}

	var r M4
	tr := M4{{1}, {1: 1}, {2: 1}, {1, 2, 3, 1}}
	s := M4{{2}, {1: 2}, {2: 2}, {3: 1}}
	r.RotateQ(&q)
	x.Mul(&tr, &r)
	x.Mul(&x, &s)
	for i := range x {
		for j := range x[i] {
			if d := x[i][j] - m[i][j]; d > 1e-5 || d < -1e-5 {
				t.Fatalf("M4.Compose\nhave %v\nwant %v", m, x)
			}
		}
	}

	var v V3
	q.Apply(&v, &V3{1, 0, 0})
	if d := v[2] + 1; d > 1e-5 || d < -1e-5 {
		t.Fatalf("Q.Apply\nhave %v\nwant [0 0 -1]", v)
	}
}

func TestPerspective(t *testing.T) {
	var m M4
	m.Perspective(math.Pi/2, 2, 1, 100)
	if m[0][0] != 0.5 || m[1][1] != 1 || m[2][3] != -1 {
		t.Fatalf("M4.Perspective\nhave %v", m)
	}
	near := V4{0, 0, -1, 1}
	near.Mul(&m, &near)
	if z := near[2] / near[3]; z < -1-1e-5 || z > -1+1e-5 {
		t.Fatalf("M4.Perspective: near plane\nhave %v\nwant -1", z)
	}
	far := V4{0, 0, -100, 1}
	far.Mul(&m, &far)
	if z := far[2] / far[3]; z < 1-1e-5 || z > 1+1e-5 {
		t.Fatalf("M4.Perspective: far plane\nhave %v\nwant 1", z)
	}

	m.LookAt(&V3{0, 0, 5}, &V3{}, &V3{0, 1, 0})
	var p V3
	p.Transform(&m, &V3{})
	if p != (V3{0, 0, -5}) {
		t.Fatalf("M4.LookAt\nhave %v\nwant [0 0 -5]", p)
	}
}

func TestBox(t *testing.T) {
	var b Box
	b.Empty()
	if !b.IsEmpty() {
		t.Fatal("Box.Empty: IsEmpty\nhave false\nwant true")
	}
	if s := b.Size(); s != (V3{}) {
		t.Fatalf("Box.Size\nhave %v\nwant [0 0 0]", s)
	}
	b.Extend(&V3{1, -2, 3})
	if b.IsEmpty() {
		t.Fatal("Box.Extend: IsEmpty\nhave true\nwant false")
	}
	if n := b.MaxExtent(); n != 0 {
		t.Fatalf("Box.MaxExtent\nhave %v\nwant 0", n)
	}
	b.Extend(&V3{-1, 2, 4})
	if b.Min != (V3{-1, -2, 3}) || b.Max != (V3{1, 2, 4}) {
		t.Fatalf("Box.Extend\nhave %v\nwant {[-1 -2 3] [1 2 4]}", b)
	}
	if s := b.Size(); s != (V3{2, 4, 1}) {
		t.Fatalf("Box.Size\nhave %v\nwant [2 4 1]", s)
	}
	if c := b.Center(); c != (V3{0, 0, 3.5}) {
		t.Fatalf("Box.Center\nhave %v\nwant [0 0 3.5]", c)
	}
	if n := b.MaxExtent(); n != 4 {
		t.Fatalf("Box.MaxExtent\nhave %v\nwant 4", n)
	}

	m := M4{{1}, {1: 1}, {2: 1}, {1, 1, 1, 1}}
	var c Box
	c.Transform(&m, &b)
	if c.Min != (V3{0, -1, 4}) || c.Max != (V3{2, 3, 5}) {
		t.Fatalf("Box.Transform\nhave %v\nwant {[0 -1 4] [2 3 5]}", c)
	}

	var e Box
	e.Empty()
	c.Union(&e)
	if c.Min != (V3{0, -1, 4}) || c.Max != (V3{2, 3, 5}) {
		t.Fatalf("Box.Union: empty\nhave %v\nwant {[0 -1 4] [2 3 5]}", c)
	}
	e.Union(&b)
	if e != b {
		t.Fatalf("Box.Union\nhave %v\nwant %v", e, b)
	}
}
