// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package camera

import (
	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/linear"
)

// Element is the surface that receives pointer input.
type Element interface {
	Size() (width, height int)
}

// Default damping factor of Orbit.
const DefaultDamping = 0.05

// Polar angles are kept this far from the poles.
const polarEps = 1e-4

// Orbit rotates, dollies and pans a camera around its
// target in response to pointer input.
// Input is accumulated and applied by Update, which
// must be called once per frame.
// Orbit only modifies its camera.
type Orbit struct {
	Camera  *Perspective
	Element Element

	// With damping, each Update applies only a
	// fraction (Damping) of the pending motion,
	// which then decays.
	EnableDamping bool
	Damping       float32

	RotateSpeed float32
	PanSpeed    float32

	// Limits of the distance to the target.
	MinDistance float32
	MaxDistance float32

	dTheta float32
	dPhi   float32
	scale  float32
	pan    linear.V3
}

// NewOrbit creates damped orbit controls for cam,
// driven by input on elem.
func NewOrbit(cam *Perspective, elem Element) *Orbit {
	return &Orbit{
		Camera:        cam,
		Element:       elem,
		EnableDamping: true,
		Damping:       DefaultDamping,
		RotateSpeed:   1,
		PanSpeed:      1,
		MaxDistance:   math32.Inf(1),
		scale:         1,
	}
}

func (o *Orbit) height() float32 {
	if o.Element == nil {
		return 0
	}
	_, h := o.Element.Size()
	return float32(h)
}

// Rotate rotates the camera by a pointer motion of
// (dx, dy) pixels.
// A motion as long as the element's height is a full
// turn.
func (o *Orbit) Rotate(dx, dy float32) {
	h := o.height()
	if h <= 0 {
		return
	}
	o.dTheta -= 2 * math32.Pi * dx / h * o.RotateSpeed
	o.dPhi -= 2 * math32.Pi * dy / h * o.RotateSpeed
}

// Dolly scales the distance to the target by scale.
// Values greater than 1 move the camera away.
func (o *Orbit) Dolly(scale float32) {
	if scale > 0 {
		o.scale *= scale
	}
}

// Pan moves the camera and its target by a pointer
// motion of (dx, dy) pixels, parallel to the view
// plane.
func (o *Orbit) Pan(dx, dy float32) {
	h := o.height()
	c := o.Camera
	if h <= 0 || c == nil {
		return
	}
	var fwd, right, up linear.V3
	fwd.Sub(&c.Target, &c.Position)
	dist := fwd.Len()
	if dist == 0 {
		return
	}
	fwd.Scale(1/dist, &fwd)
	right.Cross(&fwd, &c.Up)
	if right.Len() == 0 {
		return
	}
	right.Norm(&right)
	up.Cross(&right, &fwd)
	// Distance covered by the element's height at
	// the target.
	span := 2 * dist * math32.Tan(c.FOV*math32.Pi/360) / h * o.PanSpeed
	right.Scale(-dx*span, &right)
	up.Scale(dy*span, &up)
	o.pan.Add(&o.pan, &right)
	o.pan.Add(&o.pan, &up)
}

// Update applies pending input to the camera.
// It returns whether the camera moved.
func (o *Orbit) Update() bool {
	c := o.Camera
	if c == nil || o.idle() {
		return false
	}
	f := float32(1)
	if o.EnableDamping {
		f = max(0, min(o.Damping, 1))
	}

	var off linear.V3
	off.Sub(&c.Position, &c.Target)
	r := off.Len()
	theta := math32.Atan2(off[0], off[2])
	phi := float32(0)
	if r > 0 {
		phi = math32.Acos(max(-1, min(off[1]/r, 1)))
	}
	theta += o.dTheta * f
	phi += o.dPhi * f
	phi = max(polarEps, min(phi, math32.Pi-polarEps))
	r = max(o.MinDistance, min(r*o.scale, o.MaxDistance))

	var pan linear.V3
	pan.Scale(f, &o.pan)
	c.Target.Add(&c.Target, &pan)
	sp, cp := math32.Sincos(phi)
	st, ct := math32.Sincos(theta)
	c.Position = linear.V3{
		c.Target[0] + r*sp*st,
		c.Target[1] + r*cp,
		c.Target[2] + r*sp*ct,
	}

	if o.EnableDamping {
		o.dTheta *= 1 - f
		o.dPhi *= 1 - f
		o.pan.Scale(1-f, &o.pan)
	} else {
		o.dTheta, o.dPhi = 0, 0
		o.pan = linear.V3{}
	}
	o.scale = 1
	return true
}

// Pending motion below this is discarded.
const idleEps = 1e-6

// idle returns whether there is no pending input,
// discarding residual motion.
func (o *Orbit) idle() bool {
	if o.scale != 1 ||
		math32.Abs(o.dTheta) >= idleEps ||
		math32.Abs(o.dPhi) >= idleEps ||
		o.pan.Len() >= idleEps {
		return false
	}
	o.Reset()
	return true
}

// Reset discards pending input.
func (o *Orbit) Reset() {
	o.dTheta, o.dPhi = 0, 0
	o.scale = 1
	o.pan = linear.V3{}
}
