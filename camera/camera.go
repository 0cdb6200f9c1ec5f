// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package camera implements a perspective camera and
// orbit controls that move it around a target.
package camera

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/linear"
)

// ErrAspect means that an aspect ratio could not be
// computed from a surface size.
var ErrAspect = errors.New("camera: invalid aspect ratio")

// Perspective is a camera with a perspective
// projection, looking from Position at Target.
type Perspective struct {
	// Vertical field of view, in degrees.
	FOV    float32
	Aspect float32
	Near   float32
	Far    float32

	Position linear.V3
	Target   linear.V3
	Up       linear.V3
}

// NewPerspective creates a camera at the origin looking
// down the negative Z axis.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	return &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: linear.V3{0, 0, -1},
		Up:     linear.V3{0, 1, 0},
	}
}

// AspectOf returns width / height.
// It fails with ErrAspect if either dimension is not
// positive.
func AspectOf(width, height int) (float32, error) {
	if width <= 0 || height <= 0 {
		return 0, ErrAspect
	}
	return float32(width) / float32(height), nil
}

// SetAspect sets the aspect ratio from a surface size.
// If it fails, c is not modified.
func (c *Perspective) SetAspect(width, height int) error {
	a, err := AspectOf(width, height)
	if err != nil {
		return err
	}
	c.Aspect = a
	return nil
}

// Distance returns the distance from Position to
// Target.
func (c *Perspective) Distance() float32 {
	var d linear.V3
	d.Sub(&c.Position, &c.Target)
	return d.Len()
}

// View returns the view matrix of c.
func (c *Perspective) View() (m linear.M4) {
	m.LookAt(&c.Position, &c.Target, &c.Up)
	return
}

// Projection returns the projection matrix of c.
func (c *Perspective) Projection() (m linear.M4) {
	m.Perspective(c.FOV*math32.Pi/180, c.Aspect, c.Near, c.Far)
	return
}

// ViewProjection returns Projection() * View().
func (c *Perspective) ViewProjection() (m linear.M4) {
	v := c.View()
	p := c.Projection()
	m.Mul(&p, &v)
	return
}
