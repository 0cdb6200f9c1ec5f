// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package scene

import (
	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/node"
)

// Light types.
const (
	Distant = iota
	Point
)

// Light defines a light source.
// The zero value for Light is not valid; one must
// call DistantLight.Light or PointLight.Light to
// create an initialized Light.
type Light struct {
	typ        int
	direction  linear.V3
	position   linear.V3
	intensity  float32
	rng        float32
	color      linear.V3
	castShadow bool
}

// Type returns either Distant or Point.
func (l *Light) Type() int { return l.typ }

// SetDirection sets the direction of l.
// It normalizes d.
// Only applies to distant lights.
func (l *Light) SetDirection(d *linear.V3) {
	if d.Len() == 0 {
		return
	}
	l.direction.Norm(d)
}

// Direction returns the direction of l.
func (l *Light) Direction() linear.V3 { return l.direction }

// SetPosition sets the position of l.
// Only applies to point lights.
func (l *Light) SetPosition(p *linear.V3) { l.position = *p }

// Position returns the position of l.
func (l *Light) Position() linear.V3 { return l.position }

// SetIntensity sets the intensity of l.
// Negative values are clamped to zero.
func (l *Light) SetIntensity(i float32) { l.intensity = max(0, i) }

// Intensity returns the intensity of l.
func (l *Light) Intensity() float32 { return l.intensity }

// SetRange sets the range of l.
// Only applies to point lights.
// Values that are not positive and finite mean an
// infinite range and are stored as 0.
func (l *Light) SetRange(r float32) {
	if !(r > 0) || math32.IsInf(r, 1) {
		r = 0
	}
	l.rng = r
}

// Range returns the range of l.
func (l *Light) Range() float32 { return l.rng }

// SetColor sets the RGB color of l.
func (l *Light) SetColor(r, g, b float32) {
	l.color = linear.V3{clamp01(r), clamp01(g), clamp01(b)}
}

// Color returns the RGB color of l.
func (l *Light) Color() (r, g, b float32) { return l.color[0], l.color[1], l.color[2] }

// SetCastShadow sets whether l casts shadows.
func (l *Light) SetCastShadow(cast bool) { l.castShadow = cast }

// CastShadow returns whether l casts shadows.
func (l *Light) CastShadow() bool { return l.castShadow }

func clamp01(x float32) float32 { return max(0, min(x, 1)) }

// DistantLight is a directional light.
// The light is emitted in the given Direction.
// It behaves as if located infinitely far way.
// Intensity is the illuminance in lux.
type DistantLight struct {
	Direction  linear.V3
	Intensity  float32
	R, G, B    float32
	CastShadow bool
}

// Light creates the light source described by t.
func (t *DistantLight) Light() (light Light) {
	light.typ = Distant
	light.SetIntensity(t.Intensity)
	light.SetColor(t.R, t.G, t.B)
	light.SetDirection(&t.Direction)
	light.SetCastShadow(t.CastShadow)
	return
}

// PointLight is an omnidirectional, positional light.
// The light is emitted in all directions from the
// given Position.
// Range determines the area affected by the light.
// Intensity is the luminous intensity in candela.
type PointLight struct {
	Position  linear.V3
	Range     float32
	Intensity float32
	R, G, B   float32
}

// Light creates the light source described by t.
// t.Range may be set to 0 or less to indicate an
// infinite range.
func (t *PointLight) Light() (light Light) {
	light.typ = Point
	light.SetIntensity(t.Intensity)
	light.SetRange(t.Range)
	light.SetColor(t.R, t.G, t.B)
	light.SetPosition(&t.Position)
	return
}

// lightsOf creates the lights defined by the KindLight
// nodes of m, in traversal order.
// Placement uses the current world transforms, so it
// must be called after m is normalized.
// Spot lights become point lights. Model lights do
// not cast shadows.
func lightsOf(m *model.Model) (lights []Light) {
	if m == nil {
		return nil
	}
	g := &m.Graph
	g.Walk(m.Root, func(n node.Node) bool {
		src := g.Data(n).Light
		if g.Data(n).Kind != node.KindLight || src == nil {
			return true
		}
		r, gr, b := src.Color[0], src.Color[1], src.Color[2]
		if src.Type == node.LightDirectional {
			q := worldRotation(g, n)
			var dir linear.V3
			q.Apply(&dir, &linear.V3{0, 0, -1})
			lights = append(lights, (&DistantLight{
				Direction: dir,
				Intensity: src.Intensity,
				R:         r,
				G:         gr,
				B:         b,
			}).Light())
			return true
		}
		w := g.World(n)
		x := linear.V3{w[0][0], w[0][1], w[0][2]}
		lights = append(lights, (&PointLight{
			Position:  linear.V3{w[3][0], w[3][1], w[3][2]},
			Range:     src.Range * x.Len(),
			Intensity: src.Intensity,
			R:         r,
			G:         gr,
			B:         b,
		}).Light())
		return true
	})
	return
}

// worldRotation returns the rotation of n composed
// with the rotations of its ancestors.
func worldRotation(g *node.Graph, n node.Node) linear.Q {
	q := g.Data(n).Transform.R
	for p := g.Parent(n); p != node.Nil; p = g.Parent(p) {
		q.Mul(&g.Data(p).Transform.R, &q)
	}
	return q
}
