// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package model defines loaded 3D assets and the
// operations that prepare them for display.
package model

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/material"
	"github.com/gviegas/modelview/node"
)

var (
	// ErrDegenerate means that a model's bounding box
	// has zero extent in every dimension (or contains
	// no geometry at all).
	ErrDegenerate = errors.New("model: degenerate geometry")

	// ErrInvalidTarget means that the normalization
	// target size is not a positive finite number.
	ErrInvalidTarget = errors.New("model: invalid target size")
)

// Model is a hierarchy of nodes decoded from an asset.
// Root is a KindGroup node of Graph that owns every
// other node of the model.
type Model struct {
	Graph node.Graph
	Root  node.Node

	// Asset metadata, as found in the source.
	Name      string
	Generator string
	Copyright string

	// Names of the animations carried by the asset.
	// Animations are not played back.
	Animations []string
}

// New creates a model containing only a root group.
func New(name string) *Model {
	m := &Model{Name: name}
	m.Root = m.Graph.Insert(node.Nil, node.Data{
		Name:      name,
		Kind:      node.KindGroup,
		Transform: node.Identity(),
	})
	return m
}

// Transform returns a pointer to the root's transform.
func (m *Model) Transform() *node.Transform { return &m.Graph.Data(m.Root).Transform }

// Meshes returns every KindMesh node of m, in
// traversal order.
func (m *Model) Meshes() (meshes []node.Node) {
	m.Graph.Walk(m.Root, func(n node.Node) bool {
		if m.Graph.Data(n).Kind == node.KindMesh {
			meshes = append(meshes, n)
		}
		return true
	})
	return
}

// Bounds returns the bounding box of m's geometry
// in the frame of the root's rotation: every
// descendant transform and the root's rotation apply,
// but the root's translation and scale do not.
// The result is computed anew on every call.
func Bounds(m *Model) (b linear.Box) {
	b.Empty()
	root := m.Transform()
	var rot linear.M4
	rot.RotateQ(&root.R)
	for _, n := range m.Meshes() {
		mesh := m.Graph.Data(n).Mesh
		if mesh == nil || mesh.Bounds.IsEmpty() {
			continue
		}
		rel := m.Graph.RelativeTo(n, m.Root)
		rel.Mul(&rot, &rel)
		var c linear.Box
		c.Transform(&rel, &mesh.Bounds)
		b.Union(&c)
	}
	return
}

// WorldBounds returns the bounding box of m's geometry
// with every transform applied, the root's included.
func WorldBounds(m *Model) (b linear.Box) {
	b.Empty()
	for _, n := range m.Meshes() {
		mesh := m.Graph.Data(n).Mesh
		if mesh == nil || mesh.Bounds.IsEmpty() {
			continue
		}
		w := m.Graph.World(n)
		var c linear.Box
		c.Transform(&w, &mesh.Bounds)
		b.Union(&c)
	}
	return
}

// Normalize scales and translates m's root so that
// the largest extent of its bounding box becomes
// target, the box is centered on the origin along the
// horizontal (X and Z) axes and the lowest point of the
// box lies on the Y = 0 plane.
// The root's rotation is preserved.
// It fails with ErrDegenerate if the box is empty or
// has zero extent, in which case m is left unchanged.
func Normalize(m *Model, target float32) error {
	if !(target > 0) || math32.IsInf(target, 1) {
		return ErrInvalidTarget
	}
	b := Bounds(m)
	if b.IsEmpty() || !b.Min.IsFinite() || !b.Max.IsFinite() {
		return ErrDegenerate
	}
	dim := b.MaxExtent()
	if dim == 0 {
		return ErrDegenerate
	}
	s := target / dim
	if math32.IsInf(s, 0) || math32.IsNaN(s) {
		return ErrDegenerate
	}
	c := b.Center()
	t := linear.V3{-c[0] * s, -b.Min[1] * s, -c[2] * s}
	if !t.IsFinite() {
		return ErrDegenerate
	}
	xf := m.Transform()
	xf.S = linear.V3{s, s, s}
	xf.T = t
	return nil
}

// Materials returns the distinct materials referenced
// by m's meshes, in the order they are first found
// during traversal.
// It does not modify m.
func Materials(m *Model) []*material.Material {
	seen := make(map[*material.Material]struct{})
	var mats []*material.Material
	for _, n := range m.Meshes() {
		mesh := m.Graph.Data(n).Mesh
		if mesh == nil {
			continue
		}
		for _, mat := range mesh.Mat {
			if mat == nil {
				continue
			}
			if _, ok := seen[mat]; ok {
				continue
			}
			seen[mat] = struct{}{}
			mats = append(mats, mat)
		}
	}
	return mats
}

// EnableShadows marks every mesh of m as both a
// shadow caster and a shadow receiver.
func EnableShadows(m *Model) {
	for _, n := range m.Meshes() {
		if mesh := m.Graph.Data(n).Mesh; mesh != nil {
			mesh.CastShadow = true
			mesh.ReceiveShadow = true
		}
	}
}
