// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"fmt"

	"github.com/qmuntal/gltf"
)

func newErr(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformed, reason)
}

func inRange(idx, n int) bool { return idx >= 0 && idx < n }

// Check checks that the references between elements of
// doc are valid and that its nodes form a forest.
func Check(doc *gltf.Document) error {
	if s := doc.Scene; s != nil && !inRange(*s, len(doc.Scenes)) {
		return newErr("invalid Document.Scene index")
	}
	for _, s := range doc.Scenes {
		for _, n := range s.Nodes {
			if !inRange(n, len(doc.Nodes)) {
				return newErr("invalid Scene.Nodes index")
			}
		}
	}
	if err := checkNodes(doc); err != nil {
		return err
	}
	for _, m := range doc.Meshes {
		if err := checkMesh(doc, m); err != nil {
			return err
		}
	}
	for _, m := range doc.Materials {
		if err := checkMaterial(doc, m); err != nil {
			return err
		}
	}
	for _, t := range doc.Textures {
		if t.Source != nil && !inRange(*t.Source, len(doc.Images)) {
			return newErr("invalid Texture.Source index")
		}
	}
	for _, img := range doc.Images {
		if img.BufferView != nil && !inRange(*img.BufferView, len(doc.BufferViews)) {
			return newErr("invalid Image.BufferView index")
		}
	}
	for _, a := range doc.Accessors {
		if a.BufferView != nil && !inRange(*a.BufferView, len(doc.BufferViews)) {
			return newErr("invalid Accessor.BufferView index")
		}
		if a.ByteOffset < 0 {
			return newErr("invalid Accessor.ByteOffset value")
		}
		if a.Count < 1 {
			return newErr("invalid Accessor.Count value")
		}
	}
	for _, v := range doc.BufferViews {
		if !inRange(v.Buffer, len(doc.Buffers)) {
			return newErr("invalid BufferView.Buffer index")
		}
	}
	return nil
}

// checkNodes checks node references and rejects nodes
// with more than one parent as well as cycles.
func checkNodes(doc *gltf.Document) error {
	parent := make([]int, len(doc.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for i, n := range doc.Nodes {
		if n.Mesh != nil && !inRange(*n.Mesh, len(doc.Meshes)) {
			return newErr("invalid Node.Mesh index")
		}
		if n.Camera != nil && !inRange(*n.Camera, len(doc.Cameras)) {
			return newErr("invalid Node.Camera index")
		}
		for _, c := range n.Children {
			switch {
			case !inRange(c, len(doc.Nodes)):
				return newErr("invalid Node.Children index")
			case c == i:
				return newErr("Node is its own child")
			case parent[c] != -1:
				return newErr("Node has multiple parents")
			}
			parent[c] = i
		}
	}
	// With at most one parent per node, a cycle exists
	// iff following parents from some node never ends.
	for i := range parent {
		steps := 0
		for p := parent[i]; p != -1; p = parent[p] {
			if steps++; steps > len(parent) {
				return newErr("Node hierarchy has a cycle")
			}
		}
	}
	return nil
}

func checkMesh(doc *gltf.Document, m *gltf.Mesh) error {
	if len(m.Primitives) == 0 {
		return newErr("Mesh has no primitives")
	}
	for _, p := range m.Primitives {
		pos, ok := p.Attributes[gltf.POSITION]
		if !ok {
			return newErr("Primitive has no POSITION attribute")
		}
		for _, a := range p.Attributes {
			if !inRange(a, len(doc.Accessors)) {
				return newErr("invalid Primitive.Attributes index")
			}
		}
		if a := doc.Accessors[pos]; a.Type != gltf.AccessorVec3 {
			return newErr("POSITION accessor is not VEC3")
		}
		if p.Indices != nil && !inRange(*p.Indices, len(doc.Accessors)) {
			return newErr("invalid Primitive.Indices index")
		}
		if p.Material != nil && !inRange(*p.Material, len(doc.Materials)) {
			return newErr("invalid Primitive.Material index")
		}
	}
	return nil
}

func checkMaterial(doc *gltf.Document, m *gltf.Material) error {
	var idx []int
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if t := pbr.BaseColorTexture; t != nil {
			idx = append(idx, t.Index)
		}
		if t := pbr.MetallicRoughnessTexture; t != nil {
			idx = append(idx, t.Index)
		}
	}
	if t := m.NormalTexture; t != nil && t.Index != nil {
		idx = append(idx, *t.Index)
	}
	if t := m.OcclusionTexture; t != nil && t.Index != nil {
		idx = append(idx, *t.Index)
	}
	if t := m.EmissiveTexture; t != nil {
		idx = append(idx, t.Index)
	}
	for _, i := range idx {
		if !inRange(i, len(doc.Textures)) {
			return newErr("invalid Material texture index")
		}
	}
	return nil
}
