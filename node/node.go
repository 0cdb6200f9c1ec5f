// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package node implements the scene's graph.
//
// A Graph is a forest of nodes identified by Node values.
// Each node owns its descendants; the link to a node's
// ancestor is a plain index that carries no ownership.
package node

import (
	"github.com/gviegas/modelview/internal/bitm"
	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/material"
)

// Kind is the kind of a node.
// The set of kinds is closed.
type Kind int

// Node kinds.
const (
	// Grouping node with no content of its own.
	KindGroup Kind = iota
	// Renderable geometry.
	KindMesh
	// Light source.
	KindLight
	// Camera.
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLight:
		return "light"
	case KindCamera:
		return "camera"
	}
	return "invalid"
}

// Transform is a decomposed local transform.
type Transform struct {
	T linear.V3
	R linear.Q
	S linear.V3
}

// Identity returns the identity transform.
func Identity() Transform { return Transform{R: linear.Q{R: 1}, S: linear.V3{1, 1, 1}} }

// Matrix returns the matrix T ⋅ R ⋅ S.
func (t *Transform) Matrix() (m linear.M4) {
	m.Compose(&t.T, &t.R, &t.S)
	return
}

// Mesh is the content of a KindMesh node.
type Mesh struct {
	// Bounds of the vertex positions, in the
	// node's local space.
	Bounds linear.Box

	// Number of vertices across all primitives.
	Vertices int

	// Material slots, one per primitive.
	// A mesh with a single slot has a single
	// material assignment; more than one slot
	// means per-primitive (multi) materials.
	// Slots may share the same *Material.
	Mat []*material.Material

	CastShadow    bool
	ReceiveShadow bool
}

// LightType is the type of a punctual light.
type LightType int

// Light types.
const (
	LightDirectional LightType = iota
	LightPoint
	LightSpot
)

// Light is the content of a KindLight node.
// Directional and spot lights shine along the node's
// local -Z axis.
type Light struct {
	Type      LightType
	Color     [3]float32
	Intensity float32
	// Zero means infinite range.
	Range float32
}

// Data is the content of a node.
type Data struct {
	Name      string
	Kind      Kind
	Transform Transform
	// Must be set iff Kind is KindMesh.
	Mesh *Mesh
	// Only set for KindLight nodes whose light
	// definition is known.
	Light *Light
}

// Node identifies a node in a Graph.
type Node int

// Nil represents an invalid Node.
const Nil Node = 0

type node struct {
	parent Node
	sub    Node
	last   Node
	next   Node
	data   Data
}

// Graph is a node graph.
// The zero value is an empty graph ready for use.
type Graph struct {
	nodes   []node
	nodeMap bitm.Bitm[uint32]
}

func (g *Graph) valid(n Node) bool {
	return n > Nil && int(n) < len(g.nodes) && g.nodeMap.IsSet(int(n))
}

func (g *Graph) alloc() Node {
	if g.nodeMap.Rem() == 0 {
		if g.nodeMap.Cap() == 0 {
			g.nodeMap.Grow(1)
			// Reserve Nil.
			g.nodeMap.Set(0)
		} else {
			g.nodeMap.Grow((g.nodeMap.Cap() + 31) / 32)
		}
		g.nodes = append(g.nodes, make([]node, g.nodeMap.Cap()-len(g.nodes))...)
	}
	idx, ok := g.nodeMap.Search()
	if !ok {
		// Should never happen.
		panic("unexpected failure from bitm.Bitm.Search")
	}
	g.nodeMap.Set(idx)
	return Node(idx)
}

// Insert inserts a new node as the last immediate
// descendant of parent.
// If parent is Nil, the new node has no ancestor.
// It panics if parent does not belong to g.
func (g *Graph) Insert(parent Node, data Data) Node {
	if parent != Nil && !g.valid(parent) {
		panic("node: invalid parent in call to Graph.Insert")
	}
	n := g.alloc()
	g.nodes[n] = node{parent: parent, data: data}
	if parent != Nil {
		p := &g.nodes[parent]
		if p.last != Nil {
			g.nodes[p.last].next = n
		} else {
			p.sub = n
		}
		p.last = n
	}
	return n
}

// Remove removes n and all of its descendants.
// It panics if n does not belong to g.
func (g *Graph) Remove(n Node) {
	if !g.valid(n) {
		panic("node: invalid node in call to Graph.Remove")
	}
	if p := g.nodes[n].parent; p != Nil {
		par := &g.nodes[p]
		var prev Node
		for x := par.sub; x != n; x = g.nodes[x].next {
			prev = x
		}
		if prev == Nil {
			par.sub = g.nodes[n].next
		} else {
			g.nodes[prev].next = g.nodes[n].next
		}
		if par.last == n {
			par.last = prev
		}
	}
	var sub []Node
	g.Walk(n, func(x Node) bool {
		sub = append(sub, x)
		return true
	})
	for _, x := range sub {
		g.nodes[x] = node{}
		g.nodeMap.Unset(int(x))
	}
}

// Len returns the number of nodes in g.
func (g *Graph) Len() int {
	if g.nodeMap.Cap() == 0 {
		return 0
	}
	return g.nodeMap.Len() - 1
}

// Data returns a pointer to n's data.
// The pointer is invalidated by Insert.
func (g *Graph) Data(n Node) *Data { return &g.nodes[n].data }

// Parent returns n's immediate ancestor, or Nil if it
// has none.
func (g *Graph) Parent(n Node) Node { return g.nodes[n].parent }

// FirstChild returns n's first immediate descendant,
// or Nil if it has none.
func (g *Graph) FirstChild(n Node) Node { return g.nodes[n].sub }

// NextSibling returns the node that follows n in its
// ancestor's list of descendants, or Nil.
func (g *Graph) NextSibling(n Node) Node { return g.nodes[n].next }

// Children returns n's immediate descendants in
// insertion order.
func (g *Graph) Children(n Node) (sub []Node) {
	for x := g.nodes[n].sub; x != Nil; x = g.nodes[x].next {
		sub = append(sub, x)
	}
	return
}

// Walk calls f for root and each of its descendants,
// depth-first, visiting ancestors before descendants
// and siblings in insertion order.
// If f returns false, the descendants of the node
// passed to f are skipped.
func (g *Graph) Walk(root Node, f func(Node) bool) {
	stk := []Node{root}
	for len(stk) > 0 {
		n := stk[len(stk)-1]
		stk = stk[:len(stk)-1]
		if !f(n) {
			continue
		}
		// Push in reverse so the first child is
		// popped first.
		mark := len(stk)
		for x := g.nodes[n].sub; x != Nil; x = g.nodes[x].next {
			stk = append(stk, x)
		}
		for i, j := mark, len(stk)-1; i < j; i, j = i+1, j-1 {
			stk[i], stk[j] = stk[j], stk[i]
		}
	}
}

// Local returns the local transform matrix of n.
func (g *Graph) Local(n Node) linear.M4 { return g.nodes[n].data.Transform.Matrix() }

// World returns the world transform matrix of n,
// computed from its chain of ancestors.
func (g *Graph) World(n Node) (m linear.M4) {
	m = g.Local(n)
	for p := g.nodes[n].parent; p != Nil; p = g.nodes[p].parent {
		l := g.Local(p)
		m.Mul(&l, &m)
	}
	return
}

// RelativeTo returns the transform of n relative to
// its ancestor anc (anc's own transform excluded).
// If anc is not an ancestor of n, the result is the
// same as World(n).
func (g *Graph) RelativeTo(n, anc Node) (m linear.M4) {
	if n == anc {
		m.I()
		return
	}
	m = g.Local(n)
	for p := g.nodes[n].parent; p != Nil && p != anc; p = g.nodes[p].parent {
		l := g.Local(p)
		m.Mul(&l, &m)
	}
	return
}
