// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/node"
)

func encode(t *testing.T, doc *gltf.Document, binary bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = binary
	require.NoError(t, enc.Encode(doc))
	return buf.Bytes()
}

func primitive(doc *gltf.Document, pos [][3]float32, mat *int) *gltf.Primitive {
	acc := modeler.WritePosition(doc, pos)
	return &gltf.Primitive{
		Attributes: map[string]int{gltf.POSITION: acc},
		Material:   mat,
	}
}

// newDoc creates a document with the hierarchy:
//
//	body (mesh 0: brass, steel)
//	└── arm (translated group)
//	    └── hand (mesh 1: brass)
//	lamp (point light)
//	extra (mesh 2: no material)
func newDoc() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "modelview test"
	doc.Asset.Copyright = "CC0"
	doc.Extensions = gltf.Extensions{lightspunctual.ExtensionName: map[string]any{
		"lights": []map[string]any{{"type": "point", "color": []float64{1, 0.5, 0}, "intensity": 20, "range": 10}},
	}}
	doc.Materials = []*gltf.Material{
		{
			Name: "brass",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{0.8, 0.6, 0.2, 1},
				MetallicFactor:  gltf.Float(1),
				RoughnessFactor: gltf.Float(0.3),
			},
		},
		{Name: "steel", AlphaMode: gltf.AlphaBlend, DoubleSided: true},
	}
	doc.Meshes = []*gltf.Mesh{
		{Name: "body", Primitives: []*gltf.Primitive{
			primitive(doc, [][3]float32{{-1, 0, -1}, {1, 2, 1}, {0, 1, 0}}, gltf.Index(0)),
			primitive(doc, [][3]float32{{-1, 2, -1}, {1, 4, 1}, {0, 3, 0}}, gltf.Index(1)),
		}},
		{Name: "hand", Primitives: []*gltf.Primitive{
			primitive(doc, [][3]float32{{0, 0, 0}, {1, 1, 1}, {0, 1, 0}}, gltf.Index(0)),
		}},
		{Name: "extra", Primitives: []*gltf.Primitive{
			primitive(doc, [][3]float32{{0, 0, 0}, {0.5, 0.5, 0.5}, {0, 0.5, 0}}, nil),
		}},
	}
	doc.Nodes = []*gltf.Node{
		{Name: "body", Mesh: gltf.Index(0), Children: []int{1}},
		{Name: "arm", Translation: [3]float64{3, 0, 0}, Children: []int{2}},
		{Name: "hand", Mesh: gltf.Index(1)},
		{Name: "lamp", Extensions: gltf.Extensions{lightspunctual.ExtensionName: map[string]any{"light": 0}}},
		{Name: "extra", Mesh: gltf.Index(2)},
	}
	doc.Scenes[0].Nodes = []int{0, 3, 4}
	doc.Animations = []*gltf.Animation{{Name: "wave"}}
	return doc
}

func names(m *model.Model) (s []string) {
	m.Graph.Walk(m.Root, func(n node.Node) bool {
		s = append(s, m.Graph.Data(n).Name)
		return true
	})
	return
}

func TestDecodeGLB(t *testing.T) {
	b := encode(t, newDoc(), true)
	require.True(t, IsGLB(b))

	m, err := Decode(context.Background(), bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, "modelview test", m.Generator)
	assert.Equal(t, "CC0", m.Copyright)
	assert.Equal(t, []string{"wave"}, m.Animations)
	assert.Equal(t, []string{m.Name, "body", "arm", "hand", "lamp", "extra"}, names(m))

	kinds := map[string]node.Kind{}
	m.Graph.Walk(m.Root, func(n node.Node) bool {
		kinds[m.Graph.Data(n).Name] = m.Graph.Data(n).Kind
		return true
	})
	assert.Equal(t, node.KindMesh, kinds["body"])
	assert.Equal(t, node.KindGroup, kinds["arm"])
	assert.Equal(t, node.KindMesh, kinds["hand"])
	assert.Equal(t, node.KindLight, kinds["lamp"])
	m.Graph.Walk(m.Root, func(n node.Node) bool {
		if d := m.Graph.Data(n); d.Name == "lamp" {
			assert.Equal(t, &node.Light{Type: node.LightPoint, Color: [3]float32{1, 0.5, 0}, Intensity: 20, Range: 10}, d.Light)
		} else {
			assert.Nil(t, d.Light, d.Name)
		}
		return true
	})

	mats := model.Materials(m)
	require.Len(t, mats, 3)
	assert.Equal(t, "brass", mats[0].Name)
	assert.Equal(t, "steel", mats[1].Name)
	assert.Equal(t, "default", mats[2].Name)
	assert.InDelta(t, 0.3, mats[0].MetalRough.Roughness, 1e-6)
	assert.InDelta(t, 0.6, mats[0].BaseColor.Factor[1], 1e-6)
	assert.True(t, mats[1].DoubleSided)

	meshes := m.Meshes()
	require.Len(t, meshes, 3)
	body := m.Graph.Data(meshes[0]).Mesh
	assert.Len(t, body.Mat, 2)
	assert.Equal(t, 6, body.Vertices)
	assert.Equal(t, float32(4), body.Bounds.Max[1])
	assert.Same(t, body.Mat[0], m.Graph.Data(meshes[1]).Mesh.Mat[0])

	bb := model.Bounds(m)
	assert.Equal(t, float32(-1), bb.Min[0])
	assert.Equal(t, float32(4), bb.Max[0])
	assert.Equal(t, float32(4), bb.Max[1])
}

func TestDecodeJSON(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "a", Children: []int{1}}, {Name: "b"}}
	doc.Scenes[0].Nodes = []int{0}
	b := encode(t, doc, false)
	require.False(t, IsGLB(b))

	m, err := Decode(context.Background(), bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, []string{m.Name, "a", "b"}, names(m))
	assert.ErrorIs(t, model.Normalize(m, 3), model.ErrDegenerate)
}

func TestDecodeNoScene(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Scene = nil
	doc.Scenes = nil
	doc.Nodes = []*gltf.Node{{Name: "child"}, {Name: "root", Children: []int{0}}, {Name: "other"}}
	m, err := Decode(context.Background(), bytes.NewReader(encode(t, doc, false)))
	require.NoError(t, err)
	assert.Equal(t, []string{m.Name, "root", "child", "other"}, names(m))
}

func TestDecodeInvalid(t *testing.T) {
	ctx := context.Background()
	for _, b := range [][]byte{
		nil,
		[]byte("not a model"),
		{0x67, 0x6c, 0x54, 0x46, 2, 0, 0, 0},
		[]byte("#?RADIANCE\n"),
	} {
		_, err := Decode(ctx, bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrUnsupported, "%q", b)
	}

	for _, b := range [][]byte{
		[]byte(`{"asset":`),
		[]byte(`{"asset":{"version":"2.0"},"nodes":[{"mesh":3}]}`),
		[]byte(`{"asset":{"version":"2.0"},"nodes":[{"children":[1]},{"children":[0]}]}`),
	} {
		_, err := Decode(ctx, bytes.NewReader(b))
		assert.ErrorIs(t, err, ErrMalformed, "%s", b)
	}

	glb := encode(t, newDoc(), true)
	glb[20] ^= 0xff
	_, err := Decode(ctx, bytes.NewReader(glb))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCheck(t *testing.T) {
	doc := newDoc()
	require.NoError(t, Check(doc))

	doc = newDoc()
	doc.Nodes[2].Children = []int{0}
	assert.ErrorIs(t, Check(doc), ErrMalformed, "cycle")

	doc = newDoc()
	doc.Nodes[3].Children = []int{2}
	assert.ErrorIs(t, Check(doc), ErrMalformed, "multiple parents")

	doc = newDoc()
	doc.Nodes[4].Children = []int{4}
	assert.ErrorIs(t, Check(doc), ErrMalformed, "self reference")

	doc = newDoc()
	doc.Meshes[0].Primitives[0].Material = gltf.Index(9)
	assert.ErrorIs(t, Check(doc), ErrMalformed)

	doc = newDoc()
	delete(doc.Meshes[1].Primitives[0].Attributes, gltf.POSITION)
	assert.ErrorIs(t, Check(doc), ErrMalformed)

	doc = newDoc()
	doc.Scene = gltf.Index(2)
	assert.ErrorIs(t, Check(doc), ErrMalformed)
}

func pngURI(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeImages(t *testing.T) {
	doc := newDoc()
	doc.Images = []*gltf.Image{{Name: "albedo", URI: pngURI(t)}, {Name: "external", URI: "albedo.png"}}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(0)}, {Source: gltf.Index(1)}}
	doc.Materials[0].PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: 0}
	doc.Materials[1].NormalTexture = &gltf.NormalTexture{Index: gltf.Index(1), Scale: gltf.Float(0.5)}

	m, err := Decode(context.Background(), bytes.NewReader(encode(t, doc, true)))
	require.NoError(t, err)
	mats := model.Materials(m)
	ref := mats[0].BaseColor.TexRef
	require.NotNil(t, ref.Image)
	assert.Equal(t, "albedo", ref.Name)
	assert.Equal(t, image.Rect(0, 0, 4, 2), ref.Image.Bounds())
	assert.Nil(t, mats[1].Normal.Image)
	assert.Equal(t, float32(0.5), mats[1].Normal.Scale)

	doc.Images[0].URI = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("garbage"))
	_, err = Decode(context.Background(), bytes.NewReader(encode(t, doc, true)))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeCanceled(t *testing.T) {
	doc := newDoc()
	doc.Images = []*gltf.Image{{URI: pngURI(t)}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Decode(ctx, bytes.NewReader(encode(t, doc, true)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecompose(t *testing.T) {
	doc := gltf.NewDocument()
	// Rotation of π/2 around Y, uniform scale of 2
	// and translation of [3 4 5].
	doc.Nodes = []*gltf.Node{{Name: "m", Matrix: [16]float64{
		0, 0, -2, 0,
		0, 2, 0, 0,
		2, 0, 0, 0,
		3, 4, 5, 1,
	}}}
	doc.Scenes[0].Nodes = []int{0}
	m, err := Decode(context.Background(), bytes.NewReader(encode(t, doc, false)))
	require.NoError(t, err)
	xf := m.Graph.Data(m.Graph.FirstChild(m.Root)).Transform
	assert.Equal(t, [3]float32{3, 4, 5}, [3]float32(xf.T))
	for i := range xf.S {
		assert.InDelta(t, 2, xf.S[i], 1e-6)
	}
	assert.InDelta(t, 0, xf.R.V[0], 1e-6)
	assert.InDelta(t, math.Sqrt2/2, xf.R.V[1], 1e-6)
	assert.InDelta(t, 0, xf.R.V[2], 1e-6)
	assert.InDelta(t, math.Sqrt2/2, xf.R.R, 1e-6)
}

func TestDecodeLights(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Extensions = gltf.Extensions{lightspunctual.ExtensionName: map[string]any{
		"lights": []map[string]any{
			{"type": "directional", "intensity": 3},
			{"type": "spot", "spot": map[string]any{"outerConeAngle": 0.5}},
			{"type": "point"},
			{"type": "area"},
		},
	}}
	light := func(i int) gltf.Extensions {
		return gltf.Extensions{lightspunctual.ExtensionName: map[string]any{"light": i}}
	}
	doc.Nodes = []*gltf.Node{
		{Name: "sun", Extensions: light(0)},
		{Name: "spot", Extensions: light(1)},
		{Name: "bulb", Extensions: light(2)},
		{Name: "area", Extensions: light(3)},
		{Name: "dangling", Extensions: light(9)},
	}
	doc.Scenes[0].Nodes = []int{0, 1, 2, 3, 4}

	m, err := Decode(context.Background(), bytes.NewReader(encode(t, doc, false)))
	require.NoError(t, err)
	lights := map[string]*node.Light{}
	m.Graph.Walk(m.Root, func(n node.Node) bool {
		d := m.Graph.Data(n)
		if n != m.Root {
			assert.Equal(t, node.KindLight, d.Kind, d.Name)
			lights[d.Name] = d.Light
		}
		return true
	})
	white := [3]float32{1, 1, 1}
	assert.Equal(t, &node.Light{Type: node.LightDirectional, Color: white, Intensity: 3}, lights["sun"])
	assert.Equal(t, &node.Light{Type: node.LightSpot, Color: white, Intensity: 1}, lights["spot"])
	assert.Equal(t, &node.Light{Type: node.LightPoint, Color: white, Intensity: 1}, lights["bulb"])
	assert.Nil(t, lights["area"])
	assert.Nil(t, lights["dangling"])
}
