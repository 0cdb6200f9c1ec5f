// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package asset decodes glTF 2.0 model assets (both the
// JSON and the binary GLB containers) into models.
package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspunctual"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/sync/errgroup"

	"github.com/gviegas/modelview/internal/imgdec"
	"github.com/gviegas/modelview/linear"
	"github.com/gviegas/modelview/material"
	"github.com/gviegas/modelview/model"
	"github.com/gviegas/modelview/node"
)

var (
	// ErrUnsupported means that the blob is neither a GLB
	// nor a glTF JSON document.
	ErrUnsupported = errors.New("asset: unsupported format")

	// ErrMalformed means that the blob looks like glTF
	// but could not be decoded.
	ErrMalformed = errors.New("asset: malformed glTF")
)

// Decode reads a glTF or GLB blob from r and creates
// a new model from its default scene.
// Images embedded in the blob are decoded concurrently;
// images referenced by external URIs are ignored.
func Decode(ctx context.Context, r io.Reader) (*model.Model, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if sniff(b) == formatUnknown {
		return nil, ErrUnsupported
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := Check(&doc); err != nil {
		return nil, err
	}
	imgs, err := decodeImages(ctx, &doc)
	if err != nil {
		return nil, err
	}
	d := decoder{doc: &doc, imgs: imgs}
	return d.model()
}

// decodeImages decodes every image of doc that is
// embedded in a buffer view or data URI.
// The result is indexed as doc.Images.
func decodeImages(ctx context.Context, doc *gltf.Document) ([]image.Image, error) {
	imgs := make([]image.Image, len(doc.Images))
	eg, ctx := errgroup.WithContext(ctx)
	for i, img := range doc.Images {
		eg.Go(func() error {
			var raw []byte
			var err error
			switch {
			case img.BufferView != nil:
				raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			case img.IsEmbeddedResource():
				raw, err = dataURI(img.URI)
			default:
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: image %d: %v", ErrMalformed, i, err)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			dec, _, err := imgdec.Decode(raw, img.Name)
			if err != nil {
				return fmt.Errorf("%w: image %d: %v", ErrMalformed, i, err)
			}
			imgs[i] = dec
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return imgs, nil
}

// dataURI returns the payload of a base64 data URI.
func dataURI(uri string) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ";base64,")
	if !ok {
		return nil, errors.New("not a base64 data URI")
	}
	return base64.StdEncoding.DecodeString(payload)
}

type decoder struct {
	doc    *gltf.Document
	imgs   []image.Image
	mats   []*material.Material
	dflMat *material.Material
	meshes []*node.Mesh
	lights lightspunctual.Lights
}

func (d *decoder) model() (*model.Model, error) {
	d.materials()
	if err := d.geometry(); err != nil {
		return nil, err
	}
	d.lights, _ = d.doc.Extensions[lightspunctual.ExtensionName].(lightspunctual.Lights)
	name := ""
	roots := d.roots()
	if s := d.scene(); s != nil {
		name = s.Name
	}
	m := model.New(name)
	m.Generator = d.doc.Asset.Generator
	m.Copyright = d.doc.Asset.Copyright
	for _, a := range d.doc.Animations {
		m.Animations = append(m.Animations, a.Name)
	}
	for _, r := range roots {
		d.insert(m, m.Root, r)
	}
	return m, nil
}

// scene returns the scene to instantiate, or nil if
// the document defines none.
func (d *decoder) scene() *gltf.Scene {
	switch {
	case d.doc.Scene != nil:
		return d.doc.Scenes[*d.doc.Scene]
	case len(d.doc.Scenes) > 0:
		return d.doc.Scenes[0]
	}
	return nil
}

// roots returns the indices of the top-level nodes.
// Without scenes, every parentless node is a root.
func (d *decoder) roots() []int {
	if s := d.scene(); s != nil {
		return s.Nodes
	}
	child := make([]bool, len(d.doc.Nodes))
	for _, n := range d.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range child {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (d *decoder) insert(m *model.Model, parent node.Node, idx int) {
	gn := d.doc.Nodes[idx]
	data := node.Data{
		Name:      gn.Name,
		Kind:      node.KindGroup,
		Transform: transform(gn),
	}
	switch {
	case gn.Mesh != nil:
		data.Kind = node.KindMesh
		// Each node gets its own Mesh so that shadow
		// flags are per node; material slots are shared.
		mesh := *d.meshes[*gn.Mesh]
		mesh.Mat = append([]*material.Material(nil), mesh.Mat...)
		data.Mesh = &mesh
	case gn.Camera != nil:
		data.Kind = node.KindCamera
	default:
		if ext, ok := gn.Extensions[lightspunctual.ExtensionName]; ok {
			data.Kind = node.KindLight
			// Unknown light references leave the node
			// without a light.
			if i, ok := ext.(lightspunctual.LightIndex); ok && i >= 0 && int(i) < len(d.lights) {
				data.Light = punctual(d.lights[i])
			}
		}
	}
	n := m.Graph.Insert(parent, data)
	for _, c := range gn.Children {
		d.insert(m, n, c)
	}
}

// punctual converts a KHR_lights_punctual light.
// It returns nil for unknown light types.
func punctual(l *lightspunctual.Light) *node.Light {
	if l == nil {
		return nil
	}
	var typ node.LightType
	switch l.Type {
	case lightspunctual.TypeDirectional:
		typ = node.LightDirectional
	case lightspunctual.TypePoint:
		typ = node.LightPoint
	case lightspunctual.TypeSpot:
		typ = node.LightSpot
	default:
		return nil
	}
	c := l.ColorOrDefault()
	nl := &node.Light{
		Type:      typ,
		Color:     [3]float32{float32(c[0]), float32(c[1]), float32(c[2])},
		Intensity: float32(l.IntensityOrDefault()),
	}
	if l.Range != nil && *l.Range > 0 && !math.IsInf(*l.Range, 1) {
		nl.Range = float32(*l.Range)
	}
	return nl
}

var identity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func transform(gn *gltf.Node) node.Transform {
	if gn.Matrix != [16]float64{} && gn.Matrix != identity {
		return decompose(&gn.Matrix)
	}
	t := gn.Translation
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	return node.Transform{
		T: linear.V3{float32(t[0]), float32(t[1]), float32(t[2])},
		R: linear.Q{V: linear.V3{float32(r[0]), float32(r[1]), float32(r[2])}, R: float32(r[3])},
		S: linear.V3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

// decompose splits a column-major affine matrix
// into translation, rotation and scale.
// Shear is discarded.
func decompose(m *[16]float64) node.Transform {
	var col [3][3]float64
	var s [3]float64
	for i := range col {
		for j := range col[i] {
			col[i][j] = m[i*4+j]
		}
		s[i] = math.Sqrt(col[i][0]*col[i][0] + col[i][1]*col[i][1] + col[i][2]*col[i][2])
	}
	det := col[0][0]*(col[1][1]*col[2][2]-col[2][1]*col[1][2]) -
		col[1][0]*(col[0][1]*col[2][2]-col[2][1]*col[0][2]) +
		col[2][0]*(col[0][1]*col[1][2]-col[1][1]*col[0][2])
	if det < 0 {
		s[0] = -s[0]
	}
	for i := range col {
		if s[i] != 0 {
			for j := range col[i] {
				col[i][j] /= s[i]
			}
		}
	}
	// r[row][col] = col[col][row].
	var x, y, z, w float64
	switch tr := col[0][0] + col[1][1] + col[2][2]; {
	case tr > 0:
		k := 0.5 / math.Sqrt(tr+1)
		w = 0.25 / k
		x = (col[1][2] - col[2][1]) * k
		y = (col[2][0] - col[0][2]) * k
		z = (col[0][1] - col[1][0]) * k
	case col[0][0] > col[1][1] && col[0][0] > col[2][2]:
		k := 2 * math.Sqrt(1+col[0][0]-col[1][1]-col[2][2])
		w = (col[1][2] - col[2][1]) / k
		x = 0.25 * k
		y = (col[1][0] + col[0][1]) / k
		z = (col[2][0] + col[0][2]) / k
	case col[1][1] > col[2][2]:
		k := 2 * math.Sqrt(1+col[1][1]-col[0][0]-col[2][2])
		w = (col[2][0] - col[0][2]) / k
		x = (col[1][0] + col[0][1]) / k
		y = 0.25 * k
		z = (col[2][1] + col[1][2]) / k
	default:
		k := 2 * math.Sqrt(1+col[2][2]-col[0][0]-col[1][1])
		w = (col[0][1] - col[1][0]) / k
		x = (col[2][0] + col[0][2]) / k
		y = (col[2][1] + col[1][2]) / k
		z = 0.25 * k
	}
	return node.Transform{
		T: linear.V3{float32(m[12]), float32(m[13]), float32(m[14])},
		R: linear.Q{V: linear.V3{float32(x), float32(y), float32(z)}, R: float32(w)},
		S: linear.V3{float32(s[0]), float32(s[1]), float32(s[2])},
	}
}

func (d *decoder) texRef(idx, uvSet int) material.TexRef {
	tex := d.doc.Textures[idx]
	ref := material.TexRef{Name: tex.Name, UVSet: uvSet}
	if tex.Source != nil {
		ref.Image = d.imgs[*tex.Source]
		if ref.Name == "" {
			ref.Name = d.doc.Images[*tex.Source].Name
		}
	}
	return ref
}

func (d *decoder) materials() {
	d.mats = make([]*material.Material, len(d.doc.Materials))
	for i, gm := range d.doc.Materials {
		mat := material.New(gm.Name)
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			f := pbr.BaseColorFactorOrDefault()
			for j := range f {
				mat.BaseColor.Factor[j] = float32(f[j])
			}
			mat.MetalRough.Metalness = float32(pbr.MetallicFactorOrDefault())
			mat.MetalRough.Roughness = float32(pbr.RoughnessFactorOrDefault())
			if t := pbr.BaseColorTexture; t != nil {
				mat.BaseColor.TexRef = d.texRef(t.Index, t.TexCoord)
			}
			if t := pbr.MetallicRoughnessTexture; t != nil {
				mat.MetalRough.TexRef = d.texRef(t.Index, t.TexCoord)
			}
		}
		if t := gm.NormalTexture; t != nil && t.Index != nil {
			mat.Normal.TexRef = d.texRef(*t.Index, t.TexCoord)
			if t.Scale != nil {
				mat.Normal.Scale = float32(*t.Scale)
			}
		}
		if t := gm.OcclusionTexture; t != nil && t.Index != nil {
			mat.Occlusion.TexRef = d.texRef(*t.Index, t.TexCoord)
			if t.Strength != nil {
				mat.Occlusion.Strength = float32(*t.Strength)
			}
		}
		if t := gm.EmissiveTexture; t != nil {
			mat.Emissive.TexRef = d.texRef(t.Index, t.TexCoord)
		}
		for j, x := range gm.EmissiveFactor {
			mat.Emissive.Factor[j] = float32(x)
		}
		switch gm.AlphaMode {
		case gltf.AlphaBlend:
			mat.AlphaMode = material.AlphaBlend
		case gltf.AlphaMask:
			mat.AlphaMode = material.AlphaMask
		default:
			mat.AlphaMode = material.AlphaOpaque
		}
		if gm.AlphaCutoff != nil {
			mat.AlphaCutoff = float32(*gm.AlphaCutoff)
		}
		mat.DoubleSided = gm.DoubleSided
		d.mats[i] = mat
	}
}

// defaultMaterial returns the material shared by every
// primitive that does not reference one.
func (d *decoder) defaultMaterial() *material.Material {
	if d.dflMat == nil {
		d.dflMat = material.New("default")
	}
	return d.dflMat
}

func (d *decoder) geometry() error {
	d.meshes = make([]*node.Mesh, len(d.doc.Meshes))
	for i, gm := range d.doc.Meshes {
		mesh := &node.Mesh{}
		mesh.Bounds.Empty()
		for j, p := range gm.Primitives {
			acc := d.doc.Accessors[p.Attributes[gltf.POSITION]]
			b, err := d.positionBounds(acc)
			if err != nil {
				return fmt.Errorf("%w: mesh %d primitive %d: %v", ErrMalformed, i, j, err)
			}
			mesh.Bounds.Union(&b)
			mesh.Vertices += acc.Count
			if p.Material != nil {
				mesh.Mat = append(mesh.Mat, d.mats[*p.Material])
			} else {
				mesh.Mat = append(mesh.Mat, d.defaultMaterial())
			}
		}
		d.meshes[i] = mesh
	}
	return nil
}

// positionBounds returns the bounds of a POSITION
// accessor, using its min/max properties when present.
func (d *decoder) positionBounds(acc *gltf.Accessor) (b linear.Box, err error) {
	if len(acc.Min) == 3 && len(acc.Max) == 3 && acc.Sparse == nil {
		for i := range 3 {
			b.Min[i] = float32(acc.Min[i])
			b.Max[i] = float32(acc.Max[i])
		}
		return
	}
	pos, err := modeler.ReadPosition(d.doc, acc, nil)
	if err != nil {
		return
	}
	b.Empty()
	for i := range pos {
		p := linear.V3(pos[i])
		b.Extend(&p)
	}
	return
}
