package mesh

import (
	"errors"
	"fmt"

	"github.com/chazu/g3d/pkg/g3d"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"
)

// NoID marks a face without a material or object id in merged output.
const NoID int32 = -1

// Merge concatenates geometries into one triangle mesh. Each input is
// triangulated first; its indices are offset by the number of vertices
// before it.
//
// The result carries positions, indices, vertex uv channel 0, and face
// material and object ids. UVs are present when any input has them and are
// zero for inputs without; ids are present when any input has them and are
// NoID for inputs without. Other attributes are not carried.
func Merge(geoms ...*Geometry) (*Geometry, error) {
	if len(geoms) == 0 {
		return nil, errors.New("mesh: merge of no geometries")
	}

	tris := make([]*Geometry, len(geoms))
	for i, g := range geoms {
		t, err := g.ToTriMesh()
		if err != nil {
			return nil, fmt.Errorf("mesh: merge input %d: %w", i, err)
		}
		tris[i] = t
	}

	vertexOffsets := make([]int, len(tris)+1)
	cornerOffsets := make([]int, len(tris)+1)
	faceOffsets := make([]int, len(tris)+1)
	var hasUV, hasMaterial, hasObject bool
	for i, t := range tris {
		vertexOffsets[i+1] = vertexOffsets[i] + t.NumVertices()
		cornerOffsets[i+1] = cornerOffsets[i] + t.NumCorners()
		faceOffsets[i+1] = faceOffsets[i] + t.NumFaces
		hasUV = hasUV || t.UVs != nil
		hasMaterial = hasMaterial || t.MaterialIDs != nil
		hasObject = hasObject || t.ObjectIDs != nil
	}

	n := len(tris)
	vertices := make([]mgl32.Vec3, vertexOffsets[n])
	indices := make([]int32, cornerOffsets[n])
	var uvs []mgl32.Vec2
	var materials, objects []int32
	if hasUV {
		uvs = make([]mgl32.Vec2, vertexOffsets[n])
	}
	if hasMaterial {
		materials = make([]int32, faceOffsets[n])
	}
	if hasObject {
		objects = make([]int32, faceOffsets[n])
	}

	// Each input writes a disjoint range of every output buffer.
	var eg errgroup.Group
	for i, t := range tris {
		eg.Go(func() error {
			v0, c0, f0 := vertexOffsets[i], cornerOffsets[i], faceOffsets[i]
			copy(vertices[v0:], t.Vertices)
			for c, idx := range t.Indices {
				indices[c0+c] = idx + int32(v0)
			}
			if uvs != nil {
				copy(uvs[v0:vertexOffsets[i+1]], t.UVs)
			}
			if materials != nil {
				copyIDs(materials[f0:faceOffsets[i+1]], t.MaterialIDs)
			}
			if objects != nil {
				copyIDs(objects[f0:faceOffsets[i+1]], t.ObjectIDs)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	attrs := []*g3d.Attribute{g3d.Vertices(vertices), g3d.Indices(indices)}
	if uvs != nil {
		attrs = append(attrs, g3d.FromVec2s(g3d.TypeUV, g3d.AssocVertex, 0, uvs))
	}
	if materials != nil {
		attrs = append(attrs, g3d.FaceInt32s(g3d.TypeMaterialID, 0, materials))
	}
	if objects != nil {
		attrs = append(attrs, g3d.FaceInt32s(g3d.TypeObjectID, 0, objects))
	}
	return build(attrs)
}

// copyIDs fills dst from src, or with NoID when src is absent.
func copyIDs(dst, src []int32) {
	if src == nil {
		for i := range dst {
			dst[i] = NoID
		}
		return
	}
	copy(dst, src)
}

// WithFaceIDs returns g with every face tagged by a material and an object
// id. A negative id leaves that attribute untouched.
func (g *Geometry) WithFaceIDs(material, object int32) (*Geometry, error) {
	var attrs []*g3d.Attribute
	fill := func(t g3d.AttributeType, id int32) {
		if id < 0 {
			return
		}
		ids := make([]int32, g.NumFaces)
		for i := range ids {
			ids[i] = id
		}
		attrs = append(attrs, g3d.FaceInt32s(t, 0, ids))
	}
	fill(g3d.TypeMaterialID, material)
	fill(g3d.TypeObjectID, object)
	if len(attrs) == 0 {
		return g, nil
	}
	c, err := g.G3D.With(attrs...)
	if err != nil {
		return nil, err
	}
	return New(c)
}
