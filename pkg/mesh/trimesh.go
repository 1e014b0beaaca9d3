package mesh

import (
	"fmt"

	"github.com/chazu/g3d/pkg/g3d"
)

// IsTriMesh reports whether every face of g is a triangle.
func (g *Geometry) IsTriMesh() bool {
	return g.PointsPerFace == 3
}

// ToTriMesh fan-triangulates every face. A geometry that is already a
// triangle mesh is returned as is.
//
// Face attributes are repeated for each triangle of their face and corner
// attributes follow their source corner. Edge attributes are dropped, since
// the diagonals introduced by the fan have no source edge. The result has a
// fixed face size of 3 and no face-index attribute.
func (g *Geometry) ToTriMesh() (*Geometry, error) {
	if g.IsTriMesh() {
		return g, nil
	}

	var srcFaces, corners []int32
	for f := range g.Faces() {
		start := int32(f.Start())
		for k := 1; k+1 < f.Size(); k++ {
			srcFaces = append(srcFaces, int32(f.Index))
			corners = append(corners, start, start+int32(k), start+int32(k)+1)
		}
	}

	c := g.G3D
	attrs := make([]*g3d.Attribute, 0, c.Len()+1)
	for _, a := range c.Attributes() {
		if a == c.FaceSizeAttribute() || a == c.FaceIndexAttribute() {
			continue
		}
		switch a.Descriptor.Association {
		case g3d.AssocFace:
			r, err := a.Remap(srcFaces)
			if err != nil {
				return nil, fmt.Errorf("mesh: triangulate %s: %w", a.Descriptor, err)
			}
			a = r
		case g3d.AssocCorner:
			r, err := a.Remap(corners)
			if err != nil {
				return nil, fmt.Errorf("mesh: triangulate %s: %w", a.Descriptor, err)
			}
			a = r
		case g3d.AssocEdge:
			continue
		}
		attrs = append(attrs, a)
	}
	if c.IndexAttribute() == nil {
		attrs = append(attrs, g3d.Indices(corners))
	}
	attrs = append(attrs, g3d.FixedFaceSize(3))
	return g.rebuild(attrs)
}
