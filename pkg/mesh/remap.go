package mesh

import (
	"fmt"

	"github.com/chazu/g3d/pkg/g3d"
)

// RemapFaces returns a geometry whose i-th face is face faces[i] of g.
// Faces may repeat or be omitted.
//
// Face attributes are gathered through the face list and corner and edge
// attributes through the corresponding corner list. Vertex, object,
// instance, group and unassociated attributes are shared unchanged, so the
// result may carry unused vertices. An implicit index buffer becomes
// explicit, and a face-index attribute is rebuilt from the new face sizes.
func (g *Geometry) RemapFaces(faces []int) (*Geometry, error) {
	topo := g.Topology()
	faceList := make([]int32, len(faces))
	sizes := make([]int32, len(faces))
	corners := make([]int32, 0, len(faces)*max(g.PointsPerFace, 1))
	for i, f := range faces {
		if f < 0 || f >= g.NumFaces {
			return nil, fmt.Errorf("mesh: remap: face %d out of range [0, %d)", f, g.NumFaces)
		}
		faceList[i] = int32(f)
		start, end := topo.CornerRangeOfFace(f)
		for c := start; c < end; c++ {
			corners = append(corners, int32(c))
		}
		sizes[i] = int32(end - start)
	}

	c := g.G3D
	attrs := make([]*g3d.Attribute, 0, c.Len()+1)
	for _, a := range c.Attributes() {
		if a == c.FaceIndexAttribute() {
			continue
		}
		switch a.Descriptor.Association {
		case g3d.AssocFace:
			r, err := a.Remap(faceList)
			if err != nil {
				return nil, fmt.Errorf("mesh: remap %s: %w", a.Descriptor, err)
			}
			a = r
		case g3d.AssocCorner, g3d.AssocEdge:
			r, err := a.Remap(corners)
			if err != nil {
				return nil, fmt.Errorf("mesh: remap %s: %w", a.Descriptor, err)
			}
			a = r
		}
		attrs = append(attrs, a)
	}
	if c.IndexAttribute() == nil {
		attrs = append(attrs, g3d.Indices(corners))
	}
	if c.FaceIndexAttribute() != nil {
		attrs = append(attrs, g3d.FaceIndices(prefixSums(sizes)))
	}
	return g.rebuild(attrs)
}

// CopyFaces returns a geometry holding the faces of g for which keep
// returns true, in order.
func (g *Geometry) CopyFaces(keep func(Face) bool) (*Geometry, error) {
	var faces []int
	for f := range g.Faces() {
		if keep(f) {
			faces = append(faces, f.Index)
		}
	}
	return g.RemapFaces(faces)
}

// CopyFaceRange returns a geometry holding count faces of g starting at
// start.
func (g *Geometry) CopyFaceRange(start, count int) (*Geometry, error) {
	if start < 0 || count < 0 || start+count > g.NumFaces {
		return nil, fmt.Errorf("mesh: face range [%d, %d) outside [0, %d)", start, start+count, g.NumFaces)
	}
	faces := make([]int, count)
	for i := range faces {
		faces[i] = start + i
	}
	return g.RemapFaces(faces)
}

func prefixSums(sizes []int32) []int32 {
	out := make([]int32, len(sizes))
	var running int32
	for i, s := range sizes {
		out[i] = running
		running += s
	}
	return out
}
