package mesh

import (
	"github.com/chazu/g3d/pkg/g3d"
	"github.com/go-gl/mathgl/mgl32"
)

// VertexNormals returns one unit normal per vertex: the area-weighted sum of
// the normals of every fan triangle touching it. Vertices used by no face, or
// only by faces without area, get the zero vector.
func (g *Geometry) VertexNormals() []mgl32.Vec3 {
	sums := make([]mgl32.Vec3, len(g.Vertices))
	for f := range g.Faces() {
		for _, t := range f.Triangles() {
			p0, p1, p2 := g.Vertices[t[0]], g.Vertices[t[1]], g.Vertices[t[2]]
			// Unnormalised, so the length carries twice the triangle area.
			n := p2.Sub(p0).Cross(p1.Sub(p0))
			for _, v := range t {
				sums[v] = sums[v].Add(n)
			}
		}
	}
	for i, n := range sums {
		if n.Len() > 0 {
			sums[i] = n.Normalize()
		}
	}
	return sums
}

// WithVertexNormals returns g with normal channel 0 replaced by
// VertexNormals.
func (g *Geometry) WithVertexNormals() (*Geometry, error) {
	c, err := g.G3D.With(g3d.FromVec3s(g3d.TypeNormal, g3d.AssocVertex, 0, g.VertexNormals()))
	if err != nil {
		return nil, err
	}
	return New(c)
}
