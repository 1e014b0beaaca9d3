package kernel

import (
	"github.com/chazu/g3d/pkg/g3d"
	"github.com/chazu/g3d/pkg/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// Soup is an unindexed triangle list as emitted by tessellators: every three
// consecutive positions form one triangle, with one normal per triangle.
type Soup struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
}

// Add appends one triangle.
func (s *Soup) Add(a, b, c, normal mgl32.Vec3) {
	s.Positions = append(s.Positions, a, b, c)
	s.Normals = append(s.Normals, normal)
}

// TriangleCount returns the number of triangles.
func (s *Soup) TriangleCount() int {
	return len(s.Positions) / 3
}

// IsEmpty returns true if the soup has no triangles.
func (s *Soup) IsEmpty() bool {
	return len(s.Positions) == 0
}

// Geometry converts the soup into a welded triangle mesh. The triangle
// normals become a face-associated normal attribute.
func (s *Soup) Geometry() (*mesh.Geometry, error) {
	g, err := mesh.FromTriangles(s.Positions, nil,
		g3d.FromVec3s(g3d.TypeNormal, g3d.AssocFace, 0, s.Normals))
	if err != nil {
		return nil, err
	}
	return g.WeldVertices()
}
