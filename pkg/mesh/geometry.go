// Package mesh exposes a G3D container as a polygon mesh and implements the
// face-level and whole-geometry algorithms on top of it: topology queries,
// fan triangulation, face remapping, merging, welding and compaction.
//
// Every operation is pure. A Geometry is never mutated; transformations
// return a new Geometry backed by a new container.
package mesh

import (
	"fmt"
	"iter"
	"sync"

	"github.com/chazu/g3d/pkg/g3d"
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry is a read-oriented view of a G3D container as a polygon mesh.
//
// The slices borrow the container's buffers where the casting lattice allows
// a direct view, and hold materialised defaults otherwise (implicit indices,
// fixed face sizes, reconstructed face offsets). They must not be modified.
type Geometry struct {
	G3D *g3d.G3D

	Vertices      []mgl32.Vec3
	Indices       []int32
	FaceSizes     []int32
	FaceIndices   []int32
	NumFaces      int
	PointsPerFace int // 0 when faces have variable size

	UVs         []mgl32.Vec2 // vertex uv channel 0, nil when absent
	MaterialIDs []int32      // per face, nil when absent
	ObjectIDs   []int32      // per face, nil when absent

	topoOnce sync.Once
	topo     *Topology
}

// New wraps a container as a Geometry. Positions are viewed as float32
// vectors, so the vertex attribute must be float32 or an integer type that
// widens to it; a valid container with float64 positions is rejected with
// g3d.ErrUnsupportedConversion, since the casting lattice never narrows.
func New(c *g3d.G3D) (*Geometry, error) {
	g := &Geometry{G3D: c}

	var err error
	if g.Vertices, err = c.VertexAttribute().Vec3s(); err != nil {
		return nil, fmt.Errorf("mesh: vertices: %w", err)
	}

	if ia := c.IndexAttribute(); ia != nil {
		if g.Indices, err = ia.Int32s(); err != nil {
			return nil, fmt.Errorf("mesh: indices: %w", err)
		}
	} else {
		g.Indices = make([]int32, len(g.Vertices))
		for i := range g.Indices {
			g.Indices[i] = int32(i)
		}
	}

	fl, err := c.FaceLayout()
	if err != nil {
		return nil, fmt.Errorf("mesh: faces: %w", err)
	}
	if len(fl.Offsets) != fl.NumFaces {
		return nil, fmt.Errorf("mesh: %d face offsets for %d faces", len(fl.Offsets), fl.NumFaces)
	}
	g.NumFaces = fl.NumFaces
	g.PointsPerFace = fl.PointsPerFace
	g.FaceSizes = fl.Sizes
	g.FaceIndices = fl.Offsets

	if a := c.Find(g3d.AssocVertex, g3d.TypeUV, 0); a != nil && a.Descriptor.Arity == 2 {
		if g.UVs, err = a.Vec2s(); err != nil {
			return nil, fmt.Errorf("mesh: uvs: %w", err)
		}
	}
	if a := c.Find(g3d.AssocFace, g3d.TypeMaterialID, 0); a != nil {
		if g.MaterialIDs, err = a.Int32s(); err != nil {
			return nil, fmt.Errorf("mesh: material ids: %w", err)
		}
	}
	if a := c.Find(g3d.AssocFace, g3d.TypeObjectID, 0); a != nil {
		if g.ObjectIDs, err = a.Int32s(); err != nil {
			return nil, fmt.Errorf("mesh: object ids: %w", err)
		}
	}
	return g, nil
}

// FromTriangles builds a triangle mesh. A nil indices slice means implicit
// indices: every three consecutive vertices form a triangle.
func FromTriangles(vertices []mgl32.Vec3, indices []int32, extra ...*g3d.Attribute) (*Geometry, error) {
	attrs := []*g3d.Attribute{g3d.Vertices(vertices)}
	if indices != nil {
		attrs = append(attrs, g3d.Indices(indices))
	}
	return build(append(attrs, extra...))
}

// FromFixedFaces builds a mesh whose faces all have pointsPerFace corners.
func FromFixedFaces(vertices []mgl32.Vec3, indices []int32, pointsPerFace int, extra ...*g3d.Attribute) (*Geometry, error) {
	attrs := []*g3d.Attribute{
		g3d.Vertices(vertices),
		g3d.Indices(indices),
		g3d.FixedFaceSize(int32(pointsPerFace)),
	}
	return build(append(attrs, extra...))
}

// FromPolygons builds a polygon mesh with one entry of faceSizes per face.
func FromPolygons(vertices []mgl32.Vec3, indices []int32, faceSizes []int32, extra ...*g3d.Attribute) (*Geometry, error) {
	attrs := []*g3d.Attribute{
		g3d.Vertices(vertices),
		g3d.Indices(indices),
		g3d.FaceSizes(faceSizes),
	}
	return build(append(attrs, extra...))
}

func build(attrs []*g3d.Attribute) (*Geometry, error) {
	c, err := g3d.New(attrs...)
	if err != nil {
		return nil, err
	}
	return New(c)
}

// rebuild wraps attrs in a container carrying g's header.
func (g *Geometry) rebuild(attrs []*g3d.Attribute) (*Geometry, error) {
	c, err := g3d.New(attrs...)
	if err != nil {
		return nil, err
	}
	return New(c.WithHeader(g.G3D.Header()))
}

// NumVertices returns the number of vertices.
func (g *Geometry) NumVertices() int {
	return len(g.Vertices)
}

// NumCorners returns the number of corners.
func (g *Geometry) NumCorners() int {
	return len(g.Indices)
}

// Validate runs the container's structural validation.
func (g *Geometry) Validate() error {
	return g.G3D.Validate()
}

// Topology returns the adjacency index of g, building it on first use.
func (g *Geometry) Topology() *Topology {
	g.topoOnce.Do(func() {
		g.topo = NewTopology(g)
	})
	return g.topo
}

// Face returns the i-th face.
func (g *Geometry) Face(i int) Face {
	return Face{Geometry: g, Index: i}
}

// Faces yields every face in order.
func (g *Geometry) Faces() iter.Seq[Face] {
	return func(yield func(Face) bool) {
		for i := 0; i < g.NumFaces; i++ {
			if !yield(g.Face(i)) {
				return
			}
		}
	}
}

// Bounds returns the axis-aligned bounding box of the vertices. Both corners
// are zero for a geometry without vertices.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = g.Vertices[0], g.Vertices[0]
	for _, v := range g.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], v[k])
			hi[k] = max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Transform returns a geometry whose positions are transformed by m.
// Normals of any association (float32, arity 3) are transformed by the
// inverse transpose of m's upper 3x3 and renormalised; zero normals stay
// zero. Every other attribute is shared.
func (g *Geometry) Transform(m mgl32.Mat4) (*Geometry, error) {
	positions := make([]mgl32.Vec3, len(g.Vertices))
	for i, v := range g.Vertices {
		positions[i] = m.Mul4x1(v.Vec4(1)).Vec3()
	}
	replace := []*g3d.Attribute{g3d.FromVec3s(g3d.TypeVertex, g3d.AssocVertex, g.G3D.VertexAttribute().Descriptor.ChannelIndex, positions)}

	nm := m.Mat3().Inv().Transpose()
	for _, a := range g.G3D.FindAll(g3d.TypeNormal) {
		d := a.Descriptor
		if d.DataType != g3d.Float32 || d.Arity != 3 {
			continue
		}
		normals, err := a.Vec3s()
		if err != nil {
			return nil, err
		}
		out := make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			if t := nm.Mul3x1(n); t.Len() > 0 {
				out[i] = t.Normalize()
			}
		}
		replace = append(replace, g3d.FromVec3s(d.AttributeType, d.Association, d.ChannelIndex, out))
	}

	c, err := g.G3D.With(replace...)
	if err != nil {
		return nil, err
	}
	return New(c)
}
