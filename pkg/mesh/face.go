package mesh

import (
	"encoding/binary"
	"slices"

	farm "github.com/dgryski/go-farm"
	"github.com/go-gl/mathgl/mgl32"
)

// Face is a lightweight handle on one face of a geometry.
type Face struct {
	Geometry *Geometry
	Index    int
}

// Size returns the number of corners of the face.
func (f Face) Size() int {
	return int(f.Geometry.FaceSizes[f.Index])
}

// Start returns the first corner of the face.
func (f Face) Start() int {
	return int(f.Geometry.FaceIndices[f.Index])
}

// Vertex returns the vertex index at the k-th corner of the face.
func (f Face) Vertex(k int) int32 {
	return f.Geometry.Indices[f.Start()+k]
}

// Indices returns the vertex indices of the face. The slice aliases the
// geometry's index buffer.
func (f Face) Indices() []int32 {
	start := f.Start()
	return f.Geometry.Indices[start : start+f.Size()]
}

// Points returns the vertex positions of the face, in corner order.
func (f Face) Points() []mgl32.Vec3 {
	idx := f.Indices()
	pts := make([]mgl32.Vec3, len(idx))
	for i, v := range idx {
		pts[i] = f.Geometry.Vertices[v]
	}
	return pts
}

// Point returns the position of the k-th corner.
func (f Face) Point(k int) mgl32.Vec3 {
	return f.Geometry.Vertices[f.Vertex(k)]
}

// HasDegenerateIndices reports whether any vertex index repeats within the
// face.
func (f Face) HasDegenerateIndices() bool {
	idx := f.Indices()
	for i := range idx {
		for j := i + 1; j < len(idx); j++ {
			if idx[i] == idx[j] {
				return true
			}
		}
	}
	return false
}

func (f Face) sortedIndices() []int32 {
	s := slices.Clone(f.Indices())
	slices.Sort(s)
	return s
}

// Equal reports whether f and o reference the same set of vertices,
// regardless of corner order.
func (f Face) Equal(o Face) bool {
	if f.Size() != o.Size() {
		return false
	}
	return slices.Equal(f.sortedIndices(), o.sortedIndices())
}

// Hash returns an order-independent fingerprint of the face's vertex set.
// Faces that are Equal hash equally.
func (f Face) Hash() uint64 {
	s := f.sortedIndices()
	buf := make([]byte, 0, 4*len(s))
	for _, v := range s {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
	}
	return farm.Fingerprint64(buf)
}

// Triangles fan-triangulates the face around its first corner. A face with
// fewer than three corners yields none.
func (f Face) Triangles() [][3]int32 {
	return FanTriangles(f.Indices())
}

// Normal returns the unit normal (p2-p0) x (p1-p0) of the face's first three
// corners, or zero for a face with fewer than three corners or no area.
func (f Face) Normal() mgl32.Vec3 {
	if f.Size() < 3 {
		return mgl32.Vec3{}
	}
	return TriangleNormal(f.Point(0), f.Point(1), f.Point(2))
}

// Area returns the summed area of the face's fan triangles.
func (f Face) Area() float32 {
	var area float32
	for _, t := range f.Triangles() {
		v := f.Geometry.Vertices
		area += TriangleArea(v[t[0]], v[t[1]], v[t[2]])
	}
	return area
}

// Center returns the mean of the face's corner positions.
func (f Face) Center() mgl32.Vec3 {
	var c mgl32.Vec3
	n := f.Size()
	if n == 0 {
		return c
	}
	for k := 0; k < n; k++ {
		c = c.Add(f.Point(k))
	}
	return c.Mul(1 / float32(n))
}

// IsPlanar reports whether every corner lies within eps of the plane through
// the first three corners.
func (f Face) IsPlanar(eps float32) bool {
	n := f.Size()
	if n <= 3 {
		return true
	}
	p0, p1, p2 := f.Point(0), f.Point(1), f.Point(2)
	for k := 3; k < n; k++ {
		if !Coplanar(p0, p1, p2, f.Point(k), eps) {
			return false
		}
	}
	return true
}

// FanTriangles fan-triangulates a polygon given by its corner indices:
// (i0, i1, i2), (i0, i2, i3), ...
func FanTriangles(indices []int32) [][3]int32 {
	if len(indices) < 3 {
		return nil
	}
	tris := make([][3]int32, 0, len(indices)-2)
	for k := 1; k+1 < len(indices); k++ {
		tris = append(tris, [3]int32{indices[0], indices[k], indices[k+1]})
	}
	return tris
}

// TriangleNormal returns the unit normal (p2-p0) x (p1-p0), or zero for a
// degenerate triangle.
func TriangleNormal(p0, p1, p2 mgl32.Vec3) mgl32.Vec3 {
	n := p2.Sub(p0).Cross(p1.Sub(p0))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}

// TriangleArea returns the area of the triangle p0 p1 p2.
func TriangleArea(p0, p1, p2 mgl32.Vec3) float32 {
	return p1.Sub(p0).Cross(p2.Sub(p0)).Len() / 2
}

// Coplanar reports whether p3 lies within eps of the plane through p0, p1
// and p2, measured as the scalar triple product.
func Coplanar(p0, p1, p2, p3 mgl32.Vec3, eps float32) bool {
	a, b, c := p1.Sub(p0), p2.Sub(p0), p3.Sub(p0)
	d := a.Dot(b.Cross(c))
	return d <= eps && d >= -eps
}

// DuplicateFaces groups faces that reference the same vertex set. Only
// groups with more than one face are returned, each in face order.
func (g *Geometry) DuplicateFaces() [][]int {
	buckets := make(map[uint64][]int)
	var order []uint64
	for f := range g.Faces() {
		h := f.Hash()
		if _, seen := buckets[h]; !seen {
			order = append(order, h)
		}
		buckets[h] = append(buckets[h], f.Index)
	}

	var out [][]int
	for _, h := range order {
		bucket := buckets[h]
		// Separate hash collisions into true equality classes.
		for len(bucket) > 1 {
			first := g.Face(bucket[0])
			same := []int{bucket[0]}
			var rest []int
			for _, i := range bucket[1:] {
				if first.Equal(g.Face(i)) {
					same = append(same, i)
				} else {
					rest = append(rest, i)
				}
			}
			if len(same) > 1 {
				out = append(out, same)
			}
			bucket = rest
		}
	}
	return out
}

// DegenerateFaces returns the faces with repeated vertex indices.
func (g *Geometry) DegenerateFaces() []int {
	var out []int
	for f := range g.Faces() {
		if f.HasDegenerateIndices() {
			out = append(out, f.Index)
		}
	}
	return out
}
