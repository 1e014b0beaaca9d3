package mesh

import "github.com/samber/lo"

// Topology is a read-only adjacency index over a Geometry. It is computed
// once per geometry and shared between queries.
type Topology struct {
	geom            *Geometry
	cornerToFace    []int32
	vertexToCorners [][]int32
}

// NewTopology indexes g. Corners outside every face range map to face -1;
// indices outside the vertex range are ignored.
func NewTopology(g *Geometry) *Topology {
	t := &Topology{
		geom:            g,
		cornerToFace:    make([]int32, len(g.Indices)),
		vertexToCorners: make([][]int32, len(g.Vertices)),
	}
	for c := range t.cornerToFace {
		t.cornerToFace[c] = -1
	}
	for f := 0; f < g.NumFaces; f++ {
		start, end := t.CornerRangeOfFace(f)
		for c := start; c < end; c++ {
			t.cornerToFace[c] = int32(f)
		}
	}
	for c, v := range g.Indices {
		if v < 0 || int(v) >= len(t.vertexToCorners) {
			continue
		}
		t.vertexToCorners[v] = append(t.vertexToCorners[v], int32(c))
	}
	return t
}

// CornerRangeOfFace returns the half-open corner range [start, end) of face
// f, clamped to the corner buffer.
func (t *Topology) CornerRangeOfFace(f int) (start, end int) {
	g := t.geom
	start = int(g.FaceIndices[f])
	end = start + int(g.FaceSizes[f])
	n := len(g.Indices)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return start, end
}

// FaceOfCorner returns the face containing corner c, or -1.
func (t *Topology) FaceOfCorner(c int) int {
	if c < 0 || c >= len(t.cornerToFace) {
		return -1
	}
	return int(t.cornerToFace[c])
}

// CornersOfVertex returns the corners referencing vertex v, in corner order.
func (t *Topology) CornersOfVertex(v int) []int32 {
	if v < 0 || v >= len(t.vertexToCorners) {
		return nil
	}
	return t.vertexToCorners[v]
}

// FacesTouchingVertex returns the distinct faces with a corner on vertex v,
// in order of first occurrence.
func (t *Topology) FacesTouchingVertex(v int) []int {
	corners := t.CornersOfVertex(v)
	faces := make([]int, 0, len(corners))
	for _, c := range corners {
		if f := t.cornerToFace[c]; f >= 0 {
			faces = append(faces, int(f))
		}
	}
	return lo.Uniq(faces)
}

// NeighbourFaces returns the distinct faces other than f that share at least
// one vertex with f.
func (t *Topology) NeighbourFaces(f int) []int {
	start, end := t.CornerRangeOfFace(f)
	var out []int
	for c := start; c < end; c++ {
		out = append(out, t.FacesTouchingVertex(int(t.geom.Indices[c]))...)
	}
	return lo.Without(lo.Uniq(out), f)
}
