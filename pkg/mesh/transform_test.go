package mesh

import (
	"testing"

	"github.com/chazu/g3d/pkg/g3d"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

// --- ToTriMesh ---

func TestToTriMeshUnitSquare(t *testing.T) {
	tri, err := unitSquare(t).ToTriMesh()
	if err != nil {
		t.Fatal(err)
	}
	if tri.NumFaces != 2 || tri.PointsPerFace != 3 {
		t.Fatalf("NumFaces = %d, PointsPerFace = %d; want 2, 3", tri.NumFaces, tri.PointsPerFace)
	}
	var area float32
	for f := range tri.Faces() {
		area += f.Area()
	}
	if !approx(area, 1, 1e-4) {
		t.Errorf("total area = %f, want 1", area)
	}
	if err := tri.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestToTriMeshIdempotent(t *testing.T) {
	g := tetrahedron(t)
	tri, err := g.ToTriMesh()
	if err != nil {
		t.Fatal(err)
	}
	if tri != g {
		t.Error("ToTriMesh of a triangle mesh should return it unchanged")
	}

	again, err := mustTri(t, mixed(t)).ToTriMesh()
	if err != nil {
		t.Fatal(err)
	}
	if !again.IsTriMesh() {
		t.Error("triangulated mesh lost its fixed face size")
	}
}

func mustTri(t *testing.T, g *Geometry) *Geometry {
	t.Helper()
	tri, err := g.ToTriMesh()
	if err != nil {
		t.Fatalf("ToTriMesh: %v", err)
	}
	return tri
}

func TestToTriMeshCarriesAttributes(t *testing.T) {
	g := mixed(t)
	tri := mustTri(t, g)

	// 4 + 3 + 5 corners give 2 + 1 + 3 triangles.
	if tri.NumFaces != 6 {
		t.Fatalf("NumFaces = %d, want 6", tri.NumFaces)
	}
	if diff := cmp.Diff([]int32{10, 10, 11, 12, 12, 12}, tri.MaterialIDs); diff != "" {
		t.Errorf("MaterialIDs (-want +got):\n%s", diff)
	}
	wantIdx := []int32{0, 1, 2, 0, 2, 3, 1, 4, 2, 4, 6, 5, 4, 5, 2, 4, 2, 1}
	if diff := cmp.Diff(wantIdx, tri.Indices); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}

	uv, err := tri.G3D.Find(g3d.AssocCorner, g3d.TypeUV, 0).Vec2s()
	if err != nil {
		t.Fatal(err)
	}
	// Source corners of the pentagon fan: 7 8 9, 7 9 10, 7 10 11.
	wantU := []float32{0, 1, 2, 0, 2, 3, 4, 5, 6, 7, 8, 9, 7, 9, 10, 7, 10, 11}
	for c, u := range wantU {
		if uv[c][0] != u {
			t.Errorf("corner %d uv = %v, want u=%v", c, uv[c], u)
		}
	}
	if err := tri.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

// --- RemapFaces ---

func TestRemapFacesIdentity(t *testing.T) {
	for name, g := range map[string]*Geometry{"mixed": mixed(t), "tetrahedron": tetrahedron(t)} {
		all := make([]int, g.NumFaces)
		for i := range all {
			all[i] = i
		}
		out, err := g.RemapFaces(all)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if out.NumFaces != g.NumFaces {
			t.Errorf("%s: NumFaces = %d, want %d", name, out.NumFaces, g.NumFaces)
		}
		if diff := cmp.Diff(g.Indices, out.Indices); diff != "" {
			t.Errorf("%s: Indices (-want +got):\n%s", name, diff)
		}
		if diff := cmp.Diff(g.FaceSizes, out.FaceSizes); diff != "" {
			t.Errorf("%s: FaceSizes (-want +got):\n%s", name, diff)
		}
	}
}

func TestRemapFacesSelection(t *testing.T) {
	g := mixed(t)
	out, err := g.RemapFaces([]int{2, 0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{5, 4, 5}, out.FaceSizes); diff != "" {
		t.Errorf("FaceSizes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{12, 10, 12}, out.MaterialIDs); diff != "" {
		t.Errorf("MaterialIDs (-want +got):\n%s", diff)
	}
	wantIdx := []int32{4, 6, 5, 2, 1, 0, 1, 2, 3, 4, 6, 5, 2, 1}
	if diff := cmp.Diff(wantIdx, out.Indices); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}
	if out.NumVertices() != g.NumVertices() {
		t.Error("RemapFaces must not touch the vertex buffer")
	}
	uv, err := out.G3D.Find(g3d.AssocCorner, g3d.TypeUV, 0).Vec2s()
	if err != nil {
		t.Fatal(err)
	}
	if uv[5][0] != 0 || uv[0][0] != 7 {
		t.Errorf("corner uvs not remapped: %v", uv)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	if _, err := g.RemapFaces([]int{3}); err == nil {
		t.Error("out-of-range face should fail")
	}
}

func TestRemapFacesRebuildsFaceIndex(t *testing.T) {
	c := g3d.MustNew(
		g3d.Vertices(mixed(t).Vertices),
		g3d.Indices([]int32{0, 1, 2, 3, 1, 4, 2}),
		g3d.FaceSizes([]int32{4, 3}),
		g3d.FaceIndices([]int32{0, 4}),
	)
	g, err := New(c)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.RemapFaces([]int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	if out.G3D.FaceIndexAttribute() == nil {
		t.Fatal("face-index attribute should be rebuilt")
	}
	if diff := cmp.Diff([]int32{0, 3}, out.FaceIndices); diff != "" {
		t.Errorf("FaceIndices (-want +got):\n%s", diff)
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestCopyFaces(t *testing.T) {
	g := mixed(t)
	out, err := g.CopyFaces(func(f Face) bool { return f.Size() > 3 })
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{10, 12}, out.MaterialIDs); diff != "" {
		t.Errorf("MaterialIDs (-want +got):\n%s", diff)
	}

	out, err = g.CopyFaceRange(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{3, 5}, out.FaceSizes); diff != "" {
		t.Errorf("FaceSizes (-want +got):\n%s", diff)
	}
	if _, err := g.CopyFaceRange(2, 2); err == nil {
		t.Error("range past the last face should fail")
	}
}

func TestRemapFacesMaterialisesImplicitIndices(t *testing.T) {
	g, err := FromTriangles([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 0, 1}, {0, 1, 1}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.RemapFaces([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int32{3, 4, 5}, out.Indices); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}
}

// --- Merge ---

func TestMergeAdditivity(t *testing.T) {
	g1, g2 := mixed(t), tetrahedron(t)
	m, err := Merge(g1, g2)
	if err != nil {
		t.Fatal(err)
	}
	t1, t2 := mustTri(t, g1), mustTri(t, g2)
	if m.NumFaces != t1.NumFaces+t2.NumFaces {
		t.Errorf("NumFaces = %d, want %d", m.NumFaces, t1.NumFaces+t2.NumFaces)
	}
	if m.NumVertices() != g1.NumVertices()+g2.NumVertices() {
		t.Errorf("NumVertices = %d", m.NumVertices())
	}
	offset := int32(g1.NumVertices())
	tail := m.Indices[t1.NumCorners():]
	for c, idx := range g2.Indices {
		if tail[c] != idx+offset {
			t.Errorf("merged corner %d = %d, want %d", c, tail[c], idx+offset)
		}
	}

	// Only the first input has material ids.
	want := []int32{10, 10, 11, 12, 12, 12, NoID, NoID, NoID, NoID}
	if diff := cmp.Diff(want, m.MaterialIDs); diff != "" {
		t.Errorf("MaterialIDs (-want +got):\n%s", diff)
	}
	if m.ObjectIDs != nil {
		t.Error("object ids should be absent when no input has them")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMergeUVsAndObjectIDs(t *testing.T) {
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}}
	a, err := FromTriangles([]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int32{0, 1, 2},
		g3d.FromVec2s(g3d.TypeUV, g3d.AssocVertex, 0, uvs))
	if err != nil {
		t.Fatal(err)
	}
	b, err := unitSquare(t).WithFaceIDs(-1, 7)
	if err != nil {
		t.Fatal(err)
	}
	m, err := Merge(a, b)
	if err != nil {
		t.Fatal(err)
	}
	wantUV := []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {}, {}, {}, {}}
	if diff := cmp.Diff(wantUV, m.UVs); diff != "" {
		t.Errorf("UVs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{NoID, 7, 7}, m.ObjectIDs); diff != "" {
		t.Errorf("ObjectIDs (-want +got):\n%s", diff)
	}
}

func TestMergeNothing(t *testing.T) {
	if _, err := Merge(); err == nil {
		t.Error("Merge() with no inputs should fail")
	}
}

// --- Weld and compaction ---

func TestWeldVertices(t *testing.T) {
	// Two triangles sharing an edge, stored as a triangle soup.
	g, err := FromTriangles(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	w, err := g.WeldVertices()
	if err != nil {
		t.Fatal(err)
	}
	if w.NumVertices() != 4 {
		t.Fatalf("NumVertices = %d, want 4", w.NumVertices())
	}
	if diff := cmp.Diff([]int32{0, 1, 2, 0, 2, 3}, w.Indices); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}
	for c := range g.Indices {
		if w.Vertices[w.Indices[c]] != g.Vertices[g.Indices[c]] {
			t.Errorf("corner %d moved", c)
		}
	}
	if err := w.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	again, err := w.WeldVertices()
	if err != nil {
		t.Fatal(err)
	}
	if again != w {
		t.Error("welding a welded mesh should be a no-op")
	}
}

func TestWeldKeysOnFullVertexRecord(t *testing.T) {
	// Same position, different normals: not welded.
	normals := []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 1, 0}, {0, 0, 1}, {0, 0, 1}}
	g, err := FromTriangles(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		nil,
		g3d.FromVec3s(g3d.TypeNormal, g3d.AssocVertex, 0, normals),
	)
	if err != nil {
		t.Fatal(err)
	}
	w, err := g.WeldVertices()
	if err != nil {
		t.Fatal(err)
	}
	if w.NumVertices() != 5 {
		t.Errorf("NumVertices = %d, want 5", w.NumVertices())
	}
	n, err := w.G3D.Find(g3d.AssocVertex, g3d.TypeNormal, 0).Vec3s()
	if err != nil {
		t.Fatal(err)
	}
	if len(n) != 5 || n[3] != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("normals not carried through weld: %v", n)
	}
}

func TestRemoveUnusedVertices(t *testing.T) {
	g, err := FromTriangles(
		[]mgl32.Vec3{{9, 9, 9}, {0, 0, 0}, {8, 8, 8}, {1, 0, 0}, {0, 1, 0}},
		[]int32{4, 1, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.RemoveUnusedVertices()
	if err != nil {
		t.Fatal(err)
	}
	wantV := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if diff := cmp.Diff(wantV, out.Vertices); diff != "" {
		t.Errorf("Vertices (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{2, 0, 1}, out.Indices); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}

	same, err := out.RemoveUnusedVertices()
	if err != nil {
		t.Fatal(err)
	}
	if same != out {
		t.Error("compacting a compact mesh should be a no-op")
	}
}

func TestRemapThenCompact(t *testing.T) {
	g := mixed(t)
	sub, err := g.RemapFaces([]int{1})
	if err != nil {
		t.Fatal(err)
	}
	out, err := sub.RemoveUnusedVertices()
	if err != nil {
		t.Fatal(err)
	}
	if out.NumVertices() != 3 {
		t.Errorf("NumVertices = %d, want 3", out.NumVertices())
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestMustKeepCorners(t *testing.T) {
	g, err := FromTriangles(
		[]mgl32.Vec3{{9, 9, 9}, {0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]int32{1, 2, 3},
	)
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.RemoveUnusedVertices()
	if err != nil {
		t.Fatal(err)
	}
	mustKeepCorners(g, out)

	moved, err := FromTriangles(out.Vertices, []int32{0, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a corner that changed position")
		}
	}()
	mustKeepCorners(g, moved)
}
