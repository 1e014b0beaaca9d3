package mesh

import (
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func TestFaceAccessors(t *testing.T) {
	g := mixed(t)
	f := g.Face(2)
	if f.Size() != 5 || f.Start() != 7 {
		t.Fatalf("Size() = %d, Start() = %d; want 5, 7", f.Size(), f.Start())
	}
	if diff := cmp.Diff([]int32{4, 6, 5, 2, 1}, f.Indices()); diff != "" {
		t.Errorf("Indices (-want +got):\n%s", diff)
	}
	if f.Vertex(1) != 6 {
		t.Errorf("Vertex(1) = %d, want 6", f.Vertex(1))
	}
	if f.Point(1) != (mgl32.Vec3{3, 0, 0}) {
		t.Errorf("Point(1) = %v", f.Point(1))
	}
	if len(f.Points()) != 5 {
		t.Errorf("Points() has %d entries, want 5", len(f.Points()))
	}
}

func TestFaceTriangles(t *testing.T) {
	tests := []struct {
		name    string
		indices []int32
		want    [][3]int32
	}{
		{"point", []int32{0}, nil},
		{"segment", []int32{0, 1}, nil},
		{"triangle", []int32{4, 5, 6}, [][3]int32{{4, 5, 6}}},
		{"quad", []int32{0, 1, 2, 3}, [][3]int32{{0, 1, 2}, {0, 2, 3}}},
		{"pentagon", []int32{9, 8, 7, 6, 5}, [][3]int32{{9, 8, 7}, {9, 7, 6}, {9, 6, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FanTriangles(tt.indices)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
			if n := len(tt.indices); n >= 3 && len(got) != n-2 {
				t.Errorf("got %d triangles for %d corners", len(got), n)
			}
		})
	}
}

func TestFaceNormalAndArea(t *testing.T) {
	g := unitSquare(t)
	f := g.Face(0)
	if !approx(f.Area(), 1, 1e-4) {
		t.Errorf("Area() = %f, want 1", f.Area())
	}
	// (p2-p0) x (p1-p0) for (0,0,0),(0,1,0),(1,1,0) points along +z.
	if n := f.Normal(); !n.ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Errorf("Normal() = %v, want (0,0,1)", n)
	}
	if c := f.Center(); !c.ApproxEqualThreshold(mgl32.Vec3{0.5, 0.5, 0}, 1e-6) {
		t.Errorf("Center() = %v", c)
	}
	if !f.IsPlanar(1e-6) {
		t.Error("unit square should be planar")
	}
}

func TestTriangleNormalDegenerate(t *testing.T) {
	p := mgl32.Vec3{1, 1, 1}
	if n := TriangleNormal(p, p, p); n != (mgl32.Vec3{}) {
		t.Errorf("TriangleNormal of a point = %v, want zero", n)
	}
}

func TestCoplanar(t *testing.T) {
	p0, p1, p2 := mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}
	if !Coplanar(p0, p1, p2, mgl32.Vec3{5, 5, 0}, 1e-6) {
		t.Error("point in the plane reported off-plane")
	}
	if Coplanar(p0, p1, p2, mgl32.Vec3{0, 0, 0.5}, 1e-6) {
		t.Error("point off the plane reported coplanar")
	}
}

func TestFaceEqualityAndHash(t *testing.T) {
	g, err := FromPolygons(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[]int32{0, 1, 2, 2, 0, 1, 0, 1, 3, 0, 1, 2, 3},
		[]int32{3, 3, 3, 4},
	)
	if err != nil {
		t.Fatal(err)
	}
	a, b, c, d := g.Face(0), g.Face(1), g.Face(2), g.Face(3)
	if !a.Equal(b) || a.Hash() != b.Hash() {
		t.Error("rotated triangle should equal and hash like the original")
	}
	if a.Equal(c) {
		t.Error("triangles on different vertices should differ")
	}
	if a.Equal(d) {
		t.Error("faces of different size should differ")
	}
	if diff := cmp.Diff([][]int{{0, 1}}, g.DuplicateFaces()); diff != "" {
		t.Errorf("DuplicateFaces (-want +got):\n%s", diff)
	}
}

func TestDegenerateFaces(t *testing.T) {
	g, err := FromTriangles(
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]int32{0, 1, 2, 0, 0, 1, 2, 2, 2},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.DegenerateFaces(); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("DegenerateFaces() = %v, want [1 2]", got)
	}
}
