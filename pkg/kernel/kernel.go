// Package kernel defines the abstract solid modelling interface used to
// produce G3D geometry. Implementations (sdfx, manifold) provide solid
// construction and boolean operations behind this interface, and tessellate
// solids into mesh.Geometry values.
package kernel

import "github.com/chazu/g3d/pkg/mesh"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Box has its minimum corner at the origin; Cylinder is
	// centred on the origin with its axis along Z.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s into an indexed triangle mesh.
	ToMesh(s Solid) (*mesh.Geometry, error)
}
