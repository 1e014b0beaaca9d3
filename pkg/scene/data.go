package scene

import "github.com/go-gl/mathgl/mgl64"

// DefaultSegments is the circular resolution used for cylinders that do not
// name one.
const DefaultSegments = 32

// Shape distinguishes between primitive solids.
type Shape int

const (
	ShapeBox      Shape = iota // axis-aligned box, minimum corner at the origin
	ShapeCylinder              // Z-aligned cylinder centred on the origin
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	default:
		return "unknown"
	}
}

// PrimitiveData describes a solid part. Size applies to boxes; Height,
// Radius and Segments to cylinders.
type PrimitiveData struct {
	Shape    Shape      `json:"shape"`
	Size     mgl64.Vec3 `json:"size,omitempty"`
	Height   float64    `json:"height,omitempty"`
	Radius   float64    `json:"radius,omitempty"`
	Segments int        `json:"segments,omitempty"`
	Material string     `json:"material,omitempty"`
}

func (PrimitiveData) nodeData() {}

// TransformData is a spatial transformation applied to the child nodes.
// Created by the (place ...) form.
type TransformData struct {
	Translation *mgl64.Vec3 `json:"translation,omitempty"`
	Rotation    *mgl64.Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// GroupData is a logical grouping. Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}
