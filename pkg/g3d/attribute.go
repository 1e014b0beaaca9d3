package g3d

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Attribute is a named, typed, immutable view over a byte buffer.
//
// An attribute either borrows its buffer (NewAttribute: the caller, usually a
// longer-lived blob, keeps ownership and must not mutate it) or owns a
// freshly allocated one (the From* constructors, Clone, Remap, Concat).
// Every typed accessor returns a read-only view; callers must not write
// through it.
type Attribute struct {
	Descriptor Descriptor
	data       []byte
	owned      bool
}

// NewAttribute returns an attribute that borrows data.
func NewAttribute(desc Descriptor, data []byte) (*Attribute, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if len(data)%desc.ElementSize() != 0 {
		return nil, schemaErrorf("%s: byte length %d is not a multiple of element size %d",
			desc, len(data), desc.ElementSize())
	}
	return &Attribute{Descriptor: desc, data: data}, nil
}

func owning(desc Descriptor, data []byte) *Attribute {
	return &Attribute{Descriptor: desc, data: data, owned: true}
}

// MustNewAttribute is like NewAttribute but panics on error.
func MustNewAttribute(desc Descriptor, data []byte) *Attribute {
	a, err := NewAttribute(desc, data)
	if err != nil {
		panic(err)
	}
	return a
}

// Count returns the number of elements.
func (a *Attribute) Count() int {
	return len(a.data) / a.Descriptor.ElementSize()
}

// ByteLength returns the size of the buffer in bytes.
func (a *Attribute) ByteLength() int {
	return len(a.data)
}

// Bytes returns the underlying buffer. It must not be modified.
func (a *Attribute) Bytes() []byte {
	return a.data
}

// Owned reports whether the attribute owns its buffer.
func (a *Attribute) Owned() bool {
	return a.owned
}

// Key returns the container key of the attribute.
func (a *Attribute) Key() Key {
	return a.Descriptor.Key()
}

// Layout returns the element layout of the attribute.
func (a *Attribute) Layout() Layout {
	return a.Descriptor.Layout()
}

// Clone returns an attribute owning a copy of the buffer.
func (a *Attribute) Clone() *Attribute {
	data := make([]byte, len(a.data))
	copy(data, a.data)
	return owning(a.Descriptor, data)
}

// WithDescriptor returns an attribute sharing the buffer of a under a new
// descriptor with the same element size. Ownership is unchanged.
func (a *Attribute) WithDescriptor(desc Descriptor) (*Attribute, error) {
	if desc.ElementSize() != a.Descriptor.ElementSize() {
		return nil, schemaErrorf("%s: element size %d differs from %s", desc, desc.ElementSize(), a.Descriptor)
	}
	return &Attribute{Descriptor: desc, data: a.data, owned: a.owned}, nil
}

// Remap returns an attribute owning a buffer whose i-th element is element
// indices[i] of a.
func (a *Attribute) Remap(indices []int32) (*Attribute, error) {
	data, err := Gather(a.data, a.Descriptor.ElementSize(), indices)
	if err != nil {
		return nil, err
	}
	return owning(a.Descriptor, data), nil
}

// Concat returns an attribute owning the concatenation of the buffers of a
// and others. All descriptors must be equal.
func (a *Attribute) Concat(others ...*Attribute) (*Attribute, error) {
	n := len(a.data)
	for _, o := range others {
		if o.Descriptor != a.Descriptor {
			return nil, schemaErrorf("concat: %s does not match %s", o.Descriptor, a.Descriptor)
		}
		n += len(o.data)
	}
	data := make([]byte, 0, n)
	data = append(data, a.data...)
	for _, o := range others {
		data = append(data, o.data...)
	}
	return owning(a.Descriptor, data), nil
}

// ---------------------------------------------------------------------------
// Typed views
// ---------------------------------------------------------------------------

// Int32s views the attribute as int32 scalars.
func (a *Attribute) Int32s() ([]int32, error) { return AsInt32s(a.data, a.Layout()) }

// Int64s views the attribute as int64 scalars.
func (a *Attribute) Int64s() ([]int64, error) { return AsInt64s(a.data, a.Layout()) }

// Float32s views the attribute as float32 scalars.
func (a *Attribute) Float32s() ([]float32, error) { return AsFloat32s(a.data, a.Layout()) }

// Float64s views the attribute as float64 scalars.
func (a *Attribute) Float64s() ([]float64, error) { return AsFloat64s(a.data, a.Layout()) }

// Vec2s views the attribute as single precision 2-vectors.
func (a *Attribute) Vec2s() ([]mgl32.Vec2, error) { return AsVec2s(a.data, a.Layout()) }

// Vec3s views the attribute as single precision 3-vectors.
func (a *Attribute) Vec3s() ([]mgl32.Vec3, error) { return AsVec3s(a.data, a.Layout()) }

// Vec4s views the attribute as single precision 4-vectors.
func (a *Attribute) Vec4s() ([]mgl32.Vec4, error) { return AsVec4s(a.data, a.Layout()) }

// Mat4s views the attribute as single precision 4x4 matrices.
func (a *Attribute) Mat4s() ([]mgl32.Mat4, error) { return AsMat4s(a.data, a.Layout()) }

// DVec2s views the attribute as double precision 2-vectors.
func (a *Attribute) DVec2s() ([]mgl64.Vec2, error) { return AsDVec2s(a.data, a.Layout()) }

// DVec3s views the attribute as double precision 3-vectors.
func (a *Attribute) DVec3s() ([]mgl64.Vec3, error) { return AsDVec3s(a.data, a.Layout()) }

// DVec4s views the attribute as double precision 4-vectors.
func (a *Attribute) DVec4s() ([]mgl64.Vec4, error) { return AsDVec4s(a.data, a.Layout()) }

// ---------------------------------------------------------------------------
// Constructors from typed slices
// ---------------------------------------------------------------------------

// Desc is a shorthand descriptor constructor.
func Desc(t AttributeType, assoc Association, channel int32, dt DataType, arity int32) Descriptor {
	return Descriptor{AttributeType: t, Association: assoc, ChannelIndex: channel, DataType: dt, Arity: arity}
}

func fromSlice[T any](desc Descriptor, values []T) *Attribute {
	b := bytesOf(values)
	data := make([]byte, len(b))
	copy(data, b)
	return owning(desc, data)
}

// FromInt32s returns an owning attribute holding a copy of values. The
// descriptor's data type must be int32.
func FromInt32s(desc Descriptor, values []int32) (*Attribute, error) {
	if err := checkLayout(desc, Int32, len(values)); err != nil {
		return nil, err
	}
	return fromSlice(desc, values), nil
}

// FromFloat32s returns an owning attribute holding a copy of values.
func FromFloat32s(desc Descriptor, values []float32) (*Attribute, error) {
	if err := checkLayout(desc, Float32, len(values)); err != nil {
		return nil, err
	}
	return fromSlice(desc, values), nil
}

// FromFloat64s returns an owning attribute holding a copy of values.
func FromFloat64s(desc Descriptor, values []float64) (*Attribute, error) {
	if err := checkLayout(desc, Float64, len(values)); err != nil {
		return nil, err
	}
	return fromSlice(desc, values), nil
}

// FromVec2s returns an owning float32 arity-2 attribute.
func FromVec2s(t AttributeType, assoc Association, channel int32, values []mgl32.Vec2) *Attribute {
	return fromSlice(Desc(t, assoc, channel, Float32, 2), values)
}

// FromVec3s returns an owning float32 arity-3 attribute.
func FromVec3s(t AttributeType, assoc Association, channel int32, values []mgl32.Vec3) *Attribute {
	return fromSlice(Desc(t, assoc, channel, Float32, 3), values)
}

// FromVec4s returns an owning float32 arity-4 attribute.
func FromVec4s(t AttributeType, assoc Association, channel int32, values []mgl32.Vec4) *Attribute {
	return fromSlice(Desc(t, assoc, channel, Float32, 4), values)
}

// FromMat4s returns an owning float32 arity-16 attribute.
func FromMat4s(t AttributeType, assoc Association, channel int32, values []mgl32.Mat4) *Attribute {
	return fromSlice(Desc(t, assoc, channel, Float32, 16), values)
}

// FromDVec3s returns an owning float64 arity-3 attribute.
func FromDVec3s(t AttributeType, assoc Association, channel int32, values []mgl64.Vec3) *Attribute {
	return fromSlice(Desc(t, assoc, channel, Float64, 3), values)
}

// Vertices returns the canonical vertex attribute for positions.
func Vertices(positions []mgl32.Vec3) *Attribute {
	return FromVec3s(TypeVertex, AssocVertex, 0, positions)
}

// Indices returns the canonical corner index attribute.
func Indices(indices []int32) *Attribute {
	return fromSlice(Desc(TypeIndex, AssocCorner, 0, Int32, 1), indices)
}

// FaceSizes returns a per-face size attribute.
func FaceSizes(sizes []int32) *Attribute {
	return fromSlice(Desc(TypeFaceSize, AssocFace, 0, Int32, 1), sizes)
}

// FixedFaceSize returns the object-associated face size attribute shared by
// every face of a fixed-size mesh.
func FixedFaceSize(size int32) *Attribute {
	return fromSlice(Desc(TypeFaceSize, AssocObject, 0, Int32, 1), []int32{size})
}

// FaceIndices returns the face-index (first corner per face) attribute.
func FaceIndices(offsets []int32) *Attribute {
	return fromSlice(Desc(TypeFaceIndex, AssocFace, 0, Int32, 1), offsets)
}

// FaceInt32s returns a face-associated int32 scalar attribute, such as
// material or object ids.
func FaceInt32s(t AttributeType, channel int32, values []int32) *Attribute {
	return fromSlice(Desc(t, AssocFace, channel, Int32, 1), values)
}

func checkLayout(desc Descriptor, dt DataType, scalars int) error {
	if err := desc.Validate(); err != nil {
		return err
	}
	if desc.DataType != dt {
		return schemaErrorf("%s: expected data type %s", desc, dt)
	}
	if scalars%int(desc.Arity) != 0 {
		return schemaErrorf("%s: %d scalars do not fill whole elements", desc, scalars)
	}
	return nil
}
