package g3d

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// G3D buffers are little-endian. Views are produced with unsafe slice
// reinterpretation and therefore assume a little-endian host.

// Layout is the element layout of a buffer: a scalar type and the number of
// scalars per element. The casting lattice is a total match over layouts.
type Layout struct {
	DataType DataType
	Arity    int
}

func (l Layout) String() string {
	if l.Arity == 1 {
		return l.DataType.String()
	}
	return fmt.Sprintf("%sx%d", l.DataType, l.Arity)
}

// ElementSize returns the size in bytes of one element.
func (l Layout) ElementSize() int {
	return l.DataType.Size() * l.Arity
}

type number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// viewOf reinterprets data as a slice of T. The result aliases data unless
// data is misaligned for T, in which case it is copied.
func viewOf[T any](data []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := len(data) / size
	if n == 0 {
		return []T{}
	}
	p := unsafe.Pointer(unsafe.SliceData(data))
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		out := make([]T, n)
		copy(bytesOf(out), data[:n*size])
		return out
	}
	return unsafe.Slice((*T)(p), n)
}

// bytesOf reinterprets s as its underlying bytes without copying.
func bytesOf[T any](s []T) []byte {
	if len(s) == 0 {
		return []byte{}
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// group reinterprets a scalar sequence as tuples of T without copying.
// len(scalars) must be a multiple of the tuple arity.
func group[T any, E number](scalars []E, arity int) []T {
	if len(scalars) == 0 {
		return []T{}
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(scalars))), len(scalars)/arity)
}

func widen[T, S number](src []S) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = T(v)
	}
	return out
}

// ---------------------------------------------------------------------------
// Integer family
// ---------------------------------------------------------------------------

// AsInt32s views data (laid out as src) as int32 scalars. int8 and int16
// widen; int32 is a direct view; nothing narrows.
func AsInt32s(data []byte, src Layout) ([]int32, error) {
	switch src.DataType {
	case Int32:
		return viewOf[int32](data), nil
	case Int16:
		return widen[int32](viewOf[int16](data)), nil
	case Int8:
		return widen[int32](viewOf[int8](data)), nil
	}
	return nil, conversionError(src, "int32")
}

// AsInt64s views data as int64 scalars, widening every narrower integer.
func AsInt64s(data []byte, src Layout) ([]int64, error) {
	switch src.DataType {
	case Int64:
		return viewOf[int64](data), nil
	case Int32, Int16, Int8:
		v, err := AsInt32s(data, src)
		if err != nil {
			return nil, err
		}
		return widen[int64](v), nil
	}
	return nil, conversionError(src, "int64")
}

// ---------------------------------------------------------------------------
// Float family
// ---------------------------------------------------------------------------

// AsFloat32s views data as float32 scalars. Float32 buffers of any arity are
// flattened without copying; int8/int16/int32 widen.
func AsFloat32s(data []byte, src Layout) ([]float32, error) {
	switch src.DataType {
	case Float32:
		return viewOf[float32](data), nil
	case Int32, Int16, Int8:
		v, err := AsInt32s(data, src)
		if err != nil {
			return nil, err
		}
		return widen[float32](v), nil
	}
	return nil, conversionError(src, "float32")
}

// AsFloat64s views data as float64 scalars. Float64 buffers of any arity are
// flattened without copying; float32 and int8/int16/int32 widen.
func AsFloat64s(data []byte, src Layout) ([]float64, error) {
	switch src.DataType {
	case Float64:
		return viewOf[float64](data), nil
	case Float32:
		return widen[float64](viewOf[float32](data)), nil
	case Int32, Int16, Int8:
		v, err := AsInt32s(data, src)
		if err != nil {
			return nil, err
		}
		return widen[float64](v), nil
	}
	return nil, conversionError(src, "float64")
}

// ---------------------------------------------------------------------------
// Vector family
// ---------------------------------------------------------------------------

func groupFloat32[T any](data []byte, src Layout, arity int, target string) ([]T, error) {
	scalars, err := AsFloat32s(data, src)
	if err != nil {
		return nil, conversionError(src, target)
	}
	if len(scalars)%arity != 0 {
		return nil, errors.Wrapf(ErrUnsupportedConversion, "%d %s scalars do not group into %s",
			len(scalars), src, target)
	}
	return group[T](scalars, arity), nil
}

func groupFloat64[T any](data []byte, src Layout, arity int, target string) ([]T, error) {
	scalars, err := AsFloat64s(data, src)
	if err != nil {
		return nil, conversionError(src, target)
	}
	if len(scalars)%arity != 0 {
		return nil, errors.Wrapf(ErrUnsupportedConversion, "%d %s scalars do not group into %s",
			len(scalars), src, target)
	}
	return group[T](scalars, arity), nil
}

// AsVec2s groups the float32 view of data into 2-component vectors.
func AsVec2s(data []byte, src Layout) ([]mgl32.Vec2, error) {
	return groupFloat32[mgl32.Vec2](data, src, 2, "vec2")
}

// AsVec3s groups the float32 view of data into 3-component vectors.
func AsVec3s(data []byte, src Layout) ([]mgl32.Vec3, error) {
	return groupFloat32[mgl32.Vec3](data, src, 3, "vec3")
}

// AsVec4s groups the float32 view of data into 4-component vectors.
func AsVec4s(data []byte, src Layout) ([]mgl32.Vec4, error) {
	return groupFloat32[mgl32.Vec4](data, src, 4, "vec4")
}

// AsMat4s groups the float32 view of data into column-major 4x4 matrices.
func AsMat4s(data []byte, src Layout) ([]mgl32.Mat4, error) {
	return groupFloat32[mgl32.Mat4](data, src, 16, "mat4")
}

// AsDVec2s groups the float64 view of data into 2-component vectors.
func AsDVec2s(data []byte, src Layout) ([]mgl64.Vec2, error) {
	return groupFloat64[mgl64.Vec2](data, src, 2, "dvec2")
}

// AsDVec3s groups the float64 view of data into 3-component vectors.
func AsDVec3s(data []byte, src Layout) ([]mgl64.Vec3, error) {
	return groupFloat64[mgl64.Vec3](data, src, 3, "dvec3")
}

// AsDVec4s groups the float64 view of data into 4-component vectors.
func AsDVec4s(data []byte, src Layout) ([]mgl64.Vec4, error) {
	return groupFloat64[mgl64.Vec4](data, src, 4, "dvec4")
}

// ---------------------------------------------------------------------------
// Group reindex
// ---------------------------------------------------------------------------

// Gather builds a new buffer whose i-th element is element indices[i] of
// data. elementSize is the size in bytes of one element.
func Gather(data []byte, elementSize int, indices []int32) ([]byte, error) {
	if elementSize <= 0 {
		return nil, schemaErrorf("gather: element size %d", elementSize)
	}
	count := len(data) / elementSize
	out := make([]byte, len(indices)*elementSize)
	for i, idx := range indices {
		if idx < 0 || int(idx) >= count {
			return nil, schemaErrorf("gather: index %d out of range [0, %d)", idx, count)
		}
		src := int(idx) * elementSize
		copy(out[i*elementSize:(i+1)*elementSize], data[src:src+elementSize])
	}
	return out, nil
}
