// Package g3d implements the G3D attribute container: typed descriptors,
// immutable attribute buffers, the casting lattice that reinterprets them,
// and the container that discovers and validates the canonical geometry
// attributes.
package g3d

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Tag is the leading token of every descriptor string.
const Tag = "g3d"

// ---------------------------------------------------------------------------
// Association
// ---------------------------------------------------------------------------

// Association names the mesh element an attribute is indexed per.
type Association int32

const (
	AssocVertex Association = iota
	AssocFace
	AssocCorner
	AssocEdge
	AssocObject
	AssocInstance
	AssocGroup
	AssocNone
)

var associationNames = [...]string{
	AssocVertex:   "vertex",
	AssocFace:     "face",
	AssocCorner:   "corner",
	AssocEdge:     "edge",
	AssocObject:   "object",
	AssocInstance: "instance",
	AssocGroup:    "group",
	AssocNone:     "none",
}

func (a Association) String() string {
	if a >= 0 && int(a) < len(associationNames) {
		return associationNames[a]
	}
	return fmt.Sprintf("Association(%d)", int32(a))
}

// ParseAssociation returns the association named by s.
func ParseAssociation(s string) (Association, error) {
	for i, name := range associationNames {
		if name == s {
			return Association(i), nil
		}
	}
	return 0, formatErrorf("unknown association %q", s)
}

// ---------------------------------------------------------------------------
// AttributeType
// ---------------------------------------------------------------------------

// AttributeType is the semantic role of an attribute.
type AttributeType int32

const (
	TypeVertex AttributeType = iota
	TypeIndex
	TypeFaceSize
	TypeFaceIndex
	TypeNormal
	TypeTangent
	TypeBinormal
	TypeMaterialID
	TypePolygonGroup
	TypeUV
	TypeColor
	TypeSmoothing
	TypeVisibility
	TypeSelection
	TypePerVertex
	TypeMapChannelData
	TypeMapChannelIndex
	TypeInstanceTransform
	TypeInstanceGroup
	TypeGroupIndex
	TypeGroupSize
	TypeObjectID
	TypeCustom
)

var attributeTypeNames = [...]string{
	TypeVertex:            "vertex",
	TypeIndex:             "index",
	TypeFaceSize:          "facesize",
	TypeFaceIndex:         "faceindex",
	TypeNormal:            "normal",
	TypeTangent:           "tangent",
	TypeBinormal:          "binormal",
	TypeMaterialID:        "materialid",
	TypePolygonGroup:      "polygroup",
	TypeUV:                "uv",
	TypeColor:             "color",
	TypeSmoothing:         "smoothing",
	TypeVisibility:        "visibility",
	TypeSelection:         "selection",
	TypePerVertex:         "pervertex",
	TypeMapChannelData:    "mapchanneldata",
	TypeMapChannelIndex:   "mapchannelindex",
	TypeInstanceTransform: "instancetransform",
	TypeInstanceGroup:     "instancegroup",
	TypeGroupIndex:        "groupindex",
	TypeGroupSize:         "groupsize",
	TypeObjectID:          "objectid",
	TypeCustom:            "custom",
}

func (t AttributeType) String() string {
	if t >= 0 && int(t) < len(attributeTypeNames) {
		return attributeTypeNames[t]
	}
	return fmt.Sprintf("AttributeType(%d)", int32(t))
}

// ParseAttributeType returns the attribute type named by s.
func ParseAttributeType(s string) (AttributeType, error) {
	for i, name := range attributeTypeNames {
		if name == s {
			return AttributeType(i), nil
		}
	}
	return 0, formatErrorf("unknown attribute type %q", s)
}

// ---------------------------------------------------------------------------
// DataType
// ---------------------------------------------------------------------------

// DataType is the scalar type of each attribute component.
type DataType int32

const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	Float32
	Float64
)

var dataTypeNames = [...]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
}

var dataTypeSizes = [...]int{
	Int8:    1,
	Int16:   2,
	Int32:   4,
	Int64:   8,
	Float32: 4,
	Float64: 8,
}

func (d DataType) String() string {
	if d.valid() {
		return dataTypeNames[d]
	}
	return fmt.Sprintf("DataType(%d)", int32(d))
}

func (d DataType) valid() bool {
	return d >= 0 && int(d) < len(dataTypeNames)
}

// Size returns the size in bytes of one scalar, or 0 for an unknown type.
func (d DataType) Size() int {
	if !d.valid() {
		return 0
	}
	return dataTypeSizes[d]
}

// IsFloat reports whether d is a floating point type.
func (d DataType) IsFloat() bool {
	return d == Float32 || d == Float64
}

// ParseDataType returns the data type named by s.
func ParseDataType(s string) (DataType, error) {
	for i, name := range dataTypeNames {
		if name == s {
			return DataType(i), nil
		}
	}
	return 0, formatErrorf("unknown data type %q", s)
}

// ---------------------------------------------------------------------------
// Descriptor
// ---------------------------------------------------------------------------

// Key identifies an attribute inside a container. No two attributes of a
// container share a key.
type Key struct {
	Association   Association
	AttributeType AttributeType
	ChannelIndex  int32
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d", k.AttributeType, k.Association, k.ChannelIndex)
}

// Descriptor identifies one attribute's role and element layout.
// Descriptors compare by field.
type Descriptor struct {
	Association   Association
	AttributeType AttributeType
	ChannelIndex  int32
	Arity         int32
	DataType      DataType
}

// Key returns the container key of d.
func (d Descriptor) Key() Key {
	return Key{Association: d.Association, AttributeType: d.AttributeType, ChannelIndex: d.ChannelIndex}
}

// Layout returns the element layout of d.
func (d Descriptor) Layout() Layout {
	return Layout{DataType: d.DataType, Arity: int(d.Arity)}
}

// ElementSize returns the size in bytes of one element (all components).
func (d Descriptor) ElementSize() int {
	return d.DataType.Size() * int(d.Arity)
}

// String returns the canonical URN form
// g3d:<attributeType>:<association>:<channelIndex>:<dataType>:<arity>.
func (d Descriptor) String() string {
	return strings.Join([]string{
		Tag,
		d.AttributeType.String(),
		d.Association.String(),
		strconv.Itoa(int(d.ChannelIndex)),
		d.DataType.String(),
		strconv.Itoa(int(d.Arity)),
	}, ":")
}

// ParseDescriptor parses the canonical URN form produced by String.
func ParseDescriptor(s string) (Descriptor, error) {
	tokens := strings.Split(s, ":")
	if len(tokens) != 6 {
		return Descriptor{}, formatErrorf("descriptor %q has %d tokens, want 6", s, len(tokens))
	}
	if tokens[0] != Tag {
		return Descriptor{}, formatErrorf("descriptor %q does not start with %q", s, Tag)
	}

	var (
		d   Descriptor
		err error
	)
	if d.AttributeType, err = ParseAttributeType(tokens[1]); err != nil {
		return Descriptor{}, err
	}
	if d.Association, err = ParseAssociation(tokens[2]); err != nil {
		return Descriptor{}, err
	}
	channel, err := strconv.ParseInt(tokens[3], 10, 32)
	if err != nil {
		return Descriptor{}, formatErrorf("descriptor %q: bad channel index %q", s, tokens[3])
	}
	d.ChannelIndex = int32(channel)
	if d.DataType, err = ParseDataType(tokens[4]); err != nil {
		return Descriptor{}, err
	}
	arity, err := strconv.ParseInt(tokens[5], 10, 32)
	if err != nil {
		return Descriptor{}, formatErrorf("descriptor %q: bad arity %q", s, tokens[5])
	}
	d.Arity = int32(arity)
	return d, nil
}

// MustParseDescriptor is like ParseDescriptor but panics on error.
func MustParseDescriptor(s string) Descriptor {
	d, err := ParseDescriptor(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Validate checks that d has a positive arity and a known data type, and that
// its canonical string parses back to an equal descriptor.
func (d Descriptor) Validate() error {
	if d.Arity <= 0 {
		return formatErrorf("descriptor %s: arity must be positive", d)
	}
	if !d.DataType.valid() {
		return formatErrorf("descriptor %s: unknown data type", d)
	}
	back, err := ParseDescriptor(d.String())
	if err != nil {
		return err
	}
	if back != d {
		return formatErrorf("descriptor %s does not round trip (got %s)", d, back)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Packed records
// ---------------------------------------------------------------------------

// DescriptorRecordSize is the size of one packed descriptor record: five
// little-endian int32 fields followed by one reserved int32.
const DescriptorRecordSize = 24

// AppendRecord appends the packed record of d to b.
func (d Descriptor) AppendRecord(b []byte) []byte {
	var rec [DescriptorRecordSize]byte
	le := binary.LittleEndian
	le.PutUint32(rec[0:], uint32(d.AttributeType))
	le.PutUint32(rec[4:], uint32(d.Association))
	le.PutUint32(rec[8:], uint32(d.ChannelIndex))
	le.PutUint32(rec[12:], uint32(d.DataType))
	le.PutUint32(rec[16:], uint32(d.Arity))
	return append(b, rec[:]...)
}

// PackDescriptors returns the packed record array of ds.
func PackDescriptors(ds []Descriptor) []byte {
	b := make([]byte, 0, len(ds)*DescriptorRecordSize)
	for _, d := range ds {
		b = d.AppendRecord(b)
	}
	return b
}

// UnpackDescriptors decodes a packed record array. Every decoded descriptor
// must pass Validate.
func UnpackDescriptors(b []byte) ([]Descriptor, error) {
	if len(b)%DescriptorRecordSize != 0 {
		return nil, formatErrorf("descriptor buffer length %d is not a multiple of %d", len(b), DescriptorRecordSize)
	}
	le := binary.LittleEndian
	ds := make([]Descriptor, 0, len(b)/DescriptorRecordSize)
	for off := 0; off < len(b); off += DescriptorRecordSize {
		rec := b[off : off+DescriptorRecordSize]
		d := Descriptor{
			AttributeType: AttributeType(le.Uint32(rec[0:])),
			Association:   Association(le.Uint32(rec[4:])),
			ChannelIndex:  int32(le.Uint32(rec[8:])),
			DataType:      DataType(le.Uint32(rec[12:])),
			Arity:         int32(le.Uint32(rec[16:])),
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}
