package g3d

// G3D is an immutable, ordered set of attributes, unique by key, with the
// canonical geometry attributes discovered on construction.
//
// Construction only checks what is cheap: every attribute is present and
// keys are unique, the vertex attribute exists, and no canonical role is
// claimed twice. Full structural checks are the separate Validate pass.
type G3D struct {
	attrs   []*Attribute
	byKey   map[Key]*Attribute
	byAssoc map[Association][]*Attribute
	header  Header

	vertices    *Attribute
	indices     *Attribute
	faceSizes   *Attribute
	faceIndices *Attribute
}

// canonicalRole reports which canonical slot, if any, a descriptor claims.
type canonicalRole int

const (
	roleNone canonicalRole = iota
	roleVertex
	roleIndex
	roleFaceSize
	roleFaceIndex
)

func (r canonicalRole) String() string {
	switch r {
	case roleVertex:
		return "vertex"
	case roleIndex:
		return "index"
	case roleFaceSize:
		return "face-size"
	case roleFaceIndex:
		return "face-index"
	default:
		return "none"
	}
}

func roleOf(d Descriptor) canonicalRole {
	switch {
	case d.AttributeType == TypeVertex && d.Association == AssocVertex:
		return roleVertex
	case d.AttributeType == TypeIndex && d.Association == AssocCorner:
		return roleIndex
	case d.AttributeType == TypeFaceSize && (d.Association == AssocFace || d.Association == AssocObject):
		return roleFaceSize
	case d.AttributeType == TypeFaceIndex && d.Association == AssocFace:
		return roleFaceIndex
	}
	return roleNone
}

// New builds a container from attrs, in order.
func New(attrs ...*Attribute) (*G3D, error) {
	g := &G3D{
		attrs:   make([]*Attribute, 0, len(attrs)),
		byKey:   make(map[Key]*Attribute, len(attrs)),
		byAssoc: make(map[Association][]*Attribute),
		header:  DefaultHeader(),
	}
	for i, a := range attrs {
		if a == nil {
			return nil, schemaErrorf("attribute %d is nil", i)
		}
		key := a.Key()
		if _, dup := g.byKey[key]; dup {
			return nil, schemaErrorf("duplicate attribute %s", key)
		}
		g.byKey[key] = a
		g.byAssoc[a.Descriptor.Association] = append(g.byAssoc[a.Descriptor.Association], a)
		g.attrs = append(g.attrs, a)

		role := roleOf(a.Descriptor)
		var slot **Attribute
		switch role {
		case roleVertex:
			slot = &g.vertices
		case roleIndex:
			slot = &g.indices
		case roleFaceSize:
			slot = &g.faceSizes
		case roleFaceIndex:
			slot = &g.faceIndices
		default:
			continue
		}
		if *slot != nil {
			return nil, schemaErrorf("duplicate %s attribute: %s and %s", role, (*slot).Descriptor, a.Descriptor)
		}
		*slot = a
	}
	if g.vertices == nil {
		return nil, schemaErrorf("missing vertex attribute")
	}
	return g, nil
}

// MustNew is like New but panics on error.
func MustNew(attrs ...*Attribute) *G3D {
	g, err := New(attrs...)
	if err != nil {
		panic(err)
	}
	return g
}

// Header returns the informational header of the container.
func (g *G3D) Header() Header {
	return g.header
}

// WithHeader returns a container sharing g's attributes with header h.
func (g *G3D) WithHeader(h Header) *G3D {
	c := *g
	c.header = h
	return &c
}

// Attributes returns the attributes in order. The slice is a copy.
func (g *G3D) Attributes() []*Attribute {
	return append([]*Attribute(nil), g.attrs...)
}

// Len returns the number of attributes.
func (g *G3D) Len() int {
	return len(g.attrs)
}

// Descriptors returns the descriptors of all attributes in order.
func (g *G3D) Descriptors() []Descriptor {
	ds := make([]Descriptor, len(g.attrs))
	for i, a := range g.attrs {
		ds[i] = a.Descriptor
	}
	return ds
}

// Lookup returns the attribute with the given key.
func (g *G3D) Lookup(key Key) (*Attribute, bool) {
	a, ok := g.byKey[key]
	return a, ok
}

// Find returns the attribute with the given association, type and channel,
// or nil.
func (g *G3D) Find(assoc Association, t AttributeType, channel int32) *Attribute {
	return g.byKey[Key{Association: assoc, AttributeType: t, ChannelIndex: channel}]
}

// FindAll returns every attribute of type t, in container order.
func (g *G3D) FindAll(t AttributeType) []*Attribute {
	var out []*Attribute
	for _, a := range g.attrs {
		if a.Descriptor.AttributeType == t {
			out = append(out, a)
		}
	}
	return out
}

// ByAssociation returns the attributes with association assoc, in order.
func (g *G3D) ByAssociation(assoc Association) []*Attribute {
	return append([]*Attribute(nil), g.byAssoc[assoc]...)
}

// VertexAttribute returns the canonical vertex attribute.
func (g *G3D) VertexAttribute() *Attribute { return g.vertices }

// IndexAttribute returns the canonical index attribute, or nil when indices
// are implicit.
func (g *G3D) IndexAttribute() *Attribute { return g.indices }

// FaceSizeAttribute returns the canonical face-size attribute, or nil for a
// pure triangle mesh.
func (g *G3D) FaceSizeAttribute() *Attribute { return g.faceSizes }

// FaceIndexAttribute returns the canonical face-index attribute, or nil when
// face offsets are reconstructed.
func (g *G3D) FaceIndexAttribute() *Attribute { return g.faceIndices }

// NumVertices returns the number of vertices.
func (g *G3D) NumVertices() int {
	return g.vertices.Count()
}

// NumCorners returns the number of corners: the index count, or the vertex
// count when indices are implicit.
func (g *G3D) NumCorners() int {
	if g.indices != nil {
		return g.indices.Count()
	}
	return g.NumVertices()
}

// With returns a container in which every attribute of attrs replaces the
// attribute with the same key, or is appended when the key is new.
func (g *G3D) With(attrs ...*Attribute) (*G3D, error) {
	replace := make(map[Key]*Attribute, len(attrs))
	var added []*Attribute
	for _, a := range attrs {
		if a == nil {
			return nil, schemaErrorf("nil attribute")
		}
		if _, ok := g.byKey[a.Key()]; ok {
			replace[a.Key()] = a
		} else {
			added = append(added, a)
		}
	}
	out := make([]*Attribute, 0, len(g.attrs)+len(added))
	for _, a := range g.attrs {
		if r, ok := replace[a.Key()]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, a)
	}
	out = append(out, added...)
	c, err := New(out...)
	if err != nil {
		return nil, err
	}
	c.header = g.header
	return c, nil
}

// Without returns a container lacking the attributes with the given keys.
func (g *G3D) Without(keys ...Key) (*G3D, error) {
	drop := make(map[Key]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := make([]*Attribute, 0, len(g.attrs))
	for _, a := range g.attrs {
		if !drop[a.Key()] {
			out = append(out, a)
		}
	}
	c, err := New(out...)
	if err != nil {
		return nil, err
	}
	c.header = g.header
	return c, nil
}

// ---------------------------------------------------------------------------
// Face layout
// ---------------------------------------------------------------------------

// DefaultFaceSize is the face size of a container without a face-size
// attribute.
const DefaultFaceSize = 3

// FaceLayout is the per-face corner bookkeeping of a container.
type FaceLayout struct {
	NumFaces      int
	PointsPerFace int     // 0 when faces have variable size
	Sizes         []int32 // corners per face
	Offsets       []int32 // first corner per face
}

// FaceLayout derives face sizes and offsets, materialising the defaults for
// absent face-size and face-index attributes.
func (g *G3D) FaceLayout() (FaceLayout, error) {
	var fl FaceLayout
	corners := g.NumCorners()

	switch {
	case g.faceSizes == nil || g.faceSizes.Descriptor.Association == AssocObject:
		size := int32(DefaultFaceSize)
		if g.faceSizes != nil {
			v, err := g.faceSizes.Int32s()
			if err != nil {
				return fl, err
			}
			if len(v) != 1 {
				return fl, schemaErrorf("object face size has %d values, want 1", len(v))
			}
			size = v[0]
		}
		if size <= 0 {
			return fl, schemaErrorf("fixed face size %d must be positive", size)
		}
		if corners%int(size) != 0 {
			return fl, schemaErrorf("%d corners do not divide into faces of size %d", corners, size)
		}
		fl.PointsPerFace = int(size)
		fl.NumFaces = corners / int(size)
		fl.Sizes = make([]int32, fl.NumFaces)
		for i := range fl.Sizes {
			fl.Sizes[i] = size
		}
	default:
		v, err := g.faceSizes.Int32s()
		if err != nil {
			return fl, err
		}
		fl.Sizes = v
		fl.NumFaces = len(v)
	}

	if g.faceIndices != nil {
		v, err := g.faceIndices.Int32s()
		if err != nil {
			return fl, err
		}
		fl.Offsets = v
		return fl, nil
	}

	fl.Offsets = make([]int32, fl.NumFaces)
	var running int32
	for i, s := range fl.Sizes {
		fl.Offsets[i] = running
		running += s
	}
	return fl, nil
}
