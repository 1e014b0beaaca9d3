package g3d

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Header
// ---------------------------------------------------------------------------

// Version of the layout written by this package.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Header is the informational first buffer of a persisted container.
type Header struct {
	Format  string
	Version [3]int
	Date    string // YYYY-MM-DD
}

// DefaultHeader returns the header written for new containers.
func DefaultHeader() Header {
	return Header{
		Format:  Tag,
		Version: [3]int{VersionMajor, VersionMinor, VersionPatch},
		Date:    time.Now().UTC().Format(time.DateOnly),
	}
}

func (h Header) String() string {
	return fmt.Sprintf("%s %d.%d.%d %s", h.Format, h.Version[0], h.Version[1], h.Version[2], h.Date)
}

// ParseHeader parses a header string. Only the format name is required;
// a missing or malformed version or date is left zero.
func ParseHeader(s string) (Header, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || fields[0] != Tag {
		return Header{}, formatErrorf("header %q does not name format %q", s, Tag)
	}
	h := Header{Format: fields[0]}
	if len(fields) > 1 {
		for i, part := range strings.SplitN(fields[1], ".", 3) {
			if n, err := strconv.Atoi(part); err == nil {
				h.Version[i] = n
			}
		}
	}
	if len(fields) > 2 {
		h.Date = fields[2]
	}
	return h, nil
}

// ---------------------------------------------------------------------------
// Byte-buffer boundary
// ---------------------------------------------------------------------------

// Packer turns an ordered list of byte buffers into a single blob and back.
// The framing is the packer's own concern.
type Packer interface {
	Pack(buffers [][]byte) ([]byte, error)
	Unpack(blob []byte) ([][]byte, error)
}

// Buffers returns the persisted form of g: the header, the packed descriptor
// records, then one data buffer per attribute. The data buffers alias the
// attribute buffers.
func (g *G3D) Buffers() [][]byte {
	out := make([][]byte, 0, 2+len(g.attrs))
	out = append(out, []byte(g.header.String()))
	out = append(out, PackDescriptors(g.Descriptors()))
	for _, a := range g.attrs {
		out = append(out, a.Bytes())
	}
	return out
}

// FromBuffers rebuilds a container from its persisted form. The attributes
// borrow the given buffers, which must outlive the container and must not be
// modified.
func FromBuffers(buffers [][]byte) (*G3D, error) {
	if len(buffers) < 2 {
		return nil, formatErrorf("need at least 2 buffers, got %d", len(buffers))
	}
	h, err := ParseHeader(string(buffers[0]))
	if err != nil {
		return nil, err
	}
	ds, err := UnpackDescriptors(buffers[1])
	if err != nil {
		return nil, err
	}
	data := buffers[2:]
	if len(ds) != len(data) {
		return nil, formatErrorf("%d descriptors for %d data buffers", len(ds), len(data))
	}
	attrs := make([]*Attribute, len(ds))
	for i, d := range ds {
		if attrs[i], err = NewAttribute(d, data[i]); err != nil {
			return nil, err
		}
	}
	g, err := New(attrs...)
	if err != nil {
		return nil, err
	}
	g.header = h
	return g, nil
}

// Marshal packs g with p.
func (g *G3D) Marshal(p Packer) ([]byte, error) {
	return p.Pack(g.Buffers())
}

// Unmarshal unpacks blob with p and rebuilds the container. Depending on
// the packer, the attributes may borrow blob.
func Unmarshal(p Packer, blob []byte) (*G3D, error) {
	buffers, err := p.Unpack(blob)
	if err != nil {
		return nil, err
	}
	return FromBuffers(buffers)
}
