// Package chunk packs an ordered list of byte buffers into a single blob.
//
// A blob is a 4-byte magic, one flags byte, and a payload. The payload is a
// MessagePack array of bin values, one per buffer, optionally snappy
// compressed as a whole. Unpacking an uncompressed blob returns buffers
// that alias the blob.
package chunk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chazu/g3d/pkg/g3d"
	"github.com/golang/snappy"
	"github.com/tinylib/msgp/msgp"
)

// Magic identifies a chunk blob.
var Magic = [4]byte{'G', '3', 'D', 'C'}

const (
	headerSize = len(Magic) + 1

	// maxSnappyRatio bounds decoded/encoded size. A snappy copy element
	// expands at most 3 bytes into 64.
	maxSnappyRatio = 22

	flagSnappy byte = 1 << 0
)

// Compile-time interface check.
var _ g3d.Packer = (*Packer)(nil)

// Packer implements g3d.Packer.
type Packer struct {
	compress bool
}

// Option configures a Packer.
type Option func(*Packer)

// WithCompression enables snappy compression of the payload.
func WithCompression(on bool) Option {
	return func(p *Packer) {
		p.compress = on
	}
}

// New returns a Packer.
func New(opts ...Option) *Packer {
	p := &Packer{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compressed reports whether the packer compresses its payload.
func (p *Packer) Compressed() bool {
	return p.compress
}

// Pack encodes buffers into a blob.
func (p *Packer) Pack(buffers [][]byte) ([]byte, error) {
	size := 5
	for _, b := range buffers {
		size += len(b) + 5
	}
	payload := make([]byte, 0, size)
	payload = msgp.AppendArrayHeader(payload, uint32(len(buffers)))
	for _, b := range buffers {
		payload = msgp.AppendBytes(payload, b)
	}

	var flags byte
	if p.compress {
		flags |= flagSnappy
		payload = snappy.Encode(nil, payload)
	}

	blob := make([]byte, 0, headerSize+len(payload))
	blob = append(blob, Magic[:]...)
	blob = append(blob, flags)
	blob = append(blob, payload...)
	return blob, nil
}

// Unpack decodes a blob produced by Pack. Compression is detected from the
// blob, so any Packer can unpack any blob.
func (p *Packer) Unpack(blob []byte) ([][]byte, error) {
	if len(blob) < headerSize || !bytes.Equal(blob[:len(Magic)], Magic[:]) {
		return nil, fmt.Errorf("chunk: missing magic")
	}
	flags := blob[len(Magic)]
	payload := blob[headerSize:]
	if flags&flagSnappy != 0 {
		n, err := snappy.DecodedLen(payload)
		if err != nil {
			return nil, fmt.Errorf("chunk: decompress: %w", err)
		}
		if n > maxSnappyRatio*len(payload) {
			return nil, fmt.Errorf("chunk: decompress: %d bytes claimed from %d", n, len(payload))
		}
		if payload, err = snappy.Decode(nil, payload); err != nil {
			return nil, fmt.Errorf("chunk: decompress: %w", err)
		}
	}

	n, rest, err := msgp.ReadArrayHeaderBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("chunk: buffer count: %w", err)
	}
	// Every bin value takes at least one byte.
	if int64(n) > int64(len(rest)) {
		return nil, fmt.Errorf("chunk: %d buffers claimed in %d bytes", n, len(rest))
	}
	buffers := make([][]byte, 0, n)
	for i := uint32(0); i < n; i++ {
		var b []byte
		if b, rest, err = msgp.ReadBytesZC(rest); err != nil {
			return nil, fmt.Errorf("chunk: buffer %d: %w", i, err)
		}
		buffers = append(buffers, b)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("chunk: %d trailing bytes", len(rest))
	}
	return buffers, nil
}

// Write packs buffers and writes the blob to w.
func (p *Packer) Write(w io.Writer, buffers [][]byte) error {
	blob, err := p.Pack(buffers)
	if err != nil {
		return err
	}
	_, err = w.Write(blob)
	return err
}

// Read reads a whole blob from r and unpacks it. The returned buffers
// alias a private copy of the stream.
func (p *Packer) Read(r io.Reader) ([][]byte, error) {
	blob, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("chunk: read: %w", err)
	}
	return p.Unpack(blob)
}
