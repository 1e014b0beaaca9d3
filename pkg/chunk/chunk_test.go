package chunk

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tinylib/msgp/msgp"
)

func TestPackUnpack(t *testing.T) {
	tests := []struct {
		name    string
		buffers [][]byte
	}{
		{"none", [][]byte{}},
		{"one empty", [][]byte{{}}},
		{"mixed", [][]byte{[]byte("g3d 1.0.0 2024-01-01"), {}, bytes.Repeat([]byte{7}, 1000)}},
	}
	for _, tt := range tests {
		for _, compress := range []bool{false, true} {
			p := New(WithCompression(compress))
			blob, err := p.Pack(tt.buffers)
			if err != nil {
				t.Fatalf("%s: Pack: %v", tt.name, err)
			}
			got, err := p.Unpack(blob)
			if err != nil {
				t.Fatalf("%s: Unpack: %v", tt.name, err)
			}
			if len(got) != len(tt.buffers) {
				t.Fatalf("%s: got %d buffers, want %d", tt.name, len(got), len(tt.buffers))
			}
			for i := range got {
				if !bytes.Equal(got[i], tt.buffers[i]) {
					t.Errorf("%s (compress=%v): buffer %d differs", tt.name, compress, i)
				}
			}
		}
	}
}

func TestCompressionIsDetected(t *testing.T) {
	payload := [][]byte{bytes.Repeat([]byte("abcd"), 512)}
	blob, err := New(WithCompression(true)).Pack(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(blob) >= 2048 {
		t.Errorf("compressed blob is %d bytes, expected smaller than the payload", len(blob))
	}
	got, err := New().Unpack(blob)
	if err != nil {
		t.Fatalf("uncompressing packer failed to unpack: %v", err)
	}
	if diff := cmp.Diff(payload, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestUnpackErrors(t *testing.T) {
	good, err := New().Pack([][]byte{[]byte("hello")})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"truncated", good[:len(good)-2]},
		{"trailing bytes", append(append([]byte{}, good...), 0xc0)},
		{"corrupt snappy", append([]byte{'G', '3', 'D', 'C', flagSnappy}, 0xff, 0xff, 0xff)},
		{"huge buffer count", append([]byte{'G', '3', 'D', 'C', 0}, msgp.AppendArrayHeader(nil, 0xFFFFFFFF)...)},
		{"count beyond payload", append(append([]byte{'G', '3', 'D', 'C', 0}, msgp.AppendArrayHeader(nil, 3)...), 0xc4, 0)},
		// Varint 0xFFFFFFFF: a 4 GiB decoded length claimed by a 5-byte payload.
		{"huge snappy length", []byte{'G', '3', 'D', 'C', flagSnappy, 0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New().Unpack(tt.blob); err == nil {
				t.Error("Unpack() succeeded, want error")
			}
		})
	}
}

func TestReadWrite(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithCompression(true))
	in := [][]byte{[]byte("a"), []byte("bc")}
	if err := p.Write(&buf, in); err != nil {
		t.Fatal(err)
	}
	out, err := p.Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
