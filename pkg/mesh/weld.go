package mesh

import (
	"fmt"
	"strings"

	"github.com/chazu/g3d/pkg/g3d"
)

// WeldVertices merges vertices whose full vertex record is identical: every
// vertex-associated attribute compares equal byte for byte. The surviving
// vertex of each class is its first occurrence, and indices are rewritten
// to it. A geometry without duplicate vertices is returned as is.
func (g *Geometry) WeldVertices() (*Geometry, error) {
	vertexAttrs := g.G3D.ByAssociation(g3d.AssocVertex)
	n := g.NumVertices()
	for _, a := range vertexAttrs {
		if a.Count() != n {
			return nil, fmt.Errorf("mesh: weld: %s has %d elements for %d vertices", a.Descriptor, a.Count(), n)
		}
	}

	slots := make(map[string]int32, n)
	remap := make([]int32, n)
	var survivors []int32
	var key strings.Builder
	for v := 0; v < n; v++ {
		key.Reset()
		for _, a := range vertexAttrs {
			size := a.Descriptor.ElementSize()
			key.Write(a.Bytes()[v*size : (v+1)*size])
		}
		k := key.String()
		slot, ok := slots[k]
		if !ok {
			slot = int32(len(survivors))
			slots[k] = slot
			survivors = append(survivors, int32(v))
		}
		remap[v] = slot
	}
	if len(survivors) == n {
		return g, nil
	}

	indices := make([]int32, len(g.Indices))
	for c, v := range g.Indices {
		if v < 0 || int(v) >= n {
			return nil, fmt.Errorf("mesh: weld: corner %d references vertex %d outside [0, %d)", c, v, n)
		}
		indices[c] = remap[v]
	}
	return g.replaceVertices(survivors, indices)
}

// RemoveUnusedVertices drops vertices that no corner references. The kept
// vertices retain their relative order and indices are rewritten to match.
// A geometry without unused vertices is returned as is.
func (g *Geometry) RemoveUnusedVertices() (*Geometry, error) {
	n := g.NumVertices()
	used := make([]bool, n)
	for c, v := range g.Indices {
		if v < 0 || int(v) >= n {
			return nil, fmt.Errorf("mesh: corner %d references vertex %d outside [0, %d)", c, v, n)
		}
		used[v] = true
	}

	remap := make([]int32, n)
	var kept []int32
	for v, u := range used {
		if u {
			remap[v] = int32(len(kept))
			kept = append(kept, int32(v))
		}
	}
	if len(kept) == n {
		return g, nil
	}

	indices := make([]int32, len(g.Indices))
	for c, v := range g.Indices {
		indices[c] = remap[v]
	}
	out, err := g.replaceVertices(kept, indices)
	if err != nil {
		return nil, err
	}
	if debugChecks {
		mustKeepCorners(g, out)
	}
	return out, nil
}

// mustKeepCorners panics unless every corner of after resolves to the same
// position as the corresponding corner of before.
func mustKeepCorners(before, after *Geometry) {
	if len(before.Indices) != len(after.Indices) {
		panic(fmt.Sprintf("mesh: %d corners became %d", len(before.Indices), len(after.Indices)))
	}
	for c := range before.Indices {
		if after.Vertices[after.Indices[c]] != before.Vertices[before.Indices[c]] {
			panic(fmt.Sprintf("mesh: corner %d moved after compaction", c))
		}
	}
}

// replaceVertices gathers every vertex attribute through survivors and
// installs indices as the index buffer.
func (g *Geometry) replaceVertices(survivors, indices []int32) (*Geometry, error) {
	c := g.G3D
	attrs := make([]*g3d.Attribute, 0, c.Len()+1)
	for _, a := range c.Attributes() {
		switch {
		case a.Descriptor.Association == g3d.AssocVertex:
			r, err := a.Remap(survivors)
			if err != nil {
				return nil, fmt.Errorf("mesh: %s: %w", a.Descriptor, err)
			}
			a = r
		case a == c.IndexAttribute():
			continue
		}
		attrs = append(attrs, a)
	}
	attrs = append(attrs, g3d.Indices(indices))
	return g.rebuild(attrs)
}
