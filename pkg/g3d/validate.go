package g3d

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Validate runs the full structural check of the container and returns a
// *ValidationErrors listing every violation, or nil. It is O(N) in the total
// buffer size and is never implied by construction.
//
// Checks, in order:
//   - canonical attributes have the required arity, data type and association
//   - every attribute count matches the cardinality of its association
//   - every index lies in [0, NumVertices)
//   - face corner ranges are contiguous and partition the corner buffer
func (g *G3D) Validate() error {
	errs := &ValidationErrors{}

	g.validateCanonical(errs)

	fl, err := g.FaceLayout()
	if err != nil {
		errs.add(Key{}, "face layout: %v", err)
	}
	g.validateCardinality(errs, fl, err == nil)
	g.validateIndices(errs)
	if err == nil {
		g.validatePartition(errs, fl)
	}
	return errs.orNil()
}

// ---------------------------------------------------------------------------
// Canonical attributes
// ---------------------------------------------------------------------------

func (g *G3D) validateCanonical(errs *ValidationErrors) {
	if d := g.vertices.Descriptor; d.Arity != 3 {
		errs.add(d.Key(), "vertex attribute arity is %d, must be 3", d.Arity)
	}
	if g.indices != nil {
		d := g.indices.Descriptor
		if d.Arity != 1 {
			errs.add(d.Key(), "index attribute arity is %d, must be 1", d.Arity)
		}
		if d.DataType.IsFloat() {
			errs.add(d.Key(), "index attribute data type is %s, must be an integer", d.DataType)
		}
	}
	if g.faceSizes != nil {
		d := g.faceSizes.Descriptor
		if d.Arity != 1 {
			errs.add(d.Key(), "face-size attribute arity is %d, must be 1", d.Arity)
		}
		if d.DataType != Int32 {
			errs.add(d.Key(), "face-size attribute data type is %s, must be int32", d.DataType)
		}
	}
	if g.faceIndices != nil {
		d := g.faceIndices.Descriptor
		if d.Arity != 1 {
			errs.add(d.Key(), "face-index attribute arity is %d, must be 1", d.Arity)
		}
		if d.DataType != Int32 {
			errs.add(d.Key(), "face-index attribute data type is %s, must be int32", d.DataType)
		}
	}
}

// ---------------------------------------------------------------------------
// Cardinality
// ---------------------------------------------------------------------------

// Cardinality returns the expected element count of attributes with
// association assoc. ok is false when the association is unconstrained
// (none) or nothing in the container defines it.
func (g *G3D) Cardinality(assoc Association) (n int, ok bool) {
	switch assoc {
	case AssocVertex:
		return g.NumVertices(), true
	case AssocCorner, AssocEdge:
		return g.NumCorners(), true
	case AssocObject:
		return 1, true
	case AssocFace:
		fl, err := g.FaceLayout()
		if err != nil {
			return 0, false
		}
		return fl.NumFaces, true
	case AssocGroup:
		group := g.byAssoc[AssocGroup]
		for _, a := range group {
			if a.Descriptor.AttributeType == TypeGroupIndex {
				return a.Count(), true
			}
		}
		if len(group) > 0 {
			return group[0].Count(), true
		}
	case AssocInstance:
		if inst := g.byAssoc[AssocInstance]; len(inst) > 0 {
			return inst[0].Count(), true
		}
	}
	return 0, false
}

func (g *G3D) validateCardinality(errs *ValidationErrors, fl FaceLayout, faceOK bool) {
	expected := make(map[Association]int)
	known := make(map[Association]bool)
	for assoc := range g.byAssoc {
		if assoc == AssocFace {
			expected[assoc], known[assoc] = fl.NumFaces, faceOK
			continue
		}
		expected[assoc], known[assoc] = g.Cardinality(assoc)
	}

	// Attributes are independent; each worker writes only its own slot.
	found := make([][]Violation, len(g.attrs))
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range g.attrs {
		eg.Go(func() error {
			d := a.Descriptor
			if !known[d.Association] {
				return nil
			}
			if want := expected[d.Association]; a.Count() != want {
				found[i] = append(found[i], Violation{
					Key:     d.Key(),
					Message: fmt.Sprintf("count %d does not match %s cardinality %d", a.Count(), d.Association, want),
				})
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		errs.add(Key{}, "cardinality check: %v", err)
	}
	for _, vs := range found {
		errs.Violations = append(errs.Violations, vs...)
	}
}

// ---------------------------------------------------------------------------
// Indices
// ---------------------------------------------------------------------------

func (g *G3D) validateIndices(errs *ValidationErrors) {
	if g.indices == nil {
		return
	}
	key := g.indices.Key()
	indices, err := g.indices.Int32s()
	if err != nil {
		errs.add(key, "%v", err)
		return
	}
	n := int32(g.NumVertices())
	bad := 0
	for c, idx := range indices {
		if idx >= 0 && idx < n {
			continue
		}
		if bad == 0 {
			errs.add(key, "corner %d references vertex %d, outside [0, %d)", c, idx, n)
		}
		bad++
	}
	if bad > 1 {
		errs.add(key, "%d indices out of range in total", bad)
	}
}

// ---------------------------------------------------------------------------
// Face partition
// ---------------------------------------------------------------------------

func (g *G3D) validatePartition(errs *ValidationErrors, fl FaceLayout) {
	if len(fl.Offsets) != fl.NumFaces {
		// Reported by the cardinality check.
		return
	}
	var key Key
	if g.faceIndices != nil {
		key = g.faceIndices.Key()
	} else if g.faceSizes != nil {
		key = g.faceSizes.Key()
	}

	var running int64
	for i := 0; i < fl.NumFaces; i++ {
		size := fl.Sizes[i]
		if size < 0 {
			errs.add(key, "face %d has negative size %d", i, size)
			return
		}
		if int64(fl.Offsets[i]) != running {
			errs.add(key, "face %d starts at corner %d, expected %d", i, fl.Offsets[i], running)
			return
		}
		running += int64(size)
	}
	if corners := int64(g.NumCorners()); running != corners {
		errs.add(key, "faces cover %d corners, container has %d", running, corners)
	}
}
