package scene

import (
	"fmt"
	"maps"
	"slices"
)

// Severity indicates whether a validation finding blocks tessellation or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks tessellation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID   // which node has the problem (zero if scene-level)
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Errors returns only the error-severity findings.
func Errors(findings []ValidationError) []ValidationError {
	var errs []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errs
}

// Validate runs every structural check on the scene and returns all
// findings, ordered by check and then by node ID. An empty slice means the
// scene is valid. Validate never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(s)...)
	errs = append(errs, validateReferences(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validateRoots(s)...)
	errs = append(errs, validateData(s)...)
	errs = append(errs, validateMaterials(s)...)
	return errs
}

func sortedIDs(s *Scene) []NodeID {
	return slices.Sorted(maps.Keys(s.Nodes))
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = on the current path, black (2) = done.
func validateDAG(s *Scene) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // true if a cycle was found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := s.Nodes[id]
		if !ok {
			// Dangling; reported by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range sortedIDs(s) {
		if color[id] == white && visit(id) {
			// One cycle is enough.
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference points to a node in
// the scene.
func validateReferences(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, id := range sortedIDs(s) {
		node := s.Nodes[id]
		for _, childID := range node.Children {
			if _, ok := s.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
		if node.Kind == NodePrimitive && len(node.Children) > 0 {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "primitive nodes cannot have children",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateNames checks that every NameIndex entry points at an existing node
// carrying that name, and that no two nodes share a name.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError

	for _, name := range slices.Sorted(maps.Keys(s.NameIndex)) {
		id := s.NameIndex[name]
		n, ok := s.Nodes[id]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		case n.Name != name:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("name index entry %q points at node named %q", name, n.Name),
				Severity: SeverityError,
			})
		}
	}

	counts := make(map[string]int)
	for _, n := range s.Nodes {
		if n.Name != "" {
			counts[n.Name]++
		}
	}
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		if counts[name] > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, counts[name]),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root exists and warns about nodes that no
// root reaches.
func validateRoots(s *Scene) []ValidationError {
	var errs []ValidationError
	if len(s.Nodes) > 0 && len(s.Roots) == 0 {
		errs = append(errs, ValidationError{
			Message:  "scene has nodes but no roots",
			Severity: SeverityWarning,
		})
	}

	reachable := make(map[NodeID]bool)
	var queue []NodeID
	for _, rid := range s.Roots {
		if _, ok := s.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		}
		if !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		node := s.Nodes[queue[0]]
		queue = queue[1:]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	if len(s.Roots) == 0 {
		return errs
	}
	for _, id := range sortedIDs(s) {
		if !reachable[id] {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", s.Nodes[id].Label()),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateData checks that each node's payload matches its kind and that
// primitive dimensions are positive.
func validateData(s *Scene) []ValidationError {
	var errs []ValidationError
	bad := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, id := range sortedIDs(s) {
		node := s.Nodes[id]
		switch d := node.Data.(type) {
		case PrimitiveData:
			if node.Kind != NodePrimitive {
				bad(id, "%s node carries primitive data", node.Kind)
				continue
			}
			switch d.Shape {
			case ShapeBox:
				if d.Size.X() <= 0 || d.Size.Y() <= 0 || d.Size.Z() <= 0 {
					bad(id, "box size %v must be positive on every axis", d.Size)
				}
			case ShapeCylinder:
				if d.Height <= 0 || d.Radius <= 0 {
					bad(id, "cylinder height %g and radius %g must be positive", d.Height, d.Radius)
				}
				if d.Segments < 0 {
					bad(id, "cylinder segments %d must not be negative", d.Segments)
				}
			default:
				bad(id, "unknown primitive shape %d", int(d.Shape))
			}
		case TransformData:
			if node.Kind != NodeTransform {
				bad(id, "%s node carries transform data", node.Kind)
			}
		case GroupData:
			if node.Kind != NodeGroup {
				bad(id, "%s node carries group data", node.Kind)
			}
		default:
			bad(id, "%s node has unsupported data %T", node.Kind, node.Data)
		}
	}
	return errs
}

// validateMaterials checks that every part's material is interned and the
// table holds no duplicates.
func validateMaterials(s *Scene) []ValidationError {
	var errs []ValidationError
	for i, m := range s.Materials {
		if j := slices.Index(s.Materials, m); j != i {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("material %q listed at both %d and %d", m, j, i),
				Severity: SeverityError,
			})
		}
	}
	for _, id := range sortedIDs(s) {
		d, ok := s.Nodes[id].Data.(PrimitiveData)
		if ok && d.Material != "" && !slices.Contains(s.Materials, d.Material) {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("material %q is missing from the material table", d.Material),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
