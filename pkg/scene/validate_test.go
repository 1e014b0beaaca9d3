package scene

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// buildValidScene returns a shelf and a leg placed under an assembly root.
func buildValidScene() *Scene {
	s := New()
	shelf := box("shelf", 600, 300, 18)
	shelf.Data = PrimitiveData{Shape: ShapeBox, Size: mgl64.Vec3{600, 300, 18}, Material: "oak"}
	leg := &Node{
		ID:   NewNodeID("defpart/leg"),
		Kind: NodePrimitive,
		Name: "leg",
		Data: PrimitiveData{Shape: ShapeCylinder, Height: 400, Radius: 15, Segments: 24},
	}
	at := mgl64.Vec3{20, 20, 0}
	place := &Node{
		ID:       NewNodeID("place/leg"),
		Kind:     NodeTransform,
		Children: []NodeID{leg.ID},
		Data:     TransformData{Translation: &at},
	}
	root := &Node{
		ID:       NewNodeID("assembly/table"),
		Kind:     NodeGroup,
		Name:     "table",
		Children: []NodeID{shelf.ID, place.ID},
		Data:     GroupData{},
	}
	for _, n := range []*Node{shelf, leg, place, root} {
		s.AddNode(n)
	}
	s.AddRoot(root.ID)
	s.MaterialID("oak")
	return s
}

func findings(errs []ValidationError, sev Severity, substr string) int {
	n := 0
	for _, e := range errs {
		if e.Severity == sev && strings.Contains(e.Message, substr) {
			n++
		}
	}
	return n
}

func TestValidateValidScene(t *testing.T) {
	if errs := Validate(buildValidScene()); len(errs) != 0 {
		t.Fatalf("expected no findings, got %v", errs)
	}
	if errs := Validate(New()); len(errs) != 0 {
		t.Fatalf("empty scene should be valid, got %v", errs)
	}
}

func TestValidateCycle(t *testing.T) {
	s := buildValidScene()
	root := s.Lookup("table")
	leg := s.Lookup("leg")
	leg.Kind = NodeGroup
	leg.Data = GroupData{}
	leg.Children = []NodeID{root.ID}

	errs := Validate(s)
	if findings(errs, SeverityError, "cycle detected") != 1 {
		t.Errorf("expected exactly one cycle error, got %v", errs)
	}
}

func TestValidateDanglingReferences(t *testing.T) {
	s := buildValidScene()
	root := s.Lookup("table")
	root.Children = append(root.Children, NewNodeID("ghost"))
	s.AddRoot(NewNodeID("missing-root"))

	errs := Validate(s)
	if findings(errs, SeverityError, "child reference") != 1 {
		t.Errorf("expected a dangling child error, got %v", errs)
	}
	if findings(errs, SeverityError, "root reference") != 1 {
		t.Errorf("expected a dangling root error, got %v", errs)
	}
}

func TestValidateOrphanAndNoRoots(t *testing.T) {
	s := buildValidScene()
	s.AddNode(box("offcut", 10, 10, 10))
	errs := Validate(s)
	if findings(errs, SeverityWarning, `"offcut" is not reachable`) != 1 {
		t.Errorf("expected an orphan warning, got %v", errs)
	}
	if len(Errors(errs)) != 0 {
		t.Errorf("orphans should only warn, got %v", Errors(errs))
	}

	s.Roots = nil
	errs = Validate(s)
	if findings(errs, SeverityWarning, "no roots") != 1 {
		t.Errorf("expected a no-roots warning, got %v", errs)
	}
}

func TestValidateNames(t *testing.T) {
	s := buildValidScene()
	dup := box("shelf", 1, 1, 1)
	dup.ID = NewNodeID("defpart/shelf-2")
	s.Nodes[dup.ID] = dup
	s.NameIndex["gone"] = NewNodeID("gone")

	errs := Validate(s)
	if findings(errs, SeverityError, `duplicate name "shelf"`) != 1 {
		t.Errorf("expected a duplicate name error, got %v", errs)
	}
	if findings(errs, SeverityError, `entry "gone"`) != 1 {
		t.Errorf("expected a stale name index error, got %v", errs)
	}
}

func TestValidateData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Scene)
		want   string
	}{
		{"flat box", func(s *Scene) {
			n := s.Lookup("shelf")
			n.Data = PrimitiveData{Shape: ShapeBox, Size: mgl64.Vec3{600, 0, 18}}
		}, "must be positive on every axis"},
		{"zero radius", func(s *Scene) {
			n := s.Lookup("leg")
			n.Data = PrimitiveData{Shape: ShapeCylinder, Height: 10}
		}, "must be positive"},
		{"negative segments", func(s *Scene) {
			n := s.Lookup("leg")
			n.Data = PrimitiveData{Shape: ShapeCylinder, Height: 10, Radius: 1, Segments: -3}
		}, "must not be negative"},
		{"unknown shape", func(s *Scene) {
			s.Lookup("leg").Data = PrimitiveData{Shape: Shape(9)}
		}, "unknown primitive shape"},
		{"kind mismatch", func(s *Scene) {
			s.Lookup("table").Data = PrimitiveData{Shape: ShapeBox, Size: mgl64.Vec3{1, 1, 1}}
		}, "group node carries primitive data"},
		{"primitive with children", func(s *Scene) {
			n := s.Lookup("leg")
			n.Children = []NodeID{s.Lookup("shelf").ID}
		}, "cannot have children"},
		{"missing material", func(s *Scene) {
			s.Materials = nil
		}, `material "oak" is missing`},
		{"duplicate material", func(s *Scene) {
			s.Materials = append(s.Materials, "oak")
		}, `material "oak" listed at both 0 and 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildValidScene()
			tt.mutate(s)
			errs := Validate(s)
			if findings(errs, SeverityError, tt.want) == 0 {
				t.Errorf("expected an error containing %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	id := NewNodeID("defpart/shelf")
	e := ValidationError{NodeID: id, Message: "bad", Severity: SeverityError}
	if want := "[error] node " + id.Short() + ": bad"; e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
	w := ValidationError{Message: "meh", Severity: SeverityWarning}
	if w.Error() != "[warning] meh" {
		t.Errorf("Error() = %q", w.Error())
	}
}
