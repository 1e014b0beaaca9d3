package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/g3d/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpShape wraps primitive data returned from `box` or `cylinder` and
// consumed by `defpart`.
type sexpShape struct {
	data scene.PrimitiveData
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.data.Shape == scene.ShapeCylinder {
		return fmt.Sprintf("(cylinder h=%g r=%g)", s.data.Height, s.data.Radius)
	}
	return fmt.Sprintf("(box %gx%gx%g)", s.data.Size.X(), s.data.Size.Y(), s.data.Size.Z())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a scene.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   scene.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an mgl64.Vec3.
type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X(), v.vec.Y(), v.vec.Z())
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword: a flag with no value.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns the keyword's numeric value, or def when absent.
func (a kwArgs) float(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// vec3 returns the keyword's vector value, or nil when absent.
func (a kwArgs) vec3(key string) (*mgl64.Vec3, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp, so
// both :oak and "oak" read as "oak".
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toNodeRef extracts a node reference.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder populates one scene during one evaluation.
type builder struct {
	s    *scene.Scene
	anon map[string]int // per-prefix counters for unnamed nodes
}

// nodeID returns a deterministic ID for the n-th unnamed node created under
// prefix/label in this evaluation.
func (b *builder) nodeID(prefix, label string) scene.NodeID {
	key := prefix + "/" + label
	b.anon[key]++
	return scene.NewNodeID(fmt.Sprintf("%s#%d", key, b.anon[key]))
}

// adopt removes child from the roots once a group takes ownership of it.
func (b *builder) adopt(child scene.NodeID) {
	roots := b.s.Roots[:0]
	for _, r := range b.s.Roots {
		if r != child {
			roots = append(roots, r)
		}
	}
	b.s.Roots = roots
}

// registerBuiltins installs the scene builtins into a zygomys environment.
// They populate s during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {
	b := &builder{s: s, anon: make(map[string]int)}

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// (box :size (vec3 600 300 18))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := pa.vec3("size")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if size == nil {
			return zygo.SexpNull, fmt.Errorf("box requires :size")
		}
		return &sexpShape{data: scene.PrimitiveData{Shape: scene.ShapeBox, Size: *size}}, nil
	})

	// (cylinder :height 400 :radius 15 :segments 24)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d := scene.PrimitiveData{Shape: scene.ShapeCylinder}
		var err error
		if d.Height, err = pa.float("height", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if d.Radius, err = pa.float("radius", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		seg, err := pa.float("segments", scene.DefaultSegments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		d.Segments = int(seg)
		return &sexpShape{data: d}, nil
	})

	// (defpart "name" (box ...) :material "oak")
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a body expression")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if s.Lookup(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %q is already defined", partName)
		}
		body, ok := pa.positional[1].(*sexpShape)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defpart: expected box or cylinder expression, got %T", pa.positional[1])
		}

		data := body.data
		if v, ok := pa.kw["material"]; ok {
			m, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defpart: material: %w", err)
			}
			data.Material = m
			s.MaterialID(m)
		}

		id := scene.NewNodeID("defpart/" + partName)
		s.AddNode(&scene.Node{
			ID:   id,
			Kind: scene.NodePrimitive,
			Name: partName,
			Data: data,
		})
		return &sexpNodeRef{id: id, name: partName}, nil
	})

	// (part "name")
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		n := s.Lookup(partName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpNodeRef{id: n.ID, name: partName}, nil
	})

	// (place (part "leg") :at (vec3 0 0 19) :rotate (vec3 0 0 90))
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part reference as first argument")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: part: %w", err)
		}

		td := scene.TransformData{}
		if td.Translation, err = pa.vec3("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec3("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		label := child.name
		if label == "" {
			label = child.id.Short()
		}
		id := b.nodeID("place", label)
		b.adopt(child.id)
		s.AddNode(&scene.Node{
			ID:       id,
			Kind:     scene.NodeTransform,
			Children: []scene.NodeID{child.id},
			Data:     td,
		})
		return &sexpNodeRef{id: id}, nil
	})

	// (assembly "name" (place ...) (part ...) (list ...) ...)
	// An assembly is a root until another assembly or a placement takes it
	// as a child.
	env.AddFunction("assembly", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("assembly requires a name argument")
		}
		asmName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: name: %w", err)
		}
		if s.Lookup(asmName) != nil {
			return zygo.SexpNull, fmt.Errorf("assembly: %q is already defined", asmName)
		}

		var children []scene.NodeID
		for i := 1; i < len(args); i++ {
			items := []zygo.Sexp{args[i]}
			if _, isRef := args[i].(*sexpNodeRef); !isRef {
				if items, err = sexpListToSlice(args[i]); err != nil {
					return zygo.SexpNull, fmt.Errorf("assembly: child %d: expected node reference or list, got %T (%s)",
						i, args[i], args[i].SexpString(nil))
				}
			}
			for _, item := range items {
				ref, err := toNodeRef(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("assembly: child %d: %w", i, err)
				}
				b.adopt(ref.id)
				children = append(children, ref.id)
			}
		}

		id := scene.NewNodeID("assembly/" + asmName)
		s.AddNode(&scene.Node{
			ID:       id,
			Kind:     scene.NodeGroup,
			Name:     asmName,
			Children: children,
			Data:     scene.GroupData{},
		})
		s.AddRoot(id)
		return &sexpNodeRef{id: id, name: asmName}, nil
	})
}
