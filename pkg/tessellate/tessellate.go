// Package tessellate walks a scene and produces G3D geometry using a solid
// kernel. Every placed primitive becomes one part whose faces carry the
// part's object id and material id; Tessellate merges the parts into a
// single triangle geometry.
package tessellate

import (
	"fmt"
	"runtime"
	"time"

	"github.com/chazu/g3d/pkg/kernel"
	"github.com/chazu/g3d/pkg/mesh"
	"github.com/chazu/g3d/pkg/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Part is the world-space geometry of one placed primitive.
type Part struct {
	Node       *scene.Node
	ObjectID   int32 // placement order, starting at 0
	MaterialID int32 // index into the scene's material table, or mesh.NoID
	Transform  mgl64.Mat4
	Geometry   *mesh.Geometry
}

// Name returns the part's node label.
func (p Part) Name() string { return p.Node.Label() }

// Option configures tessellation.
type Option func(*options)

type options struct {
	log      *zap.Logger
	parallel int
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithParallelism bounds how many primitives are meshed at once. Values
// below one mean one.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallel = max(n, 1)
	}
}

// transformStack accumulates placement matrices during scene traversal.
type transformStack struct {
	frames []mgl64.Mat4
}

func newTransformStack() *transformStack {
	return &transformStack{frames: []mgl64.Mat4{mgl64.Ident4()}}
}

// push composes td onto the current frame: rotation (X, then Y, then Z, in
// degrees) first, then translation.
func (ts *transformStack) push(td scene.TransformData) {
	local := mgl64.Ident4()
	if r := td.Rotation; r != nil {
		local = mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z())).
			Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y()))).
			Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X())))
	}
	if t := td.Translation; t != nil {
		local = mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(local)
	}
	ts.frames = append(ts.frames, ts.top().Mul4(local))
}

func (ts *transformStack) pop() {
	if len(ts.frames) > 1 {
		ts.frames = ts.frames[:len(ts.frames)-1]
	}
}

func (ts *transformStack) top() mgl64.Mat4 {
	return ts.frames[len(ts.frames)-1]
}

// placement is a primitive reached by the walk together with its frame.
type placement struct {
	node *scene.Node
	m    mgl64.Mat4
}

// walker collects placements. It is read-only with respect to the scene.
type walker struct {
	s      *scene.Scene
	ts     *transformStack
	onPath map[scene.NodeID]bool
	out    []placement
}

func (w *walker) walk(n *scene.Node) error {
	if w.onPath[n.ID] {
		return fmt.Errorf("cycle through node %s", n.Label())
	}
	w.onPath[n.ID] = true
	defer delete(w.onPath, n.ID)

	switch n.Kind {
	case scene.NodePrimitive:
		w.out = append(w.out, placement{node: n, m: w.ts.top()})
		return nil

	case scene.NodeTransform:
		td, ok := n.Data.(scene.TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		w.ts.push(td)
		defer w.ts.pop()
		return w.children(n)

	case scene.NodeGroup:
		return w.children(n)

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (w *walker) children(n *scene.Node) error {
	for _, child := range w.s.Children(n) {
		if err := w.walk(child); err != nil {
			return err
		}
	}
	return nil
}

// solid builds the kernel solid for a primitive in its local frame.
func solid(k kernel.Kernel, n *scene.Node) (kernel.Solid, error) {
	d, ok := n.Data.(scene.PrimitiveData)
	if !ok {
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	switch d.Shape {
	case scene.ShapeBox:
		return k.Box(d.Size.X(), d.Size.Y(), d.Size.Z()), nil
	case scene.ShapeCylinder:
		seg := d.Segments
		if seg == 0 {
			seg = scene.DefaultSegments
		}
		return k.Cylinder(d.Height, d.Radius, seg), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unknown shape %v", n.ID.Short(), d.Shape)
	}
}

// Parts walks the scene from its roots and returns one world-space part per
// placed primitive, in walk order. A primitive placed several times is
// meshed once. The scene is never mutated.
func Parts(s *scene.Scene, k kernel.Kernel, opts ...Option) ([]Part, error) {
	o := options{log: zap.NewNop(), parallel: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}
	if s == nil {
		return nil, nil
	}

	w := &walker{s: s, ts: newTransformStack(), onPath: make(map[scene.NodeID]bool)}
	for _, rootID := range s.Roots {
		root := s.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walk(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	// Mesh each distinct primitive once, in parallel.
	var unique []*scene.Node
	slot := make(map[scene.NodeID]int)
	for _, p := range w.out {
		if _, ok := slot[p.node.ID]; !ok {
			slot[p.node.ID] = len(unique)
			unique = append(unique, p.node)
		}
	}
	local := make([]*mesh.Geometry, len(unique))
	var eg errgroup.Group
	eg.SetLimit(o.parallel)
	for i, n := range unique {
		eg.Go(func() error {
			start := time.Now()
			sol, err := solid(k, n)
			if err != nil {
				return err
			}
			g, err := k.ToMesh(sol)
			if err != nil {
				return fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
			}
			local[i] = g
			o.log.Debug("meshed part",
				zap.String("part", n.Label()),
				zap.Int("vertices", g.NumVertices()),
				zap.Int("faces", g.NumFaces),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	parts := make([]Part, 0, len(w.out))
	for i, p := range w.out {
		g := local[slot[p.node.ID]]
		if p.m != mgl64.Ident4() {
			var err error
			if g, err = g.Transform(mat32(p.m)); err != nil {
				return nil, fmt.Errorf("tessellate: placing %s: %w", p.node.Label(), err)
			}
		}
		matID := mesh.NoID
		if d, ok := p.node.Data.(scene.PrimitiveData); ok {
			matID = s.MaterialIndex(d.Material)
		}
		g, err := g.WithFaceIDs(matID, int32(i))
		if err != nil {
			return nil, fmt.Errorf("tessellate: tagging %s: %w", p.node.Label(), err)
		}
		parts = append(parts, Part{
			Node:       p.node,
			ObjectID:   int32(i),
			MaterialID: matID,
			Transform:  p.m,
			Geometry:   g,
		})
	}

	o.log.Info("tessellated scene",
		zap.Int("placements", len(parts)),
		zap.Int("primitives", len(unique)))
	return parts, nil
}

// Tessellate returns the merged triangle geometry of every placed part.
// An empty scene yields an empty geometry.
func Tessellate(s *scene.Scene, k kernel.Kernel, opts ...Option) (*mesh.Geometry, error) {
	parts, err := Parts(s, k, opts...)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return mesh.FromTriangles(nil, nil)
	}
	geoms := make([]*mesh.Geometry, len(parts))
	for i, p := range parts {
		geoms[i] = p.Geometry
	}
	g, err := mesh.Merge(geoms...)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return g, nil
}

func mat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}
