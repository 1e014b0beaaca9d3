// Package scene defines the immutable scene graph produced by script
// evaluation: primitive parts, placements and assemblies, plus the material
// table whose indices become face material ids.
package scene

import (
	"fmt"
	"slices"
	"strings"
)

// Scene is the top-level data structure produced by evaluation. It is never
// mutated once built; each evaluation produces a new scene.
type Scene struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Materials []string          `json:"materials"`
	Version   uint64            `json:"version"`
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
	}
}

// AddNode adds a node to the scene. It does not check for duplicates.
func (s *Scene) AddNode(n *Node) {
	s.Nodes[n.ID] = n
	if n.Name != "" {
		s.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the scene.
func (s *Scene) AddRoot(id NodeID) {
	s.Roots = append(s.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (s *Scene) Lookup(name string) *Node {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (s *Scene) MustLookup(name string) *Node {
	n := s.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("scene: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (s *Scene) Get(id NodeID) *Node {
	return s.Nodes[id]
}

// Parts returns every primitive node ordered by label.
func (s *Scene) Parts() []*Node {
	var parts []*Node
	for _, n := range s.Nodes {
		if n.Kind == NodePrimitive {
			parts = append(parts, n)
		}
	}
	slices.SortFunc(parts, func(a, b *Node) int {
		return strings.Compare(a.Label(), b.Label())
	})
	return parts
}

// Children returns the child nodes of n, skipping dangling references.
func (s *Scene) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := s.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (s *Scene) NodeCount() int {
	return len(s.Nodes)
}

// MaterialID interns a material name and returns its index in Materials.
// The empty name has no material and yields -1.
func (s *Scene) MaterialID(name string) int32 {
	if name == "" {
		return -1
	}
	if i := slices.Index(s.Materials, name); i >= 0 {
		return int32(i)
	}
	s.Materials = append(s.Materials, name)
	return int32(len(s.Materials) - 1)
}

// MaterialIndex returns the index of a material in Materials without
// interning it, or -1 when the name is empty or unknown.
func (s *Scene) MaterialIndex(name string) int32 {
	if name == "" {
		return -1
	}
	return int32(slices.Index(s.Materials, name))
}
