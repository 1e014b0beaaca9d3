package scene

import (
	"fmt"

	farm "github.com/dgryski/go-farm"
)

// NodeID is a content-addressed node identifier: the fingerprint of the
// path that created the node, e.g. "defpart/shelf".
type NodeID uint64

// NewNodeID returns the identifier for a creation path.
func NewNodeID(path string) NodeID {
	return NodeID(farm.Fingerprint64([]byte(path)))
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == 0 }

// Short returns the leading 12 hex digits of id, for messages.
func (id NodeID) Short() string {
	return fmt.Sprintf("%012x", uint64(id)>>16)
}

func (id NodeID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// NodeKind enumerates the types of nodes in a scene.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // solid primitive (box, cylinder)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // logical grouping (assembly)
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of a scene.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// Label returns the node's name, or its short ID when unnamed.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
