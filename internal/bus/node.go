package bus

import (
	"github.com/google/uuid"

	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Node is one endpoint in a routing tree.
//
// The parent field is a back-reference; the structural edge is owned by the
// parent's children slice. Nodes are compared by identity.
type Node struct {
	name     string
	id       uuid.UUID
	parent   *Node
	children []*Node
	subs     map[topic.Topic]Subscriber
}

// New creates a singleton tree containing one node.
func New(name string) *Node {
	return &Node{
		name: name,
		id:   uuid.New(),
		subs: make(map[topic.Topic]Subscriber),
	}
}

// Name returns the node's short name.
func (n *Node) Name() string {
	return n.name
}

// ID returns the node's process-unique identity.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Parent returns the node's parent, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's children in attach order.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Root returns the root of the node's tree.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// String renders the node as Bus(<path>).
func (n *Node) String() string {
	return "Bus(" + n.Path() + ")"
}
