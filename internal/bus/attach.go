package bus

import "github.com/dshills/mechanistan/internal/bus/topic"

const (
	opAttach = "attach"
	opDetach = "detach"
)

// Attach joins the trees of n and other, deciding which node becomes the
// parent. Rules are checked in order:
//
//  1. Both nodes have a parent: rejected with ErrAttachConflict, reported
//     from both trees.
//  2. One node is an ancestor of the other: rejected with ErrAttachCycle.
//  3. Both are roots: the root with fewer descendants becomes the child.
//     On a tie n stays the parent.
//  4. Exactly one has a parent: the parentless node becomes the child.
//
// A parentless node attached to itself is rejected as ErrAttachCycle; a
// parented one falls under rule 1. Rejections leave the topology untouched.
func (n *Node) Attach(other *Node) error {
	if other == nil {
		return newTopologyError(opAttach, n, other, ErrNilNode)
	}

	parent, child := n, other

	switch {
	case n.parent != nil && other.parent != nil:
		err := newTopologyError(opAttach, n, other, ErrAttachConflict)
		const text = "{} Unable to attach to {}, both already have parents"
		n.Broadcast(topic.BusError, text, n, other)
		other.Broadcast(topic.BusError, text, other, n)
		return err

	case n == other || n.hasAncestor(other) || other.hasAncestor(n):
		n.Broadcast(topic.BusError, "{} and {} are already attached.", n, other)
		return newTopologyError(opAttach, n, other, ErrAttachCycle)

	case n.parent == nil && other.parent == nil:
		if n.ChildCount() < other.ChildCount() {
			parent, child = other, n
		}
		parent.Broadcast(topic.BusDebug, "Root {} has more children than root {}", parent, child)

	case other.parent == nil:
		n.Broadcast(topic.BusDebug, "{} has no parent", other)

	case n.parent == nil:
		parent, child = other, n
		n.Broadcast(topic.BusDebug, "{} has no parent", n)

	default:
		n.Broadcast(topic.BusError, "No attach rule applies to {} and {}", n, other)
		return newTopologyError(opAttach, n, other, ErrAttachInternal)
	}

	parent.addChild(child)
	child.Broadcast(topic.BusInfo, "{} is now a child of {}", child, parent)
	return nil
}

// Detach removes the edge between n and other, whichever direction it runs.
// If other is neither n's parent nor one of n's children, an error event is
// broadcast and ErrDetachUnrelated is returned.
func (n *Node) Detach(other *Node) error {
	switch {
	case other != nil && other == n.parent:
		other.removeChild(n)
	case other != nil && n.childIndex(other) >= 0:
		n.removeChild(other)
	default:
		otherName := "<nil>"
		if other != nil {
			otherName = other.name
		}
		n.Broadcast(topic.BusError,
			"Unable to detach {} and {}: neither is a parent of the other", n.name, otherName)
		return newTopologyError(opDetach, n, other, ErrDetachUnrelated)
	}
	return nil
}
