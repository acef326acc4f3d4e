package bus

import "errors"

// Sentinel errors for topology operations.
var (
	// ErrNilNode is returned when a topology operation is given a nil node.
	ErrNilNode = errors.New("nil bus node")

	// ErrAttachConflict is returned when both nodes already have a parent.
	ErrAttachConflict = errors.New("both nodes already have parents")

	// ErrAttachCycle is returned when the nodes are already in the same tree.
	ErrAttachCycle = errors.New("nodes are already attached")

	// ErrAttachInternal is returned when no attach rule applies.
	ErrAttachInternal = errors.New("no attach rule applies")

	// ErrDetachUnrelated is returned when neither node is the parent of the other.
	ErrDetachUnrelated = errors.New("neither node is a parent of the other")
)

// TopologyError describes a rejected Attach or Detach.
type TopologyError struct {
	// Op is "attach" or "detach".
	Op string

	// Node is the path of the receiving node at the time of the call.
	Node string

	// Other is the path of the argument node at the time of the call.
	Other string

	// Err is one of the sentinel errors above.
	Err error
}

// Error implements the error interface.
func (e *TopologyError) Error() string {
	return e.Op + " " + e.Node + " and " + e.Other + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TopologyError) Unwrap() error {
	return e.Err
}

func newTopologyError(op string, n, other *Node, err error) *TopologyError {
	return &TopologyError{
		Op:    op,
		Node:  pathOf(n),
		Other: pathOf(other),
		Err:   err,
	}
}

func pathOf(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Path()
}
