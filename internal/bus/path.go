package bus

import (
	"iter"
	"slices"
	"strings"
)

// PathSeparator joins node names in a path.
const PathSeparator = "/"

// Path returns the slash-joined names from the root down to n.
// It is recomputed from the live topology on every call.
func (n *Node) Path() string {
	names := []string{n.name}
	for ancestor := range n.Lineage() {
		names = append(names, ancestor.name)
	}
	slices.Reverse(names)
	return strings.Join(names, PathSeparator)
}

// Lineage yields the strict ancestors of n, nearest first, ending at the root.
// Each range over the sequence walks the topology as it is at that moment.
func (n *Node) Lineage() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for p := n.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// IsPrefix reports whether path a is a literal string prefix of path b.
// The test ignores segment boundaries: "ship/ab" is a prefix of "ship/abc".
func IsPrefix(a, b string) bool {
	return strings.HasPrefix(b, a)
}

// hasAncestor reports whether other appears in n's lineage.
func (n *Node) hasAncestor(other *Node) bool {
	for ancestor := range n.Lineage() {
		if ancestor == other {
			return true
		}
	}
	return false
}
