package bus

// ChildCount returns the number of descendants of n, counting every node
// below it at any depth. A leaf has a count of zero.
func (n *Node) ChildCount() int {
	count := 0
	pending := append([]*Node(nil), n.children...)
	for len(pending) > 0 {
		last := len(pending) - 1
		node := pending[last]
		pending = pending[:last]
		count++
		pending = append(pending, node.children...)
	}
	return count
}

// addChild appends child and points it back at n.
// The caller guarantees child has no parent.
func (n *Node) addChild(child *Node) {
	n.children = append(n.children, child)
	child.parent = n
}

// removeChild unlinks child from n. It does nothing if child is not present.
func (n *Node) removeChild(child *Node) {
	i := n.childIndex(child)
	if i < 0 {
		return
	}
	n.children = append(n.children[:i], n.children[i+1:]...)
	child.parent = nil
}

func (n *Node) childIndex(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}
