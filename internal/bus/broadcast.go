package bus

import "github.com/dshills/mechanistan/internal/bus/topic"

// Broadcast formats text with args (see Format) and floods the result
// through n's tree. Every node in the tree, n included, sees the message
// exactly once. Broadcast returns after the last subscriber returns.
func (n *Node) Broadcast(t topic.Topic, text string, args ...any) {
	n.deliver(Message{
		Topic:   t,
		Payload: Format(text, args...),
		Sender:  n.Path(),
	})
}

// deliver walks the tree depth first from n using an explicit stack.
// Visit order matches the recursive definition: a node's subscribers, then
// each eligible child's subtree in order, then the parent.
func (n *Node) deliver(msg Message) {
	stack := []*Node{n}
	var next []*Node

	for len(stack) > 0 {
		last := len(stack) - 1
		node := stack[last]
		stack = stack[:last]

		node.notify(msg)

		next = next[:0]
		for _, child := range node.children {
			// The child on the route back toward the sender has already
			// been visited.
			if !IsPrefix(child.Path(), msg.Sender) {
				next = append(next, child)
			}
		}
		// Climb only while still on the sender's own line of ancestry.
		if node.parent != nil && IsPrefix(node.Path(), msg.Sender) {
			next = append(next, node.parent)
		}

		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
}
