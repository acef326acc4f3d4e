package bus

import (
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// record subscribes to filter on each node and collects the messages each
// node receives, keyed by node name.
func record(filter topic.Topic, nodes ...*Node) map[string][]Message {
	got := make(map[string][]Message)
	for _, n := range nodes {
		name := n.Name()
		n.Subscribe(filter, func(msg Message) {
			got[name] = append(got[name], msg)
		})
	}
	return got
}

// chain builds a straight line of nodes, each the child of the previous one.
func chain(names ...string) []*Node {
	nodes := make([]*Node, len(names))
	for i, name := range names {
		nodes[i] = New(name)
		if i > 0 {
			nodes[i-1].addChild(nodes[i])
		}
	}
	return nodes
}
