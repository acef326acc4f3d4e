package bus

import (
	"slices"

	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Subscribe installs fn for messages whose topic starts with filter,
// replacing any subscriber previously installed for the same filter.
// The empty filter matches every topic. A nil fn is ignored.
func (n *Node) Subscribe(filter topic.Topic, fn Subscriber) {
	if fn == nil {
		return
	}
	n.subs[filter] = fn
}

// Filters returns the node's subscription filters in sorted order.
func (n *Node) Filters() []topic.Topic {
	filters := make([]topic.Topic, 0, len(n.subs))
	for f := range n.subs {
		filters = append(filters, f)
	}
	slices.Sort(filters)
	return filters
}

// notify invokes every subscriber whose filter matches the message topic.
// Order across filters is unspecified.
func (n *Node) notify(msg Message) {
	var matched []Subscriber
	for filter, fn := range n.subs {
		if msg.Topic.HasPrefix(filter) {
			matched = append(matched, fn)
		}
	}
	for _, fn := range matched {
		fn(msg)
	}
}
