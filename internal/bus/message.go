package bus

import "github.com/dshills/mechanistan/internal/bus/topic"

// Message is the immutable value carried through a tree by Broadcast.
type Message struct {
	// Topic classifies the message and is matched against subscription filters.
	Topic topic.Topic

	// Payload is the formatted text.
	Payload string

	// Sender is the path of the broadcasting node, captured once at send time.
	Sender string

	// Size is reserved and always zero.
	Size int
}

// Subscriber receives messages whose topic starts with its filter.
type Subscriber func(Message)
