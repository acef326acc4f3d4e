package subscriber

import (
	"sync"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Fanout delivers each message to several subscribers in the order they
// were added. A node keeps one subscriber per filter, so Fanout is how
// more than one consumer shares a filter.
//
// Subscribers may be added while messages are being delivered.
type Fanout struct {
	mu   sync.RWMutex
	subs []bus.Subscriber
}

// NewFanout creates a fan-out over subs. Nil entries are skipped.
func NewFanout(subs ...bus.Subscriber) *Fanout {
	f := &Fanout{}
	for _, s := range subs {
		f.Add(s)
	}
	return f
}

// Add appends a subscriber. Nil is ignored.
func (f *Fanout) Add(sub bus.Subscriber) {
	if sub == nil {
		return
	}
	f.mu.Lock()
	f.subs = append(f.subs, sub)
	f.mu.Unlock()
}

// Len returns the number of subscribers.
func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Subscriber returns the bus subscriber that feeds every added subscriber.
func (f *Fanout) Subscriber() bus.Subscriber {
	return func(msg bus.Message) {
		f.mu.RLock()
		subs := make([]bus.Subscriber, len(f.subs))
		copy(subs, f.subs)
		f.mu.RUnlock()

		for _, s := range subs {
			s(msg)
		}
	}
}

// Filtered wraps sub so it only sees topics starting with prefix. An empty
// prefix passes everything.
func Filtered(prefix topic.Topic, sub bus.Subscriber) bus.Subscriber {
	if prefix == "" {
		return sub
	}
	return func(msg bus.Message) {
		if msg.Topic.HasPrefix(prefix) {
			sub(msg)
		}
	}
}
