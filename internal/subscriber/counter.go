package subscriber

import (
	"sync"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Counter tallies deliveries per topic.
type Counter struct {
	mu     sync.Mutex
	counts map[topic.Topic]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[topic.Topic]int)}
}

// Subscriber returns the bus subscriber that feeds the counter.
func (c *Counter) Subscriber() bus.Subscriber {
	return func(msg bus.Message) {
		c.mu.Lock()
		c.counts[msg.Topic]++
		c.mu.Unlock()
	}
}

// Count returns the number of deliveries seen for t.
func (c *Counter) Count(t topic.Topic) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[t]
}

// Total returns the number of deliveries across all topics.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Snapshot returns a copy of the per-topic counts.
func (c *Counter) Snapshot() map[topic.Topic]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[topic.Topic]int, len(c.counts))
	for k, v := range c.counts {
		result[k] = v
	}
	return result
}
