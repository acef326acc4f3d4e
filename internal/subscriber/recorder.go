package subscriber

import (
	"sync"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Recorder keeps every message it receives.
// It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []bus.Message
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Subscriber returns the bus subscriber that feeds the recorder.
func (r *Recorder) Subscriber() bus.Subscriber {
	return r.record
}

func (r *Recorder) record(msg bus.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []bus.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]bus.Message, len(r.messages))
	copy(result, r.messages)
	return result
}

// Count returns the number of recorded messages.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

// Topics returns the topic of each recorded message in arrival order.
func (r *Recorder) Topics() []topic.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]topic.Topic, len(r.messages))
	for i, msg := range r.messages {
		result[i] = msg.Topic
	}
	return result
}

// Reset discards all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
