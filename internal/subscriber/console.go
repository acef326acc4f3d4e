package subscriber

import (
	"fmt"
	"io"
	"sync"

	"github.com/dshills/mechanistan/internal/bus"
)

// Console returns a subscriber that prints each message to w as
//
//	[topic]@sender:
//		payload
func Console(w io.Writer) bus.Subscriber {
	var mu sync.Mutex
	return func(msg bus.Message) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(w, "[%s]@%s:\n\t%s\n", msg.Topic, msg.Sender, msg.Payload)
	}
}
