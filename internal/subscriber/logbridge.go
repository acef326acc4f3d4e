package subscriber

import (
	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
)

// Logger is the subset of a leveled logger used by LogBridge.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// LogBridge returns a subscriber that writes messages to logger.
// bus.error goes to Error, bus.info to Info, and everything else to Debug.
func LogBridge(logger Logger) bus.Subscriber {
	return func(msg bus.Message) {
		switch {
		case msg.Topic.HasPrefix(topic.BusError):
			logger.Error("[%s]@%s: %s", msg.Topic, msg.Sender, msg.Payload)
		case msg.Topic.HasPrefix(topic.BusInfo):
			logger.Info("[%s]@%s: %s", msg.Topic, msg.Sender, msg.Payload)
		default:
			logger.Debug("[%s]@%s: %s", msg.Topic, msg.Sender, msg.Payload)
		}
	}
}
