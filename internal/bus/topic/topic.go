package topic

import (
	"slices"
	"strings"
)

// Topic classifies a message. Example: "damage.report".
type Topic string

// Separator is the character used to separate topic segments.
const Separator = "."

// Reserved topics used by the bus itself to report topology decisions.
const (
	// BusError carries rejected attach and detach requests.
	BusError Topic = "bus.error"

	// BusDebug carries the reasoning behind an accepted attach.
	BusDebug Topic = "bus.debug"

	// BusInfo announces a completed attach.
	BusInfo Topic = "bus.info"
)

// reservedPrefix is the namespace of the topics above.
const reservedPrefix Topic = "bus" + Separator

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// HasPrefix reports whether the topic textually starts with filter.
// The empty filter matches every topic.
func (t Topic) HasPrefix(filter Topic) bool {
	return strings.HasPrefix(string(t), string(filter))
}

// IsReserved reports whether the topic is in the bus's own namespace.
// Only the bus should send these.
func (t Topic) IsReserved() bool {
	return t.HasPrefix(reservedPrefix)
}

// IsValid reports whether the topic can be sent: non-empty, with no empty
// segment. Filters are not topics; the empty filter is fine.
func (t Topic) IsValid() bool {
	return t != "" && !slices.Contains(strings.Split(string(t), Separator), "")
}

// Widest drops every filter that another filter in the list already covers,
// along with duplicates, keeping the first-seen order. A topic matches at
// most one of the returned filters.
func Widest(filters []Topic) []Topic {
	var out []Topic
	for i, f := range filters {
		covered := false
		for j, g := range filters {
			if i == j {
				continue
			}
			// g covers f; on an exact duplicate only the first survives.
			if f.HasPrefix(g) && (f != g || j < i) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, f)
		}
	}
	return out
}
