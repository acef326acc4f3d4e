// Package bus provides the hierarchical message-routing core.
//
// A Node is one addressable endpoint. Nodes start out as singleton trees and
// are joined with Attach and split with Detach, forming a forest. A message
// broadcast from any node floods its whole tree, reaching every node exactly
// once:
//
//	ship := bus.New("ship")
//	gun := bus.New("gun")
//	ship.Attach(gun) // ship becomes gun's parent
//
//	ship.Subscribe("damage", func(msg bus.Message) {
//	    fmt.Println(msg.Sender, msg.Payload)
//	})
//	gun.Broadcast("damage.report", "hull hit for {} points", 12)
//
// # Paths
//
// A node's path is the slash-joined list of names from its root down to
// itself ("ship/gun"). Paths are derived from the live topology on every
// call and never cached.
//
// # Routing
//
// Delivery starts at the sending node and moves outward. A node forwards to
// each child whose path is not a prefix of the sender's path, and to its
// parent only while its own path is a prefix of the sender's path. The
// comparison is a plain string prefix, so a sibling named "ab" is treated as
// lying on the route toward a sender under "abc".
//
// # Topology Events
//
// Attach and Detach report their decisions as messages on the reserved
// topics topic.BusError, topic.BusDebug and topic.BusInfo, broadcast through
// the tree being changed. Rejections are emitted before any mutation. The
// final "is now a child of" announcement is emitted afterwards from the new
// child. Both methods also return an error describing a rejection.
//
// # Concurrency
//
// Nodes are not safe for concurrent use. Broadcast runs every matching
// subscriber synchronously before returning. Hosts that share a tree between
// goroutines must serialize Attach, Detach, Subscribe and Broadcast on it.
package bus
