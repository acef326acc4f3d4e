package bus

import (
	"fmt"
	"testing"

	"github.com/dshills/mechanistan/internal/bus/topic"
)

// buildTree creates a tree with the given branching factor and depth and
// returns every node in it.
func buildTree(branching, depth int) []*Node {
	root := New("n")
	all := []*Node{root}
	level := []*Node{root}
	for d := 0; d < depth; d++ {
		var nextLevel []*Node
		for _, parent := range level {
			for i := 0; i < branching; i++ {
				child := New(fmt.Sprintf("c%d", i))
				parent.addChild(child)
				nextLevel = append(nextLevel, child)
				all = append(all, child)
			}
		}
		level = nextLevel
	}
	return all
}

func TestBroadcast_FloodCompleteness(t *testing.T) {
	shapes := []struct {
		branching, depth int
	}{
		{1, 0},
		{1, 5},
		{2, 3},
		{3, 2},
		{4, 1},
	}

	for _, shape := range shapes {
		t.Run(fmt.Sprintf("b%d_d%d", shape.branching, shape.depth), func(t *testing.T) {
			nodes := buildTree(shape.branching, shape.depth)

			counts := make(map[*Node]int)
			for _, n := range nodes {
				n.Subscribe("", func(Message) { counts[n]++ })
			}

			for _, origin := range nodes {
				clear(counts)
				origin.Broadcast("ping", "from {}", origin)

				for _, n := range nodes {
					if counts[n] != 1 {
						t.Fatalf("origin %s: node %s received %d, want 1",
							origin.Path(), n.Path(), counts[n])
					}
				}
			}
		})
	}
}

func TestBroadcast_NoBounceBack(t *testing.T) {
	nodes := chain("a", "b", "c")
	got := record("", nodes...)

	nodes[2].Broadcast("ping", "hello")

	for _, name := range []string{"a", "b", "c"} {
		if len(got[name]) != 1 {
			t.Errorf("%s received %d messages, want 1", name, len(got[name]))
		}
	}
}

func TestBroadcast_VisitOrder(t *testing.T) {
	root := New("root")
	a := New("a")
	b := New("b")
	a1 := New("a1")
	a2 := New("a2")
	root.addChild(a)
	root.addChild(b)
	a.addChild(a1)
	a.addChild(a2)

	var order []string
	for _, n := range []*Node{root, a, b, a1, a2} {
		n.Subscribe("", func(Message) { order = append(order, n.Name()) })
	}

	a1.Broadcast("ping", "")

	expected := []string{"a1", "a", "a2", "root", "b"}
	if fmt.Sprint(order) != fmt.Sprint(expected) {
		t.Errorf("visit order = %v, want %v", order, expected)
	}
}

func TestBroadcast_SenderAndMessage(t *testing.T) {
	nodes := chain("ship", "hull", "gun")
	var got []Message
	nodes[0].Subscribe("damage", func(msg Message) { got = append(got, msg) })

	nodes[2].Broadcast("damage.report", "hit for {} points", 12)

	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1", len(got))
	}
	msg := got[0]
	if msg.Topic != "damage.report" {
		t.Errorf("Topic = %q", msg.Topic)
	}
	if msg.Payload != "hit for 12 points" {
		t.Errorf("Payload = %q", msg.Payload)
	}
	if msg.Sender != "ship/hull/gun" {
		t.Errorf("Sender = %q", msg.Sender)
	}
	if msg.Size != 0 {
		t.Errorf("Size = %d, want 0", msg.Size)
	}
}

func TestBroadcast_PrefixMatching(t *testing.T) {
	n := New("n")
	var hits []topic.Topic
	n.Subscribe("damage", func(msg Message) { hits = append(hits, msg.Topic) })

	for _, tp := range []topic.Topic{"damage", "damage.report", "dam", "armor.damage"} {
		n.Broadcast(tp, "")
	}

	expected := []topic.Topic{"damage", "damage.report"}
	if fmt.Sprint(hits) != fmt.Sprint(expected) {
		t.Errorf("matched topics = %v, want %v", hits, expected)
	}
}

func TestBroadcast_MultipleFilters(t *testing.T) {
	n := New("n")
	calls := make(map[string]int)
	n.Subscribe("", func(Message) { calls["all"]++ })
	n.Subscribe("damage", func(Message) { calls["damage"]++ })
	n.Subscribe("damage.report", func(Message) { calls["report"]++ })
	n.Subscribe("armor", func(Message) { calls["armor"]++ })

	n.Broadcast("damage.report.hull", "")

	expected := map[string]int{"all": 1, "damage": 1, "report": 1}
	if len(calls) != len(expected) {
		t.Errorf("calls = %v, want %v", calls, expected)
	}
	for k, v := range expected {
		if calls[k] != v {
			t.Errorf("calls[%q] = %d, want %d", k, calls[k], v)
		}
	}
}

func TestSubscribe_Overwrite(t *testing.T) {
	n := New("n")
	var first, second int
	n.Subscribe("damage", func(Message) { first++ })
	n.Subscribe("damage", func(Message) { second++ })

	n.Broadcast("damage", "")

	if first != 0 || second != 1 {
		t.Errorf("first=%d second=%d, want 0 and 1", first, second)
	}
	if filters := n.Filters(); len(filters) != 1 {
		t.Errorf("Filters() = %v, want one filter", filters)
	}
}

func TestSubscribe_NilIgnored(t *testing.T) {
	n := New("n")
	n.Subscribe("damage", nil)
	if len(n.Filters()) != 0 {
		t.Error("nil subscriber should not be installed")
	}
}

func TestNode_Filters_Sorted(t *testing.T) {
	n := New("n")
	n.Subscribe("b", func(Message) {})
	n.Subscribe("a", func(Message) {})
	n.Subscribe("", func(Message) {})

	expected := []topic.Topic{"", "a", "b"}
	if fmt.Sprint(n.Filters()) != fmt.Sprint(expected) {
		t.Errorf("Filters() = %v, want %v", n.Filters(), expected)
	}
}

func TestBroadcast_StaysInTree(t *testing.T) {
	a := New("a")
	b := New("b")
	got := record("", a, b)

	a.Broadcast("ping", "")

	if len(got["a"]) != 1 || len(got["b"]) != 0 {
		t.Errorf("a=%d b=%d, want delivery only within a's tree", len(got["a"]), len(got["b"]))
	}
}

func TestBroadcast_NestedFromSubscriber(t *testing.T) {
	nodes := chain("a", "b")
	var echoes int
	nodes[0].Subscribe("ping", func(Message) {
		nodes[0].Broadcast("pong", "")
	})
	nodes[1].Subscribe("pong", func(Message) { echoes++ })

	nodes[1].Broadcast("ping", "")

	if echoes != 1 {
		t.Errorf("echoes = %d, want 1", echoes)
	}
}

func TestBroadcast_SiblingPrefixLooseness(t *testing.T) {
	root := New("root")
	ab := New("ab")
	abc := New("abc")
	root.addChild(ab)
	root.addChild(abc)

	got := record("", root, ab, abc)
	abc.Broadcast("ping", "")

	// "root/ab" is a textual prefix of the sender "root/abc", so the root
	// treats ab as the branch the message came from.
	if len(got["ab"]) != 0 {
		t.Errorf("ab received %d messages, want 0", len(got["ab"]))
	}
	if len(got["root"]) != 1 || len(got["abc"]) != 1 {
		t.Errorf("root=%d abc=%d, want 1 each", len(got["root"]), len(got["abc"]))
	}
}

func TestBroadcast_DeepChain(t *testing.T) {
	const depth = 2000
	nodes := make([]*Node, depth)
	nodes[0] = New("n")
	for i := 1; i < depth; i++ {
		nodes[i] = New("n")
		nodes[i-1].addChild(nodes[i])
	}

	var count int
	nodes[0].Subscribe("", func(Message) { count++ })
	nodes[depth/2].Subscribe("", func(Message) { count++ })

	nodes[0].Broadcast("ping", "")

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
