package topology

import (
	"fmt"

	"github.com/dshills/mechanistan/internal/bus"
	"github.com/dshills/mechanistan/internal/bus/topic"
	"github.com/dshills/mechanistan/internal/component"
)

// Sink installs subscribers on a freshly built node. It is called once per
// declared bus, before any link is applied, with the bus's declared filters
// (possibly none).
type Sink func(id string, node *bus.Node, filters []topic.Topic)

// Forest holds the nodes built from a document, keyed by id.
type Forest struct {
	order      []string
	nodes      map[string]*bus.Node
	components map[string]*component.Component
}

// Build creates every declared bus, hands it to sink, and applies the links
// in order. Buses with a kind are made by one component.Factory per build;
// explicit names that look like factory names are reserved first so the two
// never collide. A rejected link fails the build.
func Build(doc *Document, sink Sink) (*Forest, error) {
	f := &Forest{
		order:      make([]string, 0, len(doc.Buses)),
		nodes:      make(map[string]*bus.Node, len(doc.Buses)),
		components: make(map[string]*component.Component),
	}

	factory := component.NewFactory()
	for _, spec := range doc.Buses {
		if spec.Kind == "" {
			factory.Observe(spec.BusName())
		}
	}

	for _, spec := range doc.Buses {
		var node *bus.Node
		if spec.Kind != "" {
			c := factory.New(spec.Kind, spec.Mass)
			f.components[spec.ID] = c
			node = c.Bus
		} else {
			node = bus.New(spec.BusName())
		}
		f.order = append(f.order, spec.ID)
		f.nodes[spec.ID] = node

		if sink != nil {
			filters := make([]topic.Topic, len(spec.Subscribe))
			for i, filter := range spec.Subscribe {
				filters[i] = topic.Topic(filter)
			}
			sink(spec.ID, node, filters)
		}
	}

	for i, link := range doc.Links {
		a, b := f.nodes[link[0]], f.nodes[link[1]]
		if a == nil || b == nil {
			return nil, fmt.Errorf("%w: link %d refers to an unknown bus", ErrInvalidDocument, i)
		}
		if err := a.Attach(b); err != nil {
			return nil, &StepError{Index: i, Kind: "link", Err: err}
		}
	}

	return f, nil
}

// Component returns the component behind a bus declared with a kind.
func (f *Forest) Component(id string) (*component.Component, bool) {
	c, ok := f.components[id]
	return c, ok
}

// Mass returns the total mass of the forest's components.
func (f *Forest) Mass() float64 {
	cs := make([]*component.Component, 0, len(f.components))
	for _, id := range f.order {
		if c, ok := f.components[id]; ok {
			cs = append(cs, c)
		}
	}
	return component.TotalMass(cs...)
}

// Node returns the node declared with id.
func (f *Forest) Node(id string) (*bus.Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

// IDs returns the declared ids in document order.
func (f *Forest) IDs() []string {
	result := make([]string, len(f.order))
	copy(result, f.order)
	return result
}

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int {
	return len(f.order)
}

// Roots returns the distinct tree roots, ordered by the first declared node
// of each tree.
func (f *Forest) Roots() []*bus.Node {
	seen := make(map[*bus.Node]bool)
	var roots []*bus.Node
	for _, id := range f.order {
		root := f.nodes[id].Root()
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots
}
