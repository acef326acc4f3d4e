// Package component provides named parts that each own a bus node.
//
// Names are derived from the component kind and a per-kind counter:
// the third "BasicGun" made by a Factory is named "basic-gun-C".
package component

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/mechanistan/internal/bus"
)

// DefaultMass is the mass given to components created with a zero mass.
const DefaultMass = 1.0

// Component is a named part with its own bus node.
type Component struct {
	Kind string
	Name string
	ID   uuid.UUID
	Mass float64
	Bus  *bus.Node
}

// String returns the component name.
func (c *Component) String() string {
	return c.Name
}

// Factory creates components, numbering each kind independently.
// It is safe for concurrent use.
type Factory struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewFactory creates a factory with all counters at zero.
func NewFactory() *Factory {
	return &Factory{counters: make(map[string]int)}
}

// New creates a component of the given kind. A zero mass becomes DefaultMass.
// Kinds that hyphenate the same ("BasicGun", "Basic Gun") share a counter.
func (f *Factory) New(kind string, mass float64) *Component {
	prefix := CapsToHyphens(kind)

	f.mu.Lock()
	n := f.counters[prefix]
	f.counters[prefix] = n + 1
	f.mu.Unlock()

	suffix, _ := Letterer(n)
	name := prefix + "-" + strings.ToUpper(suffix)
	if mass == 0 {
		mass = DefaultMass
	}

	return &Component{
		Kind: kind,
		Name: name,
		ID:   uuid.New(),
		Mass: mass,
		Bus:  bus.New(name),
	}
}

// Observe records a name chosen elsewhere so that New never hands it out.
// Names that are not of the form prefix-SUFFIX, with SUFFIX exactly as New
// would spell it, are ignored. Observe reports whether the name was taken
// into account.
func (f *Factory) Observe(name string) bool {
	i := strings.LastIndex(name, "-")
	if i <= 0 {
		return false
	}
	prefix, suffix := name[:i], name[i+1:]

	n, err := Unletterer(suffix)
	if err != nil {
		return false
	}
	if canonical, _ := Letterer(n); strings.ToUpper(canonical) != suffix {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters[prefix] <= n {
		f.counters[prefix] = n + 1
	}
	return true
}

// TotalMass sums the mass of the given components.
func TotalMass(components ...*Component) float64 {
	total := 0.0
	for _, c := range components {
		total += c.Mass
	}
	return total
}
