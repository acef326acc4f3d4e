package topology

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/mechanistan/internal/bus/topic"
	"github.com/dshills/mechanistan/internal/component"
)

// ErrInvalidDocument is returned for documents that fail validation.
var ErrInvalidDocument = errors.New("invalid topology document")

// Document is a parsed topology file.
type Document struct {
	Buses []BusSpec  `yaml:"buses"`
	Links [][]string `yaml:"links"`
	Steps []Step     `yaml:"steps"`
}

// BusSpec declares one bus.
type BusSpec struct {
	// ID identifies the bus within the document.
	ID string `yaml:"id"`

	// Name is the bus name; defaults to ID.
	Name string `yaml:"name,omitempty"`

	// Kind makes the bus a component: it is named by a component.Factory
	// ("BasicGun" gives basic-gun-A, basic-gun-B, ...). Kind and Name are
	// exclusive.
	Kind string `yaml:"kind,omitempty"`

	// Mass is the component mass; zero means component.DefaultMass.
	// Only used with Kind.
	Mass float64 `yaml:"mass,omitempty"`

	// Subscribe lists filters handed to the sink when the forest is built.
	Subscribe []string `yaml:"subscribe,omitempty"`
}

// BusName returns the name a bus without a Kind is created with.
func (s BusSpec) BusName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	Attach    []string       `yaml:"attach,omitempty"`
	Detach    []string       `yaml:"detach,omitempty"`
	Broadcast *BroadcastStep `yaml:"broadcast,omitempty"`
}

// Kind returns "attach", "detach", "broadcast", or "" for an empty step.
func (s Step) Kind() string {
	switch {
	case s.Attach != nil:
		return "attach"
	case s.Detach != nil:
		return "detach"
	case s.Broadcast != nil:
		return "broadcast"
	default:
		return ""
	}
}

// BroadcastStep sends one message.
type BroadcastStep struct {
	From   string         `yaml:"from"`
	Topic  string         `yaml:"topic"`
	Text   string         `yaml:"text"`
	Args   []any          `yaml:"args,omitempty"`
	Kwargs map[string]any `yaml:"kwargs,omitempty"`
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks ids, link shapes and step references.
func (d *Document) Validate() error {
	ids := make(map[string]bool, len(d.Buses))
	for i, b := range d.Buses {
		if b.ID == "" {
			return fmt.Errorf("%w: bus %d has no id", ErrInvalidDocument, i)
		}
		if ids[b.ID] {
			return fmt.Errorf("%w: duplicate bus id %q", ErrInvalidDocument, b.ID)
		}
		ids[b.ID] = true

		if b.Kind != "" {
			if b.Name != "" {
				return fmt.Errorf("%w: bus %q sets both name and kind", ErrInvalidDocument, b.ID)
			}
			if component.CapsToHyphens(b.Kind) == "" {
				return fmt.Errorf("%w: bus %q kind %q has no capitalized words", ErrInvalidDocument, b.ID, b.Kind)
			}
		}
		if b.Mass < 0 {
			return fmt.Errorf("%w: bus %q has negative mass", ErrInvalidDocument, b.ID)
		}
	}

	checkPair := func(where string, pair []string) error {
		if len(pair) != 2 {
			return fmt.Errorf("%w: %s needs exactly two ids, got %d", ErrInvalidDocument, where, len(pair))
		}
		for _, id := range pair {
			if !ids[id] {
				return fmt.Errorf("%w: %s refers to unknown bus %q", ErrInvalidDocument, where, id)
			}
		}
		return nil
	}

	for i, link := range d.Links {
		if err := checkPair(fmt.Sprintf("link %d", i), link); err != nil {
			return err
		}
	}

	for i, step := range d.Steps {
		where := fmt.Sprintf("step %d", i)
		set := 0
		if step.Attach != nil {
			set++
		}
		if step.Detach != nil {
			set++
		}
		if step.Broadcast != nil {
			set++
		}
		if set != 1 {
			return fmt.Errorf("%w: %s must have exactly one action", ErrInvalidDocument, where)
		}

		switch step.Kind() {
		case "attach":
			if err := checkPair(where, step.Attach); err != nil {
				return err
			}
		case "detach":
			if err := checkPair(where, step.Detach); err != nil {
				return err
			}
		case "broadcast":
			if !ids[step.Broadcast.From] {
				return fmt.Errorf("%w: %s broadcasts from unknown bus %q", ErrInvalidDocument, where, step.Broadcast.From)
			}
			if !topic.Topic(step.Broadcast.Topic).IsValid() {
				return fmt.Errorf("%w: %s has invalid topic %q", ErrInvalidDocument, where, step.Broadcast.Topic)
			}
		}
	}

	return nil
}
