package topology

import (
	"fmt"
	"io"

	"github.com/dshills/mechanistan/internal/bus"
)

// Render writes root and its descendants as an indented tree:
//
//	ship
//	├── hull
//	│   └── gun
//	└── reactor
func Render(w io.Writer, root *bus.Node) error {
	if _, err := fmt.Fprintln(w, root.Name()); err != nil {
		return err
	}
	return renderChildren(w, root, "")
}

func renderChildren(w io.Writer, node *bus.Node, indent string) error {
	children := node.Children()
	for i, child := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		if _, err := fmt.Fprintln(w, indent+branch+child.Name()); err != nil {
			return err
		}
		if err := renderChildren(w, child, indent+next); err != nil {
			return err
		}
	}
	return nil
}
