// Package parsetree models the chart parser's output: a weakly typed tree of
// string-labelled branches over terminal placeholders that carry no lexical
// content of their own.
package parsetree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedNode indicates a node that is neither a clean terminal
// placeholder nor a labelled branch.
var ErrMalformedNode = errors.New("malformed parse node")

// Node is a generic parse tree node.
//
// A terminal placeholder has Terminal set and no label or children; it only
// records that a leaf occurred at this position. A branch has a Label and
// ordered Children.
type Node struct {
	Label    string  `json:"label,omitempty"    yaml:"label,omitempty"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
	Terminal bool    `json:"terminal,omitempty" yaml:"terminal,omitempty"`
}

// Terminal returns a terminal placeholder.
func Terminal() *Node {
	return &Node{Terminal: true}
}

// Branch returns a labelled branch over children.
func Branch(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// IsTerminal reports whether the node is a terminal placeholder.
func (node *Node) IsTerminal() bool {
	return node.Terminal
}

// TerminalCount returns the number of terminal placeholders under node,
// which is the number of tokens a reconstruction will consume.
func (node *Node) TerminalCount() int {
	if node == nil {
		return 0
	}

	if node.Terminal {
		return 1
	}

	count := 0

	for _, child := range node.Children {
		count += child.TerminalCount()
	}

	return count
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (node *Node) Depth() int {
	if node == nil {
		return 0
	}

	deepest := 0

	for _, child := range node.Children {
		deepest = max(deepest, child.Depth())
	}

	return deepest + 1
}

// Validate checks the structural contract of every node in the tree.
func (node *Node) Validate() error {
	return node.validate("root")
}

func (node *Node) validate(path string) error {
	switch {
	case node == nil:
		return fmt.Errorf("%w: nil node at %s", ErrMalformedNode, path)
	case node.Terminal && node.Label != "":
		return fmt.Errorf("%w: terminal with label %q at %s", ErrMalformedNode, node.Label, path)
	case node.Terminal && len(node.Children) > 0:
		return fmt.Errorf("%w: terminal with children at %s", ErrMalformedNode, path)
	case !node.Terminal && node.Label == "":
		return fmt.Errorf("%w: unlabelled branch at %s", ErrMalformedNode, path)
	}

	for idx, child := range node.Children {
		err := child.validate(fmt.Sprintf("%s/%d", path, idx))
		if err != nil {
			return err
		}
	}

	return nil
}

// String renders the tree as a bracketed expression, with "_" for terminals.
func (node *Node) String() string {
	var sb strings.Builder

	node.writeTo(&sb)

	return sb.String()
}

func (node *Node) writeTo(sb *strings.Builder) {
	switch {
	case node == nil:
		sb.WriteString("<nil>")
	case node.Terminal:
		sb.WriteByte('_')
	default:
		sb.WriteByte('(')
		sb.WriteString(node.Label)

		for _, child := range node.Children {
			sb.WriteByte(' ')
			child.writeTo(sb)
		}

		sb.WriteByte(')')
	}
}
