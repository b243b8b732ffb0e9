package symtree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
)

var errMissingSymbol = errors.New("branch without symbol")

// wireTree is the serialized form: leaves carry "token", branches carry
// "symbol" and "children".
type wireTree struct {
	Token    *lexical.Token `json:"token,omitempty"    yaml:"token,omitempty"`
	Symbol   string         `json:"symbol,omitempty"   yaml:"symbol,omitempty"`
	Children []*wireTree    `json:"children,omitempty" yaml:"children,omitempty"`
}

func (tree *Tree) toWire() *wireTree {
	if tree.leaf {
		tok := tree.token

		return &wireTree{Token: &tok}
	}

	out := &wireTree{Symbol: tree.symbol.String(), Children: make([]*wireTree, 0, len(tree.children))}

	for _, child := range tree.children {
		out.Children = append(out.Children, child.toWire())
	}

	return out
}

func (wire *wireTree) toTree() (*Tree, error) {
	if wire.Token != nil {
		return Leaf(*wire.Token), nil
	}

	if wire.Symbol == "" {
		return nil, errMissingSymbol
	}

	sym, err := grammar.ClassifyAny(wire.Symbol)
	if err != nil {
		return nil, err
	}

	children := make([]*Tree, 0, len(wire.Children))

	for idx, child := range wire.Children {
		if child == nil {
			return nil, fmt.Errorf("child %d of %s: %w", idx, wire.Symbol, errMissingSymbol)
		}

		built, buildErr := child.toTree()
		if buildErr != nil {
			return nil, buildErr
		}

		children = append(children, built)
	}

	return Branch(sym, children...), nil
}

// MarshalJSON encodes the tree.
func (tree *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(tree.toWire())
}

// UnmarshalJSON decodes a tree, classifying symbols with the default catalog.
func (tree *Tree) UnmarshalJSON(data []byte) error {
	var wire wireTree

	err := json.Unmarshal(data, &wire)
	if err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}

	decoded, err := wire.toTree()
	if err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}

	*tree = *decoded

	return nil
}

// MarshalYAML encodes the tree in the same shape as its JSON form.
func (tree *Tree) MarshalYAML() (any, error) {
	return tree.toWire(), nil
}
