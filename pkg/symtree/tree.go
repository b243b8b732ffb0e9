// Package symtree provides the typed tree produced from a generic parse tree:
// branches carry grammar symbols and leaves carry the tokenizer's original
// tokens.
package symtree

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
)

// Variant distinguishes leaves from branches.
type Variant uint8

// Tree variants.
const (
	VariantLeaf Variant = iota + 1
	VariantBranch
)

func (variant Variant) String() string {
	switch variant {
	case VariantLeaf:
		return "leaf"
	case VariantBranch:
		return "branch"
	default:
		return "unknown"
	}
}

// Tree is either a leaf owning one token or a branch owning a symbol and its
// ordered children. Children are owned exclusively by their parent.
type Tree struct {
	token    lexical.Token
	children []*Tree
	symbol   grammar.Symbol
	leaf     bool
}

// Leaf returns a leaf holding tok.
func Leaf(tok lexical.Token) *Tree {
	return &Tree{token: tok, leaf: true}
}

// Branch returns a branch labelled sym over children.
func Branch(sym grammar.Symbol, children ...*Tree) *Tree {
	return &Tree{symbol: sym, children: children}
}

// Variant reports which variant the tree is.
func (tree *Tree) Variant() Variant {
	if tree.leaf {
		return VariantLeaf
	}

	return VariantBranch
}

// IsLeaf reports whether the tree is a leaf.
func (tree *Tree) IsLeaf() bool {
	return tree.leaf
}

// AsLeaf returns the token of a leaf. It fails on a branch.
func (tree *Tree) AsLeaf() (lexical.Token, error) {
	if !tree.leaf {
		return lexical.Token{}, &VariantError{Expected: VariantLeaf, Actual: VariantBranch}
	}

	return tree.token, nil
}

// AsBranch returns the symbol and children of a branch. It fails on a leaf.
// The returned slice must not be modified.
func (tree *Tree) AsBranch() (grammar.Symbol, []*Tree, error) {
	if tree.leaf {
		return grammar.Invalid, nil, &VariantError{Expected: VariantBranch, Actual: VariantLeaf}
	}

	return tree.symbol, tree.children, nil
}

// Symbol returns the branch symbol, or grammar.Invalid for a leaf.
func (tree *Tree) Symbol() grammar.Symbol {
	return tree.symbol
}

// Children returns the branch children; nil for a leaf.
func (tree *Tree) Children() []*Tree {
	return tree.children
}

type walkFrame struct {
	tree  *Tree
	depth int
}

// Walk visits the tree in depth-first pre-order, left to right. Returning
// false from fn skips the subtree below the visited node.
func (tree *Tree) Walk(fn func(node *Tree, depth int) bool) {
	stack := []walkFrame{{tree: tree, depth: 0}}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(frame.tree, frame.depth) {
			continue
		}

		for idx := len(frame.tree.children) - 1; idx >= 0; idx-- {
			stack = append(stack, walkFrame{tree: frame.tree.children[idx], depth: frame.depth + 1})
		}
	}
}

// Leaves returns the leaf tokens in depth-first left-to-right order. For a
// reconstructed tree this equals the token supply it was built from.
func (tree *Tree) Leaves() []lexical.Token {
	var out []lexical.Token

	tree.Walk(func(node *Tree, _ int) bool {
		if node.leaf {
			out = append(out, node.token)
		}

		return true
	})

	return out
}

// Depth returns the number of nodes on the longest root-to-leaf path.
func (tree *Tree) Depth() int {
	deepest := 0

	tree.Walk(func(_ *Tree, depth int) bool {
		deepest = max(deepest, depth+1)

		return true
	})

	return deepest
}

// Size returns the total number of nodes.
func (tree *Tree) Size() int {
	count := 0

	tree.Walk(func(_ *Tree, _ int) bool {
		count++

		return true
	})

	return count
}

// Equal reports whether two trees have the same shape, symbols, and tokens.
func (tree *Tree) Equal(other *Tree) bool {
	if tree == nil || other == nil {
		return tree == other
	}

	if tree.leaf != other.leaf {
		return false
	}

	if tree.leaf {
		return tree.token == other.token
	}

	return tree.symbol == other.symbol && slices.EqualFunc(tree.children, other.children, (*Tree).Equal)
}

// String renders the tree as a bracketed expression using token text for
// leaves, e.g. "(S (NN cat) (VBZ runs))". Leaf text that is empty or holds
// whitespace, parentheses or quotes is written as a Go quoted string.
func (tree *Tree) String() string {
	var sb strings.Builder

	tree.writeTo(&sb)

	return sb.String()
}

func (tree *Tree) writeTo(sb *strings.Builder) {
	if tree.leaf {
		sb.WriteString(leafText(tree.token.Text))

		return
	}

	sb.WriteByte('(')
	sb.WriteString(tree.symbol.String())

	for _, child := range tree.children {
		sb.WriteByte(' ')
		child.writeTo(sb)
	}

	sb.WriteByte(')')
}

func leafText(text string) string {
	if text == "" || strings.ContainsFunc(text, needsQuote) {
		return strconv.Quote(text)
	}

	return text
}

func needsQuote(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`()"\`, r)
}
