package symtree

import (
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
	"github.com/Sumatoshi-tech/docspec/pkg/parsetree"
)

// Option configures a reconstruction.
type Option func(*options)

type options struct {
	catalog  *grammar.Catalog
	maxDepth int
	tagCheck bool
}

// WithCatalog classifies labels with catalog instead of the default catalog.
func WithCatalog(catalog *grammar.Catalog) Option {
	return func(opts *options) {
		if catalog != nil {
			opts.catalog = catalog
		}
	}
}

// WithMaxDepth rejects generic trees deeper than limit. Zero disables the limit.
func WithMaxDepth(limit int) Option {
	return func(opts *options) {
		opts.maxDepth = limit
	}
}

// WithTagCheck requires every tagged token directly under a terminal-category
// branch to carry that category's label as its tag.
func WithTagCheck(enabled bool) Option {
	return func(opts *options) {
		opts.tagCheck = enabled
	}
}

func newOptions(opts []Option) options {
	resolved := options{catalog: grammar.Default()}

	for _, opt := range opts {
		opt(&resolved)
	}

	return resolved
}

type builder struct {
	cursor *lexical.Cursor
	path   []int
	options
}

// Reconstruct builds the typed tree for root, consuming one token from cursor
// per terminal placeholder in depth-first left-to-right order. The result has
// exactly the shape of root. On error no tree is returned and the cursor
// position is unspecified. A nil cursor fails with ErrNilCursor.
func Reconstruct(root *parsetree.Node, cursor *lexical.Cursor, opts ...Option) (*Tree, error) {
	if cursor == nil {
		return nil, ErrNilCursor
	}

	bld := &builder{cursor: cursor, options: newOptions(opts)}

	return bld.build(root, 1)
}

// FromTokens reconstructs root against tokens and additionally requires every
// token to be consumed.
func FromTokens(root *parsetree.Node, tokens []lexical.Token, opts ...Option) (*Tree, error) {
	cursor := lexical.NewCursor(tokens)

	tree, err := Reconstruct(root, cursor, opts...)
	if err != nil {
		return nil, err
	}

	if cursor.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d of %d tokens unused", ErrSupplyNotDrained, cursor.Remaining(), len(tokens))
	}

	return tree, nil
}

func (bld *builder) fail(err error) error {
	return &ReconstructError{Err: err, Path: slices.Clone(bld.path)}
}

func (bld *builder) build(node *parsetree.Node, depth int) (*Tree, error) {
	if node == nil {
		return nil, bld.fail(fmt.Errorf("%w: nil node", parsetree.ErrMalformedNode))
	}

	if bld.maxDepth > 0 && depth > bld.maxDepth {
		return nil, bld.fail(fmt.Errorf("%w: limit %d", ErrTooDeep, bld.maxDepth))
	}

	if node.Terminal {
		if node.Label != "" || len(node.Children) > 0 {
			return nil, bld.fail(fmt.Errorf("%w: terminal placeholder with label %q and %d children",
				parsetree.ErrMalformedNode, node.Label, len(node.Children)))
		}

		tok, err := bld.cursor.Next()
		if err != nil {
			return nil, bld.fail(fmt.Errorf("%w at token %d: %w", ErrSupplyExhausted, bld.cursor.Consumed(), err))
		}

		return Leaf(tok), nil
	}

	sym, err := bld.catalog.ClassifyAny(node.Label)
	if err != nil {
		return nil, bld.fail(err)
	}

	children := make([]*Tree, 0, len(node.Children))

	for idx, child := range node.Children {
		bld.path = append(bld.path, idx)

		built, buildErr := bld.build(child, depth+1)
		if buildErr != nil {
			return nil, buildErr
		}

		if bld.tagCheck && sym.IsTerminal() && built.leaf {
			checkErr := bld.checkTag(sym, built.token)
			if checkErr != nil {
				return nil, checkErr
			}
		}

		bld.path = bld.path[:len(bld.path)-1]
		children = append(children, built)
	}

	return Branch(sym, children...), nil
}

func (bld *builder) checkTag(sym grammar.Symbol, tok lexical.Token) error {
	if tok.Tag == "" {
		return nil
	}

	label, _ := bld.catalog.Label(sym)
	if tok.Tag != label {
		return bld.fail(fmt.Errorf("%w: token %q tagged %q under %s", ErrTagMismatch, tok.Text, tok.Tag, label))
	}

	return nil
}
