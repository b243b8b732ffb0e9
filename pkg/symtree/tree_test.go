package symtree_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

func TestAccessorsOnLeaf(t *testing.T) {
	t.Parallel()

	leaf := symtree.Leaf(lexical.Token{Text: "cat", Tag: "NN"})

	got, err := leaf.AsLeaf()
	require.NoError(t, err)
	assert.Equal(t, "cat", got.Text)

	sym, children, err := leaf.AsBranch()
	require.ErrorIs(t, err, symtree.ErrVariantMismatch)
	require.EqualError(t, err, "expected branch, found leaf")
	assert.Equal(t, grammar.Invalid, sym)
	assert.Nil(t, children)
}

func TestAccessorsOnBranch(t *testing.T) {
	t.Parallel()

	branch := symtree.Branch(grammar.NN, symtree.Leaf(lexical.Token{Text: "cat"}))

	sym, children, err := branch.AsBranch()
	require.NoError(t, err)
	assert.Equal(t, grammar.NN, sym)
	assert.Len(t, children, 1)

	got, err := branch.AsLeaf()
	require.ErrorIs(t, err, symtree.ErrVariantMismatch)
	require.EqualError(t, err, "expected leaf, found branch")
	assert.Equal(t, lexical.Token{}, got)

	var variantErr *symtree.VariantError
	require.ErrorAs(t, err, &variantErr)
	assert.Equal(t, symtree.VariantLeaf, variantErr.Expected)
	assert.Equal(t, symtree.VariantBranch, variantErr.Actual)
}

func sampleTree() *symtree.Tree {
	return symtree.Branch(grammar.S,
		symtree.Branch(grammar.OBJ,
			symtree.Branch(grammar.DT, symtree.Leaf(lexical.Token{Text: "the", Tag: "DT"})),
			symtree.Branch(grammar.NN, symtree.Leaf(lexical.Token{Text: "vector", Tag: "NN", Lemma: "vector"})),
		),
		symtree.Branch(grammar.VBZ, symtree.Leaf(lexical.Token{Text: "is", Tag: "VBZ", Lemma: "be"})),
		symtree.Branch(grammar.JJ, symtree.Leaf(lexical.Token{Text: "empty", Tag: "JJ"})),
	)
}

func TestTreeStringQuotesAmbiguousLeaves(t *testing.T) {
	t.Parallel()

	tree := symtree.Branch(grammar.S,
		symtree.Branch(grammar.CODE, symtree.Leaf(lexical.Token{Text: "v.len()"})),
		symtree.Branch(grammar.STR, symtree.Leaf(lexical.Token{Text: "hello world"})),
		symtree.Branch(grammar.NN, symtree.Leaf(lexical.Token{Text: ""})),
		symtree.Branch(grammar.NN, symtree.Leaf(lexical.Token{Text: "cat"})),
	)

	assert.Equal(t, `(S (CODE "v.len()") (STR "hello world") (NN "") (NN cat))`, tree.String())
}

func TestTreeMetrics(t *testing.T) {
	t.Parallel()

	tree := sampleTree()

	assert.Equal(t, 4, tree.Depth())
	assert.Equal(t, 10, tree.Size())
	assert.Equal(t, "(S (OBJ (DT the) (NN vector)) (VBZ is) (JJ empty))", tree.String())

	texts := make([]string, 0, 4)
	for _, leaf := range tree.Leaves() {
		texts = append(texts, leaf.Text)
	}

	assert.Equal(t, []string{"the", "vector", "is", "empty"}, texts)
}

func TestWalkSkipsSubtrees(t *testing.T) {
	t.Parallel()

	var visited []string

	sampleTree().Walk(func(node *symtree.Tree, _ int) bool {
		if node.IsLeaf() {
			visited = append(visited, "leaf")

			return true
		}

		visited = append(visited, node.Symbol().String())

		return node.Symbol() != grammar.OBJ
	})

	assert.Equal(t, []string{"S", "OBJ", "VBZ", "leaf", "JJ", "leaf"}, visited)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, sampleTree().Equal(sampleTree()))

	other := symtree.Branch(grammar.S, symtree.Leaf(lexical.Token{Text: "the"}))
	assert.False(t, sampleTree().Equal(other))
	assert.False(t, symtree.Leaf(lexical.Token{Text: "a"}).Equal(symtree.Leaf(lexical.Token{Text: "b"})))
}

func TestTreeJSONRoundTrip(t *testing.T) {
	t.Parallel()

	tree := sampleTree()

	data, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded symtree.Tree

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, tree.Equal(&decoded))
}

func TestTreeJSONRejectsUnknownSymbol(t *testing.T) {
	t.Parallel()

	var decoded symtree.Tree

	err := json.Unmarshal([]byte(`{"symbol":"NP","children":[{"token":{"text":"x"}}]}`), &decoded)
	require.ErrorIs(t, err, grammar.ErrUnknownLabel)

	err = json.Unmarshal([]byte(`{"children":[]}`), &decoded)
	require.Error(t, err)
}
