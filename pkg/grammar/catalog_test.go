package grammar_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
)

var terminalCases = map[string]grammar.Symbol{
	"NN": grammar.NN, "NNS": grammar.NNS, "NNP": grammar.NNP, "NNPS": grammar.NNPS,
	"VB": grammar.VB, "VBP": grammar.VBP, "VBZ": grammar.VBZ, "VBN": grammar.VBN,
	"VBG": grammar.VBG, "VBD": grammar.VBD, "JJ": grammar.JJ, "JJR": grammar.JJR,
	"JJS": grammar.JJS, "RB": grammar.RB, "PRP": grammar.PRP, "DT": grammar.DT,
	"IN": grammar.IN, "CC": grammar.CC, "MD": grammar.MD, "TO": grammar.TO,
	"RET": grammar.RET, "CODE": grammar.CODE, "LIT": grammar.LIT, "IF": grammar.IF,
	"FOR": grammar.FOR, "ARITH": grammar.ARITH, "SHIFT": grammar.SHIFT, "DOT": grammar.DOT,
	"COMMA": grammar.COMMA, "EXCL": grammar.EXCL, "STR": grammar.STR, "CHAR": grammar.CHAR,
}

var nonterminalCases = map[string]grammar.Symbol{
	"S": grammar.S, "MNN": grammar.MNN, "TJJ": grammar.TJJ, "MJJ": grammar.MJJ,
	"MVB": grammar.MVB, "IFF": grammar.IFF, "EQTO": grammar.EQTO, "BITOP": grammar.BITOP,
	"ARITHOP": grammar.ARITHOP, "SHIFTOP": grammar.SHIFTOP, "OP": grammar.OP, "OBJ": grammar.OBJ,
	"REL": grammar.REL, "MREL": grammar.MREL, "PROP": grammar.PROP, "PROP_OF": grammar.PROP_OF,
	"RSEP": grammar.RSEP, "RANGE": grammar.RANGE, "RANGEMOD": grammar.RANGEMOD,
	"ASSERT": grammar.ASSERT, "HASSERT": grammar.HASSERT, "QUANT": grammar.QUANT,
	"QUANT_EXPR": grammar.QUANT_EXPR, "QASSERT": grammar.QASSERT, "MRET": grammar.MRET,
	"BOOL_EXPR": grammar.BOOL_EXPR, "COND": grammar.COND, "RETIF": grammar.RETIF,
	"SIDE": grammar.SIDE, "ASSIGN": grammar.ASSIGN, "EVENT": grammar.EVENT, "OBJV": grammar.OBJV,
}

func TestClassifyTerminal(t *testing.T) {
	t.Parallel()

	for label, want := range terminalCases {
		got, err := grammar.ClassifyTerminal(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
		assert.True(t, got.IsTerminal(), label)
		assert.Equal(t, label, got.String())
	}

	for label := range nonterminalCases {
		_, err := grammar.ClassifyTerminal(label)
		require.ErrorIs(t, err, grammar.ErrUnknownLabel, label)
	}
}

func TestClassifyNonterminalAcceptsBothNamespaces(t *testing.T) {
	t.Parallel()

	for label, want := range nonterminalCases {
		got, err := grammar.ClassifyNonterminal(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
		assert.True(t, got.IsNonterminal(), label)
		assert.Equal(t, label, got.String())
	}

	for label, want := range terminalCases {
		got, err := grammar.ClassifyNonterminal(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}
}

func TestClassifyAnyRejectsUnknownLabels(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"", "nn", "NP", "VP", "S ", "PROP-OF", "WD_length"} {
		sym, err := grammar.ClassifyAny(label)
		require.Error(t, err, label)
		assert.Equal(t, grammar.Invalid, sym)

		var classErr *grammar.ClassificationError
		require.True(t, errors.As(err, &classErr))
		assert.Equal(t, label, classErr.Label)
		assert.Equal(t, grammar.NamespaceAny, classErr.Namespace)
	}
}

func TestClassifyAnyIsTotalOnCatalog(t *testing.T) {
	t.Parallel()

	catalog := grammar.Default()
	all := append(catalog.Terminals(), catalog.Nonterminals()...)
	assert.Len(t, all, len(terminalCases)+len(nonterminalCases))

	for _, sym := range all {
		label, ok := catalog.Label(sym)
		require.True(t, ok)

		got, err := catalog.ClassifyAny(label)
		require.NoError(t, err)
		assert.Equal(t, sym, got)
	}
}

func TestTerminalPrecedence(t *testing.T) {
	t.Parallel()

	catalog := grammar.NewCatalog(
		map[string]grammar.Symbol{"OP": grammar.ARITH, "NN": grammar.NN},
		map[string]grammar.Symbol{"OP": grammar.OP, "S": grammar.S},
	)

	got, err := catalog.ClassifyAny("OP")
	require.NoError(t, err)
	assert.Equal(t, grammar.ARITH, got)

	got, err = catalog.ClassifyNonterminal("OP")
	require.NoError(t, err)
	assert.Equal(t, grammar.ARITH, got)

	assert.Equal(t, []string{"OP"}, catalog.Collisions())
}

func TestDefaultCatalogHasNoCollisions(t *testing.T) {
	t.Parallel()

	assert.Empty(t, grammar.Default().Collisions())
}

func TestLabelQueries(t *testing.T) {
	t.Parallel()

	catalog := grammar.Default()

	assert.True(t, catalog.IsTerminalLabel("VBZ"))
	assert.False(t, catalog.IsTerminalLabel("QASSERT"))
	assert.True(t, catalog.IsNonterminalLabel("QASSERT"))
	assert.True(t, catalog.IsNonterminalLabel("VBZ"))
	assert.False(t, catalog.IsNonterminalLabel("NP"))
}

func TestSymbolTextRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal([]grammar.Symbol{grammar.S, grammar.QUANT_EXPR, grammar.CHAR})
	require.NoError(t, err)
	assert.JSONEq(t, `["S","QUANT_EXPR","CHAR"]`, string(data))

	var decoded []grammar.Symbol

	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []grammar.Symbol{grammar.S, grammar.QUANT_EXPR, grammar.CHAR}, decoded)

	_, err = grammar.Invalid.MarshalText()
	require.Error(t, err)

	require.ErrorIs(t, json.Unmarshal([]byte(`["NOPE"]`), &decoded), grammar.ErrUnknownLabel)
}

func TestClassifyRejectsUndeclaredNamespace(t *testing.T) {
	t.Parallel()

	for _, namespace := range []grammar.Namespace{0, grammar.NamespaceAny + 1} {
		sym, err := grammar.Default().Classify("NN", namespace)
		require.ErrorIs(t, err, grammar.ErrUnknownNamespace)
		assert.NotErrorIs(t, err, grammar.ErrUnknownLabel)
		assert.Equal(t, grammar.Invalid, sym)
	}
}

func TestClassifyByNamespace(t *testing.T) {
	t.Parallel()

	catalog := grammar.Default()

	tests := []struct {
		label     string
		namespace string
		want      grammar.Symbol
		wantErr   bool
	}{
		{"NN", "terminal", grammar.NN, false},
		{"QASSERT", "terminal", grammar.Invalid, true},
		{"QASSERT", "nonterminal", grammar.QASSERT, false},
		{"NN", "nonterminal", grammar.NN, false},
		{"RANGE", "", grammar.RANGE, false},
		{"NP", "any", grammar.Invalid, true},
	}

	for _, tt := range tests {
		namespace, err := grammar.ParseNamespace(tt.namespace)
		require.NoError(t, err)

		sym, err := catalog.Classify(tt.label, namespace)
		if tt.wantErr {
			require.ErrorIs(t, err, grammar.ErrUnknownLabel, tt.label)

			var classErr *grammar.ClassificationError

			require.ErrorAs(t, err, &classErr)
			assert.Equal(t, namespace, classErr.Namespace)
		} else {
			require.NoError(t, err, tt.label)
		}

		assert.Equal(t, tt.want, sym, tt.label)
	}

	_, err := grammar.ParseNamespace("phrase")
	require.ErrorIs(t, err, grammar.ErrUnknownNamespace)
}
