// Package grammar defines the closed set of grammar categories that a parsed
// specification sentence can carry, and the catalog that maps the chart
// parser's string labels onto them.
package grammar

import (
	"errors"
	"fmt"
)

// Symbol is a grammar category. Terminal categories are part-of-speech classes
// and lexical markers; nonterminal categories are the semantic phrase classes of
// the specification grammar.
type Symbol uint8

//nolint:revive // ALL_CAPS names mirror the grammar labels one-to-one.
const (
	Invalid Symbol = iota

	// Terminal categories.
	NN    // noun, singular
	NNS   // noun, plural
	NNP   // proper noun, singular
	NNPS  // proper noun, plural
	VB    // verb, base form
	VBP   // verb, non-3rd person present
	VBZ   // verb, 3rd person present
	VBN   // verb, past participle
	VBG   // verb, gerund
	VBD   // verb, past tense
	JJ    // adjective
	JJR   // adjective, comparative
	JJS   // adjective, superlative
	RB    // adverb
	PRP   // pronoun
	DT    // determiner
	IN    // preposition
	CC    // conjunction
	MD    // modal
	TO    // infinitive marker
	RET   // "return"
	CODE  // inline code
	LIT   // literal value
	IF    // "if"
	FOR   // "for"
	ARITH // arithmetic operator word
	SHIFT // shift operator word
	DOT
	COMMA
	EXCL
	STR  // string literal
	CHAR // char literal

	// Nonterminal categories.
	S          // sentence
	MNN        // modified noun
	TJJ        // comparative adjective phrase
	MJJ        // modified adjective
	MVB        // modified verb
	IFF        // if and only if
	EQTO       // equal to
	BITOP      // bitwise operator
	ARITHOP    // arithmetic operator
	SHIFTOP    // shift operator
	OP         // operator
	OBJ        // object reference
	REL        // relation
	MREL       // modified relation
	PROP       // property
	PROP_OF    // property of an object
	RSEP       // range separator
	RANGE      // range
	RANGEMOD   // range modifier
	ASSERT     // assertion
	HASSERT    // hypothetical assertion
	QUANT      // quantifier
	QUANT_EXPR // quantified expression
	QASSERT    // quantified assertion
	MRET       // modified return
	BOOL_EXPR  // boolean expression
	COND       // condition
	RETIF      // return-if
	SIDE       // side effect
	ASSIGN     // assignment
	EVENT      // event
	OBJV       // object-value pair

	symbolCount
)

const (
	firstTerminal    = NN
	lastTerminal     = CHAR
	firstNonterminal = S
	lastNonterminal  = OBJV
)

var errInvalidSymbol = errors.New("invalid grammar symbol")

// IsTerminal reports whether the symbol is a terminal (lexical) category.
func (sym Symbol) IsTerminal() bool {
	return sym >= firstTerminal && sym <= lastTerminal
}

// IsNonterminal reports whether the symbol is a nonterminal (phrase) category.
func (sym Symbol) IsNonterminal() bool {
	return sym >= firstNonterminal && sym <= lastNonterminal
}

// Valid reports whether the symbol is a member of the enumeration.
func (sym Symbol) Valid() bool {
	return sym > Invalid && sym < symbolCount
}

// String returns the grammar label of the symbol.
func (sym Symbol) String() string {
	if name, ok := symbolNames[sym]; ok {
		return name
	}

	return fmt.Sprintf("Symbol(%d)", uint8(sym))
}

// MarshalText encodes the symbol as its grammar label.
func (sym Symbol) MarshalText() ([]byte, error) {
	if !sym.Valid() {
		return nil, fmt.Errorf("%w: %d", errInvalidSymbol, uint8(sym))
	}

	return []byte(sym.String()), nil
}

// UnmarshalText decodes a grammar label using the default catalog.
func (sym *Symbol) UnmarshalText(text []byte) error {
	decoded, err := ClassifyAny(string(text))
	if err != nil {
		return err
	}

	*sym = decoded

	return nil
}

// symbolNames is the reverse of the default label tables.
var symbolNames = func() map[Symbol]string { //nolint:gochecknoglobals // derived lookup table.
	names := make(map[Symbol]string, len(terminalLabels)+len(nonterminalLabels))

	for label, sym := range nonterminalLabels {
		names[sym] = label
	}

	for label, sym := range terminalLabels {
		names[sym] = label
	}

	return names
}()
