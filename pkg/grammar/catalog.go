package grammar

import (
	"fmt"
	"maps"
	"slices"
)

// terminalLabels maps part-of-speech tags and lexical markers to terminal symbols.
//
//nolint:gochecknoglobals // Static grammar table.
var terminalLabels = map[string]Symbol{
	"NN":    NN,
	"NNS":   NNS,
	"NNP":   NNP,
	"NNPS":  NNPS,
	"VB":    VB,
	"VBP":   VBP,
	"VBZ":   VBZ,
	"VBN":   VBN,
	"VBG":   VBG,
	"VBD":   VBD,
	"JJ":    JJ,
	"JJR":   JJR,
	"JJS":   JJS,
	"RB":    RB,
	"PRP":   PRP,
	"DT":    DT,
	"IN":    IN,
	"CC":    CC,
	"MD":    MD,
	"TO":    TO,
	"RET":   RET,
	"CODE":  CODE,
	"LIT":   LIT,
	"IF":    IF,
	"FOR":   FOR,
	"ARITH": ARITH,
	"SHIFT": SHIFT,
	"DOT":   DOT,
	"COMMA": COMMA,
	"EXCL":  EXCL,
	"STR":   STR,
	"CHAR":  CHAR,
}

// nonterminalLabels maps semantic phrase labels to nonterminal symbols.
//
//nolint:gochecknoglobals // Static grammar table.
var nonterminalLabels = map[string]Symbol{
	"S":          S,
	"MNN":        MNN,
	"TJJ":        TJJ,
	"MJJ":        MJJ,
	"MVB":        MVB,
	"IFF":        IFF,
	"EQTO":       EQTO,
	"BITOP":      BITOP,
	"ARITHOP":    ARITHOP,
	"SHIFTOP":    SHIFTOP,
	"OP":         OP,
	"OBJ":        OBJ,
	"REL":        REL,
	"MREL":       MREL,
	"PROP":       PROP,
	"PROP_OF":    PROP_OF,
	"RSEP":       RSEP,
	"RANGE":      RANGE,
	"RANGEMOD":   RANGEMOD,
	"ASSERT":     ASSERT,
	"HASSERT":    HASSERT,
	"QUANT":      QUANT,
	"QUANT_EXPR": QUANT_EXPR,
	"QASSERT":    QASSERT,
	"MRET":       MRET,
	"BOOL_EXPR":  BOOL_EXPR,
	"COND":       COND,
	"RETIF":      RETIF,
	"SIDE":       SIDE,
	"ASSIGN":     ASSIGN,
	"EVENT":      EVENT,
	"OBJV":       OBJV,
}

// Catalog is a two-level label table: terminal labels are consulted before
// nonterminal labels. A Catalog is immutable after construction and safe for
// concurrent use.
type Catalog struct {
	terminals    map[string]Symbol
	nonterminals map[string]Symbol
	labels       map[Symbol]string
}

//nolint:gochecknoglobals // Built once from the static tables.
var defaultCatalog = NewCatalog(terminalLabels, nonterminalLabels)

// Default returns the built-in catalog of the specification grammar.
func Default() *Catalog {
	return defaultCatalog
}

// NewCatalog builds a catalog from label tables. The tables are copied.
// When a symbol is reachable from both tables, Label reports its terminal label.
func NewCatalog(terminals, nonterminals map[string]Symbol) *Catalog {
	catalog := &Catalog{
		terminals:    maps.Clone(terminals),
		nonterminals: maps.Clone(nonterminals),
		labels:       make(map[Symbol]string, len(terminals)+len(nonterminals)),
	}

	if catalog.terminals == nil {
		catalog.terminals = map[string]Symbol{}
	}

	if catalog.nonterminals == nil {
		catalog.nonterminals = map[string]Symbol{}
	}

	for label, sym := range catalog.nonterminals {
		catalog.labels[sym] = label
	}

	for label, sym := range catalog.terminals {
		catalog.labels[sym] = label
	}

	return catalog
}

// ClassifyTerminal resolves a label in the terminal namespace only.
func (catalog *Catalog) ClassifyTerminal(label string) (Symbol, error) {
	if sym, ok := catalog.terminals[label]; ok {
		return sym, nil
	}

	return Invalid, &ClassificationError{Label: label, Namespace: NamespaceTerminal}
}

// ClassifyNonterminal resolves a label where the parser expects a phrase
// category. The parser does not separate the two label namespaces, so terminal
// labels are accepted too and take precedence.
func (catalog *Catalog) ClassifyNonterminal(label string) (Symbol, error) {
	if sym, ok := catalog.lookup(label); ok {
		return sym, nil
	}

	return Invalid, &ClassificationError{Label: label, Namespace: NamespaceNonterminal}
}

// ClassifyAny resolves a label of a generic tree node whose kind is not known
// up front. This is the lookup used during tree reconstruction.
func (catalog *Catalog) ClassifyAny(label string) (Symbol, error) {
	if sym, ok := catalog.lookup(label); ok {
		return sym, nil
	}

	return Invalid, &ClassificationError{Label: label, Namespace: NamespaceAny}
}

// Classify dispatches to the lookup matching namespace. Namespaces other than
// the three declared ones, including the zero value, fail with
// ErrUnknownNamespace.
func (catalog *Catalog) Classify(label string, namespace Namespace) (Symbol, error) {
	switch namespace {
	case NamespaceTerminal:
		return catalog.ClassifyTerminal(label)
	case NamespaceNonterminal:
		return catalog.ClassifyNonterminal(label)
	case NamespaceAny:
		return catalog.ClassifyAny(label)
	default:
		return Invalid, fmt.Errorf("%w: %s for label %q", ErrUnknownNamespace, namespace, label)
	}
}

func (catalog *Catalog) lookup(label string) (Symbol, bool) {
	if sym, ok := catalog.terminals[label]; ok {
		return sym, true
	}

	sym, ok := catalog.nonterminals[label]

	return sym, ok
}

// IsTerminalLabel answers the parser's "is this a terminal category" query.
func (catalog *Catalog) IsTerminalLabel(label string) bool {
	_, ok := catalog.terminals[label]

	return ok
}

// IsNonterminalLabel answers the parser's "is this a valid category label" query
// for nonterminal positions.
func (catalog *Catalog) IsNonterminalLabel(label string) bool {
	_, ok := catalog.lookup(label)

	return ok
}

// Label returns the label the catalog uses for sym.
func (catalog *Catalog) Label(sym Symbol) (string, bool) {
	label, ok := catalog.labels[sym]

	return label, ok
}

// Terminals returns the terminal symbols in enumeration order.
func (catalog *Catalog) Terminals() []Symbol {
	return sortedSymbols(catalog.terminals)
}

// Nonterminals returns the nonterminal-table symbols in enumeration order.
func (catalog *Catalog) Nonterminals() []Symbol {
	return sortedSymbols(catalog.nonterminals)
}

// Collisions lists labels present in both namespaces, sorted. For those labels
// the terminal reading always wins, so a non-empty result means the grammar and
// the catalog disagree about a category.
func (catalog *Catalog) Collisions() []string {
	var shared []string

	for label := range catalog.terminals {
		if _, ok := catalog.nonterminals[label]; ok {
			shared = append(shared, label)
		}
	}

	slices.Sort(shared)

	return shared
}

func sortedSymbols(table map[string]Symbol) []Symbol {
	out := slices.Collect(maps.Values(table))
	slices.Sort(out)

	return slices.Compact(out)
}

// ClassifyTerminal resolves label with the default catalog.
func ClassifyTerminal(label string) (Symbol, error) {
	return defaultCatalog.ClassifyTerminal(label)
}

// ClassifyNonterminal resolves label with the default catalog.
func ClassifyNonterminal(label string) (Symbol, error) {
	return defaultCatalog.ClassifyNonterminal(label)
}

// ClassifyAny resolves label with the default catalog.
func ClassifyAny(label string) (Symbol, error) {
	return defaultCatalog.ClassifyAny(label)
}
