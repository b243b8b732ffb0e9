package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how reconstruction results are written.
type Format string

// Output formats.
const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSExpr  Format = "sexpr"
	FormatTree   Format = "tree"
	FormatLeaves Format = "leaves"
)

// Formats lists every output format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatSExpr, FormatTree, FormatLeaves}
}

// ParseFormat parses an output format name, ignoring case.
func ParseFormat(name string) (Format, error) {
	lower := Format(strings.ToLower(strings.TrimSpace(name)))

	for _, format := range Formats() {
		if format == lower {
			return format, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

const treeIndent = "  "

// palette holds the colors of the human-readable formats.
type palette struct {
	symbol *color.Color
	token  *color.Color
	detail *color.Color
	failed *color.Color
	added  *color.Color
	remove *color.Color
}

func newPalette(colorize bool) palette {
	pal := palette{
		symbol: color.New(color.FgCyan, color.Bold),
		token:  color.New(color.FgGreen),
		detail: color.New(color.Faint),
		failed: color.New(color.FgRed),
		added:  color.New(color.FgGreen),
		remove: color.New(color.FgRed),
	}

	for _, clr := range []*color.Color{pal.symbol, pal.token, pal.detail, pal.failed, pal.added, pal.remove} {
		if colorize {
			clr.EnableColor()
		} else {
			clr.DisableColor()
		}
	}

	return pal
}

// Encoder writes reconstruction results in one format.
type Encoder struct {
	writer  io.Writer
	palette palette
	format  Format
}

// NewEncoder creates an Encoder. Colorize only affects the tree format.
func NewEncoder(writer io.Writer, format Format, colorize bool) *Encoder {
	return &Encoder{writer: writer, format: format, palette: newPalette(colorize)}
}

// Encode writes results.
func (enc *Encoder) Encode(results []sentence.Result) error {
	var err error

	switch enc.format {
	case FormatJSON:
		jsonEnc := json.NewEncoder(enc.writer)
		jsonEnc.SetIndent("", "  ")
		err = jsonEnc.Encode(results)
	case FormatYAML:
		yamlEnc := yaml.NewEncoder(enc.writer)
		err = yamlEnc.Encode(results)

		if err == nil {
			err = yamlEnc.Close()
		}
	case FormatSExpr:
		err = enc.encodeSExpr(results)
	case FormatTree:
		err = enc.encodeTree(results)
	case FormatLeaves:
		err = enc.encodeLeaves(results)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, enc.format)
	}

	if err != nil {
		return fmt.Errorf("encode %s: %w", enc.format, err)
	}

	return nil
}

func (enc *Encoder) encodeSExpr(results []sentence.Result) error {
	var sb strings.Builder

	for _, res := range results {
		if !res.OK() {
			fmt.Fprintf(&sb, "; %s: error: %v\n", res.ID, res.Err)

			continue
		}

		for idx, tree := range res.Trees {
			fmt.Fprintf(&sb, "; %s #%d\n%s\n", res.ID, idx, tree.String())
		}
	}

	_, err := io.WriteString(enc.writer, sb.String())

	return err
}

func (enc *Encoder) encodeTree(results []sentence.Result) error {
	var sb strings.Builder

	for _, res := range results {
		if !res.OK() {
			sb.WriteString(enc.palette.failed.Sprintf("%s: error: %v", res.ID, res.Err))
			sb.WriteByte('\n')

			continue
		}

		for idx, tree := range res.Trees {
			sb.WriteString(enc.palette.detail.Sprintf("%s #%d", res.ID, idx))
			sb.WriteByte('\n')
			writeIndented(&sb, tree, enc.palette)
		}
	}

	_, err := io.WriteString(enc.writer, sb.String())

	return err
}

// RenderTree renders tree one node per line, children indented below their
// parent. Leaves show token text followed by tag and lemma when present.
func RenderTree(tree *symtree.Tree, colorize bool) string {
	var sb strings.Builder

	writeIndented(&sb, tree, newPalette(colorize))

	return sb.String()
}

func writeIndented(sb *strings.Builder, tree *symtree.Tree, pal palette) {
	tree.Walk(func(node *symtree.Tree, depth int) bool {
		sb.WriteString(strings.Repeat(treeIndent, depth))

		tok, leafErr := node.AsLeaf()
		if leafErr != nil {
			sb.WriteString(pal.symbol.Sprint(node.Symbol().String()))
			sb.WriteByte('\n')

			return true
		}

		sb.WriteString(pal.token.Sprintf("%q", tok.Text))

		if detail := tokenDetail(tok.Tag, tok.Lemma); detail != "" {
			sb.WriteByte(' ')
			sb.WriteString(pal.detail.Sprint(detail))
		}

		sb.WriteByte('\n')

		return true
	})
}

func tokenDetail(tag, lemma string) string {
	parts := make([]string, 0, 2) //nolint:mnd // tag and lemma.

	if tag != "" {
		parts = append(parts, "tag="+tag)
	}

	if lemma != "" {
		parts = append(parts, "lemma="+lemma)
	}

	return strings.Join(parts, " ")
}

// LeafRow is one token together with the category directly above it.
type LeafRow struct {
	Text     string
	Tag      string
	Lemma    string
	Category grammar.Symbol
}

// LeafRows lists the leaves of tree left to right with their parent category.
func LeafRows(tree *symtree.Tree) []LeafRow {
	var rows []LeafRow

	collectLeafRows(tree, grammar.Invalid, &rows)

	return rows
}

func collectLeafRows(node *symtree.Tree, parent grammar.Symbol, rows *[]LeafRow) {
	tok, leafErr := node.AsLeaf()
	if leafErr == nil {
		*rows = append(*rows, LeafRow{Text: tok.Text, Tag: tok.Tag, Lemma: tok.Lemma, Category: parent})

		return
	}

	for _, child := range node.Children() {
		collectLeafRows(child, node.Symbol(), rows)
	}
}

func (enc *Encoder) encodeLeaves(results []sentence.Result) error {
	var sb strings.Builder

	for _, res := range results {
		if !res.OK() {
			fmt.Fprintf(&sb, "%s: error: %v\n\n", res.ID, res.Err)

			continue
		}

		for idx, tree := range res.Trees {
			sb.WriteString(leavesTable(fmt.Sprintf("%s #%d", res.ID, idx), LeafRows(tree)))
			sb.WriteString("\n\n")
		}
	}

	_, err := io.WriteString(enc.writer, sb.String())

	return err
}

func leavesTable(title string, rows []LeafRow) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetTitle(title)
	tbl.AppendHeader(table.Row{"#", "Category", "Token", "Tag", "Lemma"})

	for idx, row := range rows {
		tbl.AppendRow(table.Row{idx, row.Category.String(), row.Text, row.Tag, row.Lemma})
	}

	tbl.AppendFooter(table.Row{"", "", fmt.Sprintf("Total: %d tokens", len(rows))})

	return tbl.Render()
}
