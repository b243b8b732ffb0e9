package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
)

// Sentinel errors for the catalog commands.
var (
	ErrCatalogCollision = errors.New("labels present in both namespaces")
	ErrUnclassified     = errors.New("labels could not be classified")
)

const (
	kindTerminal    = "terminal"
	kindNonterminal = "nonterminal"
	formatJSON      = "json"
)

// symbolRow is one catalog entry as printed by the symbols command.
type symbolRow struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
	ID    uint8  `json:"id"`
}

func symbolsCmd() *cobra.Command {
	var (
		terminalOnly    bool
		nonterminalOnly bool
		check           bool
		format          string
	)

	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the grammar symbol catalog",
		Long: `List every grammar category known to the catalog.

Examples:
  docspec symbols
  docspec symbols --nonterminal -f json
  docspec symbols --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if check {
				return runSymbolsCheck(grammar.Default(), cmd.OutOrStdout())
			}

			return runSymbols(grammar.Default(), terminalOnly, nonterminalOnly, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&terminalOnly, "terminal", false, "list terminal categories only")
	cmd.Flags().BoolVar(&nonterminalOnly, "nonterminal", false, "list nonterminal categories only")
	cmd.Flags().BoolVar(&check, "check", false, "fail if a label is present in both namespaces")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table, json)")
	cmd.MarkFlagsMutuallyExclusive("terminal", "nonterminal")

	return cmd
}

func catalogRows(catalog *grammar.Catalog, terminalOnly, nonterminalOnly bool) []symbolRow {
	var rows []symbolRow

	if !nonterminalOnly {
		for _, sym := range catalog.Terminals() {
			label, _ := catalog.Label(sym)
			rows = append(rows, symbolRow{Label: label, Kind: kindTerminal, ID: uint8(sym)})
		}
	}

	if !terminalOnly {
		for _, sym := range catalog.Nonterminals() {
			if sym.IsTerminal() {
				continue
			}

			label, _ := catalog.Label(sym)
			rows = append(rows, symbolRow{Label: label, Kind: kindNonterminal, ID: uint8(sym)})
		}
	}

	return rows
}

func runSymbols(catalog *grammar.Catalog, terminalOnly, nonterminalOnly bool, format string, writer io.Writer) error {
	rows := catalogRows(catalog, terminalOnly, nonterminalOnly)

	if strings.EqualFold(format, formatJSON) {
		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")

		return enc.Encode(rows)
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"ID", "Label", "Kind"})

	for _, row := range rows {
		tbl.AppendRow(table.Row{row.ID, row.Label, row.Kind})
	}

	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d", len(rows))})

	_, err := fmt.Fprintln(writer, tbl.Render())

	return err
}

func runSymbolsCheck(catalog *grammar.Catalog, writer io.Writer) error {
	collisions := catalog.Collisions()
	if len(collisions) > 0 {
		return fmt.Errorf("%w: %s", ErrCatalogCollision, strings.Join(collisions, ", "))
	}

	_, err := fmt.Fprintf(writer, "catalog ok: %d terminal, %d nonterminal labels, no collisions\n",
		len(catalog.Terminals()), len(catalog.Nonterminals()))

	return err
}

func classifyCmd() *cobra.Command {
	var namespaceName string

	cmd := &cobra.Command{
		Use:   "classify label...",
		Short: "Classify grammar labels",
		Long: `Resolve grammar labels to catalog categories. Terminal labels take
precedence when a label could be read either way.

Examples:
  docspec classify NN QASSERT
  docspec classify --namespace terminal VBZ`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(grammar.Default(), args, namespaceName, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&namespaceName, "namespace", "n", "any", "namespace (terminal, nonterminal, any)")

	return cmd
}

func runClassify(catalog *grammar.Catalog, labels []string, namespaceName string, writer io.Writer) error {
	namespace, err := grammar.ParseNamespace(namespaceName)
	if err != nil {
		return err
	}

	var unknown []string

	for _, label := range labels {
		sym, classifyErr := catalog.Classify(label, namespace)
		if classifyErr != nil {
			unknown = append(unknown, label)

			fmt.Fprintf(writer, "%s\tunknown\n", label)

			continue
		}

		kind := kindNonterminal
		if sym.IsTerminal() {
			kind = kindTerminal
		}

		fmt.Fprintf(writer, "%s\t%s\t%s\n", label, sym, kind)
	}

	if len(unknown) > 0 {
		return fmt.Errorf("%w in namespace %s: %s", ErrUnclassified, namespace, strings.Join(unknown, ", "))
	}

	return nil
}
