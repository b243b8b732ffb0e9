package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/parsetree"
	"github.com/Sumatoshi-tech/docspec/pkg/schema"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

// ErrValidationFailed indicates the input has schema or catalog violations.
var ErrValidationFailed = errors.New("validation failed")

func validateCmd() *cobra.Command {
	var colorMode string

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate sentence documents against the schema and the catalog",
		Long: `Validate sentence documents against the embedded JSON schema, then check
that every tree label is known to the grammar catalog.

Examples:
  docspec validate sentences.json
  docspec validate - < sentences.json
  docspec validate corpus.yaml.lz4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], colorMode, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&colorMode, "color", "auto", "color mode (auto, always, never)")

	return cmd
}

type validationReport struct {
	ok     *color.Color
	failed *color.Color
	hint   *color.Color
}

func newValidationReport(colorize bool) validationReport {
	report := validationReport{
		ok:     color.New(color.FgGreen),
		failed: color.New(color.FgRed),
		hint:   color.New(color.FgYellow),
	}

	for _, clr := range []*color.Color{report.ok, report.failed, report.hint} {
		if colorize {
			clr.EnableColor()
		} else {
			clr.DisableColor()
		}
	}

	return report
}

func runValidate(inputPath, colorMode string, stdin io.Reader, writer io.Writer) error {
	report := newValidationReport(useColor(colorMode, writer))

	data, name, err := readInput(inputPath, stdin)
	if err != nil {
		return err
	}

	raw, syntax, err := codec.ReadInput(bytes.NewReader(data), name)
	if err != nil {
		return err
	}

	jsonData, err := codec.ToJSON(raw, syntax)
	if err != nil {
		return err
	}

	validateErr := schema.Validate(jsonData)

	var verr *schema.ValidationError

	switch {
	case errors.As(validateErr, &verr):
		report.failed.Fprintf(writer, "Schema validation failed (%s)\n", name)

		for _, fieldErr := range verr.Errors {
			report.failed.Fprintf(writer, "  - %s: %s\n", fieldErr.Field, fieldErr.Description)
		}

		return fmt.Errorf("%w: %d schema violations", ErrValidationFailed, len(verr.Errors))
	case validateErr != nil:
		return validateErr
	}

	docs, err := codec.DecodeDocuments(jsonData, codec.SyntaxJSON)
	if err != nil {
		return err
	}

	problems := catalogProblems(grammar.Default(), docs)
	if len(problems) > 0 {
		report.failed.Fprintf(writer, "Catalog check failed (%s)\n", name)

		for _, problem := range problems {
			report.failed.Fprintf(writer, "  - %s\n", problem)
		}

		report.hint.Fprintf(writer, "\nEvery tree label must be a catalog category; see `docspec symbols`.\n")

		return fmt.Errorf("%w: %d unknown labels", ErrValidationFailed, len(problems))
	}

	trees := 0
	for _, doc := range docs {
		trees += len(doc.Trees)
	}

	report.ok.Fprintf(writer, "Documents are valid (%s): %d sentences, %d trees\n", name, len(docs), trees)

	return nil
}

// catalogProblems lists every tree label the catalog cannot classify.
func catalogProblems(catalog *grammar.Catalog, docs []*sentence.Document) []string {
	var problems []string

	for _, doc := range docs {
		for idx, tree := range doc.Trees {
			walkLabels(tree, fmt.Sprintf("%s/tree%d", doc.ID, idx), func(label, path string) {
				_, classifyErr := catalog.ClassifyAny(label)
				if classifyErr != nil {
					problems = append(problems, fmt.Sprintf("%s: %v", path, classifyErr))
				}
			})
		}
	}

	return problems
}

func walkLabels(node *parsetree.Node, path string, visit func(label, path string)) {
	if node == nil || node.IsTerminal() {
		return
	}

	visit(node.Label, path)

	for idx, child := range node.Children {
		walkLabels(child, fmt.Sprintf("%s/%d", path, idx), visit)
	}
}
