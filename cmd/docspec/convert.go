package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
)

func convertCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "convert <input|-> <output|->",
		Short: "Re-encode sentence documents between JSON, YAML, and LZ4",
		Long: `Read sentence documents and write them in the syntax implied by the output
name: .json or .yaml, with a trailing .lz4 for an LZ4 frame. "-" writes JSON
to stdout.

Examples:
  docspec convert sentences.yaml sentences.json.lz4
  docspec convert --check sentences.json.lz4 -`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0], args[1], check, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "reject documents whose parse trees are malformed")

	return cmd
}

func runConvert(input, output string, check bool, stdin io.Reader, stdout, report io.Writer) error {
	docs, size, err := loadDocuments(input, stdin)
	if err != nil {
		return err
	}

	if check {
		var problems []error

		for _, doc := range docs {
			validateErr := doc.Validate()
			if validateErr != nil {
				problems = append(problems, fmt.Errorf("sentence %q: %w", doc.ID, validateErr))
			}
		}

		if len(problems) > 0 {
			return fmt.Errorf("%w: %w", ErrValidationFailed, errors.Join(problems...))
		}
	}

	writer, closeOutput, err := openOutput(output, stdout)
	if err != nil {
		return err
	}

	writeErr := codec.WriteDocuments(writer, docs, output)
	closeErr := closeOutput()

	if writeErr != nil {
		return writeErr
	}

	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	if output == stdinPath {
		return nil
	}

	_, err = fmt.Fprintf(report, "converted %d sentences (%s read) to %s\n",
		len(docs), humanize.Bytes(uint64(size)), output) //nolint:gosec // size is a non-negative byte count.

	return err
}
