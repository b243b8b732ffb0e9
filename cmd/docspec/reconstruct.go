package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

// ErrSentencesFailed indicates at least one sentence could not be reconstructed.
var ErrSentencesFailed = errors.New("sentences failed")

// outputOptions are the flags shared by commands that print results.
type outputOptions struct {
	format string
	output string
	color  string
}

func (opts *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (json, yaml, sexpr, tree, leaves; default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&opts.color, "color", "", "color mode for tree output (auto, always, never; default from config)")
}

func reconstructCmd(state *app) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "reconstruct [file|-]",
		Short: "Reconstruct typed trees for sentence documents",
		Long: `Reconstruct typed trees for every candidate parse of every sentence in the
input. Input is JSON or YAML (by extension), optionally LZ4-framed (.lz4).

Examples:
  docspec reconstruct sentences.json
  docspec reconstruct -f tree sentences.yaml
  docspec reconstruct -f leaves - < sentences.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := stdinPath
			if len(args) == 1 {
				input = args[0]
			}

			startErr := state.start(observability.ModeCLI, cmd.ErrOrStderr())
			if startErr != nil {
				return startErr
			}

			defer state.stop()

			return runReconstruct(cmd.Context(), state, input, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	opts.register(cmd)

	return cmd
}

func runReconstruct(ctx context.Context, state *app, input string, opts outputOptions, stdin io.Reader, writer io.Writer) error {
	docs, _, err := loadDocuments(input, stdin)
	if err != nil {
		return err
	}

	results, stats, err := state.reconstructor().Batch(ctx, docs, sentence.BatchOptions{
		Workers: state.cfg.Batch.Workers,
		Policy:  sentence.PolicySkip,
	})
	if err != nil {
		return err
	}

	err = writeResults(state, results, opts, writer)
	if err != nil {
		return err
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSentencesFailed, stats.Failed, stats.Sentences)
	}

	return nil
}

func writeResults(state *app, results []sentence.Result, opts outputOptions, fallback io.Writer) error {
	formatName := opts.format
	if formatName == "" {
		formatName = state.cfg.Output.Format
	}

	format, err := codec.ParseFormat(formatName)
	if err != nil {
		return err
	}

	colorMode := opts.color
	if colorMode == "" {
		colorMode = state.cfg.Output.Color
	}

	writer, closeOutput, err := openOutput(opts.output, fallback)
	if err != nil {
		return err
	}

	encodeErr := codec.NewEncoder(writer, format, useColor(colorMode, writer)).Encode(results)

	return errors.Join(encodeErr, closeOutput())
}
