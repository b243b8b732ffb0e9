package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

const rateDigits = 1

func batchCmd(state *app) *cobra.Command {
	var (
		opts    outputOptions
		workers int
		policy  string
	)

	cmd := &cobra.Command{
		Use:   "batch file...",
		Short: "Reconstruct many sentence files in parallel and summarize",
		Long: `Reconstruct every document of every input file in parallel and print a
summary. Results are written only when --output is given.

Examples:
  docspec batch corpus/*.json.lz4
  docspec batch -w 8 --policy abort -o results.json corpus/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			startErr := state.start(observability.ModeCLI, cmd.ErrOrStderr())
			if startErr != nil {
				return startErr
			}

			defer state.stop()

			if !cmd.Flags().Changed("workers") {
				workers = state.cfg.Batch.Workers
			}

			if !cmd.Flags().Changed("policy") {
				policy = state.cfg.Batch.Policy
			}

			return runBatch(cmd.Context(), state, args, workers, policy, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of parallel workers (default: number of CPUs)")
	cmd.Flags().StringVar(&policy, "policy", "skip", "failure policy (skip, abort)")

	return cmd
}

func runBatch(
	ctx context.Context,
	state *app,
	files []string,
	workers int,
	policyName string,
	opts outputOptions,
	stdin io.Reader,
	writer io.Writer,
) error {
	policy, err := sentence.ParsePolicy(policyName)
	if err != nil {
		return err
	}

	var (
		docs       []*sentence.Document
		inputBytes int
	)

	for _, file := range files {
		fileDocs, size, loadErr := loadDocuments(file, stdin)
		if loadErr != nil {
			return loadErr
		}

		docs = append(docs, fileDocs...)
		inputBytes += size
	}

	state.logger().DebugContext(ctx, "batch loaded", "files", len(files), "sentences", len(docs))

	results, stats, batchErr := state.reconstructor().Batch(ctx, docs, sentence.BatchOptions{Workers: workers, Policy: policy})

	if opts.output != "" {
		writeErr := writeResults(state, results, opts, writer)
		if writeErr != nil {
			return writeErr
		}
	}

	printSummary(writer, stats, inputBytes)

	return batchErr
}

func printSummary(writer io.Writer, stats sentence.Stats, inputBytes int) {
	rate := 0.0
	if stats.Elapsed > 0 {
		rate = float64(stats.Sentences-stats.NotStarted) / stats.Elapsed.Seconds()
	}

	fmt.Fprintf(writer, "Sentences: %s (%s ok, %s failed, %s not started)\n",
		humanize.Comma(int64(stats.Sentences)), humanize.Comma(int64(stats.Succeeded)),
		humanize.Comma(int64(stats.Failed)), humanize.Comma(int64(stats.NotStarted)))
	fmt.Fprintf(writer, "Trees:     %s\n", humanize.Comma(int64(stats.Trees)))
	fmt.Fprintf(writer, "Input:     %s\n", humanize.Bytes(uint64(inputBytes))) //nolint:gosec // byte counts are non-negative.
	fmt.Fprintf(writer, "Elapsed:   %s (%s)\n",
		stats.Elapsed.Round(time.Microsecond), humanize.SIWithDigits(rate, rateDigits, "sentences/s"))
}
