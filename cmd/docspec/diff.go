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
	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

// Sentinel errors for the diff command.
var (
	ErrSentenceNotFound = errors.New("sentence not found")
	ErrTreeIndex        = errors.New("tree index out of range")
	ErrTreesDiffer      = errors.New("trees differ")
)

type diffOptions struct {
	sentenceID string
	color      string
	treeIndex  int
	exitCode   bool
}

func diffCmd(state *app) *cobra.Command {
	var opts diffOptions

	cmd := &cobra.Command{
		Use:   "diff file1 file2",
		Short: "Compare the typed trees of one sentence in two files",
		Long: `Reconstruct one candidate tree of one sentence from each file and print a
line diff of the indented trees.

Examples:
  docspec diff before.json after.json
  docspec diff --sentence s7 --tree 1 before.yaml after.yaml`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			startErr := state.start(observability.ModeCLI, cmd.ErrOrStderr())
			if startErr != nil {
				return startErr
			}

			defer state.stop()

			if !cmd.Flags().Changed("color") {
				opts.color = state.cfg.Output.Color
			}

			return runDiff(cmd.Context(), state.reconstructor(), args[0], args[1], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.sentenceID, "sentence", "s", "", "sentence id to compare (default: first sentence)")
	cmd.Flags().IntVarP(&opts.treeIndex, "tree", "t", 0, "candidate tree index")
	cmd.Flags().StringVar(&opts.color, "color", "auto", "color mode (auto, always, never)")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "fail when the trees differ")

	return cmd
}

func runDiff(ctx context.Context, rec *sentence.Reconstructor, file1, file2 string, opts diffOptions, writer io.Writer) error {
	before, err := selectTree(ctx, rec, file1, opts)
	if err != nil {
		return err
	}

	after, err := selectTree(ctx, rec, file2, opts)
	if err != nil {
		return err
	}

	treeDiff := codec.DiffTrees(before, after)

	err = treeDiff.Render(writer, useColor(opts.color, writer))
	if err != nil {
		return err
	}

	if opts.exitCode && !treeDiff.Identical() {
		return ErrTreesDiffer
	}

	return nil
}

func selectTree(ctx context.Context, rec *sentence.Reconstructor, file string, opts diffOptions) (*symtree.Tree, error) {
	docs, _, err := loadDocuments(file, nil)
	if err != nil {
		return nil, err
	}

	doc := docs[0]

	if opts.sentenceID != "" {
		doc = nil

		for _, candidate := range docs {
			if candidate.ID == opts.sentenceID {
				doc = candidate

				break
			}
		}

		if doc == nil {
			return nil, fmt.Errorf("%w: %q in %s", ErrSentenceNotFound, opts.sentenceID, file)
		}
	}

	if opts.treeIndex < 0 || opts.treeIndex >= len(doc.Trees) {
		return nil, fmt.Errorf("%w: %d (sentence %q has %d)", ErrTreeIndex, opts.treeIndex, doc.ID, len(doc.Trees))
	}

	single := *doc
	single.Trees = doc.Trees[opts.treeIndex : opts.treeIndex+1]

	trees, err := rec.Reconstruct(ctx, &single)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	return trees[0], nil
}
