package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

// LineOp classifies one line of a tree diff.
type LineOp int8

// Line operations.
const (
	LineEqual LineOp = iota
	LineRemoved
	LineAdded
)

// DiffLine is one rendered tree line and what happened to it.
type DiffLine struct {
	Text string
	Op   LineOp
}

// TreeDiff is a line diff between two rendered trees.
type TreeDiff struct {
	Lines   []DiffLine
	Added   int
	Removed int
}

// Identical reports whether both trees rendered the same.
func (td *TreeDiff) Identical() bool {
	return td.Added == 0 && td.Removed == 0
}

// DiffTrees renders before and after with RenderTree and diffs them line by line.
func DiffTrees(before, after *symtree.Tree) *TreeDiff {
	dmp := diffmatchpatch.New()

	beforeChars, afterChars, lines := dmp.DiffLinesToChars(RenderTree(before, false), RenderTree(after, false))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	result := &TreeDiff{}

	for _, diff := range diffs {
		op := LineEqual

		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			op = LineRemoved
		case diffmatchpatch.DiffInsert:
			op = LineAdded
		case diffmatchpatch.DiffEqual:
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			result.Lines = append(result.Lines, DiffLine{Text: line, Op: op})

			switch op {
			case LineAdded:
				result.Added++
			case LineRemoved:
				result.Removed++
			case LineEqual:
			}
		}
	}

	return result
}

// Render writes the diff with "-", "+", and " " prefixes.
func (td *TreeDiff) Render(writer io.Writer, colorize bool) error {
	pal := newPalette(colorize)

	var sb strings.Builder

	for _, line := range td.Lines {
		switch line.Op {
		case LineAdded:
			sb.WriteString(pal.added.Sprint("+" + line.Text))
		case LineRemoved:
			sb.WriteString(pal.remove.Sprint("-" + line.Text))
		case LineEqual:
			sb.WriteString(" " + line.Text)
		}

		sb.WriteByte('\n')
	}

	fmt.Fprintf(&sb, "%d added, %d removed\n", td.Added, td.Removed)

	_, err := io.WriteString(writer, sb.String())
	if err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	return nil
}
