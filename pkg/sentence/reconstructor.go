package sentence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/lexical"
	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/parsetree"
	"github.com/Sumatoshi-tech/docspec/pkg/symtree"
)

const (
	opReconstruct = "reconstruct"
	opBatch       = "batch"
)

// Deps holds the observability hooks of a Reconstructor. Nil fields are
// replaced by no-op implementations.
type Deps struct {
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Metrics        *observability.REDMetrics
	Reconstruction *observability.ReconstructionMetrics
}

// Settings tunes reconstruction of each candidate tree.
type Settings struct {
	Catalog        *grammar.Catalog
	MaxDepth       int
	TagCheck       bool
	RequireDrained bool
}

// Reconstructor turns documents into typed trees. It is safe for concurrent use.
type Reconstructor struct {
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *observability.REDMetrics
	counts         *observability.ReconstructionMetrics
	options        []symtree.Option
	requireDrained bool
}

// NewReconstructor creates a Reconstructor.
func NewReconstructor(deps Deps, settings Settings) *Reconstructor {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("docspec")
	}

	return &Reconstructor{
		logger:  logger,
		tracer:  tracer,
		metrics: deps.Metrics,
		counts:  deps.Reconstruction,
		options: []symtree.Option{
			symtree.WithCatalog(settings.Catalog),
			symtree.WithMaxDepth(settings.MaxDepth),
			symtree.WithTagCheck(settings.TagCheck),
		},
		requireDrained: settings.RequireDrained,
	}
}

// Reconstruct rebuilds every candidate tree of doc. Each candidate consumes
// the token sequence from the start with its own cursor. The first failing
// candidate fails the whole document and no trees are returned.
func (rec *Reconstructor) Reconstruct(ctx context.Context, doc *Document) ([]*symtree.Tree, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	started := time.Now()
	ctx = observability.ContextWithSentence(ctx, doc.ID)

	ctx, span := rec.tracer.Start(ctx, "docspec.sentence.reconstruct",
		trace.WithAttributes(
			attribute.String("sentence.id", doc.ID),
			attribute.Int("sentence.tokens", len(doc.Tokens)),
			attribute.Int("sentence.trees", len(doc.Trees)),
		),
	)
	defer span.End()

	trees, err := rec.reconstruct(doc)

	status := observability.StatusOK
	if err != nil {
		status = observability.StatusError

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		reason := FailureReason(err)
		rec.counts.RecordFailure(ctx, reason)
		rec.logger.WarnContext(ctx, "reconstruction failed", "reason", reason, "error", err)
	} else {
		rec.counts.RecordSentence(ctx, len(trees))
		rec.logger.DebugContext(ctx, "sentence reconstructed", "trees", len(trees))
	}

	if rec.metrics != nil {
		rec.metrics.RecordRequest(ctx, opReconstruct, status, time.Since(started))
	}

	return trees, err
}

func (rec *Reconstructor) reconstruct(doc *Document) ([]*symtree.Tree, error) {
	if len(doc.Trees) == 0 {
		return nil, fmt.Errorf("sentence %q: %w", doc.ID, ErrNoTrees)
	}

	trees := make([]*symtree.Tree, 0, len(doc.Trees))

	for idx, root := range doc.Trees {
		tree, err := rec.reconstructOne(root, doc.Tokens)
		if err != nil {
			return nil, &TreeError{ID: doc.ID, Index: idx, Err: err}
		}

		trees = append(trees, tree)
	}

	return trees, nil
}

func (rec *Reconstructor) reconstructOne(root *parsetree.Node, tokens []lexical.Token) (*symtree.Tree, error) {
	if rec.requireDrained {
		return symtree.FromTokens(root, tokens, rec.options...)
	}

	return symtree.Reconstruct(root, lexical.NewCursor(tokens), rec.options...)
}

// FailureReason maps a reconstruction error to a short metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrNilDocument):
		return "nil_document"
	case errors.Is(err, ErrNoTrees):
		return "no_trees"
	case errors.Is(err, symtree.ErrSupplyExhausted), errors.Is(err, lexical.ErrExhausted):
		return "supply_exhausted"
	case errors.Is(err, symtree.ErrSupplyNotDrained):
		return "not_drained"
	case errors.Is(err, symtree.ErrTooDeep):
		return "too_deep"
	case errors.Is(err, symtree.ErrTagMismatch):
		return "tag_mismatch"
	case errors.Is(err, grammar.ErrUnknownLabel):
		return "unknown_label"
	case errors.Is(err, parsetree.ErrMalformedNode):
		return "malformed_tree"
	default:
		return "other"
	}
}
