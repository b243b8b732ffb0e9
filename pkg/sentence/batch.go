package sentence

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/docspec/pkg/observability"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized names.
var ErrUnknownPolicy = errors.New("unknown failure policy")

// Policy decides what a batch does when one sentence fails.
type Policy uint8

const (
	// PolicySkip records the failure and continues with the other sentences.
	PolicySkip Policy = iota
	// PolicyAbort cancels the batch at the first failure.
	PolicyAbort
)

func (policy Policy) String() string {
	switch policy {
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(policy))
	}
}

// ParsePolicy parses "skip" or "abort", ignoring case.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "skip", "":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicySkip, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// BatchOptions configures Batch.
type BatchOptions struct {
	// Workers bounds concurrency; zero or less means one per CPU.
	Workers int
	Policy  Policy
}

// Stats summarizes a batch run.
type Stats struct {
	Sentences  int
	Succeeded  int
	Failed     int
	NotStarted int
	Trees      int
	Elapsed    time.Duration
}

// Batch reconstructs docs concurrently. Results are in input order; every
// document gets a Result even when the batch is aborted or cancelled, in which
// case unprocessed documents carry ErrNotStarted. Under PolicyAbort the
// returned error wraps ErrAborted and the first failure.
func (rec *Reconstructor) Batch(ctx context.Context, docs []*Document, opts BatchOptions) ([]Result, Stats, error) {
	started := time.Now()

	ctx, span := rec.tracer.Start(ctx, "docspec.sentence.batch",
		trace.WithAttributes(
			attribute.Int("batch.sentences", len(docs)),
			attribute.String("batch.policy", opts.Policy.String()),
		),
	)
	defer span.End()

	if rec.metrics != nil {
		done := rec.metrics.TrackInflight(ctx, opBatch)
		defer done()
	}

	results := make([]Result, len(docs))
	for idx, doc := range docs {
		results[idx] = Result{ID: documentID(doc), Err: ErrNotStarted}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for idx, doc := range docs {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}

			docStarted := time.Now()
			trees, err := rec.Reconstruct(groupCtx, doc)
			results[idx] = Result{ID: documentID(doc), Trees: trees, Err: err, Duration: time.Since(docStarted)}

			if err != nil && opts.Policy == PolicyAbort {
				return err
			}

			return nil
		})
	}

	waitErr := group.Wait()
	stats := summarize(results, time.Since(started))

	span.SetAttributes(
		attribute.Int("batch.succeeded", stats.Succeeded),
		attribute.Int("batch.failed", stats.Failed),
	)

	var batchErr error

	switch {
	case waitErr != nil:
		batchErr = fmt.Errorf("%w: %w", ErrAborted, waitErr)
	case ctx.Err() != nil:
		batchErr = fmt.Errorf("batch cancelled: %w", ctx.Err())
	}

	status := observability.StatusOK
	if batchErr != nil {
		status = observability.StatusError

		span.SetStatus(codes.Error, batchErr.Error())
	}

	if rec.metrics != nil {
		rec.metrics.RecordRequest(ctx, opBatch, status, stats.Elapsed)
	}

	rec.counts.RecordNotStarted(ctx, stats.NotStarted)

	rec.logger.InfoContext(ctx, "batch finished",
		"sentences", stats.Sentences, "succeeded", stats.Succeeded, "failed", stats.Failed,
		"not_started", stats.NotStarted, "elapsed", stats.Elapsed)

	return results, stats, batchErr
}

func documentID(doc *Document) string {
	if doc == nil {
		return ""
	}

	return doc.ID
}

func summarize(results []Result, elapsed time.Duration) Stats {
	stats := Stats{Sentences: len(results), Elapsed: elapsed}

	for idx := range results {
		switch {
		case results[idx].Err == nil:
			stats.Succeeded++
			stats.Trees += len(results[idx].Trees)
		case errors.Is(results[idx].Err, ErrNotStarted):
			stats.NotStarted++
		default:
			stats.Failed++
		}
	}

	return stats
}
