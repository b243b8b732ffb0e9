package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "docspec.requests.total"
	metricRequestDuration  = "docspec.request.duration.seconds"
	metricErrorsTotal      = "docspec.errors.total"
	metricInflightRequests = "docspec.inflight.requests"

	metricSentencesTotal = "docspec.sentences.total"
	metricTreesTotal     = "docspec.trees.total"
	metricFailuresTotal  = "docspec.reconstruct.failures.total"

	attrOp      = "op"
	attrStatus  = "status"
	attrOutcome = "outcome"
	attrReason  = "reason"
)

// Request statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Sentence outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeFailed     = "failed"
	OutcomeNotStarted = "not_started"
)

// Reconstruction of one sentence is sub-millisecond; batches and HTTP requests
// can take seconds.
//
//nolint:gochecknoglobals // static bucket layout.
var durationBucketBoundaries = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30}

// instruments creates instruments on one meter and keeps the first error,
// so a constructor checks once at the end.
type instruments struct {
	meter metric.Meter
	err   error
}

func (ins *instruments) counter(name, desc, unit string) metric.Int64Counter {
	counter, err := ins.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	ins.keep(name, err)

	return counter
}

func (ins *instruments) histogram(name, desc string, bounds ...float64) metric.Float64Histogram {
	hist, err := ins.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	ins.keep(name, err)

	return hist
}

func (ins *instruments) upDownCounter(name, desc, unit string) metric.Int64UpDownCounter {
	counter, err := ins.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	ins.keep(name, err)

	return counter
}

func (ins *instruments) keep(name string, err error) {
	if err != nil && ins.err == nil {
		ins.err = fmt.Errorf("create %s: %w", name, err)
	}
}

// REDMetrics counts operations (reconstruct, batch, MCP tools) by rate,
// errors, and duration.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates RED instruments from mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	ins := &instruments{meter: mt}

	red := &REDMetrics{
		requestsTotal:    ins.counter(metricRequestsTotal, "Operations handled", "{request}"),
		requestDuration:  ins.histogram(metricRequestDuration, "Operation duration in seconds", durationBucketBoundaries...),
		errorsTotal:      ins.counter(metricErrorsTotal, "Operations that failed", "{error}"),
		inflightRequests: ins.upDownCounter(metricInflightRequests, "Operations in progress", "{request}"),
	}

	if ins.err != nil {
		return nil, ins.err
	}

	return red, nil
}

// RecordRequest records a completed operation.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// ReconstructionMetrics counts sentences by outcome, typed trees produced,
// and failures by reason.
type ReconstructionMetrics struct {
	sentences metric.Int64Counter
	trees     metric.Int64Counter
	failures  metric.Int64Counter
}

// NewReconstructionMetrics creates reconstruction instruments from mt.
func NewReconstructionMetrics(mt metric.Meter) (*ReconstructionMetrics, error) {
	ins := &instruments{meter: mt}

	rm := &ReconstructionMetrics{
		sentences: ins.counter(metricSentencesTotal, "Sentences by reconstruction outcome", "{sentence}"),
		trees:     ins.counter(metricTreesTotal, "Typed trees produced", "{tree}"),
		failures:  ins.counter(metricFailuresTotal, "Reconstruction failures by reason", "{failure}"),
	}

	if ins.err != nil {
		return nil, ins.err
	}

	return rm, nil
}

// RecordSentence counts one reconstructed sentence and its trees.
// Safe to call on a nil receiver.
func (rm *ReconstructionMetrics) RecordSentence(ctx context.Context, trees int) {
	if rm == nil {
		return
	}

	rm.sentences.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, OutcomeOK)))
	rm.trees.Add(ctx, int64(trees))
}

// RecordFailure counts one failed sentence under reason.
// Safe to call on a nil receiver.
func (rm *ReconstructionMetrics) RecordFailure(ctx context.Context, reason string) {
	if rm == nil {
		return
	}

	rm.sentences.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOutcome, OutcomeFailed)))
	rm.failures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

// RecordNotStarted counts sentences an aborted or cancelled batch never reached.
// Safe to call on a nil receiver.
func (rm *ReconstructionMetrics) RecordNotStarted(ctx context.Context, count int) {
	if rm == nil || count == 0 {
		return
	}

	rm.sentences.Add(ctx, int64(count), metric.WithAttributes(attribute.String(attrOutcome, OutcomeNotStarted)))
}
