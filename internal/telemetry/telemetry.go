// Package telemetry carries the run's tracing spans and counters. Spans go
// through the global OpenTelemetry tracer provider, a no-op unless the
// embedding program installs one; counters live in a Prometheus registry
// that can be written out as a node-exporter textfile after each run.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("jslice")

// Stage names used for spans and the stage duration histogram.
const (
	StageLoad      = "load"
	StageIndex     = "index"
	StageSlice     = "slice"
	StageEnumerate = "enumerate"
	StageOracle    = "oracle"
	StagePrune     = "prune"
	StageWrite     = "write"
)

// StartSpan opens a span named jslice.<stage>. The caller must end it,
// usually with EndSpan.
func StartSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "jslice."+stage, trace.WithAttributes(attrs...))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
