// Package telemetry records tool dispatch signals into OpenTelemetry.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scope used for the meter and tracer.
const scopeName = "mcp-mini/tool"

// Invocation describes one finished tool call.
type Invocation struct {
	Tool     string
	CallID   string
	Duration time.Duration
	OK       bool
	Error    string
}

// ToolObserver records tool invocations as metrics and spans.
// A nil *ToolObserver is valid and records nothing.
type ToolObserver struct {
	tracer trace.Tracer

	invocations metric.Int64Counter
	failures    metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewToolObserver creates an observer bound to the provided meter and tracer.
func NewToolObserver(meter metric.Meter, tracer trace.Tracer) (*ToolObserver, error) {
	invocations, err := meter.Int64Counter(
		"mcp.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter(
		"mcp.tool.failures",
		metric.WithDescription("Number of tool invocations answered with ok=false"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"mcp.tool.latency",
		metric.WithDescription("Tool latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &ToolObserver{
		tracer:      tracer,
		invocations: invocations,
		failures:    failures,
		latency:     latency,
	}, nil
}

// StartSpan opens the span covering one tool call. The returned context
// carries the span so outbound requests become its children.
func (o *ToolObserver) StartSpan(ctx context.Context, tool, callID string) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return o.tracer.Start(ctx, "tool.call", trace.WithAttributes(
		attribute.String("tool_name", tool),
		attribute.String("call_id", callID),
	))
}

// ObserveInvoke records the outcome of one call and ends span.
func (o *ToolObserver) ObserveInvoke(ctx context.Context, span trace.Span, inv Invocation) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("tool_name", inv.Tool),
		attribute.Bool("success", inv.OK),
	}
	options := metric.WithAttributes(attrs...)
	o.invocations.Add(ctx, 1, options)
	o.latency.Record(ctx, inv.Duration.Seconds(), options)
	if !inv.OK {
		o.failures.Add(ctx, 1, options)
	}

	if span == nil {
		return
	}
	span.SetAttributes(attribute.Bool("success", inv.OK))
	if inv.OK {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, inv.Error)
	}
	span.End()
}
