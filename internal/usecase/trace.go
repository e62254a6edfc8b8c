package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const nightIDAttrKey = attribute.Key("league_night.id")

var tracer = otel.Tracer("league-night/internal/usecase")

// startUsecaseSpan opens a child span only when ctx is already traced.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func nightAttr(nightID string) attribute.KeyValue {
	return nightIDAttrKey.String(nightID)
}
