package tracing

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"github.com/mikeydub/go-storefront/service/logger"
)

// StartSpan starts a sentry span and returns a context whose logger carries the span ids
func StartSpan(ctx context.Context, operation string, description string, options ...sentry.SpanOption) (*sentry.Span, context.Context) {
	span := sentry.StartSpan(ctx, operation, options...)
	ctx = logger.NewContextWithFields(span.Context(), logrus.Fields{
		"spanId":       span.SpanID,
		"parentSpanId": span.ParentSpanID,
	})

	span.Description = description

	return span, ctx
}

func FinishSpan(span *sentry.Span) {
	if span == nil {
		return
	}

	span.Finish()
}

func AddEventDataToSpan(span *sentry.Span, eventData map[string]interface{}) {
	if span == nil {
		return
	}

	if span.Data == nil {
		span.Data = make(map[string]interface{})
	}

	for k, v := range eventData {
		span.Data[k] = v
	}
}

// inTransaction is false when continueOnly is set and there is no trace to contribute to
func inTransaction(ctx context.Context, continueOnly bool) bool {
	return !continueOnly || sentry.TransactionFromContext(ctx) != nil
}
