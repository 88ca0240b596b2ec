// Package sentryhelper reports against the Sentry hub bound to a request
// context, so breadcrumbs and tags stay isolated per HTTP request.
package sentryhelper

import (
	"context"

	sentry "github.com/getsentry/sentry-go"
)

// HubFromContext returns the request hub installed by the gin middleware.
// Falls back to CurrentHub outside a request.
func HubFromContext(ctx context.Context) *sentry.Hub {
	if ctx == nil {
		return sentry.CurrentHub()
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		return hub
	}
	return sentry.CurrentHub()
}

func AddBreadcrumb(ctx context.Context, category, message string) {
	HubFromContext(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
	}, nil)
}

func CaptureException(ctx context.Context, err error) *sentry.EventID {
	return HubFromContext(ctx).CaptureException(err)
}

// StartSpan starts a child span of the request transaction, if any.
func StartSpan(ctx context.Context, operation, description string) *sentry.Span {
	span := sentry.StartSpan(ctx, operation)
	span.Description = description
	return span
}

// FinishSpan sets the span status from err and finishes it.
func FinishSpan(span *sentry.Span, err error) {
	switch {
	case err == nil:
		span.Status = sentry.SpanStatusOK
	case span.Status == sentry.SpanStatusUndefined:
		span.Status = sentry.SpanStatusInternalError
	}
	span.Finish()
}
