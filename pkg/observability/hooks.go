package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/xcallback/pkg/domain"
)

// LogHooks returns hooks that log every lifecycle event at info level,
// except drops which are warnings.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestSent: func(ctx context.Context, e *domain.RequestEvent) {
			logger.InfoContext(ctx, "request_sent",
				"request_id", e.RequestID,
				"scheme", e.Scheme,
				"action", e.Action,
			)
		},
		OnResponseReceived: func(ctx context.Context, e *domain.ResponseEvent) {
			logger.InfoContext(ctx, "response_received",
				"request_id", e.RequestID,
				"kind", e.Kind.String(),
			)
		},
		OnActionDispatched: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.InfoContext(ctx, "action_dispatched",
				"action", e.Action,
				"strategy", e.Strategy,
			)
		},
		OnResultSent: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.InfoContext(ctx, "result_sent",
				"action", e.Action,
				"strategy", e.Strategy,
				"kind", e.Kind.String(),
			)
		},
		OnDropped: func(ctx context.Context, e *domain.DropEvent) {
			logger.WarnContext(ctx, "dropped",
				"reason", e.Reason,
				"detail", e.Detail,
			)
		},
	}
}

// Combine fans every event out to each set of hooks, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnRequestSent = chain(out.OnRequestSent, h.OnRequestSent)
		out.OnResponseReceived = chain(out.OnResponseReceived, h.OnResponseReceived)
		out.OnActionDispatched = chain(out.OnActionDispatched, h.OnActionDispatched)
		out.OnResultSent = chain(out.OnResultSent, h.OnResultSent)
		out.OnDropped = chain(out.OnDropped, h.OnDropped)
	}
	return out
}

func chain[E any](first, next func(context.Context, E)) func(context.Context, E) {
	switch {
	case first == nil:
		return next
	case next == nil:
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		next(ctx, e)
	}
}
