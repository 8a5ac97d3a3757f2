package runtime

import (
	"context"

	"github.com/aretw0/xcallback/pkg/domain"
)

func (e *Engine) emitRequestSent(ctx context.Context, req *domain.Request, url string) {
	if e.hooks.OnRequestSent == nil {
		return
	}
	e.hooks.OnRequestSent(ctx, &domain.RequestEvent{
		EventBase: domain.NewEventBase(domain.EventRequestSent),
		RequestID: req.ID,
		Scheme:    req.Scheme,
		Action:    req.Action,
		URL:       url,
	})
}

func (e *Engine) emitResponse(ctx context.Context, id string, kind domain.ResultKind) {
	if e.hooks.OnResponseReceived == nil {
		return
	}
	e.hooks.OnResponseReceived(ctx, &domain.ResponseEvent{
		EventBase: domain.NewEventBase(domain.EventResponseReceived),
		RequestID: id,
		Kind:      kind,
	})
}

func (e *Engine) emitDispatched(ctx context.Context, action, strategy string) {
	if e.hooks.OnActionDispatched == nil {
		return
	}
	e.hooks.OnActionDispatched(ctx, &domain.DispatchEvent{
		EventBase: domain.NewEventBase(domain.EventActionDispatched),
		Action:    action,
		Strategy:  strategy,
	})
}

func (e *Engine) emitResultSent(ctx context.Context, action, strategy string, kind domain.ResultKind) {
	if e.hooks.OnResultSent == nil {
		return
	}
	e.hooks.OnResultSent(ctx, &domain.DispatchEvent{
		EventBase: domain.NewEventBase(domain.EventResultSent),
		Action:    action,
		Strategy:  strategy,
		Kind:      kind,
	})
}

func (e *Engine) emitDropped(ctx context.Context, reason, detail string) {
	e.logger.Debug("Dropped", "reason", reason, "detail", detail)
	if e.hooks.OnDropped == nil {
		return
	}
	e.hooks.OnDropped(ctx, &domain.DropEvent{
		EventBase: domain.NewEventBase(domain.EventDropped),
		Reason:    reason,
		Detail:    detail,
	})
}
