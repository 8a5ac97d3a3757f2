package runtime

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
)

// Envelope classifies an inbound URL.
type Envelope int

const (
	// EnvelopeUnrelated is any URL not addressed to this engine.
	EnvelopeUnrelated Envelope = iota
	// EnvelopeResponse carries the outcome of a request this process sent.
	EnvelopeResponse
	// EnvelopeAction asks this process to perform an action.
	EnvelopeAction
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeResponse:
		return "response"
	case EnvelopeAction:
		return "action"
	default:
		return "unrelated"
	}
}

const unsupportedStrategy = "unsupported"

// Classify tells which kind of envelope u is, without side effects.
func (e *Engine) Classify(u *url.URL) Envelope {
	callbackScheme := e.CallbackScheme()
	if u == nil || callbackScheme == "" {
		return EnvelopeUnrelated
	}
	if !strings.EqualFold(u.Scheme, callbackScheme) || !strings.EqualFold(u.Host, domain.Host) {
		return EnvelopeUnrelated
	}
	if actionName(u) == domain.ResponseAction {
		return EnvelopeResponse
	}
	return EnvelopeAction
}

// HandleURL processes an inbound URL and reports whether it was consumed.
//
// Unrelated URLs return false so hosts can pass them on to other handlers.
// Responses return true when they resolved a pending request. Actions
// return true when a strategy took them, or when an unsupported action
// could be answered with an error response.
func (e *Engine) HandleURL(ctx context.Context, u *url.URL) bool {
	switch e.Classify(u) {
	case EnvelopeResponse:
		return e.handleResponse(ctx, domain.Parameters(query.Decode(u.RawQuery)))
	case EnvelopeAction:
		return e.handleAction(ctx, actionName(u), domain.Parameters(query.Decode(u.RawQuery)))
	default:
		return false
	}
}

func (e *Engine) handleResponse(ctx context.Context, params domain.Parameters) bool {
	id := params[domain.KeyRequestID]
	if id == "" {
		e.emitDropped(ctx, domain.DropMalformedResponse, "missing "+domain.KeyRequestID)
		return false
	}

	req, ok := e.table.Get(id)
	if !ok {
		e.emitDropped(ctx, domain.DropUnknownRequest, id)
		return false
	}

	rawKind, present := params[domain.KeyResponseType]
	n, err := strconv.Atoi(rawKind)
	kind := domain.ResultKind(n)
	if !present || err != nil || !kind.Valid() {
		e.logger.Warn("Malformed response", "request_id", id, "response_type", rawKind)
		if e.failMalformed {
			e.table.Resolve(ctx, id, domain.Failure(domain.NewError(domain.CodeMalformedResponse,
				"response for request %s has an invalid %s %q", id, domain.KeyResponseType, rawKind)))
		} else {
			e.table.Discard(ctx, id)
		}
		e.emitDropped(ctx, domain.DropMalformedResponse, id)
		return false
	}

	var result domain.Result
	switch kind {
	case domain.KindSuccess:
		result = domain.Success(params.WithoutProtocolKeys())
	case domain.KindCancelled:
		result = domain.Cancelled()
	default:
		errDomain := params[domain.KeyErrorDomain]
		if errDomain == "" {
			errDomain = domain.ClientErrorDomain
		}
		result = domain.Failure(&domain.Error{
			Domain:  errDomain,
			Code:    req.ErrorCode(params[domain.KeyErrorCode]),
			Message: params[domain.KeyErrorMessage],
		})
	}

	if !e.table.Resolve(ctx, id, result) {
		// Resolved concurrently by a duplicate delivery.
		e.emitDropped(ctx, domain.DropUnknownRequest, id)
		return false
	}
	e.emitResponse(ctx, id, kind)
	return true
}

func (e *Engine) handleAction(ctx context.Context, action string, params domain.Parameters) bool {
	clean := params.WithoutProtocolKeys()

	for _, s := range e.strategies() {
		if !s.Supports(action) {
			continue
		}
		e.logger.Debug("Dispatching action", "action", action, "strategy", s.Name())
		e.emitDispatched(ctx, action, s.Name())
		s.Perform(ctx, action, clean, e.completion(ctx, action, s.Name(), params))
		return true
	}

	e.logger.Info("Unsupported action", "action", action)
	err := domain.NewError(domain.CodeActionNotSupported,
		"'%s' is not an x-callback-url action supported by %s", action, e.AppName())
	_, canReply := params[domain.KeyError]
	e.completion(ctx, action, unsupportedStrategy, params)(domain.Failure(err))
	return canReply
}

// completion returns the once-only handler that turns an action outcome
// into a response URL addressed to the caller.
func (e *Engine) completion(ctx context.Context, action, strategy string, params domain.Parameters) domain.ResultHandler {
	// The outcome may arrive after the inbound delivery finished.
	ctx = context.WithoutCancel(ctx)

	var once sync.Once
	return func(result domain.Result) {
		once.Do(func() {
			e.sendResult(ctx, action, strategy, params, result)
		})
	}
}

func (e *Engine) sendResult(ctx context.Context, action, strategy string, params domain.Parameters, result domain.Result) {
	key := result.Kind.CallbackKey()
	raw := params[key]
	if raw == "" {
		e.emitDropped(ctx, domain.DropNoCallback, action+": no "+key)
		return
	}

	target, err := url.Parse(raw)
	if err != nil || target.Scheme == "" {
		e.logger.Warn("Invalid callback URL", "action", action, "key", key, "err", err)
		e.emitDropped(ctx, domain.DropNoCallback, action+": invalid "+key)
		return
	}
	target.RawQuery = query.Append(target.RawQuery, query.FromMap(replyParams(target.RawQuery, result.Payload())))

	if err := e.host.Open(ctx, target); err != nil {
		e.logger.Warn("Failed to open callback URL", "action", action, "err", err)
		e.emitDropped(ctx, domain.DropLaunchFailed, err.Error())
		return
	}
	e.emitResultSent(ctx, action, strategy, result.Kind)
}

// replyParams drops payload keys that would shadow the correlation fields
// the caller embedded in its callback URL.
func replyParams(rawQuery string, payload domain.Parameters) domain.Parameters {
	embedded := query.Decode(rawQuery)
	out := make(domain.Parameters, len(payload))
	for k, v := range payload {
		if _, taken := embedded[k]; taken || strings.HasPrefix(k, domain.PrefixProtocol) {
			continue
		}
		out[k] = v
	}
	return out
}

func actionName(u *url.URL) string {
	return strings.TrimPrefix(u.Path, "/")
}
