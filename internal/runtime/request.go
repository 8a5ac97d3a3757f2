package runtime

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
)

// BuildURL renders the request as a launchable URL:
//
//	<scheme>://x-callback-url/<action>?x-source=<app>&<params>[&x-success=..&x-cancel=..&x-error=..]
//
// Callback URLs are attached only when the request has a handler, which in
// turn requires a callback scheme.
func (e *Engine) BuildURL(req *domain.Request) (*url.URL, error) {
	if !validScheme(req.Scheme) {
		return nil, domain.NewError(domain.CodeInvalidURL, "invalid target scheme %q", req.Scheme)
	}
	if !validAction(req.Action) {
		return nil, domain.NewError(domain.CodeInvalidURL, "invalid action name %q", req.Action)
	}

	pairs := make(query.Pairs, 0, len(req.Params)+4)
	pairs.Add(domain.KeySource, e.AppName())
	pairs = append(pairs, req.Params...)

	if req.Handler != nil {
		callbackScheme := e.CallbackScheme()
		if callbackScheme == "" {
			return nil, domain.NewError(domain.CodeInvalidScheme,
				"a result handler requires a callback scheme, none is configured")
		}
		if !validScheme(callbackScheme) {
			return nil, domain.NewError(domain.CodeInvalidURL, "invalid callback scheme %q", callbackScheme)
		}
		pairs.Add(domain.KeySuccess, callbackURL(callbackScheme, req.ID, domain.KindSuccess))
		pairs.Add(domain.KeyCancel, callbackURL(callbackScheme, req.ID, domain.KindCancelled))
		pairs.Add(domain.KeyError, callbackURL(callbackScheme, req.ID, domain.KindFailure))
	}

	return &url.URL{
		Scheme:   req.Scheme,
		Host:     domain.Host,
		Path:     "/" + req.Action,
		RawQuery: query.Encode(pairs),
	}, nil
}

// Send launches the request.
//
// Protocol errors (app not installed, invalid scheme, invalid URL) travel
// through exactly one channel: the handler as a Failure when the request has
// one, the returned error otherwise. A request that already has an id that
// is still pending is rejected with pending.ErrDuplicateID.
func (e *Engine) Send(ctx context.Context, req *domain.Request) error {
	if req.ID == "" {
		req.ID = e.newID()
	}

	fail := func(err *domain.Error) error {
		if req.Handler != nil {
			req.Handler(domain.Failure(err))
			return nil
		}
		return err
	}

	if !validScheme(req.Scheme) {
		return fail(domain.NewError(domain.CodeInvalidURL, "invalid target scheme %q", req.Scheme))
	}
	if !e.host.CanOpen(&url.URL{Scheme: req.Scheme, Host: "test"}) {
		return fail(domain.NewError(domain.CodeAppNotInstalled,
			"App with scheme '%s' is not installed in this device", req.Scheme))
	}

	u, err := e.BuildURL(req)
	if err != nil {
		var perr *domain.Error
		if errors.As(err, &perr) {
			return fail(perr)
		}
		return err
	}

	if req.Handler != nil {
		if err := e.table.Register(ctx, req); err != nil {
			return err
		}
	}

	e.logger.Debug("Opening request URL", "request_id", req.ID, "scheme", req.Scheme, "action", req.Action)

	if err := e.host.Open(ctx, u); err != nil {
		e.logger.Warn("Failed to open request URL", "request_id", req.ID, "err", err)
		// The opener may have delivered the URL before failing; if the
		// response already resolved the entry the handler must not hear
		// about this error.
		if !e.table.Discard(ctx, req.ID) && req.Handler != nil {
			return nil
		}
		return fail(domain.NewError(domain.CodeAppNotInstalled,
			"could not open app with scheme '%s': %v", req.Scheme, err))
	}

	e.emitRequestSent(ctx, req, u.String())
	return nil
}

func callbackURL(scheme, id string, kind domain.ResultKind) string {
	var pairs query.Pairs
	pairs.Add(domain.KeyRequestID, id)
	pairs.Add(domain.KeyResponseType, strconv.Itoa(int(kind)))

	u := url.URL{
		Scheme:   scheme,
		Host:     domain.Host,
		Path:     "/" + domain.ResponseAction,
		RawQuery: query.Encode(pairs),
	}
	return u.String()
}

// validScheme follows RFC 3986: ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func validAction(s string) bool {
	if s == "" || strings.ContainsAny(s, "/?#%") {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
