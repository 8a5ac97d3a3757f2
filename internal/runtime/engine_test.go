package runtime_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/aretw0/xcallback/internal/runtime"
	"github.com/aretw0/xcallback/pkg/adapters/memory"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appName = "App"

// fakeHost records opened URLs and answers CanOpen with a fixed value.
type fakeHost struct {
	installed bool
	opened    []*url.URL
}

func (h *fakeHost) CanOpen(*url.URL) bool { return h.installed }

func (h *fakeHost) Open(_ context.Context, u *url.URL) error {
	h.opened = append(h.opened, u)
	return nil
}

func (h *fakeHost) DisplayName() string { return appName }

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestEngine_BuildURL(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true})

	u, err := engine.BuildURL(&domain.Request{Scheme: "testScheme", Action: "testRequest"})
	require.NoError(t, err)
	assert.Equal(t, "testScheme://x-callback-url/testRequest?x-source=App", u.String())
}

func TestEngine_BuildURL_WithParams(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true})

	req := &domain.Request{
		Scheme: "testScheme",
		Action: "testRequest",
		Params: query.Pairs{{Key: "p2", Value: "v2"}, {Key: "p1", Value: "v1"}},
	}
	u, err := engine.BuildURL(req)
	require.NoError(t, err)

	assert.Equal(t, "testScheme", u.Scheme)
	assert.Equal(t, "x-callback-url", u.Host)
	assert.Equal(t, "/testRequest", u.Path)
	assert.Equal(t, "x-source=App&p2=v2&p1=v1", u.RawQuery)
}

func TestEngine_BuildURL_NoHandlerHasNoCallbacks(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("consumer"))

	u, err := engine.BuildURL(&domain.Request{ID: "1", Scheme: "provider", Action: "a"})
	require.NoError(t, err)

	params := query.Decode(u.RawQuery)
	assert.NotContains(t, params, domain.KeySuccess)
	assert.NotContains(t, params, domain.KeyCancel)
	assert.NotContains(t, params, domain.KeyError)
}

func TestEngine_BuildURL_WithHandler(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("consumer"))

	req := &domain.Request{
		ID:      "req-1",
		Scheme:  "provider",
		Action:  "a",
		Params:  query.Pairs{{Key: "p", Value: "v"}},
		Handler: func(domain.Result) {},
	}
	u, err := engine.BuildURL(req)
	require.NoError(t, err)

	assert.Equal(t,
		"x-source=App&p=v"+
			"&x-success="+query.Escape("consumer://x-callback-url/IACRequestResponse?IACRequestID=req-1&IACResponseType=0")+
			"&x-cancel="+query.Escape("consumer://x-callback-url/IACRequestResponse?IACRequestID=req-1&IACResponseType=2")+
			"&x-error="+query.Escape("consumer://x-callback-url/IACRequestResponse?IACRequestID=req-1&IACResponseType=1"),
		u.RawQuery)
}

func TestEngine_BuildURL_Errors(t *testing.T) {
	handler := func(domain.Result) {}

	tests := []struct {
		name   string
		scheme string
		req    *domain.Request
		want   error
	}{
		{"handler without callback scheme", "", &domain.Request{Scheme: "p", Action: "a", Handler: handler}, domain.ErrInvalidScheme},
		{"empty scheme", "", &domain.Request{Scheme: "", Action: "a"}, domain.ErrInvalidURL},
		{"scheme with space", "", &domain.Request{Scheme: "bad scheme", Action: "a"}, domain.ErrInvalidURL},
		{"scheme starting with digit", "", &domain.Request{Scheme: "1abc", Action: "a"}, domain.ErrInvalidURL},
		{"empty action", "", &domain.Request{Scheme: "p", Action: ""}, domain.ErrInvalidURL},
		{"action with slash", "", &domain.Request{Scheme: "p", Action: "a/b"}, domain.ErrInvalidURL},
		{"invalid callback scheme", "bad scheme", &domain.Request{Scheme: "p", Action: "a", Handler: handler}, domain.ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme(tt.scheme))
			_, err := engine.BuildURL(tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEngine_SendSimpleRequest(t *testing.T) {
	bus := memory.NewBus()
	bus.Install("testScheme")
	engine := runtime.NewEngine(bus.Host(appName))

	err := engine.Send(context.Background(), &domain.Request{Scheme: "testScheme", Action: "testRequest"})
	require.NoError(t, err)

	assert.Equal(t, "testScheme://x-callback-url/testRequest?x-source=App", bus.LastOpened())
	assert.Zero(t, engine.Pending().Len(), "fire-and-forget requests are not tracked")
}

func TestEngine_Send_AppNotInstalled(t *testing.T) {
	host := &fakeHost{installed: false}
	engine := runtime.NewEngine(host, runtime.WithCallbackScheme("consumer"))

	t.Run("with handler", func(t *testing.T) {
		var results []domain.Result
		err := engine.Send(context.Background(), &domain.Request{
			Scheme:  "provider",
			Action:  "a",
			Handler: func(r domain.Result) { results = append(results, r) },
		})

		require.NoError(t, err, "errors go through the handler, not both channels")
		require.Len(t, results, 1)
		assert.Equal(t, domain.KindFailure, results[0].Kind)
		assert.ErrorIs(t, results[0].Err, domain.ErrAppNotInstalled)
	})

	t.Run("without handler", func(t *testing.T) {
		err := engine.Send(context.Background(), &domain.Request{Scheme: "provider", Action: "a"})
		assert.ErrorIs(t, err, domain.ErrAppNotInstalled)
	})

	assert.Empty(t, host.opened, "nothing may be launched")
	assert.Zero(t, engine.Pending().Len())
}

func TestEngine_Send_InvalidSchemeThroughHandler(t *testing.T) {
	host := &fakeHost{installed: true}
	engine := runtime.NewEngine(host)

	var got domain.Result
	err := engine.Send(context.Background(), &domain.Request{
		Scheme:  "provider",
		Action:  "a",
		Handler: func(r domain.Result) { got = r },
	})

	require.NoError(t, err)
	assert.ErrorIs(t, got.Err, domain.ErrInvalidScheme)
	assert.Empty(t, host.opened)
}

func TestEngine_Send_RegistersPending(t *testing.T) {
	host := &fakeHost{installed: true}
	engine := runtime.NewEngine(host,
		runtime.WithCallbackScheme("consumer"),
		runtime.WithIDGenerator(func() string { return "fixed-id" }),
	)

	req := &domain.Request{Scheme: "provider", Action: "a", Handler: func(domain.Result) {}}
	require.NoError(t, engine.Send(context.Background(), req))

	assert.Equal(t, "fixed-id", req.ID)
	assert.Equal(t, []string{"fixed-id"}, engine.Pending().IDs())
	require.Len(t, host.opened, 1)

	// Same id again while still pending.
	dup := &domain.Request{Scheme: "provider", Action: "a", Handler: func(domain.Result) {}}
	assert.Error(t, engine.Send(context.Background(), dup))
	assert.Len(t, host.opened, 1)
}

func TestEngine_HandleURL_DeliversParameters(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("testScheme"))

	var got domain.Parameters
	calls := 0
	engine.RegisterAction("action", func(ctx context.Context, p domain.Parameters, complete domain.ResultHandler) {
		calls++
		got = p
	})

	handled := engine.HandleURL(context.Background(),
		mustParse(t, "testScheme://x-callback-url/action?x-source=App&p1=v1&p2=v2"))

	assert.True(t, handled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, domain.Parameters{"x-source": "App", "p1": "v1", "p2": "v2"}, got)
}

func TestEngine_HandleURL_StripsReservedParameters(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("testScheme"))

	var got domain.Parameters
	engine.RegisterAction("action", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		got = p
		return domain.Success(nil)
	}))

	engine.HandleURL(context.Background(),
		mustParse(t, "testScheme://x-callback-url/action?x-source=App&x-success=a%3A%2F%2Fb&IACRequestID=9&p1=v1"))

	assert.Equal(t, domain.Parameters{"x-source": "App", "p1": "v1"}, got)
}

func TestEngine_HandleURL_Unrelated(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("testScheme"))

	consulted := false
	engine.RegisterAction("action", func(context.Context, domain.Parameters, domain.ResultHandler) {
		consulted = true
	})

	for _, raw := range []string{
		"otherScheme://x-callback-url/action?a=1",
		"testScheme://other-host/action?a=1",
		"https://example.com/action",
	} {
		u := mustParse(t, raw)
		assert.Equal(t, runtime.EnvelopeUnrelated, engine.Classify(u), raw)
		assert.False(t, engine.HandleURL(context.Background(), u), raw)
	}
	assert.False(t, consulted, "unrelated URLs never reach the registry")
}

func TestEngine_HandleURL_NoCallbackSchemeIsUnrelated(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true})
	assert.Equal(t, runtime.EnvelopeUnrelated, engine.Classify(mustParse(t, "x://x-callback-url/a")))
}

func TestEngine_Classify(t *testing.T) {
	engine := runtime.NewEngine(&fakeHost{installed: true}, runtime.WithCallbackScheme("consumer"))

	assert.Equal(t, runtime.EnvelopeResponse,
		engine.Classify(mustParse(t, "consumer://x-callback-url/IACRequestResponse?IACRequestID=1")))
	assert.Equal(t, runtime.EnvelopeAction, engine.Classify(mustParse(t, "consumer://x-callback-url/doIt")))
	assert.Equal(t, "response", runtime.EnvelopeResponse.String())
}
