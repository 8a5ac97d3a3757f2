package xcallback_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/pkg/adapters/memory"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pair wires a "provider" and a "consumer" manager through one bus.
func pair(t *testing.T) (provider, consumer *xcallback.Manager, bus *memory.Bus) {
	t.Helper()
	bus = memory.NewBus()

	provider = xcallback.New(
		xcallback.WithHost(bus.Host("Provider")),
		xcallback.WithCallbackScheme("provider"),
	)
	consumer = xcallback.New(
		xcallback.WithHost(bus.Host("Consumer")),
		xcallback.WithCallbackScheme("consumer"),
	)
	bus.Route("provider", provider)
	bus.Route("consumer", consumer)
	return provider, consumer, bus
}

func TestManager_RoundTrip(t *testing.T) {
	provider, consumer, bus := pair(t)

	provider.HandleAction("echo", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"echo": p["value"]})
	}))

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	reply, err := client.Call(context.Background(), "echo", query.Pairs{{Key: "value", Value: "hello world"}})
	require.NoError(t, err)

	assert.False(t, reply.Cancelled)
	assert.Equal(t, "hello world", reply.Data["echo"])
	assert.Equal(t, 0, consumer.Pending().Len())

	opened := bus.Opened()
	require.Len(t, opened, 2)
	assert.Contains(t, opened[0].URL, "provider://x-callback-url/echo?x-source=Consumer&value=hello%20world")
	assert.Contains(t, opened[1].URL, "consumer://x-callback-url/IACRequestResponse?")
}

func TestClient_Call_Failure(t *testing.T) {
	provider, consumer, _ := pair(t)

	provider.HandleAction("fail", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Failure(&domain.Error{Domain: "provider.error", Code: 42, Message: "nope"})
	}))

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	_, err := client.Call(context.Background(), "fail", nil)
	require.Error(t, err)

	var perr *domain.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "provider.error", perr.Domain)
	assert.Equal(t, 42, perr.Code)
	assert.Equal(t, "nope", perr.Message)
}

func TestClient_Call_NormalizeCode(t *testing.T) {
	provider, consumer, _ := pair(t)

	provider.HandleAction("fail", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Failure(&domain.Error{Domain: "provider.error", Code: 7})
	}))

	client := &xcallback.Client{
		Scheme:        "provider",
		Manager:       consumer,
		NormalizeCode: func(string) int { return 99 },
	}
	_, err := client.Call(context.Background(), "fail", nil)

	var perr *domain.Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 99, perr.Code)
}

func TestClient_Call_Cancelled(t *testing.T) {
	provider, consumer, _ := pair(t)

	provider.HandleAction("ask", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Cancelled()
	}))

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	reply, err := client.Call(context.Background(), "ask", nil)
	require.NoError(t, err)
	assert.True(t, reply.Cancelled)
}

func TestClient_Call_UnsupportedAction(t *testing.T) {
	_, consumer, _ := pair(t)

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	_, err := client.Call(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrActionNotSupported)
}

func TestClient_Call_NotInstalled(t *testing.T) {
	_, consumer, _ := pair(t)

	client := &xcallback.Client{Scheme: "absent", Manager: consumer}
	assert.False(t, client.IsInstalled())

	_, err := client.Call(context.Background(), "anything", nil)
	assert.ErrorIs(t, err, domain.ErrAppNotInstalled)
}

func TestClient_Call_ContextDone(t *testing.T) {
	bus := memory.NewBus()
	bus.Install("silent")

	consumer := xcallback.New(
		xcallback.WithHost(bus.Host("Consumer")),
		xcallback.WithCallbackScheme("consumer"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := &xcallback.Client{Scheme: "silent", Manager: consumer}
	_, err := client.Call(ctx, "wait", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, consumer.Pending().Len())
}

func TestClient_Perform_FireAndForget(t *testing.T) {
	provider, consumer, bus := pair(t)

	var got domain.Parameters
	provider.HandleAction("note", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		got = p
		return domain.Success(nil)
	}))

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	require.NoError(t, client.Perform(context.Background(), "note", query.Pairs{{Key: "text", Value: "a&b"}}, nil))

	assert.Equal(t, domain.Parameters{"text": "a&b", domain.KeySource: "Consumer"}, got)
	require.Len(t, bus.Opened(), 1)
	assert.Equal(t, 0, consumer.Pending().Len())
}

func TestManager_HandleRawURL(t *testing.T) {
	provider, _, _ := pair(t)

	called := false
	provider.HandleAction("ping", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		called = true
		return domain.Success(nil)
	}))

	assert.False(t, provider.HandleRawURL(context.Background(), "://bad"))
	assert.False(t, provider.HandleRawURL(context.Background(), "https://example.com/ping"))
	assert.True(t, provider.HandleRawURL(context.Background(), "provider://x-callback-url/ping?x-success=consumer%3A%2F%2Fx-callback-url%2Fok"))
	assert.True(t, called)
	assert.Equal(t, []string{"ping"}, provider.Actions())
}

type staticDelegate struct{}

func (staticDelegate) SupportsAction(action string) bool { return action == "delegated" }

func (staticDelegate) PerformAction(ctx context.Context, action string, params domain.Parameters, complete domain.ResultHandler) {
	complete(domain.Success(domain.Parameters{"by": "delegate"}))
}

func TestManager_Delegate(t *testing.T) {
	provider, consumer, _ := pair(t)
	provider.SetDelegate(staticDelegate{})

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	reply, err := client.Call(context.Background(), "delegated", nil)
	require.NoError(t, err)
	assert.Equal(t, "delegate", reply.Data["by"])

	provider.SetDelegate(nil)
	_, err = client.Call(context.Background(), "delegated", nil)
	assert.ErrorIs(t, err, domain.ErrActionNotSupported)
}

func TestManager_Journal(t *testing.T) {
	bus := memory.NewBus()
	bus.Install("silent")
	journal := memory.NewJournal()

	m := xcallback.New(
		xcallback.WithHost(bus.Host("App")),
		xcallback.WithCallbackScheme("app"),
		xcallback.WithJournal(journal),
		xcallback.WithIDGenerator(func() string { return "fixed-id" }),
	)

	client := &xcallback.Client{Scheme: "silent", Manager: m}
	require.NoError(t, client.Perform(context.Background(), "wait", nil, func(domain.Result) {}))

	rec, err := journal.Load(context.Background(), "fixed-id")
	require.NoError(t, err)
	assert.Equal(t, "silent", rec.Scheme)
	assert.Equal(t, "wait", rec.Action)
}

func TestDefault(t *testing.T) {
	bus := memory.NewBus()
	m := xcallback.New(xcallback.WithHost(bus.Host("App")))

	prev := xcallback.Default()
	xcallback.SetDefault(m)
	t.Cleanup(func() { xcallback.SetDefault(prev) })

	assert.Same(t, m, xcallback.Default())
	assert.Equal(t, "App", xcallback.Default().AppName())

	client := xcallback.NewClient("absent")
	assert.False(t, client.IsInstalled())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, xcallback.Version)
}

// launchThenFail delivers the URL and then reports an error.
type launchThenFail struct {
	*memory.Host
}

func (h launchThenFail) Open(ctx context.Context, u *url.URL) error {
	_ = h.Host.Open(ctx, u)
	return errors.New("opener exited 1")
}

func TestClient_Call_OpenerFailsAfterDelivery(t *testing.T) {
	bus := memory.NewBus()
	provider := xcallback.New(xcallback.WithHost(bus.Host("Provider")), xcallback.WithCallbackScheme("provider"))
	consumer := xcallback.New(xcallback.WithHost(launchThenFail{bus.Host("Consumer")}), xcallback.WithCallbackScheme("consumer"))
	bus.Route("provider", provider)
	bus.Route("consumer", consumer)

	provider.HandleAction("echo", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"echo": p["value"]})
	}))

	done := make(chan struct{})
	var (
		reply xcallback.Reply
		err   error
	)
	go func() {
		defer close(done)
		client := &xcallback.Client{Scheme: "provider", Manager: consumer}
		reply, err = client.Call(context.Background(), "echo", query.Pairs{{Key: "value", Value: "hi"}})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Call did not return")
	}
	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Data["echo"])
}
