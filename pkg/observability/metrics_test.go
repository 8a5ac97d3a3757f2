package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/pkg/adapters/memory"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/observability"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics_RoundTrip(t *testing.T) {
	bus := memory.NewBus()

	providerMetrics := observability.NewMetrics(nil)
	provider := xcallback.New(
		xcallback.WithHost(bus.Host("Provider")),
		xcallback.WithCallbackScheme("provider"),
		xcallback.WithLifecycleHooks(providerMetrics.Hooks()),
	)
	provider.HandleAction("echo", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(p)
	}))

	var consumer *xcallback.Manager
	consumerMetrics := observability.NewMetrics(func() int { return consumer.Pending().Len() })
	consumer = xcallback.New(
		xcallback.WithHost(bus.Host("Consumer")),
		xcallback.WithCallbackScheme("consumer"),
		xcallback.WithLifecycleHooks(consumerMetrics.Hooks()),
	)

	bus.Route("provider", provider)
	bus.Route("consumer", consumer)

	client := &xcallback.Client{Scheme: "provider", Manager: consumer}
	_, err := client.Call(context.Background(), "echo", nil)
	require.NoError(t, err)

	assert.Equal(t, 1.0, value(t, consumerMetrics.RequestsSent.WithLabelValues("provider", "echo")))
	assert.Equal(t, 1.0, value(t, consumerMetrics.Responses.WithLabelValues("success")))
	assert.Equal(t, 1.0, value(t, providerMetrics.ActionsDispatched.WithLabelValues("echo", "registry")))
	assert.Equal(t, 1.0, value(t, providerMetrics.ResultsSent.WithLabelValues("success")))

	// Unknown response id.
	consumer.HandleRawURL(context.Background(), "consumer://x-callback-url/IACRequestResponse?IACRequestID=nope&IACResponseType=0")
	assert.Equal(t, 1.0, value(t, consumerMetrics.Dropped.WithLabelValues(domain.DropUnknownRequest)))
}

func TestMetrics_Handler(t *testing.T) {
	pending := 3
	m := observability.NewMetrics(func() int { return pending })
	m.Dropped.WithLabelValues(domain.DropNoCallback).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "xcallback_pending_requests 3")
	assert.Contains(t, body, `xcallback_dropped_total{reason="no_callback"} 1`)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "xcallback_pending_requests")
}

func TestCombine(t *testing.T) {
	var order []string
	first := domain.LifecycleHooks{
		OnDropped: func(context.Context, *domain.DropEvent) { order = append(order, "first") },
	}
	second := domain.LifecycleHooks{
		OnDropped:     func(context.Context, *domain.DropEvent) { order = append(order, "second") },
		OnRequestSent: func(context.Context, *domain.RequestEvent) { order = append(order, "sent") },
	}

	hooks := observability.Combine(first, domain.LifecycleHooks{}, second)
	hooks.OnDropped(context.Background(), &domain.DropEvent{})
	hooks.OnRequestSent(context.Background(), &domain.RequestEvent{})

	assert.Equal(t, []string{"first", "second", "sent"}, order)
	assert.Nil(t, hooks.OnResultSent)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LogHooks(slog.New(slog.NewTextHandler(&buf, nil)))

	hooks.OnDropped(context.Background(), &domain.DropEvent{Reason: domain.DropMalformedResponse, Detail: "abc"})
	hooks.OnResponseReceived(context.Background(), &domain.ResponseEvent{RequestID: "r1", Kind: domain.KindCancelled})

	out := buf.String()
	assert.True(t, strings.Contains(out, "level=WARN msg=dropped reason=malformed_response detail=abc"), out)
	assert.Contains(t, out, "request_id=r1 kind=cancelled")
}
