package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/ports"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Strategy = (*registry.Registry)(nil)

func TestRegistry_RegisterAndPerform(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("echo", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"echo": p["in"]})
	}))

	assert.True(t, r.Supports("echo"))
	assert.False(t, r.Supports("other"))

	var got domain.Result
	r.Perform(context.Background(), "echo", domain.Parameters{"in": "hi"}, func(res domain.Result) { got = res })

	assert.Equal(t, domain.KindSuccess, got.Kind)
	assert.Equal(t, "hi", got.Data["echo"])
}

func TestRegistry_LaterRegistrationReplaces(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("a", registry.Func(func(context.Context, domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"v": "1"})
	}))
	r.Register("a", registry.Func(func(context.Context, domain.Parameters) domain.Result {
		return domain.Cancelled()
	}))

	var got domain.Result
	r.Perform(context.Background(), "a", nil, func(res domain.Result) { got = res })
	assert.Equal(t, domain.KindCancelled, got.Kind)
	assert.Equal(t, []string{"a"}, r.Names())
}

func TestRegistry_PerformUnknown(t *testing.T) {
	r := registry.NewRegistry()

	var got domain.Result
	r.Perform(context.Background(), "missing", nil, func(res domain.Result) { got = res })

	require.Equal(t, domain.KindFailure, got.Kind)
	assert.ErrorIs(t, got.Err, domain.ErrActionNotSupported)
}

func TestRegistry_Unregister(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("a", func(context.Context, domain.Parameters, domain.ResultHandler) {})
	r.Unregister("a")
	assert.False(t, r.Supports("a"))
	assert.Empty(t, r.Names())
}
