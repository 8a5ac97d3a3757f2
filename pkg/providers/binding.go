package providers

import (
	"context"
	"errors"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/pkg/domain"
)

// Binding calls the actions of one provider through a Manager.
type Binding struct {
	Provider *Provider
	client   *xcallback.Client
}

// Bind returns a Binding for p. A nil manager means xcallback.Default().
func Bind(p *Provider, m *xcallback.Manager) *Binding {
	return &Binding{
		Provider: p,
		client:   &xcallback.Client{Scheme: p.Scheme, Manager: m},
	}
}

// Call performs action and waits for the answer. It reports true on
// success and false when the provider cancelled.
func (b *Binding) Call(ctx context.Context, action string, args map[string]any) (bool, error) {
	params, err := b.Provider.Params(action, args)
	if err != nil {
		return false, err
	}

	reply, err := b.client.Call(ctx, action, params)
	if err != nil {
		return false, b.describe(err)
	}
	return !reply.Cancelled, nil
}

// Fire performs action without waiting for an answer.
func (b *Binding) Fire(ctx context.Context, action string, args map[string]any) error {
	params, err := b.Provider.Params(action, args)
	if err != nil {
		return err
	}
	return b.client.Perform(ctx, action, params, nil)
}

// IsInstalled reports whether the provider's scheme has a handler.
func (b *Binding) IsInstalled() bool {
	return b.client.IsInstalled()
}

// describe fills an empty failure message from the provider's documented codes.
func (b *Binding) describe(err error) error {
	var perr *domain.Error
	if !errors.As(err, &perr) || perr.Message != "" || perr.Domain == domain.ManagerErrorDomain {
		return err
	}
	if msg, ok := b.Provider.ErrorMessage(perr.Code); ok {
		return &domain.Error{Domain: perr.Domain, Code: perr.Code, Message: msg}
	}
	return err
}
