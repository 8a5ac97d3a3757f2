package xcallback

import (
	"context"
	"net/url"

	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
)

// Client sends actions to one target application.
type Client struct {
	// Scheme is the target application's URL scheme.
	Scheme string

	// Manager sends the requests. Nil means Default().
	Manager *Manager

	// NormalizeCode interprets the error-Code of failure responses.
	NormalizeCode func(string) int
}

// NewClient returns a client for the application registered under scheme.
func NewClient(scheme string) *Client {
	return &Client{Scheme: scheme}
}

func (c *Client) manager() *Manager {
	if c.Manager != nil {
		return c.Manager
	}
	return Default()
}

// IsInstalled reports whether an application handles the client's scheme.
func (c *Client) IsInstalled() bool {
	return c.manager().Host().CanOpen(&url.URL{Scheme: c.Scheme, Host: "test"})
}

// Perform launches action with params. A nil handler sends the action
// without callback URLs.
func (c *Client) Perform(ctx context.Context, action string, params query.Pairs, handler domain.ResultHandler) error {
	return c.manager().Send(ctx, c.request(action, params, handler))
}

// Reply is the outcome of a blocking Call that did not fail.
type Reply struct {
	Data      domain.Parameters
	Cancelled bool
}

// Call launches action and waits for the target to answer.
//
// A failure response is returned as a *domain.Error. When ctx ends first the
// request is dropped from the pending table and ctx.Err() is returned.
func (c *Client) Call(ctx context.Context, action string, params query.Pairs) (Reply, error) {
	results := make(chan domain.Result, 1)
	req := c.request(action, params, func(r domain.Result) {
		results <- r
	})

	m := c.manager()
	if err := m.Send(ctx, req); err != nil {
		return Reply{}, err
	}

	select {
	case r := <-results:
		switch r.Kind {
		case domain.KindSuccess:
			return Reply{Data: r.Data}, nil
		case domain.KindCancelled:
			return Reply{Cancelled: true}, nil
		default:
			return Reply{}, r.Err
		}
	case <-ctx.Done():
		m.Pending().Discard(context.WithoutCancel(ctx), req.ID)
		return Reply{}, ctx.Err()
	}
}

func (c *Client) request(action string, params query.Pairs, handler domain.ResultHandler) *domain.Request {
	return &domain.Request{
		Scheme:        c.Scheme,
		Action:        action,
		Params:        params,
		Handler:       handler,
		NormalizeCode: c.NormalizeCode,
	}
}
