package runtime

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/xcallback/internal/logging"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/pending"
	"github.com/aretw0/xcallback/pkg/ports"
	"github.com/aretw0/xcallback/pkg/registry"
	"github.com/google/uuid"
)

// Engine is the x-callback-url protocol engine.
// It turns outgoing requests into URLs, keeps track of the ones awaiting a
// response, and routes every inbound URL either to the pending table or to
// an action strategy.
type Engine struct {
	mu             sync.RWMutex
	callbackScheme string
	delegate       ports.CapabilityDelegate
	extra          []ports.Strategy

	host     ports.Host
	registry *registry.Registry
	table    *pending.Table
	hooks    domain.LifecycleHooks
	logger   *slog.Logger

	failMalformed bool
	newID         func() string
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithCallbackScheme sets the scheme responses are addressed to.
func WithCallbackScheme(scheme string) EngineOption {
	return func(e *Engine) {
		e.callbackScheme = scheme
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithPendingTable replaces the default in-memory pending table.
func WithPendingTable(table *pending.Table) EngineOption {
	return func(e *Engine) {
		if table != nil {
			e.table = table
		}
	}
}

// WithRegistry replaces the default action registry.
func WithRegistry(r *registry.Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithStrategy appends a dispatch strategy consulted after the registry
// and the capability delegate.
func WithStrategy(s ports.Strategy) EngineOption {
	return func(e *Engine) {
		e.extra = append(e.extra, s)
	}
}

// WithFailMalformedResponses resolves requests whose response carries an
// unreadable IACResponseType with ErrMalformedResponse instead of
// discarding them silently.
func WithFailMalformedResponses(enabled bool) EngineOption {
	return func(e *Engine) {
		e.failMalformed = enabled
	}
}

// WithIDGenerator overrides the correlation id source.
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an engine that opens URLs through host.
func NewEngine(host ports.Host, opts ...EngineOption) *Engine {
	e := &Engine{
		host:   host,
		logger: logging.NewNop(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = registry.NewRegistry()
	}
	if e.table == nil {
		e.table = pending.NewTable(pending.WithLogger(e.logger))
	}
	return e
}

// CallbackScheme returns the configured callback scheme, or "".
func (e *Engine) CallbackScheme() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.callbackScheme
}

// SetCallbackScheme changes the callback scheme. An empty scheme limits the
// engine to fire-and-forget requests.
func (e *Engine) SetCallbackScheme(scheme string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbackScheme = scheme
}

// Delegate returns the current capability delegate.
func (e *Engine) Delegate() ports.CapabilityDelegate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.delegate
}

// SetDelegate registers or replaces the capability delegate. Passing nil removes it.
func (e *Engine) SetDelegate(d ports.CapabilityDelegate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delegate = d
}

// RegisterAction registers a handler for an inbound action, replacing any earlier one.
func (e *Engine) RegisterAction(name string, fn registry.ActionFunc) {
	e.registry.Register(name, fn)
}

// Registry returns the action registry.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Pending returns the pending-request table.
func (e *Engine) Pending() *pending.Table {
	return e.table
}

// Host returns the host the engine opens URLs with.
func (e *Engine) Host() ports.Host {
	return e.host
}

// AppName is the x-source value of outgoing requests.
func (e *Engine) AppName() string {
	if name := strings.TrimSpace(e.host.DisplayName()); name != "" {
		return name
	}
	return domain.DefaultAppName
}

// strategies returns the dispatch order: registry, delegate, then extras.
func (e *Engine) strategies() []ports.Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]ports.Strategy, 0, 2+len(e.extra))
	list = append(list, e.registry)
	if e.delegate != nil {
		list = append(list, delegateStrategy{e.delegate})
	}
	return append(list, e.extra...)
}
