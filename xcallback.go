package xcallback

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/aretw0/xcallback/internal/logging"
	"github.com/aretw0/xcallback/internal/runtime"
	"github.com/aretw0/xcallback/pkg/adapters/process"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/pending"
	"github.com/aretw0/xcallback/pkg/ports"
	"github.com/aretw0/xcallback/pkg/registry"
)

// Manager is the high-level entry point for the xcallback library.
// It wraps the internal protocol engine and provides a simplified API for
// host applications.
type Manager struct {
	engine        *runtime.Engine
	host          ports.Host
	journal       ports.Journal
	hooks         domain.LifecycleHooks
	logger        *slog.Logger
	engineOpts    []runtime.EngineOption
	failMalformed bool
}

// Option defines a functional option for configuring the Manager.
type Option func(*Manager)

// WithHost sets the collaborator used to open URLs.
// Without it the manager opens URLs through the operating system.
func WithHost(host ports.Host) Option {
	return func(m *Manager) {
		m.host = host
	}
}

// WithCallbackScheme sets the URL scheme responses are routed back on.
func WithCallbackScheme(scheme string) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, runtime.WithCallbackScheme(scheme))
	}
}

// WithLogger sets a custom structured logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithJournal mirrors pending requests into a journal.
func WithJournal(journal ports.Journal) Option {
	return func(m *Manager) {
		m.journal = journal
	}
}

// WithStrategy appends a dispatch strategy consulted after registered
// actions and the capability delegate.
func WithStrategy(s ports.Strategy) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, runtime.WithStrategy(s))
	}
}

// WithFailMalformedResponses resolves requests whose response cannot be
// decoded with domain.ErrMalformedResponse instead of dropping them.
func WithFailMalformedResponses() Option {
	return func(m *Manager) {
		m.failMalformed = true
	}
}

// WithIDGenerator overrides how correlation ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, runtime.WithIDGenerator(fn))
	}
}

// New initializes a new Manager.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.host == nil {
		m.host = process.NewHost(process.Config{}, process.WithLogger(m.logger))
	}

	tableOpts := []pending.Option{pending.WithLogger(m.logger)}
	if m.journal != nil {
		tableOpts = append(tableOpts, pending.WithJournal(m.journal))
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(m.logger),
		runtime.WithLifecycleHooks(m.hooks),
		runtime.WithPendingTable(pending.NewTable(tableOpts...)),
		runtime.WithFailMalformedResponses(m.failMalformed),
	}
	engineOpts = append(engineOpts, m.engineOpts...)

	m.engine = runtime.NewEngine(m.host, engineOpts...)
	return m
}

var (
	defaultMu      sync.Mutex
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it on first use.
// Clients without an explicit Manager send through it.
func Default() *Manager {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultManager == nil {
		defaultManager = New()
	}
	return defaultManager
}

// SetDefault replaces the process-wide manager.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// HandleAction registers the handler for an inbound action.
// Later registrations for the same name replace earlier ones.
func (m *Manager) HandleAction(name string, fn registry.ActionFunc) {
	m.engine.RegisterAction(name, fn)
}

// SetDelegate registers or replaces the capability delegate consulted for
// actions without a registered handler. Passing nil removes it.
func (m *Manager) SetDelegate(d ports.CapabilityDelegate) {
	m.engine.SetDelegate(d)
}

// SetCallbackScheme configures the scheme this process receives responses on.
func (m *Manager) SetCallbackScheme(scheme string) {
	m.engine.SetCallbackScheme(scheme)
}

// CallbackScheme returns the configured callback scheme.
func (m *Manager) CallbackScheme() string {
	return m.engine.CallbackScheme()
}

// HandleURL feeds an inbound URL to the dispatch engine.
// It returns false for URLs that do not belong to this protocol.
func (m *Manager) HandleURL(ctx context.Context, u *url.URL) bool {
	return m.engine.HandleURL(ctx, u)
}

// HandleRawURL parses and handles an inbound URL string.
func (m *Manager) HandleRawURL(ctx context.Context, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		m.logger.Debug("Ignoring unparsable URL", "url", raw, "err", err)
		return false
	}
	return m.HandleURL(ctx, u)
}

// Classify reports how an inbound URL would be routed.
func (m *Manager) Classify(u *url.URL) runtime.Envelope {
	return m.engine.Classify(u)
}

// Send launches a request. See Client for a friendlier API.
func (m *Manager) Send(ctx context.Context, req *domain.Request) error {
	return m.engine.Send(ctx, req)
}

// BuildURL renders a request without launching it.
func (m *Manager) BuildURL(req *domain.Request) (*url.URL, error) {
	return m.engine.BuildURL(req)
}

// Pending returns the table of requests awaiting a response.
func (m *Manager) Pending() *pending.Table {
	return m.engine.Pending()
}

// Actions lists the registered action names.
func (m *Manager) Actions() []string {
	return m.engine.Registry().Names()
}

// Host returns the host collaborator.
func (m *Manager) Host() ports.Host {
	return m.host
}

// AppName is the x-source value this manager sends.
func (m *Manager) AppName() string {
	return m.engine.AppName()
}
