package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/pkg/adapters/file"
	xhttp "github.com/aretw0/xcallback/pkg/adapters/http"
	"github.com/aretw0/xcallback/pkg/adapters/process"
	"github.com/aretw0/xcallback/pkg/adapters/redis"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/observability"
	"github.com/aretw0/xcallback/pkg/ports"
	"github.com/aretw0/xcallback/pkg/providers"
)

// Options collects the persistent CLI flags.
type Options struct {
	Debug          bool
	CallbackScheme string
	AppName        string
	ConfigPath     string
	CatalogPath    string
	JournalDir     string
	RedisURL       string

	// Routes, when set, sends URLs to HTTP buses instead of the OS opener.
	Routes map[string]string
}

// NewManager builds a Manager following the CLI conventions: the OS opener
// unless bus routes are given, an optional journal, and debug hooks.
func NewManager(opts Options, logger *slog.Logger, extra ...xcallback.Option) (*xcallback.Manager, error) {
	host, err := createHost(opts, logger)
	if err != nil {
		return nil, err
	}

	managerOpts := []xcallback.Option{
		xcallback.WithHost(host),
		xcallback.WithLogger(logger),
		xcallback.WithCallbackScheme(opts.CallbackScheme),
	}

	journal, err := createJournal(opts)
	if err != nil {
		return nil, err
	}
	if journal != nil {
		managerOpts = append(managerOpts, xcallback.WithJournal(journal))
	}
	if opts.Debug {
		managerOpts = append(managerOpts, xcallback.WithLifecycleHooks(createDebugHooks(logger)))
	}

	return xcallback.New(append(managerOpts, extra...)...), nil
}

func createHost(opts Options, logger *slog.Logger) (ports.Host, error) {
	if len(opts.Routes) > 0 {
		return xhttp.NewHost(opts.AppName, opts.Routes, xhttp.WithHostLogger(logger)), nil
	}

	cfg := process.Config{}
	if opts.ConfigPath != "" {
		loaded, err := process.LoadConfig(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return process.NewHost(cfg,
		process.WithDisplayName(opts.AppName),
		process.WithLogger(logger),
	), nil
}

func createJournal(opts Options) (ports.Journal, error) {
	switch {
	case opts.RedisURL != "" && opts.JournalDir != "":
		return nil, fmt.Errorf("--journal-dir and --redis are mutually exclusive")
	case opts.RedisURL != "":
		return redis.NewFromURL(opts.RedisURL)
	case opts.JournalDir != "":
		return file.NewJournal(opts.JournalDir), nil
	default:
		return nil, nil
	}
}

// LoadCatalog returns the builtin providers, extended by the catalog file at
// path when one is given.
func LoadCatalog(path string) (*providers.Catalog, error) {
	catalog := providers.Builtin()
	if path == "" {
		return catalog, nil
	}
	custom, err := providers.Load(path)
	if err != nil {
		return nil, err
	}
	catalog.Merge(custom)
	return catalog, nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequestSent: func(ctx context.Context, e *domain.RequestEvent) {
			logger.Debug("Request Sent", "request_id", e.RequestID, "url", e.URL)
		},
		OnResponseReceived: func(ctx context.Context, e *domain.ResponseEvent) {
			logger.Debug("Response Received", "request_id", e.RequestID, "kind", e.Kind.String())
		},
		OnActionDispatched: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Debug("Action Dispatched", "action", e.Action, "strategy", e.Strategy)
		},
		OnResultSent: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Debug("Result Sent", "action", e.Action, "kind", e.Kind.String())
		},
		OnDropped: func(ctx context.Context, e *domain.DropEvent) {
			logger.Debug("Dropped", "reason", e.Reason, "detail", e.Detail)
		},
	}
}
