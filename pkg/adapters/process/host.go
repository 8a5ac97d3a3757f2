package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/aretw0/xcallback/internal/logging"
)

// CommandRunner executes a command and returns its standard output.
type CommandRunner func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

// Host opens URLs by running the platform's URL opener.
type Host struct {
	cfg    Config
	name   string
	logger *slog.Logger
	run    CommandRunner
}

// HostOption configures the Host.
type HostOption func(*Host)

// WithLogger sets the logger used for command failures.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithDisplayName sets the name reported by DisplayName.
func WithDisplayName(name string) HostOption {
	return func(h *Host) {
		h.name = name
	}
}

// WithCommandRunner replaces os/exec, mainly for tests.
func WithCommandRunner(run CommandRunner) HostOption {
	return func(h *Host) {
		if run != nil {
			h.run = run
		}
	}
}

// NewHost creates a Host. Empty fields of cfg take platform defaults.
func NewHost(cfg Config, opts ...HostOption) *Host {
	h := &Host{
		cfg:    cfg.withDefaults(runtime.GOOS),
		logger: logging.NewNop(),
		run:    execRunner,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Config returns the effective configuration.
func (h *Host) Config() Config {
	return h.cfg
}

// DisplayName is the x-source value of this process.
func (h *Host) DisplayName() string {
	return h.name
}

// CanOpen reports whether some application handles u's scheme.
// Without a probe command the answer is optimistic and Open reports
// the real outcome.
func (h *Host) CanOpen(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	for _, s := range h.cfg.Schemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	if h.cfg.Probe == "" {
		return len(h.cfg.Schemes) == 0
	}

	ctx, cancel := h.context(context.Background())
	defer cancel()

	args, _ := expand(h.cfg.ProbeArgs, u.String(), scheme)
	out, err := h.run(ctx, h.env(), h.cfg.Probe, args...)
	if err != nil {
		h.logger.Debug("Scheme probe failed", "scheme", scheme, "err", err)
		return false
	}
	return len(bytes.TrimSpace(out)) > 0
}

// Open launches u with the configured opener.
func (h *Host) Open(ctx context.Context, u *url.URL) error {
	ctx, cancel := h.context(ctx)
	defer cancel()

	raw := u.String()
	args, substituted := expand(h.cfg.Args, raw, strings.ToLower(u.Scheme))
	if !substituted {
		args = append(args, raw)
	}

	if _, err := h.run(ctx, h.env(), h.cfg.Opener, args...); err != nil {
		h.logger.Warn("Failed to open URL", "opener", h.cfg.Opener, "url", raw, "err", err)
		return fmt.Errorf("open %s: %w", u.Scheme, err)
	}
	return nil
}

func (h *Host) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, h.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (h *Host) env() []string {
	env := make([]string, 0, len(h.cfg.Environment))
	for k, v := range h.cfg.Environment {
		env = append(env, k+"="+v)
	}
	return env
}

func execRunner(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
