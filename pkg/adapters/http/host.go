package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/xcallback/internal/logging"
)

// Host implements ports.Host by posting URLs to the bus of the process
// that owns their scheme.
type Host struct {
	name   string
	routes map[string]string
	client *http.Client
	logger *slog.Logger
}

// HostOption configures the Host.
type HostOption func(*Host)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(c *http.Client) HostOption {
	return func(h *Host) {
		if c != nil {
			h.client = c
		}
	}
}

// WithHostLogger sets the logger for delivery failures.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHost creates a Host. routes maps a scheme to the base URL of the bus
// serving it, e.g. "funbox" -> "http://127.0.0.1:8337".
func NewHost(displayName string, routes map[string]string, opts ...HostOption) *Host {
	h := &Host{
		name:   displayName,
		routes: make(map[string]string, len(routes)),
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logging.NewNop(),
	}
	for scheme, base := range routes {
		h.Route(scheme, base)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Route adds or replaces the bus for scheme. Not safe for use concurrently
// with Open.
func (h *Host) Route(scheme, base string) {
	h.routes[strings.ToLower(scheme)] = strings.TrimSuffix(base, "/")
}

// DisplayName is the x-source value of this process.
func (h *Host) DisplayName() string {
	return h.name
}

// CanOpen reports whether a bus is routed for u's scheme.
func (h *Host) CanOpen(u *url.URL) bool {
	_, ok := h.routes[strings.ToLower(u.Scheme)]
	return ok
}

// Open posts u to the bus for its scheme.
func (h *Host) Open(ctx context.Context, u *url.URL) error {
	base, ok := h.routes[strings.ToLower(u.Scheme)]
	if !ok {
		return fmt.Errorf("no bus routed for scheme %q", u.Scheme)
	}
	_, err := Deliver(ctx, h.client, base, u.String())
	if err != nil {
		h.logger.Warn("Delivery failed", "bus", base, "err", err)
	}
	return err
}

// Deliver posts raw to the bus at base and reports whether it was handled.
func Deliver(ctx context.Context, client *http.Client, base, raw string) (bool, error) {
	body, err := json.Marshal(OpenRequest{URL: raw})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(base, "/")+"/open", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("invalid bus address %q: %w", base, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("deliver to %s: %w", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("deliver to %s: unexpected status %s", base, resp.Status)
	}

	var out OpenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("deliver to %s: invalid response: %w", base, err)
	}
	return out.Handled, nil
}
