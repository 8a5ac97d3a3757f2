package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// ErrNoRoute is returned when a URL is opened for a scheme nobody listens on.
var ErrNoRoute = errors.New("no application registered for scheme")

// Receiver is anything that accepts inbound URLs, typically a Manager.
type Receiver interface {
	HandleURL(ctx context.Context, u *url.URL) bool
}

// Delivery records one URL opened through the bus.
type Delivery struct {
	URL     string
	Handled bool
}

// Bus is an in-process stand-in for the operating system's URL launcher.
// Schemes are routed to receivers; opening a URL delivers it synchronously.
type Bus struct {
	mu        sync.Mutex
	routes    map[string]Receiver
	installed map[string]bool
	opened    []Delivery
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		routes:    make(map[string]Receiver),
		installed: make(map[string]bool),
	}
}

// Route delivers URLs with the given scheme to r.
func (b *Bus) Route(scheme string, r Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[strings.ToLower(scheme)] = r
}

// Install marks a scheme as handled without routing it anywhere.
// Opening such a URL only records it.
func (b *Bus) Install(scheme string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.installed[strings.ToLower(scheme)] = true
}

// Host returns a view of the bus for one application.
func (b *Bus) Host(displayName string) *Host {
	return &Host{bus: b, name: displayName}
}

// Opened returns every URL opened so far, in order.
func (b *Bus) Opened() []Delivery {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Delivery, len(b.opened))
	copy(out, b.opened)
	return out
}

// LastOpened returns the most recently opened URL, or "" if none.
func (b *Bus) LastOpened() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.opened) == 0 {
		return ""
	}
	return b.opened[len(b.opened)-1].URL
}

func (b *Bus) canOpen(scheme string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	scheme = strings.ToLower(scheme)
	_, routed := b.routes[scheme]
	return routed || b.installed[scheme]
}

func (b *Bus) open(ctx context.Context, u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)

	b.mu.Lock()
	r, routed := b.routes[scheme]
	installed := b.installed[scheme]
	idx := len(b.opened)
	b.opened = append(b.opened, Delivery{URL: u.String()})
	b.mu.Unlock()

	if !routed {
		if installed {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNoRoute, u.Scheme)
	}

	// Delivered outside the lock: the receiver may open URLs in turn.
	handled := r.HandleURL(ctx, u)

	b.mu.Lock()
	b.opened[idx].Handled = handled
	b.mu.Unlock()
	return nil
}

// Host implements ports.Host on top of a Bus.
type Host struct {
	bus  *Bus
	name string
}

// CanOpen reports whether the scheme is routed or installed.
func (h *Host) CanOpen(u *url.URL) bool {
	return h.bus.canOpen(u.Scheme)
}

// Open delivers the URL through the bus.
func (h *Host) Open(ctx context.Context, u *url.URL) error {
	return h.bus.open(ctx, u)
}

// DisplayName returns the application name given to Bus.Host.
func (h *Host) DisplayName() string {
	return h.name
}
