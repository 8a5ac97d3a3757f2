package ports

import (
	"context"
	"net/url"
)

// Host is the operating-system side of the protocol: the only channel
// between applications is opening a URL.
type Host interface {
	// CanOpen reports whether some installed application handles the URL's scheme.
	CanOpen(u *url.URL) bool

	// Open launches the URL. No completion signal is assumed beyond the
	// returned error.
	Open(ctx context.Context, u *url.URL) error

	// DisplayName names the current application; it is sent as x-source.
	DisplayName() string
}
