package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/jobboard/pkg/core"
)

// options holds the internal configuration for the board service.
type options struct {
	remote      core.Remote
	snapshotter core.Snapshotter
	logger      *slog.Logger

	httpClient  *http.Client
	timeout     time.Duration
	cookieName  string
	cookieValue string
	csrfHeader  string

	snapshotPath    string
	snapshotEnabled bool

	eventBuffer int
	readOnly    bool
	onUnauth    func()
}

// Option defines a functional option for configuring the board service.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		snapshotEnabled: true,
	}
}

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRemote injects a custom remote (e.g. a mock). When set, the HTTP
// options are ignored.
func WithRemote(r core.Remote) Option {
	return func(o *options) {
		o.remote = r
	}
}

// WithSnapshotter injects a custom snapshot store.
func WithSnapshotter(s core.Snapshotter) Option {
	return func(o *options) {
		o.snapshotter = s
	}
}

// WithSnapshotPath sets where the last loaded board is kept on disk.
// Empty means DefaultSnapshotPath.
func WithSnapshotPath(path string) Option {
	return func(o *options) {
		o.snapshotPath = path
	}
}

// WithSnapshots enables or disables the on-disk snapshot. Enabled by default.
func WithSnapshots(enabled bool) Option {
	return func(o *options) {
		o.snapshotEnabled = enabled
	}
}

// WithEventBuffer sets the size of the board event buffer.
// Zero means default (core.DefaultEventBuffer).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Drop, Submit and delete return core.ErrReadOnly without calling the server.
// 2. The snapshot is read but never written.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.readOnly = enabled
	}
}

// WithHTTPClient sets the HTTP client template used by the REST remote.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithTimeout bounds every HTTP request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithSessionCookie seeds the session credential. An empty name keeps the
// default cookie name.
func WithSessionCookie(name, value string) Option {
	return func(o *options) {
		if name != "" {
			o.cookieName = name
		}
		o.cookieValue = value
	}
}

// WithCSRFHeader overrides the header carrying the anti-forgery token.
func WithCSRFHeader(name string) Option {
	return func(o *options) {
		o.csrfHeader = name
	}
}

// WithUnauthenticatedHandler registers the callback run whenever the server
// rejects the session, typically to send the user back to the login flow.
func WithUnauthenticatedHandler(fn func()) Option {
	return func(o *options) {
		o.onUnauth = fn
	}
}
