package jobboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/jobboard/internal/platform"
	"github.com/aretw0/jobboard/pkg/core"
)

// --- Types ---

// Service is the board synchronization engine.
type Service = core.Service

// Config is the on-disk CLI configuration.
type Config = platform.Config

// Duration is a config duration accepting "15s" or plain seconds.
type Duration = platform.Duration

// ErrConfigNotFound is returned by FindConfig when no config file exists.
var ErrConfigNotFound = platform.ErrConfigNotFound

// --- Configuration ---

// Option defines a functional option for configuring the board service.
type Option = platform.Option

// WithLogger sets the logger for the service and its adapters.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRemote injects a custom remote, bypassing the REST client.
func WithRemote(r core.Remote) Option {
	return platform.WithRemote(r)
}

// WithSnapshotter injects a custom snapshot store.
func WithSnapshotter(s core.Snapshotter) Option {
	return platform.WithSnapshotter(s)
}

// WithSnapshotPath sets the file the last loaded board is kept in.
func WithSnapshotPath(path string) Option {
	return platform.WithSnapshotPath(path)
}

// WithSnapshots enables or disables the local board snapshot.
func WithSnapshots(enabled bool) Option {
	return platform.WithSnapshots(enabled)
}

// WithEventBuffer sets the size of the board event buffer.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithReadOnly rejects every mutation locally.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithHTTPClient sets the HTTP client used by the REST remote.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithTimeout bounds each REST request.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithSessionCookie seeds the session cookie. An empty name keeps the default.
func WithSessionCookie(name, value string) Option {
	return platform.WithSessionCookie(name, value)
}

// WithCSRFHeader sets the header the CSRF token travels in.
func WithCSRFHeader(name string) Option {
	return platform.WithCSRFHeader(name)
}

// WithUnauthenticatedHandler registers fn to run when the server rejects the session.
func WithUnauthenticatedHandler(fn func()) Option {
	return platform.WithUnauthenticatedHandler(fn)
}

// --- Factory ---

// New creates a board service for the server at apiURL.
func New(apiURL string, opts ...Option) (*Service, error) {
	return platform.New(apiURL, opts...)
}

// Open loads the configuration at path and creates a service from it.
// Extra options are applied after the configured ones.
func Open(path string, opts ...Option) (*Service, *Config, error) {
	cfg, err := platform.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	svc, err := platform.New(cfg.APIURL, append(cfg.Options(), opts...)...)
	if err != nil {
		return nil, cfg, err
	}
	return svc, cfg, nil
}

// --- Config & Utils ---

// FindConfig looks upwards from startDir for a config file, then falls
// back to the user config directory.
func FindConfig(startDir string) (string, error) {
	return platform.FindConfig(startDir)
}

// LoadConfig reads a config file. An empty path reads the environment only.
func LoadConfig(path string) (*Config, error) {
	return platform.LoadConfig(path)
}

// WriteConfig stores a config file with private permissions.
func WriteConfig(path string, c *Config) error {
	return platform.WriteConfig(path, c)
}

// UserConfigPath is where `jobboard init` writes by default.
func UserConfigPath() (string, error) {
	return platform.UserConfigPath()
}

// DefaultSnapshotPath is where the board snapshot lives by default.
func DefaultSnapshotPath() (string, error) {
	return platform.DefaultSnapshotPath()
}

// ExpandUploads resolves file paths and glob patterns into uploads.
func ExpandUploads(patterns []string) ([]core.Upload, error) {
	return platform.ExpandUploads(patterns)
}
