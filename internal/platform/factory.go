package platform

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/jobboard/pkg/adapters/rest"
	"github.com/aretw0/jobboard/pkg/adapters/snapshot"
	"github.com/aretw0/jobboard/pkg/core"
)

// New wires a board service for the server at apiURL.
//
//	svc, err := jobboard.New("https://jobs.example.com", jobboard.WithSessionCookie("", cookie))
//
// apiURL is ignored when a remote is injected with WithRemote.
func New(apiURL string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	remote, err := buildRemote(apiURL, o, logger)
	if err != nil {
		return nil, err
	}

	snaps, err := buildSnapshotter(o, logger)
	if err != nil {
		return nil, err
	}

	return core.NewService(remote, core.ServiceConfig{
		Logger:            logger,
		Snapshots:         snaps,
		ReadOnly:          o.readOnly,
		EventBuffer:       o.eventBuffer,
		OnUnauthenticated: o.onUnauth,
	}), nil
}

func buildRemote(apiURL string, o *options, logger *slog.Logger) (core.Remote, error) {
	if o.remote != nil {
		return o.remote, nil
	}
	c, err := rest.New(rest.Config{
		BaseURL:     apiURL,
		HTTPClient:  o.httpClient,
		Timeout:     o.timeout,
		CookieName:  o.cookieName,
		CookieValue: o.cookieValue,
		CSRFHeader:  o.csrfHeader,
		Logger:      logger.With("component", "rest"),
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func buildSnapshotter(o *options, logger *slog.Logger) (core.Snapshotter, error) {
	if o.snapshotter != nil {
		return o.snapshotter, nil
	}
	if !o.snapshotEnabled {
		return nil, nil
	}
	path := o.snapshotPath
	if path == "" {
		p, err := DefaultSnapshotPath()
		if err != nil {
			return nil, fmt.Errorf("snapshot path: %w", err)
		}
		path = p
	}
	return snapshot.New(path,
		snapshot.WithLogger(logger.With("component", "snapshot")),
		snapshot.WithReadOnly(o.readOnly),
	), nil
}
