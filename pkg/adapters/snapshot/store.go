// Package snapshot keeps the last board loaded from the server on disk,
// so it can be rendered offline and followed from another process.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/jobboard/pkg/core"
)

// FileName is the default snapshot file name.
const FileName = "board.json"

const formatVersion = 1

// file is the on-disk layout.
type file struct {
	Version  int           `json:"version"`
	Snapshot core.Snapshot `json:"snapshot"`
}

// Store implements core.Snapshotter on a single JSON file.
type Store struct {
	path     string
	logger   *slog.Logger
	readOnly bool

	mu        sync.RWMutex
	lastSave  *time.Time
	lastCount int
	following bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReadOnly makes Save and Clear no-ops. Load still works.
func WithReadOnly(ro bool) Option {
	return func(s *Store) { s.readOnly = ro }
}

// New returns a Store writing to path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Save writes snap atomically. The file is private to the user.
func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.readOnly {
		s.logger.Debug("read-only, snapshot not written", "path", s.path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	err := replaceFile(s.path, 0o600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file{Version: formatVersion, Snapshot: snap}); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.lastSave = &now
	s.lastCount = len(snap.Items)
	s.mu.Unlock()
	s.logger.Debug("snapshot saved", "path", s.path, "count", len(snap.Items))
	return nil
}

// Load reads the snapshot. A missing file yields core.ErrNotFound; so does
// a corrupted or foreign file, which is logged and otherwise ignored.
func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Snapshot{}, fmt.Errorf("snapshot %s: %w", s.path, core.ErrNotFound)
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil || f.Version != formatVersion {
		s.logger.Warn("ignoring unreadable snapshot", "path", s.path, "error", err, "version", f.Version)
		return core.Snapshot{}, fmt.Errorf("snapshot %s unreadable: %w", s.path, core.ErrNotFound)
	}
	return f.Snapshot, nil
}

// Clear removes the snapshot file.
func (s *Store) Clear(ctx context.Context) error {
	if s.readOnly {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	s.mu.Lock()
	s.lastSave = nil
	s.lastCount = 0
	s.mu.Unlock()
	return nil
}

func (s *Store) setFollowing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.following = v
}

var _ core.Snapshotter = (*Store)(nil)
