package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/jobboard/pkg/core"
)

// DefaultDebounce coalesces the burst of events an atomic rename produces.
const DefaultDebounce = 50 * time.Millisecond

// Follow emits the snapshot every time it is rewritten, typically by
// another jobboard process. The channel is closed when ctx ends.
//
// The parent directory is watched rather than the file, since each save
// replaces the file through a rename.
func (s *Store) Follow(ctx context.Context) (<-chan core.Snapshot, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan core.Snapshot, 1)
	s.setFollowing(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setFollowing(false)
		defer watcher.Close()
		return s.follow(ctx, watcher, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("snapshot follower stopped", "error", err)
	}))

	return out, nil
}

func (s *Store) follow(ctx context.Context, watcher *fsnotify.Watcher, out chan<- core.Snapshot) error {
	name := filepath.Base(s.path)
	timer := time.NewTimer(DefaultDebounce)
	timer.Stop()
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			s.logger.Debug("snapshot changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(DefaultDebounce)
			fire = timer.C

		case <-fire:
			fire = nil
			snap, err := s.Load(ctx)
			if err != nil {
				s.logger.Debug("snapshot not readable yet", "error", err)
				continue
			}
			select {
			case out <- snap:
			case <-ctx.Done():
				return nil
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.logger.Error("fsnotify error", "error", werr)
		}
	}
}
