package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultEventBuffer is the capacity of the event stream when none is set.
const DefaultEventBuffer = 64

// ServiceConfig holds the collaborators of a Service. Only the remote is
// mandatory.
type ServiceConfig struct {
	Logger      *slog.Logger
	Snapshots   Snapshotter
	ReadOnly    bool
	EventBuffer int

	// OnUnauthenticated is called whenever the remote reports the session
	// as invalid. It is where a UI sends the user back to the login flow.
	OnUnauthenticated func()
}

// Service is one signed-in board session. It is created once per session,
// loaded by Start and emptied by Logout or Clear.
type Service struct {
	remote    Remote
	snapshots Snapshotter
	logger    *slog.Logger
	readOnly  bool
	onUnauth  func()

	board *BoardStore
	moves *TransitionCoordinator
	gate  *ConfirmationGate

	// filterSeq tags filter requests; only the latest one may load.
	filterSeq atomic.Uint64
	loadMu    sync.Mutex

	mu   sync.RWMutex
	user *User

	events  chan Event
	dropped atomic.Uint64
}

// NewService creates a Service on top of remote.
func NewService(remote Remote, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	buf := cfg.EventBuffer
	if buf <= 0 {
		buf = DefaultEventBuffer
	}

	s := &Service{
		remote:    remote,
		snapshots: cfg.Snapshots,
		logger:    logger,
		readOnly:  cfg.ReadOnly,
		onUnauth:  cfg.OnUnauthenticated,
		board:     NewBoardStore(),
		events:    make(chan Event, buf),
	}
	s.moves = NewTransitionCoordinator(s.board, remote, logger)
	s.moves.publish = s.publish
	s.moves.onFailed = s.surface
	s.gate = NewConfirmationGate(s.deleteJob)
	return s
}

// Board exposes the read views of the local board.
func (s *Service) Board() *BoardStore { return s.board }

// Columns returns the board bucketed by stage.
func (s *Service) Columns() []Column { return s.board.Columns() }

// Events streams every local board change. Events are dropped, never
// blocked on, when the buffer is full.
func (s *Service) Events() <-chan Event { return s.events }

func (s *Service) publish(e Event) {
	select {
	case s.events <- e:
	default:
		s.dropped.Add(1)
		s.logger.Debug("event dropped, buffer full", "id", e.ID, "type", e.Type)
	}
}

// surface reports a remote failure. An invalid session is forwarded to
// the unauthenticated hook.
func (s *Service) surface(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, ErrUnauthenticated) {
		s.logger.Warn("session rejected by remote", "error", err)
		if s.onUnauth != nil {
			s.onUnauth()
		}
		return
	}
	s.logger.Error("remote call failed", "error", err)
}

func (s *Service) writable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// Start checks the session and loads the board with the current filter.
func (s *Service) Start(ctx context.Context) (User, error) {
	u, err := s.remote.CurrentUser(ctx)
	if err != nil {
		s.surface(err)
		return User{}, fmt.Errorf("session check: %w", err)
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()

	if _, err := s.Refresh(ctx); err != nil {
		return u, err
	}
	return u, nil
}

// User returns the identity of the session.
func (s *Service) User() (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, ErrNoSession
	}
	return *s.user, nil
}

// ApplyFilter fetches the jobs matching spec and loads them. When a newer
// filter request was issued while this one was in flight, the response
// is discarded and applied reports false.
func (s *Service) ApplyFilter(ctx context.Context, spec FilterSpec) (applied bool, err error) {
	seq := s.filterSeq.Add(1)
	items, err := s.remote.ListJobs(ctx, BuildQuery(spec))

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if latest := s.filterSeq.Load(); seq != latest {
		s.logger.Debug("stale filter response discarded", "seq", seq, "latest", latest)
		return false, nil
	}
	if err != nil {
		s.surface(err)
		return false, fmt.Errorf("list jobs: %w", err)
	}
	if err := s.board.Load(items); err != nil {
		return false, err
	}
	s.board.SetFilter(spec)
	s.publish(newEvent(EventLoaded, 0))
	s.logger.Debug("board loaded", "seq", seq, "count", s.board.Len())
	s.saveSnapshot(ctx, spec)
	return true, nil
}

func (s *Service) saveSnapshot(ctx context.Context, spec FilterSpec) {
	if s.snapshots == nil {
		return
	}
	snap := Snapshot{Filter: spec, Items: s.board.Items(), SavedAt: time.Now().UTC()}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.logger.Warn("snapshot not saved", "error", err)
	}
}

// Refresh re-fetches the board with the active filter.
func (s *Service) Refresh(ctx context.Context) (bool, error) {
	return s.ApplyFilter(ctx, s.board.Filter())
}

// ResetFilter loads the unfiltered board.
func (s *Service) ResetFilter(ctx context.Context) (bool, error) {
	return s.ApplyFilter(ctx, FilterSpec{})
}

// RemoveFilterKey clears one key of the active filter and re-fetches.
func (s *Service) RemoveFilterKey(ctx context.Context, key FilterKey) (bool, error) {
	return s.ApplyFilter(ctx, s.board.Filter().Without(key))
}

// Drop moves a job to another stage optimistically. See
// TransitionCoordinator.Drop.
func (s *Service) Drop(ctx context.Context, id int64, target Stage) (*Transition, error) {
	if err := s.writable(); err != nil {
		return nil, err
	}
	return s.moves.Drop(ctx, id, target)
}

// Edit opens an edit session on the job with the given id.
func (s *Service) Edit(id int64) (*EditSession, error) {
	item, err := s.board.Get(id)
	if err != nil {
		return nil, err
	}
	return NewEditSession(item), nil
}

// NewDraft opens an edit session for a new job.
func (s *Service) NewDraft() *EditSession { return NewDraftSession() }

// Submit commits an edit session. On success the board holds the job the
// remote returned. On failure the board is untouched and the session can
// be corrected and submitted again.
func (s *Service) Submit(ctx context.Context, sess *EditSession) (JobItem, error) {
	if err := s.writable(); err != nil {
		return JobItem{}, err
	}
	cs, err := sess.ChangeSet()
	if err != nil {
		return JobItem{}, err
	}

	if sess.IsDraft() {
		created, err := s.remote.CreateJob(ctx, cs)
		if err != nil {
			s.surface(err)
			return JobItem{}, fmt.Errorf("create job: %w", err)
		}
		if !created.Persisted() {
			// Bare acknowledgement: the server kept the job but did not echo it.
			_, err := s.Refresh(ctx)
			return created, err
		}
		if err := s.board.Add(created); err != nil {
			return created, err
		}
		s.publish(newEvent(EventCreated, created.ID))
		s.logger.Info("job created", "id", created.ID)
		return created, nil
	}

	id := sess.Baseline().ID
	updated, err := s.remote.UpdateJob(ctx, id, cs)
	if err != nil {
		s.surface(err)
		return JobItem{}, fmt.Errorf("update job %d: %w", id, err)
	}
	if !updated.Persisted() {
		_, err := s.Refresh(ctx)
		return updated, err
	}
	if err := s.board.Replace(id, updated); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return updated, err
		}
		s.logger.Debug("updated job is no longer on the board", "id", id)
	} else {
		s.publish(newEvent(EventReplaced, id))
	}
	s.logger.Info("job updated", "id", id)
	return updated, nil
}

// RequestDelete arms the delete confirmation for id.
func (s *Service) RequestDelete(id int64) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, err := s.board.Get(id); err != nil {
		return err
	}
	s.gate.RequestConfirm(id)
	return nil
}

// PendingDelete returns the job awaiting delete confirmation.
func (s *Service) PendingDelete() (int64, bool) { return s.gate.Armed() }

// CancelDelete disarms the delete confirmation.
func (s *Service) CancelDelete() { s.gate.Cancel() }

// ConfirmDelete deletes the armed job. It reports false when nothing was
// armed.
func (s *Service) ConfirmDelete(ctx context.Context) (bool, error) {
	if err := s.writable(); err != nil {
		return false, err
	}
	return s.gate.Confirm(ctx)
}

func (s *Service) deleteJob(ctx context.Context, id int64) error {
	if err := s.remote.DeleteJob(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.surface(err)
			return fmt.Errorf("delete job %d: %w", id, err)
		}
		s.logger.Debug("job already gone remotely", "id", id)
	}
	s.board.Remove(id)
	s.publish(newEvent(EventRemoved, id))
	s.logger.Info("job deleted", "id", id)
	return nil
}

// RestoreSnapshot loads the last saved board without contacting the
// remote.
func (s *Service) RestoreSnapshot(ctx context.Context) (Snapshot, error) {
	if s.snapshots == nil {
		return Snapshot{}, fmt.Errorf("no snapshot store: %w", ErrNotFound)
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	s.filterSeq.Add(1)
	if err := s.board.Load(snap.Items); err != nil {
		return Snapshot{}, err
	}
	s.board.SetFilter(snap.Filter)
	s.publish(newEvent(EventLoaded, 0))
	return snap, nil
}

// Clear forgets the session and empties the board. Filter responses still
// in flight are discarded.
func (s *Service) Clear() {
	s.loadMu.Lock()
	s.filterSeq.Add(1)
	s.board.Clear()
	s.loadMu.Unlock()

	s.gate.Cancel()
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.publish(newEvent(EventCleared, 0))
}

// Logout ends the remote session when the remote supports it, then clears
// the board and the saved snapshot.
func (s *Service) Logout(ctx context.Context) error {
	var errs []error
	if closer, ok := s.remote.(SessionCloser); ok {
		if err := closer.Logout(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logout: %w", err))
		}
	}
	s.Clear()
	if s.snapshots != nil {
		if err := s.snapshots.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear snapshot: %w", err))
		}
	}
	return errors.Join(errs...)
}
