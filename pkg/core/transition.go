package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lifecycle"
)

// TransitionState is the lifecycle of one drag-and-drop stage change.
type TransitionState string

const (
	TransitionIdle       TransitionState = "IDLE"
	TransitionPending    TransitionState = "PENDING"
	TransitionCommitted  TransitionState = "COMMITTED"
	TransitionRolledBack TransitionState = "ROLLED_BACK"
)

// StatusCommitter persists a stage change remotely.
type StatusCommitter interface {
	SetStatus(ctx context.Context, id int64, stage Stage) (JobItem, error)
}

// Transition tracks a single stage change from drop to settlement.
type Transition struct {
	ID   int64
	From Stage
	To   Stage

	mu    sync.Mutex
	state TransitionState
	err   error
	done  chan struct{}
}

func newTransition(id int64, from, to Stage, state TransitionState) *Transition {
	return &Transition{ID: id, From: from, To: to, state: state, done: make(chan struct{})}
}

// State returns the current state.
func (t *Transition) State() TransitionState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the remote failure of a rolled back transition.
func (t *Transition) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Done is closed once the transition has settled.
func (t *Transition) Done() <-chan struct{} { return t.done }

// Wait blocks until the transition settles or ctx ends.
func (t *Transition) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transition) settle(state TransitionState, err error) {
	t.mu.Lock()
	t.state = state
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// TransitionCoordinator drives the optimistic stage-change protocol:
// apply locally, commit remotely, roll back on failure. At most one
// transition per job is in flight.
type TransitionCoordinator struct {
	board    *BoardStore
	remote   StatusCommitter
	logger   *slog.Logger
	publish  func(Event)
	onFailed func(error)
}

// NewTransitionCoordinator wires a coordinator to the board and the remote.
func NewTransitionCoordinator(board *BoardStore, remote StatusCommitter, logger *slog.Logger) *TransitionCoordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TransitionCoordinator{
		board:    board,
		remote:   remote,
		logger:   logger,
		publish:  func(Event) {},
		onFailed: func(error) {},
	}
}

// Drop moves job id to target. The board reflects target as soon as Drop
// returns; the remote commit runs in the background and the returned
// Transition settles once it is known.
//
// Dropping a job onto its current stage returns an already settled
// transition in TransitionIdle and makes no remote call.
func (c *TransitionCoordinator) Drop(ctx context.Context, id int64, target Stage) (*Transition, error) {
	if !target.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown stage %q", target)}
	}

	token, prev, noop, err := c.board.beginTransition(id, target)
	if err != nil {
		return nil, err
	}
	if noop {
		t := newTransition(id, prev, target, TransitionIdle)
		close(t.done)
		return t, nil
	}

	t := newTransition(id, prev, target, TransitionPending)
	c.logger.Debug("optimistic move applied", "id", id, "from", prev, "to", target)
	c.publish(moveEvent(EventMoved, id, prev, target))

	lifecycle.Go(ctx, func(ctx context.Context) error {
		c.commit(ctx, t, token)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		// A panic inside the remote call must not leave the job pending forever.
		c.rollback(t, token, fmt.Errorf("commit panic: %w", err))
	}))

	return t, nil
}

func (c *TransitionCoordinator) commit(ctx context.Context, t *Transition, token uint64) {
	if _, err := c.remote.SetStatus(ctx, t.ID, t.To); err != nil {
		c.rollback(t, token, err)
		return
	}
	c.board.endTransition(t.ID, token, nil)
	c.logger.Debug("move committed", "id", t.ID, "stage", t.To)
	c.publish(moveEvent(EventCommitted, t.ID, t.From, t.To))
	t.settle(TransitionCommitted, nil)
}

func (c *TransitionCoordinator) rollback(t *Transition, token uint64, cause error) {
	select {
	case <-t.done:
		return
	default:
	}
	from := t.From
	if c.board.endTransition(t.ID, token, &from) {
		c.logger.Warn("move rolled back", "id", t.ID, "from", t.To, "to", t.From, "error", cause)
		c.publish(moveEvent(EventRolledBack, t.ID, t.To, t.From))
	} else {
		c.logger.Debug("move failed after the job was reloaded, replaced or removed", "id", t.ID, "error", cause)
	}
	c.onFailed(cause)
	t.settle(TransitionRolledBack, cause)
}
