// Package lifecycle exposes board events as a lifecycle.Source.
package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/jobboard/pkg/core"
)

// ErrAlreadyStarted is returned by a second call to Start.
var ErrAlreadyStarted = errors.New("board source already started")

// Option configures a Source.
type Option func(*Source)

// WithTypes forwards only events of the given types.
func WithTypes(types ...core.EventType) Option {
	return func(s *Source) {
		s.types = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
}

// Source emits board events as lifecycle events.
// core.Event satisfies lifecycle.Event through its String method.
type Source struct {
	upstream  <-chan core.Event
	out       chan lifecycle.Event
	types     map[core.EventType]bool
	started   atomic.Bool
	forwarded atomic.Uint64
}

// NewSource wraps the event stream of a board service.
func NewSource(events <-chan core.Event, opts ...Option) *Source {
	s := &Source{
		upstream: events,
		out:      make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events implements lifecycle.Source.
func (s *Source) Events() <-chan lifecycle.Event {
	return s.out
}

// Forwarded reports how many events went out so far.
func (s *Source) Forwarded() uint64 {
	return s.forwarded.Load()
}

// Start forwards events until ctx ends or the upstream channel closes,
// then closes Events. A Source can only be started once.
func (s *Source) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	lifecycle.Go(ctx, s.forward)
	return nil
}

func (s *Source) forward(ctx context.Context) error {
	defer close(s.out)
	for {
		var e core.Event
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-s.upstream:
			if !ok {
				return nil
			}
			e = ev
		}
		if s.types != nil && !s.types[e.Type] {
			continue
		}
		select {
		case s.out <- e:
			s.forwarded.Add(1)
		case <-ctx.Done():
			return nil
		}
	}
}

var _ lifecycle.Source = (*Source)(nil)
