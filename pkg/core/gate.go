package core

import (
	"context"
	"sync"
)

// ConfirmationGate guards a destructive action behind an explicit second
// step. It is either armed for one target or disarmed.
type ConfirmationGate struct {
	mu     sync.Mutex
	target int64
	armed  bool
	action func(ctx context.Context, id int64) error
}

// NewConfirmationGate returns a disarmed gate running action on confirm.
func NewConfirmationGate(action func(ctx context.Context, id int64) error) *ConfirmationGate {
	return &ConfirmationGate{action: action}
}

// RequestConfirm arms the gate for id, replacing any previous target.
func (g *ConfirmationGate) RequestConfirm(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target = id
	g.armed = true
}

// Armed returns the armed target.
func (g *ConfirmationGate) Armed() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target, g.armed
}

// Cancel disarms the gate without running the action.
func (g *ConfirmationGate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.target, g.armed = 0, false
}

// Confirm runs the action for the armed target and disarms the gate.
// It reports false, and does nothing, when the gate is disarmed.
func (g *ConfirmationGate) Confirm(ctx context.Context) (bool, error) {
	g.mu.Lock()
	id, armed := g.target, g.armed
	g.target, g.armed = 0, false
	g.mu.Unlock()

	if !armed {
		return false, nil
	}
	return true, g.action(ctx, id)
}
