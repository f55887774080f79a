package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	User            string     `json:"user,omitempty"`
	Jobs            int        `json:"jobs"`
	PendingMoves    int        `json:"pending_moves"`
	PendingDelete   int64      `json:"pending_delete,omitempty"`
	Filter          FilterSpec `json:"filter"`
	ReadOnly        bool       `json:"read_only"`
	EventBufferSize int        `json:"event_buffer_size"`
	DroppedEvents   uint64     `json:"dropped_events"`
	RemoteType      string     `json:"remote_type"`
	SnapshotType    string     `json:"snapshot_type,omitempty"`

	// Remote and Snapshots carry the adapters' own state when they expose it.
	Remote    any `json:"remote,omitempty"`
	Snapshots any `json:"snapshots,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	st := ServiceState{
		Jobs:            s.board.Len(),
		PendingMoves:    s.board.PendingCount(),
		Filter:          s.board.Filter(),
		ReadOnly:        s.readOnly,
		EventBufferSize: cap(s.events),
		DroppedEvents:   s.dropped.Load(),
		RemoteType:      componentType(s.remote, "remote"),
		Remote:          componentState(s.remote),
	}
	if u, err := s.User(); err == nil {
		st.User = u.Nickname
	}
	if id, ok := s.gate.Armed(); ok {
		st.PendingDelete = id
	}
	if s.snapshots != nil {
		st.SnapshotType = componentType(s.snapshots, "snapshot")
		st.Snapshots = componentState(s.snapshots)
	}
	return st
}

func componentType(v any, fallback string) string {
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return fallback
}

func componentState(v any) any {
	if in, ok := v.(introspection.Introspectable); ok {
		return in.State()
	}
	return nil
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "board-service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
