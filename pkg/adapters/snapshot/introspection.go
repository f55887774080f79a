package snapshot

import (
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path      string     `json:"path"`
	ReadOnly  bool       `json:"read_only"`
	Following bool       `json:"following"`
	LastSave  *time.Time `json:"last_save,omitempty"`
	LastCount int        `json:"last_count"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Path:      s.path,
		ReadOnly:  s.readOnly,
		Following: s.following,
		LastSave:  s.lastSave,
		LastCount: s.lastCount,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "snapshot-file"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
