package core

import (
	"context"
	"time"
)

// User is the identity behind the current session.
type User struct {
	Nickname string `json:"nickname" yaml:"nickname"`
}

// Remote is the server holding the authoritative jobs. Implementations
// report failures through the error taxonomy: ErrUnauthenticated,
// ErrForbidden, ErrNotFound, ErrNetworkUnavailable or ErrRemoteRejected.
type Remote interface {
	CurrentUser(ctx context.Context) (User, error)
	ListJobs(ctx context.Context, q Query) ([]JobItem, error)
	CreateJob(ctx context.Context, cs ChangeSet) (JobItem, error)
	UpdateJob(ctx context.Context, id int64, cs ChangeSet) (JobItem, error)
	SetStatus(ctx context.Context, id int64, stage Stage) (JobItem, error)
	DeleteJob(ctx context.Context, id int64) error
}

// SessionCloser is implemented by remotes that can end the session.
type SessionCloser interface {
	Logout(ctx context.Context) error
}

// Snapshot is the last board loaded from the remote.
type Snapshot struct {
	Filter  FilterSpec `json:"filter"`
	Items   []JobItem  `json:"items"`
	SavedAt time.Time  `json:"saved_at"`
}

// Snapshotter persists the last known board so it can be shown offline.
// Load returns ErrNotFound when nothing was saved yet.
type Snapshotter interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
	Clear(ctx context.Context) error
}
