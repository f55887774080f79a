package core_test

import (
	"context"
	"sync"

	"github.com/aretw0/jobboard/pkg/core"
)

// fakeRemote implements core.Remote in memory. Calls to SetStatus and
// ListJobs can be held back with gates so tests decide completion order.
type fakeRemote struct {
	mu sync.Mutex

	user    core.User
	userErr error

	// lists maps an encoded query to its result set.
	lists     map[string][]core.JobItem
	listGates map[string]chan struct{}
	listErr   error
	listCalls []string

	statusGate  chan struct{}
	statusErr   error
	statusCalls int

	created   []core.ChangeSet
	updated   map[int64]core.ChangeSet
	createErr error
	updateErr error
	nextID    int64

	deleteErr error
	deleted   []int64

	logouts int
}

func newFakeRemote(items ...core.JobItem) *fakeRemote {
	return &fakeRemote{
		user:      core.User{Nickname: "ada"},
		lists:     map[string][]core.JobItem{"": items},
		listGates: map[string]chan struct{}{},
		updated:   map[int64]core.ChangeSet{},
		nextID:    100,
	}
}

func (f *fakeRemote) CurrentUser(ctx context.Context) (core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user, f.userErr
}

func (f *fakeRemote) ListJobs(ctx context.Context, q core.Query) ([]core.JobItem, error) {
	key := q.Encode()
	f.mu.Lock()
	f.listCalls = append(f.listCalls, key)
	gate := f.listGates[key]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.JobItem, len(f.lists[key]))
	for i, it := range f.lists[key] {
		out[i] = it.Clone()
	}
	return out, nil
}

func (f *fakeRemote) CreateJob(ctx context.Context, cs core.ChangeSet) (core.JobItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return core.JobItem{}, f.createErr
	}
	f.created = append(f.created, cs)
	f.nextID++
	item := cs.Job.Clone()
	item.ID = f.nextID
	item.Notes = nil
	for i, n := range cs.Notes {
		item.Notes = append(item.Notes, core.Note{ID: f.nextID*10 + int64(i), Stage: n.Stage, Text: n.Text})
	}
	return item, nil
}

func (f *fakeRemote) UpdateJob(ctx context.Context, id int64, cs core.ChangeSet) (core.JobItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return core.JobItem{}, f.updateErr
	}
	f.updated[id] = cs
	item := cs.Job.Clone()
	item.ID = id
	return item, nil
}

func (f *fakeRemote) SetStatus(ctx context.Context, id int64, stage core.Stage) (core.JobItem, error) {
	f.mu.Lock()
	f.statusCalls++
	gate := f.statusGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return core.JobItem{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return core.JobItem{}, f.statusErr
	}
	return core.JobItem{ID: id, Status: stage}, nil
}

func (f *fakeRemote) DeleteJob(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRemote) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

// memSnapshots implements core.Snapshotter in memory.
type memSnapshots struct {
	mu   sync.Mutex
	snap *core.Snapshot
}

func (m *memSnapshots) Save(ctx context.Context, snap core.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	return nil
}

func (m *memSnapshots) Load(ctx context.Context) (core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return core.Snapshot{}, core.ErrNotFound
	}
	return *m.snap, nil
}

func (m *memSnapshots) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func job(id int64, stage core.Stage) core.JobItem {
	return core.JobItem{
		ID:           id,
		Title:        "Engineer",
		Company:      "Acme",
		LocationType: core.LocationRemote,
		JobType:      core.JobFullTime,
		Status:       stage,
	}
}
