package core

import (
	"fmt"
	"sync"
)

// Column is one stage bucket of the board.
type Column struct {
	Stage Stage     `json:"stage" yaml:"stage"`
	Items []JobItem `json:"items" yaml:"items"`
}

// BoardStore holds the authoritative local copy of every job on the board
// and the per-item transition flags. All reads return copies.
type BoardStore struct {
	mu     sync.RWMutex
	items  []JobItem
	index  map[int64]int
	filter FilterSpec

	// pending maps a job id to the token of its in-flight transition.
	pending map[int64]uint64
	tokens  uint64
}

// NewBoardStore returns an empty board.
func NewBoardStore() *BoardStore {
	return &BoardStore{
		index:   make(map[int64]int),
		pending: make(map[int64]uint64),
	}
}

// Load replaces the whole collection, keeping the given order. Jobs
// with an unknown stage are rejected and the board is left untouched.
// A repeated id keeps its first occurrence. Transition flags of jobs
// that are no longer present are dropped.
func (b *BoardStore) Load(items []JobItem) error {
	for _, it := range items {
		if !it.Status.Valid() {
			return &ValidationError{Field: "status", Reason: fmt.Sprintf("job %d has unknown stage %q", it.ID, it.Status)}
		}
	}

	next := make([]JobItem, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.ID != 0 {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
		}
		next = append(next, it.Clone())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = next
	b.reindex()
	for id := range b.pending {
		if _, ok := b.index[id]; !ok {
			delete(b.pending, id)
		}
	}
	return nil
}

func (b *BoardStore) reindex() {
	b.index = make(map[int64]int, len(b.items))
	for i, it := range b.items {
		if it.ID != 0 {
			b.index[it.ID] = i
		}
	}
}

// SetFilter records the filter the current collection was fetched with.
func (b *BoardStore) SetFilter(spec FilterSpec) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = spec
}

// Filter returns the active filter.
func (b *BoardStore) Filter() FilterSpec {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.filter
}

// BucketFor returns the jobs in stage, in load order.
func (b *BoardStore) BucketFor(stage Stage) []JobItem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []JobItem{}
	for _, it := range b.items {
		if it.Status == stage {
			out = append(out, it.Clone())
		}
	}
	return out
}

// Columns returns every stage bucket in board order.
func (b *BoardStore) Columns() []Column {
	cols := make([]Column, 0, len(stages))
	for _, st := range stages {
		cols = append(cols, Column{Stage: st, Items: b.BucketFor(st)})
	}
	return cols
}

// Items returns the whole collection in load order.
func (b *BoardStore) Items() []JobItem {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]JobItem, len(b.items))
	for i, it := range b.items {
		out[i] = it.Clone()
	}
	return out
}

// Len returns the number of jobs on the board.
func (b *BoardStore) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Get returns a copy of the job with the given id.
func (b *BoardStore) Get(id int64) (JobItem, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.index[id]
	if !ok {
		return JobItem{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return b.items[i].Clone(), nil
}

// ApplyOptimisticStatus moves the job to stage in place and returns the
// stage it left.
func (b *BoardStore) ApplyOptimisticStatus(id int64, stage Stage) (Stage, error) {
	if !stage.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.setStatus(id, stage)
}

func (b *BoardStore) setStatus(id int64, stage Stage) (Stage, error) {
	i, ok := b.index[id]
	if !ok {
		return "", fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	prev := b.items[i].Status
	b.items[i].Status = stage
	return prev, nil
}

// Replace swaps the job with the given id for item, keeping its position.
// The item is the server's latest word on the job, so a transition still
// in flight for it loses its flag and its completion is ignored.
func (b *BoardStore) Replace(id int64, item JobItem) error {
	if !item.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown stage %q", item.Status)}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	item = item.Clone()
	item.ID = id
	b.items[i] = item
	delete(b.pending, id)
	return nil
}

// Add appends a newly created job. An id already on the board is
// replaced in place instead.
func (b *BoardStore) Add(item JobItem) error {
	if !item.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown stage %q", item.Status)}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	item = item.Clone()
	if i, ok := b.index[item.ID]; ok && item.ID != 0 {
		b.items[i] = item
		delete(b.pending, item.ID)
		return nil
	}
	b.items = append(b.items, item)
	if item.ID != 0 {
		b.index[item.ID] = len(b.items) - 1
	}
	return nil
}

// Remove deletes the job. Removing an absent job is a no-op.
func (b *BoardStore) Remove(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return
	}
	b.items = append(b.items[:i], b.items[i+1:]...)
	delete(b.pending, id)
	b.reindex()
}

// Clear empties the board, its filter and every transition flag.
func (b *BoardStore) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = nil
	b.index = make(map[int64]int)
	b.pending = make(map[int64]uint64)
	b.filter = FilterSpec{}
}

// Pending reports whether the job has a transition in flight.
func (b *BoardStore) Pending(id int64) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.pending[id]
	return ok
}

// PendingCount returns the number of in-flight transitions.
func (b *BoardStore) PendingCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pending)
}

// beginTransition flags the job as pending and applies the optimistic
// stage in a single step. A same-stage move is reported with noop=true and
// leaves the board untouched.
func (b *BoardStore) beginTransition(id int64, stage Stage) (token uint64, prev Stage, noop bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.index[id]
	if !ok {
		return 0, "", false, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	if _, busy := b.pending[id]; busy {
		return 0, "", false, fmt.Errorf("job %d: %w", id, ErrTransitionInProgress)
	}
	if b.items[i].Status == stage {
		return 0, stage, true, nil
	}
	b.tokens++
	token = b.tokens
	b.pending[id] = token
	prev, _ = b.setStatus(id, stage)
	return token, prev, false, nil
}

// endTransition clears the pending flag if token still owns it, and on
// failure restores rollback. It reports false when the flag was
// invalidated in the meantime (the job was reloaded, replaced or removed).
func (b *BoardStore) endTransition(id int64, token uint64, rollback *Stage) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending[id] != token {
		return false
	}
	delete(b.pending, id)
	if rollback != nil {
		if _, err := b.setStatus(id, *rollback); err != nil {
			return false
		}
	}
	return true
}
