package core

import (
	"fmt"
	"strings"
)

// EditSession is the working copy of one job. The baseline is never
// touched; every change goes through a named operation on the working
// copy and the change set is derived from both on submit.
type EditSession struct {
	baseline JobItem
	working  JobItem
	uploads  []Upload
}

// NewEditSession opens a session on a deep copy of item.
func NewEditSession(item JobItem) *EditSession {
	return &EditSession{baseline: item.Clone(), working: item.Clone()}
}

// NewDraftSession opens a session for a job that does not exist yet.
func NewDraftSession() *EditSession {
	return NewEditSession(NewDraft())
}

// IsDraft reports whether submitting the session creates a job.
func (s *EditSession) IsDraft() bool { return !s.baseline.Persisted() }

// Baseline returns a copy of the snapshot the session was opened on.
func (s *EditSession) Baseline() JobItem { return s.baseline.Clone() }

// Working returns a copy of the edited job.
func (s *EditSession) Working() JobItem { return s.working.Clone() }

// Fields returns the edited scalar attributes.
func (s *EditSession) Fields() Fields { return s.working.Fields() }

// SetFields replaces the edited scalar attributes.
func (s *EditSession) SetFields(f Fields) { s.working.ApplyFields(f) }

// Notes returns the working notes in order.
func (s *EditSession) Notes() []Note {
	out := make([]Note, len(s.working.Notes))
	copy(out, s.working.Notes)
	return out
}

// AddNote appends a note. An empty stage defaults to Saved.
func (s *EditSession) AddNote(stage Stage, text string) error {
	n, err := newNote(stage, text)
	if err != nil {
		return err
	}
	s.working.Notes = append(s.working.Notes, n)
	return nil
}

// EditNote rewrites the note at index i, keeping its identity.
func (s *EditSession) EditNote(i int, stage Stage, text string) error {
	if i < 0 || i >= len(s.working.Notes) {
		return fmt.Errorf("note %d: %w", i, ErrNotFound)
	}
	n, err := newNote(stage, text)
	if err != nil {
		return err
	}
	n.ID = s.working.Notes[i].ID
	s.working.Notes[i] = n
	return nil
}

// RemoveNote drops the note at index i. A persisted note shows up in
// RemovedNoteIDs afterwards.
func (s *EditSession) RemoveNote(i int) error {
	if i < 0 || i >= len(s.working.Notes) {
		return fmt.Errorf("note %d: %w", i, ErrNotFound)
	}
	s.working.Notes = append(s.working.Notes[:i:i], s.working.Notes[i+1:]...)
	return nil
}

func newNote(stage Stage, text string) (Note, error) {
	if stage == "" {
		stage = StageSaved
	}
	if !stage.Valid() {
		return Note{}, &ValidationError{Field: "notes", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}
	if strings.TrimSpace(text) == "" {
		return Note{}, ErrInvalidNote
	}
	return Note{Stage: stage, Text: text}, nil
}

// Attach stages uploads for submission.
func (s *EditSession) Attach(uploads ...Upload) error {
	for _, u := range uploads {
		if strings.TrimSpace(u.Name) == "" {
			return &ValidationError{Field: "documents", Reason: "upload has no name"}
		}
	}
	s.uploads = append(s.uploads, uploads...)
	return nil
}

// Uploads returns the staged uploads in order.
func (s *EditSession) Uploads() []Upload {
	out := make([]Upload, len(s.uploads))
	copy(out, s.uploads)
	return out
}

// DropUpload unstages the upload at index i.
func (s *EditSession) DropUpload(i int) error {
	if i < 0 || i >= len(s.uploads) {
		return fmt.Errorf("upload %d: %w", i, ErrNotFound)
	}
	s.uploads = append(s.uploads[:i:i], s.uploads[i+1:]...)
	return nil
}

// Detach removes a persisted document from the working copy.
func (s *EditSession) Detach(docID int64) error {
	for i, d := range s.working.Documents {
		if d.ID == docID {
			s.working.Documents = append(s.working.Documents[:i:i], s.working.Documents[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("document %d: %w", docID, ErrNotFound)
}

// RemovedNoteIDs lists the persisted notes removed so far.
func (s *EditSession) RemovedNoteIDs() []int64 {
	kept := make(map[int64]bool, len(s.working.Notes))
	for _, n := range s.working.Notes {
		kept[n.ID] = true
	}
	return missingIDs(s.baseline.Notes, func(n Note) int64 { return n.ID }, kept)
}

// RemovedDocumentIDs lists the persisted documents detached so far.
func (s *EditSession) RemovedDocumentIDs() []int64 {
	kept := make(map[int64]bool, len(s.working.Documents))
	for _, d := range s.working.Documents {
		kept[d.ID] = true
	}
	return missingIDs(s.baseline.Documents, func(d Document) int64 { return d.ID }, kept)
}

// ChangeSet validates the working copy and diffs it against the baseline.
func (s *EditSession) ChangeSet() (ChangeSet, error) {
	if err := s.working.Validate(); err != nil {
		return ChangeSet{}, err
	}
	return Diff(s.baseline, s.working, s.uploads)
}
