package core

import (
	"fmt"
	"strings"
)

// NotePayload is one note as sent on submit. ID is zero for a note the
// server has never seen.
type NotePayload struct {
	ID    int64
	Stage Stage
	Text  string
}

// ChangeSet is the commit payload of an edit session.
type ChangeSet struct {
	// Job carries the scalar fields of the working copy.
	Job JobItem

	Notes          []NotePayload
	RemovedNoteIDs []int64

	Additions          []Upload
	RemovedDocumentIDs []int64
}

// IsCreate reports whether the change set describes a job that does not
// exist remotely yet.
func (c ChangeSet) IsCreate() bool { return !c.Job.Persisted() }

// Diff reconciles working against baseline.
//
// Every working note is emitted in working order; it keeps its id only if
// that id exists in the baseline. Baseline notes and documents missing
// from working are reported by id, in baseline order. Persisted documents
// still present are never resent.
func Diff(baseline, working JobItem, additions []Upload) (ChangeSet, error) {
	cs := ChangeSet{
		Job:                working.Clone(),
		Notes:              make([]NotePayload, 0, len(working.Notes)),
		RemovedNoteIDs:     []int64{},
		Additions:          make([]Upload, 0, len(additions)),
		RemovedDocumentIDs: []int64{},
	}

	baseNotes := make(map[int64]bool, len(baseline.Notes))
	for _, n := range baseline.Notes {
		if n.Persisted() {
			baseNotes[n.ID] = true
		}
	}

	kept := make(map[int64]bool, len(working.Notes))
	for i, n := range working.Notes {
		if strings.TrimSpace(n.Text) == "" {
			return ChangeSet{}, fmt.Errorf("note %d: %w", i, ErrInvalidNote)
		}
		p := NotePayload{Stage: n.Stage, Text: n.Text}
		if baseNotes[n.ID] {
			p.ID = n.ID
			kept[n.ID] = true
		}
		cs.Notes = append(cs.Notes, p)
	}
	cs.RemovedNoteIDs = missingIDs(baseline.Notes, func(n Note) int64 { return n.ID }, kept)

	keptDocs := make(map[int64]bool, len(working.Documents))
	for _, d := range working.Documents {
		keptDocs[d.ID] = true
	}
	cs.RemovedDocumentIDs = missingIDs(baseline.Documents, func(d Document) int64 { return d.ID }, keptDocs)

	for i, u := range additions {
		if strings.TrimSpace(u.Name) == "" {
			return ChangeSet{}, &ValidationError{Field: "documents", Reason: fmt.Sprintf("upload %d has no name", i)}
		}
		cs.Additions = append(cs.Additions, u)
	}

	return cs, nil
}

// missingIDs lists the persisted ids of base that are not in kept, once
// each, in base order.
func missingIDs[T any](base []T, id func(T) int64, kept map[int64]bool) []int64 {
	out := []int64{}
	seen := make(map[int64]bool)
	for _, v := range base {
		k := id(v)
		if k == 0 || kept[k] || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
