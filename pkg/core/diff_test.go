package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_Notes(t *testing.T) {
	t.Run("Removed Note Is Reported By Id", func(t *testing.T) {
		base := job(1, core.StageSaved)
		base.Notes = []core.Note{{ID: 1, Stage: core.StageSaved, Text: "a"}}
		work := base.Clone()
		work.Notes = nil

		cs, err := core.Diff(base, work, nil)
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, cs.RemovedNoteIDs)
		assert.Empty(t, cs.Notes)
	})

	t.Run("New Note Carries No Id", func(t *testing.T) {
		base := job(1, core.StageSaved)
		work := base.Clone()
		work.Notes = []core.Note{{Stage: core.StageSaved, Text: "b"}}

		cs, err := core.Diff(base, work, nil)
		require.NoError(t, err)
		require.Len(t, cs.Notes, 1)
		assert.Zero(t, cs.Notes[0].ID)
		assert.Equal(t, "b", cs.Notes[0].Text)
		assert.Empty(t, cs.RemovedNoteIDs)
	})

	t.Run("Persisted Notes Are Resent In Working Order", func(t *testing.T) {
		base := job(1, core.StageSaved)
		base.Notes = []core.Note{
			{ID: 1, Stage: core.StageSaved, Text: "one"},
			{ID: 2, Stage: core.StageApplied, Text: "two"},
			{ID: 3, Stage: core.StageApplied, Text: "three"},
		}
		work := base.Clone()
		work.Notes = []core.Note{
			{ID: 3, Stage: core.StageOffer, Text: "three!"},
			{Stage: core.StageSaved, Text: "new"},
			{ID: 1, Stage: core.StageSaved, Text: "one"},
			{ID: 99, Stage: core.StageSaved, Text: "foreign id"},
		}

		cs, err := core.Diff(base, work, nil)
		require.NoError(t, err)
		assert.Equal(t, []core.NotePayload{
			{ID: 3, Stage: core.StageOffer, Text: "three!"},
			{Stage: core.StageSaved, Text: "new"},
			{ID: 1, Stage: core.StageSaved, Text: "one"},
			{Stage: core.StageSaved, Text: "foreign id"},
		}, cs.Notes)
		assert.Equal(t, []int64{2}, cs.RemovedNoteIDs)
	})

	t.Run("Blank Note Fails", func(t *testing.T) {
		base := job(1, core.StageSaved)
		work := base.Clone()
		work.Notes = []core.Note{{Stage: core.StageSaved, Text: "ok"}, {Stage: core.StageSaved, Text: "  \n"}}

		_, err := core.Diff(base, work, nil)
		assert.True(t, errors.Is(err, core.ErrInvalidNote))
		assert.True(t, errors.Is(err, core.ErrValidation))
	})
}

func TestDiff_Documents(t *testing.T) {
	base := job(1, core.StageSaved)
	base.Documents = []core.Document{
		{ID: 10, Name: "cv.pdf", URL: "/media/cv.pdf"},
		{ID: 11, Name: "letter.pdf", URL: "/media/letter.pdf"},
	}
	work := base.Clone()
	work.Documents = work.Documents[1:]
	uploads := []core.Upload{{Name: "portfolio.pdf", Data: []byte("%PDF")}}

	cs, err := core.Diff(base, work, uploads)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, cs.RemovedDocumentIDs)
	require.Len(t, cs.Additions, 1)
	assert.Equal(t, "portfolio.pdf", cs.Additions[0].Name)
	assert.False(t, cs.IsCreate())

	_, err = core.Diff(base, work, []core.Upload{{Name: ""}})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestDiff_LeavesInputsUntouched(t *testing.T) {
	base := job(1, core.StageSaved)
	base.Notes = []core.Note{{ID: 1, Stage: core.StageSaved, Text: "a"}}
	work := base.Clone()

	cs, err := core.Diff(base, work, nil)
	require.NoError(t, err)
	cs.Job.Notes[0].Text = "changed"
	assert.Equal(t, "a", work.Notes[0].Text)
	assert.Equal(t, "a", base.Notes[0].Text)
}
