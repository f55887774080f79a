package core_test

import (
	"errors"
	"testing"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []core.JobItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBoardStore_BucketFor(t *testing.T) {
	b := core.NewBoardStore()
	require.NoError(t, b.Load([]core.JobItem{
		job(1, core.StageSaved),
		job(2, core.StageApplied),
		job(3, core.StageApplied),
	}))

	assert.Equal(t, []int64{2, 3}, ids(b.BucketFor(core.StageApplied)))
	assert.Equal(t, []int64{1}, ids(b.BucketFor(core.StageSaved)))
	assert.Empty(t, b.BucketFor(core.StageOffer))
}

func TestBoardStore_Columns(t *testing.T) {
	b := core.NewBoardStore()
	require.NoError(t, b.Load([]core.JobItem{job(1, core.StageOffer), job(2, core.StageSaved)}))

	cols := b.Columns()
	require.Len(t, cols, 5)
	assert.Equal(t, core.Stages(), []core.Stage{cols[0].Stage, cols[1].Stage, cols[2].Stage, cols[3].Stage, cols[4].Stage})

	total := 0
	for _, c := range cols {
		total += len(c.Items)
	}
	assert.Equal(t, 2, total, "every job sits in exactly one column")
}

func TestBoardStore_Load(t *testing.T) {
	t.Run("Rejects Unknown Stage Without Mutating", func(t *testing.T) {
		b := core.NewBoardStore()
		require.NoError(t, b.Load([]core.JobItem{job(1, core.StageSaved)}))

		err := b.Load([]core.JobItem{job(2, core.StageSaved), job(3, "Ghosted")})
		assert.True(t, errors.Is(err, core.ErrValidation))
		assert.Equal(t, []int64{1}, ids(b.Items()))
	})

	t.Run("Keeps First Of Duplicate Ids", func(t *testing.T) {
		b := core.NewBoardStore()
		first := job(1, core.StageSaved)
		dup := job(1, core.StageOffer)
		require.NoError(t, b.Load([]core.JobItem{first, dup}))

		got, err := b.Get(1)
		require.NoError(t, err)
		assert.Equal(t, core.StageSaved, got.Status)
		assert.Equal(t, 1, b.Len())
	})

	t.Run("Isolates Caller Slices", func(t *testing.T) {
		b := core.NewBoardStore()
		items := []core.JobItem{job(1, core.StageSaved)}
		items[0].Notes = []core.Note{{ID: 1, Stage: core.StageSaved, Text: "a"}}
		require.NoError(t, b.Load(items))

		items[0].Notes[0].Text = "mutated"
		got, _ := b.Get(1)
		assert.Equal(t, "a", got.Notes[0].Text)

		got.Notes[0].Text = "mutated again"
		again, _ := b.Get(1)
		assert.Equal(t, "a", again.Notes[0].Text)
	})
}

func TestBoardStore_ApplyOptimisticStatus(t *testing.T) {
	b := core.NewBoardStore()
	require.NoError(t, b.Load([]core.JobItem{job(1, core.StageSaved)}))

	prev, err := b.ApplyOptimisticStatus(1, core.StageInterviewing)
	require.NoError(t, err)
	assert.Equal(t, core.StageSaved, prev)
	assert.Equal(t, []int64{1}, ids(b.BucketFor(core.StageInterviewing)))

	_, err = b.ApplyOptimisticStatus(42, core.StageOffer)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = b.ApplyOptimisticStatus(1, "Nope")
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestBoardStore_ReplaceAndRemove(t *testing.T) {
	b := core.NewBoardStore()
	require.NoError(t, b.Load([]core.JobItem{job(1, core.StageSaved), job(2, core.StageSaved), job(3, core.StageSaved)}))

	updated := job(2, core.StageSaved)
	updated.Title = "Staff Engineer"
	require.NoError(t, b.Replace(2, updated))
	got, _ := b.Get(2)
	assert.Equal(t, "Staff Engineer", got.Title)
	assert.Equal(t, []int64{1, 2, 3}, ids(b.Items()), "replace keeps position")

	assert.True(t, errors.Is(b.Replace(9, updated), core.ErrNotFound))

	b.Remove(2)
	assert.Equal(t, []int64{1, 3}, ids(b.Items()))
	b.Remove(2)
	assert.Equal(t, []int64{1, 3}, ids(b.Items()), "remove is idempotent")

	_, err := b.Get(3)
	assert.NoError(t, err, "index survives removal")
}

func TestBoardStore_AddAndClear(t *testing.T) {
	b := core.NewBoardStore()
	require.NoError(t, b.Add(job(7, core.StageApplied)))
	require.NoError(t, b.Add(job(8, core.StageSaved)))
	assert.Equal(t, []int64{7, 8}, ids(b.Items()))

	b.SetFilter(core.FilterSpec{Company: "Acme"})
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.True(t, b.Filter().IsZero())
}
