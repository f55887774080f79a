package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/jobboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Start(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved), job(2, core.StageApplied), job(3, core.StageApplied))
	snaps := &memSnapshots{}
	svc := core.NewService(remote, core.ServiceConfig{Snapshots: snaps})
	ctx := context.Background()

	_, err := svc.User()
	assert.ErrorIs(t, err, core.ErrNoSession)

	u, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Nickname)
	assert.Equal(t, []int64{2, 3}, ids(svc.Board().BucketFor(core.StageApplied)))

	snap, err := snaps.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 3)

	select {
	case e := <-svc.Events():
		assert.Equal(t, core.EventLoaded, e.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a LOADED event")
	}
}

func TestService_FilterLatestWins(t *testing.T) {
	a := core.FilterSpec{Company: "Acme"}
	b := core.FilterSpec{Company: "Initech"}
	keyA := core.BuildQuery(a).Encode()
	keyB := core.BuildQuery(b).Encode()

	remote := newFakeRemote()
	remote.lists[keyA] = []core.JobItem{job(1, core.StageSaved)}
	remote.lists[keyB] = []core.JobItem{job(2, core.StageOffer), job(3, core.StageSaved)}
	gateA := make(chan struct{})
	remote.listGates[keyA] = gateA

	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()

	// 1. Issue A; it hangs on the gate
	resA := make(chan bool, 1)
	go func() {
		applied, err := svc.ApplyFilter(ctx, a)
		assert.NoError(t, err)
		resA <- applied
	}()
	require.Eventually(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()
		return len(remote.listCalls) == 1
	}, time.Second, 5*time.Millisecond)

	// 2. Issue B; it resolves first
	applied, err := svc.ApplyFilter(ctx, b)
	require.NoError(t, err)
	assert.True(t, applied)

	// 3. A arrives late and is discarded
	close(gateA)
	assert.False(t, <-resA)

	assert.Equal(t, []int64{2, 3}, ids(svc.Board().Items()))
	assert.Equal(t, b, svc.Board().Filter())
}

func TestService_FilterKeys(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()

	spec := core.FilterSpec{Company: "Acme", Status: "Saved"}
	_, err := svc.ApplyFilter(ctx, spec)
	require.NoError(t, err)

	_, err = svc.RemoveFilterKey(ctx, core.FilterCompany)
	require.NoError(t, err)
	assert.Equal(t, core.FilterSpec{Status: "Saved"}, svc.Board().Filter())

	_, err = svc.ResetFilter(ctx)
	require.NoError(t, err)
	assert.True(t, svc.Board().Filter().IsZero())

	remote.mu.Lock()
	defer remote.mu.Unlock()
	assert.Equal(t, []string{"status=Saved&company=Acme", "status=Saved", ""}, remote.listCalls)
}

func TestService_FilterFailureKeepsBoard(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	remote.listErr = &core.RemoteError{Kind: core.ErrNetworkUnavailable}
	_, err = svc.ApplyFilter(ctx, core.FilterSpec{Company: "Nobody"})
	assert.ErrorIs(t, err, core.ErrNetworkUnavailable)
	assert.Equal(t, 1, svc.Board().Len())
	assert.True(t, svc.Board().Filter().IsZero())
}

func TestService_Unauthenticated(t *testing.T) {
	remote := newFakeRemote()
	remote.userErr = &core.RemoteError{Kind: core.ErrUnauthenticated, Status: 401}
	redirected := 0
	svc := core.NewService(remote, core.ServiceConfig{OnUnauthenticated: func() { redirected++ }})

	_, err := svc.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.Equal(t, 1, redirected)
}

func TestService_DropRollbackNotifiesHook(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	remote.statusErr = &core.RemoteError{Kind: core.ErrUnauthenticated, Status: 401}
	redirected := make(chan struct{}, 1)
	svc := core.NewService(remote, core.ServiceConfig{OnUnauthenticated: func() { redirected <- struct{}{} }})
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	tr, err := svc.Drop(ctx, 1, core.StageRejected)
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Wait(ctx), core.ErrUnauthenticated)

	select {
	case <-redirected:
	case <-time.After(time.Second):
		t.Fatal("unauthenticated hook not called")
	}
	it, _ := svc.Board().Get(1)
	assert.Equal(t, core.StageSaved, it.Status)
}

func TestService_Submit(t *testing.T) {
	item := job(1, core.StageApplied)
	item.Notes = []core.Note{{ID: 5, Stage: core.StageSaved, Text: "old"}}
	remote := newFakeRemote(item)
	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	t.Run("Update Replaces Board Entry", func(t *testing.T) {
		sess, err := svc.Edit(1)
		require.NoError(t, err)
		f := sess.Fields()
		f.Title = "Principal Engineer"
		sess.SetFields(f)
		require.NoError(t, sess.RemoveNote(0))

		updated, err := svc.Submit(ctx, sess)
		require.NoError(t, err)
		assert.Equal(t, "Principal Engineer", updated.Title)

		got, _ := svc.Board().Get(1)
		assert.Equal(t, "Principal Engineer", got.Title)
		assert.Equal(t, []int64{5}, remote.updated[1].RemovedNoteIDs)
	})

	t.Run("Create Appends To Board", func(t *testing.T) {
		sess := svc.NewDraft()
		f := sess.Fields()
		f.Title, f.Company = "SRE", "Globex"
		sess.SetFields(f)
		require.NoError(t, sess.AddNote(core.StageSaved, "referral"))

		created, err := svc.Submit(ctx, sess)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, 2, svc.Board().Len())
		assert.Len(t, svc.Board().BucketFor(core.StageSaved), 1)
	})

	t.Run("Failed Create Leaves Draft Editable", func(t *testing.T) {
		remote.createErr = &core.RemoteError{Kind: core.ErrRemoteRejected, Status: 400, Message: "bad salary"}
		defer func() { remote.createErr = nil }()

		sess := svc.NewDraft()
		f := sess.Fields()
		f.Title, f.Company = "QA", "Hooli"
		sess.SetFields(f)

		_, err := svc.Submit(ctx, sess)
		assert.ErrorIs(t, err, core.ErrRemoteRejected)
		assert.Equal(t, "QA", sess.Working().Title)
		assert.Equal(t, 2, svc.Board().Len())
	})

	t.Run("Validation Makes No Call", func(t *testing.T) {
		before := len(remote.created)
		_, err := svc.Submit(ctx, svc.NewDraft())
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Len(t, remote.created, before)
	})
}

func TestService_Delete(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved), job(2, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err)

	// Confirm without arming does nothing
	ran, err := svc.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Empty(t, remote.deleted)

	assert.ErrorIs(t, svc.RequestDelete(9), core.ErrNotFound)

	require.NoError(t, svc.RequestDelete(1))
	svc.CancelDelete()
	_, armed := svc.PendingDelete()
	assert.False(t, armed)

	require.NoError(t, svc.RequestDelete(1))
	require.NoError(t, svc.RequestDelete(2))
	ran, err = svc.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []int64{2}, remote.deleted)
	assert.Equal(t, []int64{1}, ids(svc.Board().Items()))

	// Already gone remotely still removes locally
	remote.deleteErr = &core.RemoteError{Kind: core.ErrNotFound, Status: 404}
	require.NoError(t, svc.RequestDelete(1))
	ran, err = svc.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 0, svc.Board().Len())
}

func TestService_ReadOnly(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{ReadOnly: true})
	ctx := context.Background()
	_, err := svc.Refresh(ctx)
	require.NoError(t, err, "reads work in read-only mode")

	_, err = svc.Drop(ctx, 1, core.StageApplied)
	assert.True(t, errors.Is(err, core.ErrReadOnly))
	assert.True(t, errors.Is(svc.RequestDelete(1), core.ErrReadOnly))

	sess, err := svc.Edit(1)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, sess)
	assert.True(t, errors.Is(err, core.ErrReadOnly))
	assert.Equal(t, 0, remote.calls())
}

func TestService_LogoutClears(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	snaps := &memSnapshots{}
	svc := core.NewService(remote, core.ServiceConfig{Snapshots: snaps})
	ctx := context.Background()
	_, err := svc.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.RequestDelete(1))

	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, 1, remote.logouts)
	assert.Equal(t, 0, svc.Board().Len())
	_, armed := svc.PendingDelete()
	assert.False(t, armed)
	_, err = svc.User()
	assert.ErrorIs(t, err, core.ErrNoSession)
	_, err = snaps.Load(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_RestoreSnapshot(t *testing.T) {
	snaps := &memSnapshots{}
	require.NoError(t, snaps.Save(context.Background(), core.Snapshot{
		Filter: core.FilterSpec{Status: "Offer"},
		Items:  []core.JobItem{job(4, core.StageOffer)},
	}))

	remote := newFakeRemote()
	svc := core.NewService(remote, core.ServiceConfig{Snapshots: snaps})
	snap, err := svc.RestoreSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, []int64{4}, ids(svc.Board().BucketFor(core.StageOffer)))
	assert.Equal(t, "Offer", svc.Board().Filter().Status)
	assert.Empty(t, remote.listCalls)
}

func TestService_State(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{EventBuffer: 8})
	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	st, ok := svc.State().(core.ServiceState)
	require.True(t, ok)
	assert.Equal(t, "ada", st.User)
	assert.Equal(t, 1, st.Jobs)
	assert.Equal(t, 8, st.EventBufferSize)
	assert.Equal(t, "remote", st.RemoteType)
	assert.Equal(t, "board-service", svc.ComponentType())
}

func TestService_EventsNeverBlock(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	svc := core.NewService(remote, core.ServiceConfig{EventBuffer: 1})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Refresh(ctx)
		require.NoError(t, err)
	}
	st := svc.State().(core.ServiceState)
	assert.Equal(t, uint64(4), st.DroppedEvents)
}

func TestService_SubmitDuringMoveWinsOverRollback(t *testing.T) {
	remote := newFakeRemote(job(1, core.StageSaved))
	remote.statusGate = make(chan struct{})
	remote.statusErr = &core.RemoteError{Kind: core.ErrRemoteRejected, Status: 500}
	svc := core.NewService(remote, core.ServiceConfig{})
	ctx := context.Background()
	_, err := svc.Start(ctx)
	require.NoError(t, err)

	// 1. Move is in flight
	tr, err := svc.Drop(ctx, 1, core.StageApplied)
	require.NoError(t, err)

	// 2. An edit saved meanwhile carries the optimistic stage to the server
	sess, err := svc.Edit(1)
	require.NoError(t, err)
	f := sess.Fields()
	f.Title = "Edited"
	sess.SetFields(f)
	updated, err := svc.Submit(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, core.StageApplied, updated.Status)
	assert.False(t, svc.Board().Pending(1))

	// 3. The late failure must not undo what the server accepted
	close(remote.statusGate)
	assert.Error(t, tr.Wait(ctx))
	assert.Equal(t, core.TransitionRolledBack, tr.State())

	it, err := svc.Board().Get(1)
	require.NoError(t, err)
	assert.Equal(t, core.StageApplied, it.Status)
	assert.Equal(t, "Edited", it.Title)
}
