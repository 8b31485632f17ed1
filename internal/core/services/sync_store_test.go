package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

const (
	remoteDoc = `{"habits":[{"id":"1","name":"Gym"}]}`
	localDoc  = `{"habits":[{"id":"2","name":"Duolingo"}]}`
)

var identity = domain.NewStaticIdentity("jose")

func TestSyncStore_SaveHabits(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Writes local then remote", func(t *testing.T) {
		local := newMemoryLocal()
		remote := new(MockRemoteStore)
		remote.On("SaveHabits", mock.Anything, "jose", []byte(localDoc)).Return(nil)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		err := store.SaveHabits(ctx, []byte(localDoc))

		require.NoError(t, err)
		stored, _ := local.Get(ctx, services.KeyHabitState)
		assert.JSONEq(t, localDoc, string(stored))
		assert.Equal(t, domain.SyncIdle, store.Status().State)
		assert.NotNil(t, store.Status().LastSyncedAt)
		remote.AssertExpectations(t)
	})

	t.Run("Fail: Remote failure keeps the local copy and is non-fatal", func(t *testing.T) {
		local := newMemoryLocal()
		remote := new(MockRemoteStore)
		remote.On("SaveHabits", mock.Anything, "jose", mock.Anything).Return(errors.New("connection reset"))
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		err := store.SaveHabits(ctx, []byte(localDoc))

		assert.ErrorIs(t, err, domain.ErrRemoteSync)
		stored, getErr := local.Get(ctx, services.KeyHabitState)
		require.NoError(t, getErr)
		assert.JSONEq(t, localDoc, string(stored))

		status := store.Status()
		assert.Equal(t, domain.SyncError, status.State)
		assert.Contains(t, status.LastError, "connection reset")
	})

	t.Run("Fail: Local failure skips remote", func(t *testing.T) {
		local := newMemoryLocal()
		local.setErr = errors.New("disk full")
		remote := new(MockRemoteStore)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		err := store.SaveHabits(ctx, []byte(localDoc))

		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRemoteSync)
		remote.AssertNotCalled(t, "SaveHabits", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Edge Case: Offline writes locally only", func(t *testing.T) {
		local := newMemoryLocal()
		remote := new(MockRemoteStore)
		store := services.NewSyncStore(local, remote, staticConn(false), identity, nil)

		require.NoError(t, store.SaveHabits(ctx, []byte(localDoc)))

		remote.AssertNotCalled(t, "SaveHabits", mock.Anything, mock.Anything, mock.Anything)
		assert.Equal(t, domain.SyncOffline, store.Status().State)
	})

	t.Run("Edge Case: Disabled sync", func(t *testing.T) {
		store := services.NewSyncStore(newMemoryLocal(), nil, nil, identity, nil)

		require.NoError(t, store.SaveHabits(ctx, []byte(localDoc)))

		status := store.Status()
		assert.Equal(t, domain.SyncDisabled, status.State)
		assert.False(t, status.RemoteEnabled)
		assert.Equal(t, "jose", status.UserID)
	})
}

func TestSyncStore_LoadHabits(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Remote copy wins and is mirrored locally", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		remote := new(MockRemoteStore)
		remote.On("LoadHabits", mock.Anything, "jose").Return([]byte(remoteDoc), nil)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		doc, err := store.LoadHabits(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, remoteDoc, string(doc))
		mirrored, _ := local.Get(ctx, services.KeyHabitState)
		assert.JSONEq(t, remoteDoc, string(mirrored))
	})

	t.Run("Success: Falls back to local when remote errors", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		remote := new(MockRemoteStore)
		remote.On("LoadHabits", mock.Anything, "jose").Return(nil, errors.New("timeout"))
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		doc, err := store.LoadHabits(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, localDoc, string(doc))
	})

	t.Run("Success: Falls back to local when remote has no habits", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		remote := new(MockRemoteStore)
		remote.On("LoadHabits", mock.Anything, "jose").Return([]byte(`{"habits":[]}`), nil)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		doc, err := store.LoadHabits(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, localDoc, string(doc))
	})

	t.Run("Edge Case: Nothing stored anywhere", func(t *testing.T) {
		remote := new(MockRemoteStore)
		remote.On("LoadHabits", mock.Anything, "jose").Return(nil, domain.ErrSnapshotNotFound)
		store := services.NewSyncStore(newMemoryLocal(), remote, staticConn(true), identity, nil)

		_, err := store.LoadHabits(ctx)

		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Edge Case: Offline never touches remote", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		remote := new(MockRemoteStore)
		store := services.NewSyncStore(local, remote, staticConn(false), identity, nil)

		doc, err := store.LoadHabits(ctx)

		require.NoError(t, err)
		assert.JSONEq(t, localDoc, string(doc))
		remote.AssertNotCalled(t, "LoadHabits", mock.Anything, mock.Anything)
	})
}

func TestSyncStore_Instagram(t *testing.T) {
	ctx := context.Background()
	entries := []domain.InstagramEntry{
		{ID: "b", Date: "2024-04-29", Followers: 53},
		{ID: "a", Date: "2024-04-01", Followers: 31},
	}

	t.Run("Success: Save replaces remote rows and load sorts local copy", func(t *testing.T) {
		local := newMemoryLocal()
		remote := new(MockRemoteStore)
		remote.On("ReplaceInstagram", mock.Anything, "jose", entries).Return(nil)
		remote.On("LoadInstagram", mock.Anything, "jose").Return([]domain.InstagramEntry{}, nil)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		require.NoError(t, store.SaveInstagram(ctx, entries))
		loaded, err := store.LoadInstagram(ctx)

		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, "a", loaded[0].ID)
		remote.AssertExpectations(t)
	})

	t.Run("Edge Case: No data anywhere", func(t *testing.T) {
		store := services.NewSyncStore(newMemoryLocal(), nil, nil, identity, nil)

		_, err := store.LoadInstagram(ctx)

		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}

func TestSyncStore_ForceSync(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Pushes both datasets", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		require.NoError(t, local.Set(ctx, services.KeyInstagramData, []byte(`[{"id":"a","date":"2024-04-01","followers":31}]`)))
		remote := new(MockRemoteStore)
		remote.On("SaveHabits", mock.Anything, "jose", []byte(localDoc)).Return(nil)
		remote.On("ReplaceInstagram", mock.Anything, "jose", mock.MatchedBy(func(e []domain.InstagramEntry) bool {
			return len(e) == 1 && e[0].Followers == 31
		})).Return(nil)
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		require.NoError(t, store.ForceSync(ctx))
		remote.AssertExpectations(t)
	})

	t.Run("Fail: Unavailable when offline", func(t *testing.T) {
		store := services.NewSyncStore(newMemoryLocal(), new(MockRemoteStore), staticConn(false), identity, nil)
		assert.ErrorIs(t, store.ForceSync(ctx), domain.ErrSyncUnavailable)
	})

	t.Run("Fail: Remote error surfaces as sync error", func(t *testing.T) {
		local := newMemoryLocal()
		require.NoError(t, local.Set(ctx, services.KeyHabitState, []byte(localDoc)))
		remote := new(MockRemoteStore)
		remote.On("SaveHabits", mock.Anything, "jose", mock.Anything).Return(errors.New("boom"))
		store := services.NewSyncStore(local, remote, staticConn(true), identity, nil)

		assert.ErrorIs(t, store.ForceSync(ctx), domain.ErrRemoteSync)
	})
}

func TestSyncStore_LocalDatasets(t *testing.T) {
	ctx := context.Background()
	store := services.NewSyncStore(newMemoryLocal(), nil, nil, identity, nil)

	_, err := store.LoadLocal(ctx, services.KeyNotes)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	require.NoError(t, store.SaveLocal(ctx, services.KeyNotes, []byte(`[]`)))
	data, err := store.LoadLocal(ctx, services.KeyNotes)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))
}
