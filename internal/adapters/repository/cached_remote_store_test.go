package repository

import (
	"context"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tracker/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

type countingRemote struct {
	habitLoads     int
	instagramLoads int
	doc            []byte
	entries        []domain.InstagramEntry
}

func (c *countingRemote) LoadHabits(context.Context, string) ([]byte, error) {
	c.habitLoads++
	if c.doc == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return c.doc, nil
}

func (c *countingRemote) SaveHabits(_ context.Context, _ string, doc []byte) error {
	c.doc = doc
	return nil
}

func (c *countingRemote) LoadInstagram(context.Context, string) ([]domain.InstagramEntry, error) {
	c.instagramLoads++
	return c.entries, nil
}

func (c *countingRemote) ReplaceInstagram(_ context.Context, _ string, entries []domain.InstagramEntry) error {
	c.entries = entries
	return nil
}

func (c *countingRemote) Ping(context.Context) error { return nil }

func TestCachedRemoteStore_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	rdb, err := cache.NewRedisClient(cache.Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	next := &countingRemote{doc: []byte(`{"habits":[{"id":"1"}]}`)}
	store := NewCachedRemoteStore(next, rdb, nil)
	userID := "cache-user"

	t.Run("Success: Second read is served from cache", func(t *testing.T) {
		_, err := store.LoadHabits(ctx, userID)
		require.NoError(t, err)
		doc, err := store.LoadHabits(ctx, userID)
		require.NoError(t, err)

		assert.JSONEq(t, `{"habits":[{"id":"1"}]}`, string(doc))
		assert.Equal(t, 1, next.habitLoads)
	})

	t.Run("Success: Write invalidates", func(t *testing.T) {
		require.NoError(t, store.SaveHabits(ctx, userID, []byte(`{"habits":[{"id":"2"}]}`)))

		doc, err := store.LoadHabits(ctx, userID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"habits":[{"id":"2"}]}`, string(doc))
		assert.Equal(t, 2, next.habitLoads)
	})

	t.Run("Success: Instagram read-through", func(t *testing.T) {
		require.NoError(t, store.ReplaceInstagram(ctx, userID, []domain.InstagramEntry{{ID: "a", Date: "2025-04-01", Followers: 31}}))

		_, err := store.LoadInstagram(ctx, userID)
		require.NoError(t, err)
		entries, err := store.LoadInstagram(ctx, userID)
		require.NoError(t, err)

		assert.Len(t, entries, 1)
		assert.Equal(t, 1, next.instagramLoads)
	})

	t.Run("Fail: Missing snapshot is not cached", func(t *testing.T) {
		_, err := store.LoadHabits(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})
}
