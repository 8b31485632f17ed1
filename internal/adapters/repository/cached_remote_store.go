package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

var _ domain.RemoteStore = (*CachedRemoteStore)(nil)

const cacheTTL = 30 * time.Minute

// CachedRemoteStore is a read-through redis cache in front of a RemoteStore.
// Writes go to the next store first and then drop the cached copy.
type CachedRemoteStore struct {
	next   domain.RemoteStore
	cache  *redis.Client
	logger *zap.Logger
}

func NewCachedRemoteStore(next domain.RemoteStore, cache *redis.Client, logger *zap.Logger) *CachedRemoteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRemoteStore{
		next:   next,
		cache:  cache,
		logger: logger.Named("cache"),
	}
}

func habitsKey(userID string) string {
	return fmt.Sprintf("habits:%s", userID)
}

func instagramKey(userID string) string {
	return fmt.Sprintf("instagram:%s", userID)
}

func (r *CachedRemoteStore) invalidate(ctx context.Context, key string) {
	if err := r.cache.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("failed to invalidate cache key", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedRemoteStore) read(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.cache.Get(ctx, key).Bytes()
	if err == nil {
		return val, true
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.Warn("redis read error", zap.String("key", key), zap.Error(err))
	}
	return nil, false
}

func (r *CachedRemoteStore) write(ctx context.Context, key string, data []byte) {
	if err := r.cache.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		r.logger.Warn("redis set error", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedRemoteStore) LoadHabits(ctx context.Context, userID string) ([]byte, error) {
	key := habitsKey(userID)
	if doc, ok := r.read(ctx, key); ok {
		return doc, nil
	}

	doc, err := r.next.LoadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.write(ctx, key, doc)
	return doc, nil
}

func (r *CachedRemoteStore) SaveHabits(ctx context.Context, userID string, doc []byte) error {
	if err := r.next.SaveHabits(ctx, userID, doc); err != nil {
		return err
	}
	r.invalidate(ctx, habitsKey(userID))
	return nil
}

func (r *CachedRemoteStore) LoadInstagram(ctx context.Context, userID string) ([]domain.InstagramEntry, error) {
	key := instagramKey(userID)
	if val, ok := r.read(ctx, key); ok {
		var entries []domain.InstagramEntry
		if err := json.Unmarshal(val, &entries); err == nil {
			return entries, nil
		}
		r.logger.Warn("corrupted cache entry, cleaning up", zap.String("key", key))
		r.invalidate(ctx, key)
	}

	entries, err := r.next.LoadInstagram(ctx, userID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(entries); err == nil {
		r.write(ctx, key, data)
	}
	return entries, nil
}

func (r *CachedRemoteStore) ReplaceInstagram(ctx context.Context, userID string, entries []domain.InstagramEntry) error {
	if err := r.next.ReplaceInstagram(ctx, userID, entries); err != nil {
		return err
	}
	r.invalidate(ctx, instagramKey(userID))
	return nil
}

func (r *CachedRemoteStore) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
