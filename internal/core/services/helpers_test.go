package services_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

// fixedNow is a Wednesday.
var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type memoryLocal struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
	sets   int
}

func newMemoryLocal() *memoryLocal {
	return &memoryLocal{data: make(map[string][]byte)}
}

func (m *memoryLocal) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryLocal) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memoryLocal) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) LoadHabits(ctx context.Context, userID string) ([]byte, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRemoteStore) SaveHabits(ctx context.Context, userID string, doc []byte) error {
	return m.Called(ctx, userID, doc).Error(0)
}

func (m *MockRemoteStore) LoadInstagram(ctx context.Context, userID string) ([]domain.InstagramEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstagramEntry), args.Error(1)
}

func (m *MockRemoteStore) ReplaceInstagram(ctx context.Context, userID string, entries []domain.InstagramEntry) error {
	return m.Called(ctx, userID, entries).Error(0)
}

func (m *MockRemoteStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type staticConn bool

func (c staticConn) Online() bool { return bool(c) }

type countingScheduler struct {
	n atomic.Int32
}

func (c *countingScheduler) Schedule() { c.n.Add(1) }

// habitStoreFake is a HabitStore with a scriptable load result.
type habitStoreFake struct {
	mu      sync.Mutex
	doc     []byte
	loadErr error
	saveErr error
	saves   int
}

func (f *habitStoreFake) LoadHabits(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.doc == nil {
		return nil, domain.ErrSnapshotNotFound
	}
	return f.doc, nil
}

func (f *habitStoreFake) SaveHabits(_ context.Context, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil && !errors.Is(f.saveErr, domain.ErrRemoteSync) {
		return f.saveErr
	}
	f.doc = doc
	return f.saveErr
}
