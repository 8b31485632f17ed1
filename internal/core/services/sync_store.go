package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

// Local storage keys. They match the keys older dashboards wrote, so existing
// device data is picked up unchanged.
const (
	KeyHabitState    = "habit-tracker-state"
	KeyInstagramData = "instagram-tracker-data"
	KeyNotes         = "tracker-notes"
)

const DefaultRemoteTimeout = 5 * time.Second

// SyncStore is the offline-first store adapter. Writes always land in the
// local store; the remote store is used when it is configured and reachable.
type SyncStore struct {
	local    domain.LocalStore
	remote   domain.RemoteStore
	conn     domain.Connectivity
	identity domain.IdentityProvider
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	status domain.SyncStatus
}

// NewSyncStore builds the adapter. A nil remote disables sync; a nil conn is
// treated as always online.
func NewSyncStore(local domain.LocalStore, remote domain.RemoteStore, conn domain.Connectivity, identity domain.IdentityProvider, logger *zap.Logger) *SyncStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncStore{
		local:    local,
		remote:   remote,
		conn:     conn,
		identity: identity,
		logger:   logger.Named("sync"),
		timeout:  DefaultRemoteTimeout,
		now:      time.Now,
		status:   domain.SyncStatus{State: domain.SyncIdle},
	}
}

func (s *SyncStore) SetRemoteTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

func (s *SyncStore) remoteAvailable() bool {
	if s.remote == nil {
		return false
	}
	return s.conn == nil || s.conn.Online()
}

// LoadHabits returns the stored habit snapshot, preferring a non-empty remote
// copy. Returns domain.ErrSnapshotNotFound when neither side has one.
func (s *SyncStore) LoadHabits(ctx context.Context) ([]byte, error) {
	if s.remoteAvailable() {
		doc, err := s.loadRemoteHabits(ctx)
		switch {
		case err == nil && domain.SnapshotHasHabits(doc):
			if err := s.local.Set(ctx, KeyHabitState, doc); err != nil {
				s.logger.Warn("failed to mirror remote habits locally", zap.Error(err))
			}
			return doc, nil
		case err != nil && !errors.Is(err, domain.ErrSnapshotNotFound):
			s.logger.Warn("remote habit load failed, using local copy", zap.Error(err))
		default:
			s.logger.Debug("no remote habits, using local copy")
		}
	}

	doc, err := s.local.Get(ctx, KeyHabitState)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sync store: failed to read local habits: %w", err)
	}
	return doc, nil
}

func (s *SyncStore) loadRemoteHabits(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.remote.LoadHabits(ctx, s.identity.UserID())
}

// SaveHabits writes doc locally, then remotely when possible. A remote failure
// is returned wrapped in domain.ErrRemoteSync; the local copy is kept.
func (s *SyncStore) SaveHabits(ctx context.Context, doc []byte) error {
	if err := s.local.Set(ctx, KeyHabitState, doc); err != nil {
		return fmt.Errorf("sync store: failed to write local habits: %w", err)
	}
	if !s.remoteAvailable() {
		return nil
	}

	return s.pushRemote(ctx, "habits", func(ctx context.Context, userID string) error {
		return s.remote.SaveHabits(ctx, userID, doc)
	})
}

// LoadInstagram mirrors LoadHabits for the follower data points.
func (s *SyncStore) LoadInstagram(ctx context.Context) ([]domain.InstagramEntry, error) {
	if s.remoteAvailable() {
		entries, err := s.loadRemoteInstagram(ctx)
		switch {
		case err == nil && len(entries) > 0:
			if err := s.writeLocalInstagram(ctx, entries); err != nil {
				s.logger.Warn("failed to mirror remote instagram data locally", zap.Error(err))
			}
			return entries, nil
		case err != nil:
			s.logger.Warn("remote instagram load failed, using local copy", zap.Error(err))
		}
	}

	data, err := s.local.Get(ctx, KeyInstagramData)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sync store: failed to read local instagram data: %w", err)
	}

	var entries []domain.InstagramEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("sync store: %w: %v", domain.ErrInvalidEntries, err)
	}
	domain.SortInstagramEntries(entries)
	return entries, nil
}

func (s *SyncStore) loadRemoteInstagram(ctx context.Context) ([]domain.InstagramEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.remote.LoadInstagram(ctx, s.identity.UserID())
}

func (s *SyncStore) writeLocalInstagram(ctx context.Context, entries []domain.InstagramEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("sync store: failed to encode instagram data: %w", err)
	}
	return s.local.Set(ctx, KeyInstagramData, data)
}

// SaveInstagram replaces the stored data points locally and remotely.
func (s *SyncStore) SaveInstagram(ctx context.Context, entries []domain.InstagramEntry) error {
	if err := s.writeLocalInstagram(ctx, entries); err != nil {
		return fmt.Errorf("sync store: failed to write local instagram data: %w", err)
	}
	if !s.remoteAvailable() {
		return nil
	}

	return s.pushRemote(ctx, "instagram", func(ctx context.Context, userID string) error {
		return s.remote.ReplaceInstagram(ctx, userID, entries)
	})
}

// LoadLocal and SaveLocal serve datasets that never leave the device.
func (s *SyncStore) LoadLocal(ctx context.Context, key string) ([]byte, error) {
	data, err := s.local.Get(ctx, key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, domain.ErrSnapshotNotFound
	}
	return data, err
}

func (s *SyncStore) SaveLocal(ctx context.Context, key string, data []byte) error {
	if err := s.local.Set(ctx, key, data); err != nil {
		return fmt.Errorf("sync store: failed to write %s: %w", key, err)
	}
	return nil
}

// ForceSync pushes both local datasets to the remote store.
func (s *SyncStore) ForceSync(ctx context.Context) error {
	if !s.remoteAvailable() {
		return domain.ErrSyncUnavailable
	}

	var errs []error

	if doc, err := s.local.Get(ctx, KeyHabitState); err == nil {
		if err := s.pushRemote(ctx, "habits", func(ctx context.Context, userID string) error {
			return s.remote.SaveHabits(ctx, userID, doc)
		}); err != nil {
			errs = append(errs, err)
		}
	} else if !errors.Is(err, domain.ErrKeyNotFound) {
		errs = append(errs, fmt.Errorf("sync store: failed to read local habits: %w", err))
	}

	if data, err := s.local.Get(ctx, KeyInstagramData); err == nil {
		var entries []domain.InstagramEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			errs = append(errs, fmt.Errorf("sync store: %w: %v", domain.ErrInvalidEntries, err))
		} else if err := s.pushRemote(ctx, "instagram", func(ctx context.Context, userID string) error {
			return s.remote.ReplaceInstagram(ctx, userID, entries)
		}); err != nil {
			errs = append(errs, err)
		}
	} else if !errors.Is(err, domain.ErrKeyNotFound) {
		errs = append(errs, fmt.Errorf("sync store: failed to read local instagram data: %w", err))
	}

	return errors.Join(errs...)
}

func (s *SyncStore) pushRemote(ctx context.Context, dataset string, push func(context.Context, string) error) error {
	s.setState(domain.SyncSyncing, nil)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	userID := s.identity.UserID()
	if err := push(ctx, userID); err != nil {
		s.setState(domain.SyncError, err)
		s.logger.Error("remote sync failed",
			zap.String("dataset", dataset),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", domain.ErrRemoteSync, dataset, err)
	}

	s.setState(domain.SyncIdle, nil)
	s.logger.Debug("remote sync done", zap.String("dataset", dataset), zap.String("user_id", userID))
	return nil
}

func (s *SyncStore) setState(state domain.SyncState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.State = state
	switch {
	case err != nil:
		s.status.LastError = err.Error()
	case state == domain.SyncIdle:
		now := s.now().UTC()
		s.status.LastError = ""
		s.status.LastSyncedAt = &now
	}
}

// Status reports the current sync state. Disabled and offline take precedence
// over the state of the last remote call.
func (s *SyncStore) Status() domain.SyncStatus {
	s.mu.Lock()
	st := s.status
	s.mu.Unlock()

	st.RemoteEnabled = s.remote != nil
	st.Online = s.conn == nil || s.conn.Online()
	st.UserID = s.identity.UserID()

	switch {
	case !st.RemoteEnabled:
		st.State = domain.SyncDisabled
	case !st.Online:
		st.State = domain.SyncOffline
	}
	return st
}
