package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound      = errors.New("key not found in local store")
	ErrSnapshotNotFound = errors.New("no stored snapshot")
	ErrRemoteSync       = errors.New("remote sync failed")
	ErrSyncUnavailable  = errors.New("remote sync is disabled or offline")
)

// LocalStore is the device-local key/value backstop. Every write lands here
// first.
type LocalStore interface {
	// Get returns the value stored under key or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// RemoteStore is the hosted row-per-user document store.
type RemoteStore interface {
	// LoadHabits returns the opaque habit snapshot for userID or ErrSnapshotNotFound.
	LoadHabits(ctx context.Context, userID string) ([]byte, error)

	// SaveHabits upserts the snapshot keyed by userID.
	SaveHabits(ctx context.Context, userID string, doc []byte) error

	// LoadInstagram returns the user's data points ordered by date.
	LoadInstagram(ctx context.Context, userID string) ([]InstagramEntry, error)

	// ReplaceInstagram deletes every row of userID and inserts entries.
	// It is a full replace, last writer wins.
	ReplaceInstagram(ctx context.Context, userID string, entries []InstagramEntry) error

	Ping(ctx context.Context) error
}

// Connectivity is the online/offline signal consulted before remote calls.
type Connectivity interface {
	Online() bool
}

type SyncState string

const (
	SyncDisabled SyncState = "disabled"
	SyncOffline  SyncState = "offline"
	SyncIdle     SyncState = "idle"
	SyncSyncing  SyncState = "syncing"
	SyncError    SyncState = "error"
)

type SyncStatus struct {
	State         SyncState  `json:"state"`
	RemoteEnabled bool       `json:"remoteEnabled"`
	Online        bool       `json:"online"`
	UserID        string     `json:"userId"`
	LastError     string     `json:"lastError,omitempty"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`
}
