package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

type InstagramStore interface {
	LoadInstagram(ctx context.Context) ([]domain.InstagramEntry, error)
	SaveInstagram(ctx context.Context, entries []domain.InstagramEntry) error
}

type InstagramInput struct {
	Date      string
	Followers int
	Following *int
	Posts     *int
	Notes     string
}

func (in InstagramInput) entry(id string) domain.InstagramEntry {
	return domain.InstagramEntry{
		ID:        id,
		Date:      in.Date,
		Followers: in.Followers,
		Following: in.Following,
		Posts:     in.Posts,
		Notes:     in.Notes,
	}
}

// InstagramService keeps the follower data points sorted by date. Every change
// is written through the store before it becomes visible.
type InstagramService struct {
	store  InstagramStore
	logger *zap.Logger
	now    func() time.Time

	writeMu sync.Mutex
	mu      sync.RWMutex
	entries []domain.InstagramEntry
}

func NewInstagramService(store InstagramStore, now func() time.Time, logger *zap.Logger) *InstagramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &InstagramService{
		store:  store,
		logger: logger.Named("instagram"),
		now:    now,
	}
}

func (s *InstagramService) Load(ctx context.Context) error {
	entries, err := s.store.LoadInstagram(ctx)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		entries = nil
	case err != nil:
		s.logger.Warn("failed to load instagram data, starting empty", zap.Error(err))
		entries = nil
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

func (s *InstagramService) Entries() []domain.InstagramEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InstagramEntry{}, s.entries...)
}

func (s *InstagramService) Stats() domain.InstagramStats {
	return domain.ComputeInstagramStats(s.Entries(), s.now())
}

// commit persists next and publishes it. A remote-only failure still
// publishes, since the local copy is written.
func (s *InstagramService) commit(ctx context.Context, next []domain.InstagramEntry) error {
	domain.SortInstagramEntries(next)

	if err := s.store.SaveInstagram(ctx, next); err != nil {
		if !errors.Is(err, domain.ErrRemoteSync) {
			return err
		}
		s.logger.Warn("instagram data saved locally only", zap.Error(err))
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()
	return nil
}

// AddEntry records a data point. An existing point on the same date is
// overwritten and keeps its id.
func (s *InstagramService) AddEntry(ctx context.Context, in InstagramInput) (domain.InstagramEntry, error) {
	date, err := domain.NormalizeDate(in.Date)
	if err != nil {
		return domain.InstagramEntry{}, err
	}
	in.Date = date

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Entries()
	id := uuid.NewString()
	idx := -1
	for i, e := range next {
		if e.Date == in.Date {
			id, idx = e.ID, i
			break
		}
	}

	entry := in.entry(id)
	if err := entry.Validate(); err != nil {
		return domain.InstagramEntry{}, err
	}

	if idx >= 0 {
		next[idx] = entry
	} else {
		next = append(next, entry)
	}

	if err := s.commit(ctx, next); err != nil {
		return domain.InstagramEntry{}, err
	}
	return entry, nil
}

func (s *InstagramService) UpdateEntry(ctx context.Context, id string, in InstagramInput) (domain.InstagramEntry, error) {
	date, err := domain.NormalizeDate(in.Date)
	if err != nil {
		return domain.InstagramEntry{}, err
	}
	in.Date = date

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Entries()
	idx := -1
	for i, e := range next {
		if e.ID == id {
			idx = i
		} else if e.Date == in.Date {
			return domain.InstagramEntry{}, domain.ErrDuplicateEntryDate
		}
	}
	if idx < 0 {
		return domain.InstagramEntry{}, domain.ErrEntryNotFound
	}

	entry := in.entry(id)
	if err := entry.Validate(); err != nil {
		return domain.InstagramEntry{}, err
	}
	next[idx] = entry

	if err := s.commit(ctx, next); err != nil {
		return domain.InstagramEntry{}, err
	}
	return entry, nil
}

func (s *InstagramService) DeleteEntry(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.Entries()
	next := make([]domain.InstagramEntry, 0, len(current))
	for _, e := range current {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(current) {
		return domain.ErrEntryNotFound
	}
	return s.commit(ctx, next)
}

func (s *InstagramService) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.commit(ctx, []domain.InstagramEntry{})
}

// Export returns the data points as an indented JSON array and the suggested
// download filename.
func (s *InstagramService) Export() ([]byte, string, error) {
	data, err := json.MarshalIndent(s.Entries(), "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("instagram service: failed to encode export: %w", err)
	}
	return data, fmt.Sprintf("instagram-tracker-%s.json", domain.FormatDate(s.now())), nil
}

// Import replaces every data point with the JSON array in data. Malformed
// input leaves the current data untouched.
func (s *InstagramService) Import(ctx context.Context, data []byte) error {
	var entries []domain.InstagramEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidEntries, err)
	}

	dates := make(map[string]bool, len(entries))
	ids := make(map[string]bool, len(entries))
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
		entry, err := entries[i].Normalized()
		if err != nil {
			return fmt.Errorf("%w: entry %d: %w", domain.ErrInvalidEntries, i, err)
		}
		if ids[entry.ID] {
			return fmt.Errorf("%w: %w %s", domain.ErrInvalidEntries, domain.ErrDuplicateEntryID, entry.ID)
		}
		if dates[entry.Date] {
			return fmt.Errorf("%w: %w %s", domain.ErrInvalidEntries, domain.ErrDuplicateEntryDate, entry.Date)
		}
		ids[entry.ID], dates[entry.Date] = true, true
		entries[i] = entry
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.commit(ctx, entries)
}
