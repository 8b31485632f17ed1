package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

// LocalDataStore persists datasets that stay on the device.
type LocalDataStore interface {
	LoadLocal(ctx context.Context, key string) ([]byte, error)
	SaveLocal(ctx context.Context, key string, data []byte) error
}

type NoteService struct {
	store  LocalDataStore
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	notes []*domain.Note
}

func NewNoteService(store LocalDataStore, now func() time.Time, logger *zap.Logger) *NoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &NoteService{store: store, logger: logger.Named("notes"), now: now}
}

// Load reads the stored notes. Missing or unreadable notes start the pane
// empty.
func (s *NoteService) Load(ctx context.Context) error {
	notes, err := s.readStored(ctx)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		notes = nil
	case err != nil:
		s.logger.Warn("failed to load notes, starting empty", zap.Error(err))
		notes = nil
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
	return nil
}

func (s *NoteService) readStored(ctx context.Context) ([]*domain.Note, error) {
	data, err := s.store.LoadLocal(ctx, KeyNotes)
	if err != nil {
		return nil, err
	}

	var stored []*domain.Note
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("note service: stored notes are unreadable: %w", err)
	}
	notes := stored[:0]
	for _, n := range stored {
		if n != nil {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

// List returns the notes, most recently updated first.
func (s *NoteService) List() []domain.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Note, 0, len(s.notes))
	for _, n := range s.notes {
		out = append(out, *n)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *NoteService) Get(id string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, _ := s.find(id)
	if n == nil {
		return domain.Note{}, domain.ErrNoteNotFound
	}
	return *n, nil
}

func (s *NoteService) find(id string) (*domain.Note, int) {
	for i, n := range s.notes {
		if n.ID == id {
			return n, i
		}
	}
	return nil, -1
}

// persist writes next and publishes it only when the write succeeded. Caller
// holds mu.
func (s *NoteService) persist(ctx context.Context, next []*domain.Note) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("note service: failed to encode notes: %w", err)
	}
	if err := s.store.SaveLocal(ctx, KeyNotes, data); err != nil {
		return err
	}
	s.notes = next
	return nil
}

func (s *NoteService) Create(ctx context.Context, title, content string) (domain.Note, error) {
	n, err := domain.NewNote(title, content, s.now())
	if err != nil {
		return domain.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(append([]*domain.Note{}, s.notes...), n)
	if err := s.persist(ctx, next); err != nil {
		return domain.Note{}, err
	}
	return *n, nil
}

func (s *NoteService) Update(ctx context.Context, id, title, content string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, idx := s.find(id)
	if current == nil {
		return domain.Note{}, domain.ErrNoteNotFound
	}

	edited := *current
	if err := edited.Edit(title, content, s.now()); err != nil {
		return domain.Note{}, err
	}

	next := append([]*domain.Note{}, s.notes...)
	next[idx] = &edited
	if err := s.persist(ctx, next); err != nil {
		return domain.Note{}, err
	}
	return edited, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx := s.find(id)
	if idx < 0 {
		return domain.ErrNoteNotFound
	}

	next := make([]*domain.Note, 0, len(s.notes)-1)
	next = append(next, s.notes[:idx]...)
	next = append(next, s.notes[idx+1:]...)
	return s.persist(ctx, next)
}
