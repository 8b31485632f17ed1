package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

var ErrTrackerNotLoaded = errors.New("tracker state has not been loaded yet")

// HabitStore is the persistence the tracker needs. SyncStore implements it.
type HabitStore interface {
	LoadHabits(ctx context.Context) ([]byte, error)
	SaveHabits(ctx context.Context, doc []byte) error
}

// Scheduler requests a deferred save. workers.SaveDebouncer implements it.
type Scheduler interface {
	Schedule()
}

type TrackerOptions struct {
	Mode      domain.HabitMode
	WeekStart domain.WeekStart
	Now       func() time.Time
}

// TrackerService owns the habit tracker state. Every read returns a copy and
// every mutation schedules a save.
type TrackerService struct {
	store  HabitStore
	stats  *StatsEngine
	logger *zap.Logger

	mode      domain.HabitMode
	weekStart domain.WeekStart
	now       func() time.Time

	mu        sync.Mutex
	state     *domain.TrackerState
	loaded    bool
	scheduler Scheduler
}

func NewTrackerService(store HabitStore, stats *StatsEngine, opts TrackerOptions, logger *zap.Logger) *TrackerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mode == "" {
		opts.Mode = domain.HabitModeFixed
	}
	if opts.WeekStart == "" {
		opts.WeekStart = domain.WeekStartToday
	}

	s := &TrackerService{
		store:     store,
		stats:     stats,
		logger:    logger.Named("tracker"),
		mode:      opts.Mode,
		weekStart: opts.WeekStart,
		now:       opts.Now,
	}
	s.state = s.newState(domain.DefaultHabits())
	return s
}

// AttachScheduler wires the deferred saver. Without one, callers persist with Save.
func (s *TrackerService) AttachScheduler(sch Scheduler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduler = sch
}

func (s *TrackerService) Mode() domain.HabitMode {
	return s.mode
}

func (s *TrackerService) newState(habits []*domain.Habit) *domain.TrackerState {
	now := s.now()
	state := &domain.TrackerState{
		Habits:      habits,
		CurrentDate: domain.FormatDate(now),
		CurrentWeek: domain.CurrentWeek(now, s.weekStart),
	}
	s.stats.Recompute(state, now)
	return state
}

// Load reads the stored snapshot and replaces the in-memory state. Missing or
// unreadable data seeds the default habits.
func (s *TrackerService) Load(ctx context.Context) error {
	week := domain.CurrentWeek(s.now(), s.weekStart)

	var habits []*domain.Habit
	data, err := s.store.LoadHabits(ctx)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		s.logger.Info("no stored habits, seeding defaults")
		habits = domain.DefaultHabits()
	case err != nil:
		s.logger.Warn("failed to load habits, seeding defaults", zap.Error(err))
		habits = domain.DefaultHabits()
	default:
		decoded, err := domain.DecodeSnapshot(data, week)
		if err != nil {
			s.logger.Warn("stored snapshot is unreadable, seeding defaults", zap.Error(err))
			habits = domain.DefaultHabits()
		} else {
			habits = s.normalize(decoded)
		}
	}

	state := s.newState(habits)

	s.mu.Lock()
	s.state = state
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("tracker state loaded", zap.Int("habits", len(habits)), zap.String("mode", string(s.mode)))
	return nil
}

// Refresh reloads from the store. The last completed load wins.
func (s *TrackerService) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *TrackerService) normalize(habits []*domain.Habit) []*domain.Habit {
	if s.mode == domain.HabitModeFixed {
		return domain.MergeWithDefaults(habits)
	}
	return habits
}

// rollover moves the week window forward when the calendar day changed since
// the last recompute. Caller holds mu.
func (s *TrackerService) rollover() {
	now := s.now()
	if s.state.CurrentDate == domain.FormatDate(now) {
		return
	}
	s.state.CurrentDate = domain.FormatDate(now)
	s.state.CurrentWeek = domain.CurrentWeek(now, s.weekStart)
	s.stats.Recompute(s.state, now)
}

func (s *TrackerService) State() *domain.TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return s.state.Clone()
}

func (s *TrackerService) Statistics() domain.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return s.state.Statistics
}

func (s *TrackerService) Progress() []domain.HabitProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollover()
	return s.stats.Progress(s.state.Habits, s.state.CurrentWeek)
}

func (s *TrackerService) Habit(id string) (*domain.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, _ := s.state.FindHabit(id)
	if h == nil {
		return nil, domain.ErrHabitNotFound
	}
	return h.Clone(), nil
}

// mutate runs fn against the live state under the lock and schedules a save
// when it succeeds.
func (s *TrackerService) mutate(fn func(state *domain.TrackerState) error) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrTrackerNotLoaded
	}
	s.rollover()
	if err := fn(s.state); err != nil {
		s.mu.Unlock()
		return err
	}
	sch := s.scheduler
	s.mu.Unlock()

	if sch != nil {
		sch.Schedule()
	}
	return nil
}

func (s *TrackerService) updateCompletion(habitID string, change func(h *domain.Habit) error) (*domain.Habit, error) {
	var out *domain.Habit
	err := s.mutate(func(state *domain.TrackerState) error {
		h, _ := state.FindHabit(habitID)
		if h == nil {
			return domain.ErrHabitNotFound
		}
		if err := change(h); err != nil {
			return err
		}

		now := s.now()
		h.RecordStreak(s.stats.CalculateStreak(h.CompletedDates, now))
		state.Statistics = s.stats.Compute(state.Habits, state.CurrentWeek)
		out = h.Clone()
		return nil
	})
	return out, err
}

// Toggle flips the completion of habitID on date.
func (s *TrackerService) Toggle(habitID, date string) (*domain.Habit, error) {
	return s.updateCompletion(habitID, func(h *domain.Habit) error {
		_, err := h.Toggle(date)
		return err
	})
}

func (s *TrackerService) SetStatus(habitID, date string, status domain.CompletionStatus) (*domain.Habit, error) {
	return s.updateCompletion(habitID, func(h *domain.Habit) error {
		return h.SetStatus(date, status)
	})
}

func (s *TrackerService) CycleStatus(habitID, date string) (*domain.Habit, error) {
	return s.updateCompletion(habitID, func(h *domain.Habit) error {
		_, err := h.Cycle(date)
		return err
	})
}

// UpdateHabit applies patch to the habit. Streaks are left alone. In fixed
// mode the defaults own name and category, so changing either is refused.
func (s *TrackerService) UpdateHabit(habitID string, patch domain.HabitPatch) (*domain.Habit, error) {
	var out *domain.Habit
	err := s.mutate(func(state *domain.TrackerState) error {
		h, _ := state.FindHabit(habitID)
		if h == nil {
			return domain.ErrHabitNotFound
		}
		if s.mode != domain.HabitModeCustom {
			if patch.Name != nil && strings.TrimSpace(*patch.Name) != h.Name {
				return fmt.Errorf("%w: a default habit cannot be renamed", domain.ErrFixedHabits)
			}
			if patch.Category != nil && *patch.Category != h.Category {
				return fmt.Errorf("%w: a default habit keeps its category", domain.ErrFixedHabits)
			}
		}
		if err := h.Apply(patch); err != nil {
			return err
		}
		state.Statistics = s.stats.Compute(state.Habits, state.CurrentWeek)
		out = h.Clone()
		return nil
	})
	return out, err
}

func (s *TrackerService) AddHabit(name string, category domain.Category, settings domain.HabitSettings) (*domain.Habit, error) {
	if s.mode != domain.HabitModeCustom {
		return nil, domain.ErrFixedHabits
	}

	h, err := domain.NewHabit(name, category, settings)
	if err != nil {
		return nil, err
	}

	err = s.mutate(func(state *domain.TrackerState) error {
		state.Habits = append(state.Habits, h)
		state.Statistics = s.stats.Compute(state.Habits, state.CurrentWeek)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h.Clone(), nil
}

func (s *TrackerService) RemoveHabit(habitID string) error {
	if s.mode != domain.HabitModeCustom {
		return domain.ErrFixedHabits
	}

	return s.mutate(func(state *domain.TrackerState) error {
		_, idx := state.FindHabit(habitID)
		if idx < 0 {
			return domain.ErrHabitNotFound
		}
		state.Habits = append(state.Habits[:idx], state.Habits[idx+1:]...)
		state.Statistics = s.stats.Compute(state.Habits, state.CurrentWeek)
		return nil
	})
}

func (s *TrackerService) IsCompletedOn(habitID, date string) (bool, error) {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return false, err
	}
	h, err := s.Habit(habitID)
	if err != nil {
		return false, err
	}
	return h.IsCompleted(date), nil
}

func (s *TrackerService) CompletedDates(habitID string) ([]string, error) {
	h, err := s.Habit(habitID)
	if err != nil {
		return nil, err
	}
	return h.CompletedDateList(), nil
}

// Export returns the JSON snapshot and the suggested download filename.
func (s *TrackerService) Export() ([]byte, string, error) {
	state := s.State()
	data, err := domain.EncodeSnapshot(state)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("habit_tracker_export_%s.json", state.CurrentDate), nil
}

// Import replaces the state with the snapshot in data. On failure the state is
// untouched and the error wraps domain.ErrInvalidSnapshot.
func (s *TrackerService) Import(data []byte) error {
	now := s.now()
	habits, err := domain.DecodeSnapshot(data, domain.CurrentWeek(now, s.weekStart))
	if err != nil {
		return err
	}
	state := s.newState(s.normalize(habits))

	err = s.mutate(func(current *domain.TrackerState) error {
		*current = *state
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("snapshot imported", zap.Int("habits", len(state.Habits)))
	return nil
}

// ResetToDefaults drops every habit and its history and persists immediately.
func (s *TrackerService) ResetToDefaults(ctx context.Context) error {
	state := s.newState(domain.DefaultHabits())

	s.mu.Lock()
	s.state = state
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("tracker reset to default habits")
	return s.Save(ctx)
}

// Save persists the current state. It is a no-op until the first Load so the
// defaults never overwrite stored data. Remote failures come back wrapped in
// domain.ErrRemoteSync while the local copy is already written.
func (s *TrackerService) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return nil
	}
	data, err := domain.EncodeSnapshot(s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.store.SaveHabits(ctx, data); err != nil {
		if errors.Is(err, domain.ErrRemoteSync) {
			s.logger.Warn("habits saved locally only", zap.Error(err))
		}
		return err
	}
	return nil
}
