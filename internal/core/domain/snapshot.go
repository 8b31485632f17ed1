package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidSnapshot = errors.New("invalid tracker snapshot")

// snapshotDocument is the persisted/exported shape. Statistics and the week
// are derived, so they are accepted in any form and recomputed.
type snapshotDocument struct {
	Habits      json.RawMessage `json:"habits"`
	CurrentDate string          `json:"currentDate"`
	CurrentWeek json.RawMessage `json:"currentWeek"`
	Statistics  json.RawMessage `json:"statistics"`
}

// habitRecord accepts every habit shape that has been persisted so far,
// including the legacy weekday array under "completed".
type habitRecord struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Priority       string          `json:"priority"`
	Goal           int             `json:"goal"`
	Color          string          `json:"color"`
	Icon           string          `json:"icon"`
	Notes          string          `json:"notes"`
	CompletedDates json.RawMessage `json:"completedDates"`
	Completed      json.RawMessage `json:"completed"`
	Streak         int             `json:"streak"`
	BestStreak     int             `json:"bestStreak"`
}

// EncodeSnapshot serializes the state in the export/local-storage format.
func EncodeSnapshot(state *TrackerState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored or imported snapshot and migrates every habit
// into the tri-state per-date shape. week is used to place legacy weekday
// arrays. Any failure is reported as ErrInvalidSnapshot.
func DecodeSnapshot(data []byte, week []string) ([]*Habit, error) {
	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if !isPresent(doc.Habits) {
		return nil, fmt.Errorf("%w: missing habits array", ErrInvalidSnapshot)
	}

	var records []habitRecord
	if err := json.Unmarshal(doc.Habits, &records); err != nil {
		return nil, fmt.Errorf("%w: habits: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]bool, len(records))
	habits := make([]*Habit, 0, len(records))
	for i, r := range records {
		h, err := r.toHabit(week)
		if err != nil {
			return nil, fmt.Errorf("%w: habit %d: %v", ErrInvalidSnapshot, i, err)
		}
		if seen[h.ID] {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidSnapshot, ErrDuplicateHabitID, h.ID)
		}
		seen[h.ID] = true
		habits = append(habits, h)
	}
	return habits, nil
}

func (r habitRecord) toHabit(week []string) (*Habit, error) {
	id := strings.TrimSpace(r.ID)
	name := strings.TrimSpace(r.Name)
	if id == "" && name == "" {
		return nil, errors.New("habit has neither id nor name")
	}
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		name = id
	}

	completed, err := MigrateCompletions(r.CompletedDates, r.Completed, week)
	if err != nil {
		return nil, err
	}

	category, err := ParseCategory(r.Category)
	if err != nil {
		category = CategoryOther
	}
	priority, err := ParsePriority(r.Priority)
	if err != nil {
		priority = PriorityMedium
	}

	goal := r.Goal
	switch {
	case goal < MinGoal:
		goal = DefaultGoal
	case goal > MaxGoal:
		goal = MaxGoal
	}

	color := r.Color
	if !colorRegex.MatchString(color) {
		color = DefaultColor
	}
	icon := r.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	return &Habit{
		ID:             id,
		Name:           name,
		Description:    strings.TrimSpace(r.Description),
		Category:       category,
		Priority:       priority,
		Goal:           goal,
		Color:          color,
		Icon:           icon,
		Notes:          r.Notes,
		CompletedDates: completed,
		Streak:         max(0, r.Streak),
		BestStreak:     max(0, r.BestStreak),
	}, nil
}

// MigrateCompletions converts any persisted completion encoding into the
// tri-state per-date map. dates is the "completedDates" field (status strings
// or legacy booleans); legacy is the old "completed" field, either a
// weekday-indexed boolean array mapped onto week by index or a date map.
func MigrateCompletions(dates, legacy json.RawMessage, week []string) (map[string]CompletionStatus, error) {
	out := make(map[string]CompletionStatus)

	if isPresent(dates) {
		if err := mergeCompletionMap(out, dates); err != nil {
			return nil, err
		}
		return out, nil
	}
	if !isPresent(legacy) {
		return out, nil
	}

	var weekdays []bool
	if err := json.Unmarshal(legacy, &weekdays); err == nil {
		for i, done := range weekdays {
			if done && i < len(week) {
				out[week[i]] = StatusCompleted
			}
		}
		return out, nil
	}

	if err := mergeCompletionMap(out, legacy); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeCompletionMap(out map[string]CompletionStatus, raw json.RawMessage) error {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("completion map: %w", err)
	}

	for raw, value := range entries {
		date, err := NormalizeDate(raw)
		if err != nil {
			return err
		}

		var done bool
		if err := json.Unmarshal(value, &done); err == nil {
			if done {
				out[date] = StatusCompleted
			}
			continue
		}

		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("%w: date %s", ErrInvalidStatus, date)
		}
		status, err := ParseCompletionStatus(s)
		if err != nil {
			return err
		}
		if status != StatusInactive {
			out[date] = status
		}
	}
	return nil
}

func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// SnapshotHasHabits reports whether data is a snapshot with at least one
// habit. Remote copies without habits are treated as absent.
func SnapshotHasHabits(data []byte) bool {
	var doc struct {
		Habits []json.RawMessage `json:"habits"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	return len(doc.Habits) > 0
}
