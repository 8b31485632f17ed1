package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrHabitNameEmpty    = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong  = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong  = errors.New("habit description is too long (max 500 chars)")
	ErrInvalidColor      = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidGoal       = errors.New("invalid weekly goal (must be 1-7)")
	ErrInvalidCategory   = errors.New("invalid habit category")
	ErrInvalidPriority   = errors.New("invalid habit priority (must be LOW, MEDIUM or HIGH)")
	ErrDuplicateHabitID  = errors.New("duplicate habit id")
	ErrFixedHabits       = errors.New("habits are fixed in this mode")
	ErrHabitNotesTooLong = errors.New("habit notes are too long (max 2000 chars)")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultColor   = "#3b82f6"
	DefaultIcon    = "✅"
	DefaultGoal    = 7
	MinGoal        = 1
	MaxGoal        = 7
	MaxNameLen     = 100
	MaxDescLen     = 500
	MaxHabitNotes  = 2000
	DaysInWeekView = 7
)

type Category string

const (
	CategoryWork        Category = "WORK"
	CategoryReading     Category = "READING"
	CategoryWriting     Category = "WRITING"
	CategoryLanguage    Category = "LANGUAGE"
	CategoryGym         Category = "GYM"
	CategoryWater       Category = "WATER"
	CategoryStudy       Category = "STUDY"
	CategoryHome        Category = "HOME"
	CategoryContent     Category = "CONTENT"
	CategoryMindfulness Category = "MINDFULNESS"
	CategorySelfControl Category = "SELF_CONTROL"
	CategoryOther       Category = "OTHER"
)

var validCategories = map[Category]bool{
	CategoryWork: true, CategoryReading: true, CategoryWriting: true, CategoryLanguage: true,
	CategoryGym: true, CategoryWater: true, CategoryStudy: true, CategoryHome: true,
	CategoryContent: true, CategoryMindfulness: true, CategorySelfControl: true, CategoryOther: true,
}

func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if !validCategories[c] {
		return "", ErrInvalidCategory
	}
	return c, nil
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToUpper(strings.TrimSpace(raw))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", ErrInvalidPriority
}

type Habit struct {
	ID             string                      `json:"id"`
	Name           string                      `json:"name"`
	Description    string                      `json:"description,omitempty"`
	Category       Category                    `json:"category"`
	Priority       Priority                    `json:"priority"`
	Goal           int                         `json:"goal"`
	Color          string                      `json:"color"`
	Icon           string                      `json:"icon"`
	Notes          string                      `json:"notes"`
	CompletedDates map[string]CompletionStatus `json:"completedDates"`
	Streak         int                         `json:"streak"`
	BestStreak     int                         `json:"bestStreak"`
}

// HabitSettings carries the optional fields of a new habit. Zero values fall
// back to the defaults of the creation form.
type HabitSettings struct {
	Description string
	Priority    Priority
	Goal        int
	Color       string
	Icon        string
	Notes       string
}

// HabitPatch is a partial update; nil fields are left untouched.
type HabitPatch struct {
	Name        *string
	Description *string
	Category    *Category
	Priority    *Priority
	Goal        *int
	Color       *string
	Icon        *string
	Notes       *string
}

func NewHabit(name string, category Category, settings HabitSettings) (*Habit, error) {
	h := &Habit{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		Description:    strings.TrimSpace(settings.Description),
		Category:       category,
		Priority:       settings.Priority,
		Goal:           settings.Goal,
		Color:          settings.Color,
		Icon:           settings.Icon,
		Notes:          settings.Notes,
		CompletedDates: make(map[string]CompletionStatus),
	}

	if h.Priority == "" {
		h.Priority = PriorityMedium
	}
	if h.Goal == 0 {
		h.Goal = DefaultGoal
	}
	if h.Color == "" {
		h.Color = DefaultColor
	}
	if h.Icon == "" {
		h.Icon = DefaultIcon
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Habit) Validate() error {
	name := strings.TrimSpace(h.Name)
	if name == "" {
		return ErrHabitNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrHabitNameTooLong
	}
	if len(h.Description) > MaxDescLen {
		return ErrHabitDescTooLong
	}
	if len(h.Notes) > MaxHabitNotes {
		return ErrHabitNotesTooLong
	}
	if !validCategories[h.Category] {
		return ErrInvalidCategory
	}
	if _, err := ParsePriority(string(h.Priority)); err != nil {
		return err
	}
	if h.Goal < MinGoal || h.Goal > MaxGoal {
		return ErrInvalidGoal
	}
	if h.Color != "" && !colorRegex.MatchString(h.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Apply merges the patch into the habit. The habit is left unchanged when the
// merged result does not validate.
func (h *Habit) Apply(patch HabitPatch) error {
	next := *h
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Goal != nil {
		next.Goal = *patch.Goal
	}
	if patch.Color != nil {
		next.Color = *patch.Color
	}
	if patch.Icon != nil {
		next.Icon = *patch.Icon
		if next.Icon == "" {
			next.Icon = DefaultIcon
		}
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*h = next
	return nil
}

func (h *Habit) Status(date string) CompletionStatus {
	if s, ok := h.CompletedDates[date]; ok {
		return s
	}
	return StatusInactive
}

func (h *Habit) IsCompleted(date string) bool {
	return h.Status(date) == StatusCompleted
}

// SetStatus records status for date. INACTIVE is never stored.
func (h *Habit) SetStatus(date string, status CompletionStatus) error {
	date, err := NormalizeDate(date)
	if err != nil {
		return err
	}
	if _, err := ParseCompletionStatus(string(status)); err != nil {
		return err
	}
	if h.CompletedDates == nil {
		h.CompletedDates = make(map[string]CompletionStatus)
	}
	if status == StatusInactive {
		delete(h.CompletedDates, date)
		return nil
	}
	h.CompletedDates[date] = status
	return nil
}

// Toggle flips completion on date: COMPLETED becomes INACTIVE, anything else
// becomes COMPLETED.
func (h *Habit) Toggle(date string) (CompletionStatus, error) {
	date, err := NormalizeDate(date)
	if err != nil {
		return "", err
	}
	next := StatusCompleted
	if h.IsCompleted(date) {
		next = StatusInactive
	}
	if err := h.SetStatus(date, next); err != nil {
		return "", err
	}
	return next, nil
}

// Cycle advances date through INACTIVE -> COMPLETED -> FAILED -> INACTIVE.
func (h *Habit) Cycle(date string) (CompletionStatus, error) {
	date, err := NormalizeDate(date)
	if err != nil {
		return "", err
	}
	var next CompletionStatus
	switch h.Status(date) {
	case StatusInactive:
		next = StatusCompleted
	case StatusCompleted:
		next = StatusFailed
	default:
		next = StatusInactive
	}
	if err := h.SetStatus(date, next); err != nil {
		return "", err
	}
	return next, nil
}

// CompletedDateList returns the COMPLETED dates in ascending order.
func (h *Habit) CompletedDateList() []string {
	dates := make([]string, 0, len(h.CompletedDates))
	for d, s := range h.CompletedDates {
		if s == StatusCompleted {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates
}

// RecordStreak sets the current streak and keeps BestStreak monotonic.
func (h *Habit) RecordStreak(streak int) {
	if streak < 0 {
		streak = 0
	}
	h.Streak = streak
	if streak > h.BestStreak {
		h.BestStreak = streak
	}
}

func (h *Habit) Clone() *Habit {
	c := *h
	c.CompletedDates = make(map[string]CompletionStatus, len(h.CompletedDates))
	for k, v := range h.CompletedDates {
		c.CompletedDates[k] = v
	}
	return &c
}
