package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidWeekStart    = errors.New("invalid week start (must be today, sunday or monday)")
	ErrInvalidStreakAnchor = errors.New("invalid streak anchor (must be today or latest)")
	ErrInvalidHabitMode    = errors.New("invalid habit mode (must be fixed or custom)")
)

type WeekStart string

const (
	WeekStartToday  WeekStart = "today"
	WeekStartSunday WeekStart = "sunday"
	WeekStartMonday WeekStart = "monday"
)

func ParseWeekStart(raw string) (WeekStart, error) {
	switch w := WeekStart(strings.ToLower(strings.TrimSpace(raw))); w {
	case WeekStartToday, WeekStartSunday, WeekStartMonday:
		return w, nil
	case "":
		return WeekStartToday, nil
	}
	return "", ErrInvalidWeekStart
}

// StreakAnchor selects the day a streak walk starts from.
type StreakAnchor string

const (
	AnchorToday  StreakAnchor = "today"
	AnchorLatest StreakAnchor = "latest"
)

func ParseStreakAnchor(raw string) (StreakAnchor, error) {
	switch a := StreakAnchor(strings.ToLower(strings.TrimSpace(raw))); a {
	case AnchorToday, AnchorLatest:
		return a, nil
	case "":
		return AnchorToday, nil
	}
	return "", ErrInvalidStreakAnchor
}

// HabitMode distinguishes the fixed default list from user-defined habits.
type HabitMode string

const (
	HabitModeFixed  HabitMode = "fixed"
	HabitModeCustom HabitMode = "custom"
)

func ParseHabitMode(raw string) (HabitMode, error) {
	switch m := HabitMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case HabitModeFixed, HabitModeCustom:
		return m, nil
	case "":
		return HabitModeFixed, nil
	}
	return "", ErrInvalidHabitMode
}

// CurrentWeek returns the 7 consecutive ISO dates of the week anchored at now.
func CurrentWeek(now time.Time, start WeekStart) []string {
	first := Today(now)
	switch start {
	case WeekStartSunday:
		first = first.AddDate(0, 0, -int(first.Weekday()))
	case WeekStartMonday:
		first = first.AddDate(0, 0, -((int(first.Weekday()) + 6) % 7))
	}

	week := make([]string, 0, DaysInWeekView)
	for i := 0; i < DaysInWeekView; i++ {
		week = append(week, FormatDate(first.AddDate(0, 0, i)))
	}
	return week
}
