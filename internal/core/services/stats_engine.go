package services

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

// MaxStreakDays bounds the backward walk of CalculateStreak.
const MaxStreakDays = 365

type StatsEngine struct {
	anchor domain.StreakAnchor
}

func NewStatsEngine(anchor domain.StreakAnchor) *StatsEngine {
	if anchor == "" {
		anchor = domain.AnchorToday
	}
	return &StatsEngine{anchor: anchor}
}

// CalculateStreak counts consecutive COMPLETED days walking backward from the
// anchor day. With the latest anchor the walk starts at the most recent
// completion instead of today.
func (e *StatsEngine) CalculateStreak(dates map[string]domain.CompletionStatus, today time.Time) int {
	day := domain.Today(today)

	if e.anchor == domain.AnchorLatest {
		latest := ""
		for d, s := range dates {
			if s == domain.StatusCompleted && d > latest {
				latest = d
			}
		}
		if latest == "" {
			return 0
		}
		t, err := domain.ParseDate(latest)
		if err != nil {
			return 0
		}
		day = t
	}

	streak := 0
	for i := 0; i < MaxStreakDays; i++ {
		key := domain.FormatDate(day.AddDate(0, 0, -i))
		if dates[key] != domain.StatusCompleted {
			break
		}
		streak++
	}
	return streak
}

// Progress returns the weekly figures of every habit over week.
func (e *StatsEngine) Progress(habits []*domain.Habit, week []string) []domain.HabitProgress {
	out := make([]domain.HabitProgress, 0, len(habits))
	for _, h := range habits {
		p := domain.HabitProgress{
			HabitID:   h.ID,
			HabitName: h.Name,
			Goal:      h.Goal,
		}
		for _, d := range week {
			switch h.Status(d) {
			case domain.StatusCompleted:
				p.Completed++
			case domain.StatusFailed:
				p.Failed++
			}
		}
		p.Percent = int(math.Round(progressRatio(p.Completed, p.Goal) * 100))
		out = append(out, p)
	}
	return out
}

func progressRatio(completed, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	return float64(min(completed, goal)) / float64(goal)
}

// Compute derives the dashboard statistics from the habits and the week view.
func (e *StatsEngine) Compute(habits []*domain.Habit, week []string) domain.Statistics {
	var stats domain.Statistics
	if len(habits) == 0 {
		return stats
	}

	totalCompleted := 0
	habitsWithCompletion := 0
	bestRatio, worstRatio := -1.0, 2.0

	for _, h := range habits {
		completed := 0
		for _, d := range week {
			if h.IsCompleted(d) {
				completed++
			}
		}

		totalCompleted += completed
		if completed > 0 {
			habitsWithCompletion++
		}

		ratio := progressRatio(completed, h.Goal)
		if ratio > bestRatio {
			bestRatio = ratio
			stats.BestHabit = h.Name
		}
		if completed > 0 && ratio < worstRatio {
			worstRatio = ratio
			stats.WorstHabit = h.Name
		}

		if h.Streak > stats.LongestStreak {
			stats.LongestStreak = h.Streak
		}
	}

	possible := len(habits) * domain.DaysInWeekView
	stats.TotalCompletionRate = int(math.Round(float64(totalCompleted) / float64(possible) * 100))
	stats.WeeklyCompletionRate = int(math.Round(float64(habitsWithCompletion) / float64(len(habits)) * 100))
	return stats
}

// Recompute refreshes every streak and the statistics of state in place.
func (e *StatsEngine) Recompute(state *domain.TrackerState, now time.Time) {
	for _, h := range state.Habits {
		h.RecordStreak(e.CalculateStreak(h.CompletedDates, now))
	}
	state.Statistics = e.Compute(state.Habits, state.CurrentWeek)
}
