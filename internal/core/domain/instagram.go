package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrEntryNotFound      = errors.New("instagram entry not found")
	ErrInvalidFollowers   = errors.New("follower, following and post counts cannot be negative")
	ErrDuplicateEntryDate = errors.New("an instagram entry already exists for this date")
	ErrDuplicateEntryID   = errors.New("instagram entry id is used more than once")
	ErrInvalidEntries     = errors.New("invalid instagram data")
)

const (
	weeklyLookbackDays  = 7
	monthlyLookbackDays = 30
)

type InstagramEntry struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Followers int    `json:"followers"`
	Following *int   `json:"following,omitempty"`
	Posts     *int   `json:"posts,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Normalized returns e with its date in canonical form, or the validation
// error.
func (e InstagramEntry) Normalized() (InstagramEntry, error) {
	date, err := NormalizeDate(e.Date)
	if err != nil {
		return InstagramEntry{}, err
	}
	e.Date = date
	if err := e.Validate(); err != nil {
		return InstagramEntry{}, err
	}
	return e, nil
}

func (e InstagramEntry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("instagram entry id is required")
	}
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if e.Followers < 0 {
		return ErrInvalidFollowers
	}
	if e.Following != nil && *e.Following < 0 {
		return ErrInvalidFollowers
	}
	if e.Posts != nil && *e.Posts < 0 {
		return ErrInvalidFollowers
	}
	return nil
}

type InstagramStats struct {
	TotalGrowth        int     `json:"totalGrowth"`
	DailyGrowth        int     `json:"dailyGrowth"`
	WeeklyGrowth       int     `json:"weeklyGrowth"`
	MonthlyGrowth      int     `json:"monthlyGrowth"`
	AverageDailyGrowth float64 `json:"averageDailyGrowth"`
	DaysTracking       int     `json:"daysTracking"`
	CurrentFollowers   int     `json:"currentFollowers"`
	StartFollowers     int     `json:"startFollowers"`
}

// SortInstagramEntries orders entries chronologically. ISO dates sort
// lexically, so the string compare is enough.
func SortInstagramEntries(entries []InstagramEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date < entries[j].Date
	})
}

// ComputeInstagramStats derives growth figures from the first and last entries
// and from the earliest entries inside the 7 and 30 day lookback windows.
func ComputeInstagramStats(entries []InstagramEntry, now time.Time) InstagramStats {
	if len(entries) == 0 {
		return InstagramStats{}
	}

	sorted := append([]InstagramEntry(nil), entries...)
	SortInstagramEntries(sorted)

	first := sorted[0]
	last := sorted[len(sorted)-1]

	stats := InstagramStats{
		StartFollowers:   first.Followers,
		CurrentFollowers: last.Followers,
		TotalGrowth:      last.Followers - first.Followers,
	}

	start, errStart := ParseDate(first.Date)
	end, errEnd := ParseDate(last.Date)
	if errStart == nil && errEnd == nil {
		stats.DaysTracking = int(end.Sub(start).Hours() / 24)
	}
	if stats.DaysTracking > 0 {
		stats.AverageDailyGrowth = float64(stats.TotalGrowth) / float64(stats.DaysTracking)
	}

	if len(sorted) >= 2 {
		stats.DailyGrowth = last.Followers - sorted[len(sorted)-2].Followers
	}

	today := Today(now)
	stats.WeeklyGrowth = growthSince(sorted, today.AddDate(0, 0, -weeklyLookbackDays), last.Followers)
	stats.MonthlyGrowth = growthSince(sorted, today.AddDate(0, 0, -monthlyLookbackDays), last.Followers)

	return stats
}

func growthSince(sorted []InstagramEntry, cutoff time.Time, current int) int {
	limit := FormatDate(cutoff)
	for _, e := range sorted {
		if e.Date >= limit {
			return current - e.Followers
		}
	}
	return 0
}
