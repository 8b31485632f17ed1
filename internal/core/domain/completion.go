package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDate   = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrInvalidStatus = errors.New("invalid completion status (must be COMPLETED, FAILED or INACTIVE)")
)

// DateLayout is the ISO calendar date used as the key of every completion map.
const DateLayout = "2006-01-02"

type CompletionStatus string

const (
	StatusCompleted CompletionStatus = "COMPLETED"
	StatusFailed    CompletionStatus = "FAILED"
	StatusInactive  CompletionStatus = "INACTIVE"
)

func ParseCompletionStatus(raw string) (CompletionStatus, error) {
	switch CompletionStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusFailed:
		return StatusFailed, nil
	case StatusInactive:
		return StatusInactive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// ParseDate validates an ISO date key and returns it as midnight UTC.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

// NormalizeDate returns the canonical YYYY-MM-DD key for raw.
func NormalizeDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today truncates now to its calendar day in now's own location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
