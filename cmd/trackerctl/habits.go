package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

func newHabitsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "habits",
		Aliases: []string{"ls"},
		Short:   "Show the current week for every habit",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := c.app.Tracker.State()
			progress := c.app.Tracker.Progress()
			return renderWeek(cmd.OutOrStdout(), state, progress)
		},
	}
}

func renderWeek(out io.Writer, state *domain.TrackerState, progress []domain.HabitProgress) error {
	fmt.Fprintln(out, titleStyle.Render("Week of "+state.CurrentWeek[0]))

	tw := tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	header := []string{"ID", "HABIT"}
	for _, day := range state.CurrentWeek {
		header = append(header, day[5:])
	}
	header = append(header, "GOAL", "STREAK")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	byID := make(map[string]domain.HabitProgress, len(progress))
	for _, p := range progress {
		byID[p.HabitID] = p
	}

	for _, h := range state.Habits {
		row := []string{h.ID, h.Icon + " " + h.Name}
		for _, day := range state.CurrentWeek {
			row = append(row, statusMark(h.Status(day)))
		}
		p := byID[h.ID]
		row = append(row,
			fmt.Sprintf("%d/%d (%d%%)", p.Completed, h.Goal, p.Percent),
			fmt.Sprintf("%d (best %d)", h.Streak, h.BestStreak),
		)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// resolveHabit accepts either a habit id or its name, ignoring case.
func resolveHabit(tracker *services.TrackerService, ref string) (*domain.Habit, error) {
	if h, err := tracker.Habit(ref); err == nil {
		return h, nil
	}
	for _, h := range tracker.State().Habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(ref)) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrHabitNotFound, ref)
}

// dateArg returns args[i] when present, today otherwise. Malformed dates are
// passed through for the tracker to reject.
func dateArg(tracker *services.TrackerService, args []string, i int) string {
	if len(args) > i {
		if d, err := domain.NormalizeDate(args[i]); err == nil {
			return d
		}
		return args[i]
	}
	return tracker.State().CurrentDate
}
