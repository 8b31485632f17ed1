package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the weekly statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Tracker.Statistics()

			best, worst := s.BestHabit, s.WorstHabit
			if best == "" {
				best = "-"
			}
			if worst == "" {
				worst = "-"
			}

			lines := []string{
				titleStyle.Render("This week"),
				fmt.Sprintf("Total completion   %d%%", s.TotalCompletionRate),
				fmt.Sprintf("Habits touched     %d%%", s.WeeklyCompletionRate),
				fmt.Sprintf("Best habit         %s", best),
				fmt.Sprintf("Needs attention    %s", worst),
				fmt.Sprintf("Longest streak     %d days", s.LongestStreak),
			}
			fmt.Fprintln(cmd.OutOrStdout(), panelStyle.Render(strings.Join(lines, "\n")))
			return nil
		},
	}
}
