package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <habit> <completed|failed|inactive> [date]",
		Short: "Set the status of a habit on a day explicitly",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			habit, err := resolveHabit(c.app.Tracker, args[0])
			if err != nil {
				return err
			}
			status, err := domain.ParseCompletionStatus(args[1])
			if err != nil {
				return err
			}
			date := dateArg(c.app.Tracker, args, 2)

			habit, err = c.app.Tracker.SetStatus(habit.ID, date, status)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s: %s (streak %d)\n",
				statusMark(status), habit.Name, date, status, habit.Streak)
			return nil
		},
	}
}
