package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd(c *cli) *cobra.Command {
	var cycle bool

	cmd := &cobra.Command{
		Use:   "toggle <habit> [date]",
		Short: "Mark a habit done on a day, or clear the mark",
		Long: `Toggle flips a day between completed and not done. With --cycle it
walks the three states instead: not done, completed, failed.

The habit may be given by id or by name; the date defaults to today.`,
		Example: `  trackerctl toggle Gym
  trackerctl toggle 3 2025-04-29
  trackerctl toggle Read --cycle`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			habit, err := resolveHabit(c.app.Tracker, args[0])
			if err != nil {
				return err
			}
			date := dateArg(c.app.Tracker, args, 1)

			if cycle {
				habit, err = c.app.Tracker.CycleStatus(habit.ID, date)
			} else {
				habit, err = c.app.Tracker.Toggle(habit.ID, date)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on %s: %s (streak %d)\n",
				statusMark(habit.Status(date)), habit.Name, date, habit.Status(date), habit.Streak)
			return nil
		},
	}
	cmd.Flags().BoolVar(&cycle, "cycle", false, "cycle through completed and failed")
	return cmd
}
