package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

func newInstagramCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "instagram",
		Aliases: []string{"ig"},
		Short:   "Track Instagram follower counts",
	}
	cmd.AddCommand(
		newInstagramAddCmd(c),
		newInstagramListCmd(c),
		newInstagramStatsCmd(c),
	)
	return cmd
}

func newInstagramAddCmd(c *cli) *cobra.Command {
	var (
		date      string
		following int
		posts     int
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "add <followers>",
		Short: "Record the follower count for a day (overwrites that day)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var followers int
			if _, err := fmt.Sscanf(args[0], "%d", &followers); err != nil {
				return fmt.Errorf("followers must be a number: %q", args[0])
			}
			if date == "" {
				date = c.app.Tracker.State().CurrentDate
			}

			in := services.InstagramInput{Date: date, Followers: followers, Notes: notes}
			if cmd.Flags().Changed("following") {
				in.Following = &following
			}
			if cmd.Flags().Changed("posts") {
				in.Posts = &posts
			}

			entry, err := c.app.Instagram.AddEntry(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d followers\n", okStyle.Render("✓"), entry.Date, entry.Followers)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day of the count (default today)")
	cmd.Flags().IntVar(&following, "following", 0, "accounts followed")
	cmd.Flags().IntVar(&posts, "posts", 0, "number of posts")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text note")
	return cmd
}

func newInstagramListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded follower counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := c.app.Instagram.Entries()
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no entries yet"))
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tFOLLOWERS\tFOLLOWING\tPOSTS\tNOTES")
			for _, e := range entries {
				fmt.Fprintln(tw, strings.Join([]string{
					e.Date,
					fmt.Sprint(e.Followers),
					optional(e.Following),
					optional(e.Posts),
					e.Notes,
				}, "\t"))
			}
			return tw.Flush()
		},
	}
}

func newInstagramStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show follower growth",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := c.app.Instagram.Stats()
			lines := []string{
				titleStyle.Render("Instagram growth"),
				fmt.Sprintf("Followers      %d (started at %d)", s.CurrentFollowers, s.StartFollowers),
				fmt.Sprintf("Total          %+d over %d days", s.TotalGrowth, s.DaysTracking),
				fmt.Sprintf("Last entry     %+d", s.DailyGrowth),
				fmt.Sprintf("Last 7 days    %+d", s.WeeklyGrowth),
				fmt.Sprintf("Last 30 days   %+d", s.MonthlyGrowth),
				fmt.Sprintf("Daily average  %.2f", s.AverageDailyGrowth),
			}
			fmt.Fprintln(cmd.OutOrStdout(), panelStyle.Render(strings.Join(lines, "\n")))
			return nil
		},
	}
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
