package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

var errResetNotConfirmed = errors.New("reset drops every habit and its history; pass --yes to confirm")

func newResetCmd(c *cli) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default habits, dropping all history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			err := c.app.Tracker.ResetToDefaults(cmd.Context())
			if err != nil && !errors.Is(err, domain.ErrRemoteSync) {
				return err
			}
			if err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), warnStyle.Render("saved locally, remote sync failed"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s tracker reset to %d default habits\n",
				okStyle.Render("✓"), len(c.app.Tracker.State().Habits))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}
