package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

func newSyncCmd(c *cli) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Show the sync status, or push local data with --force",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if force {
				if err := c.app.Saver.Flush(cmd.Context()); err != nil && !errors.Is(err, domain.ErrRemoteSync) {
					return err
				}
				if err := c.app.Store.ForceSync(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, okStyle.Render("✓")+" local data pushed to the remote store")
			}

			s := c.app.Store.Status()
			fmt.Fprintf(out, "user     %s\n", s.UserID)
			fmt.Fprintf(out, "state    %s\n", syncStateStyle(s.State).Render(string(s.State)))
			if s.LastSyncedAt != nil {
				fmt.Fprintf(out, "synced   %s\n", s.LastSyncedAt.Local().Format(time.RFC1123))
			}
			if s.LastError != "" {
				fmt.Fprintf(out, "error    %s\n", failStyle.Render(s.LastError))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "push both datasets now")
	return cmd
}
