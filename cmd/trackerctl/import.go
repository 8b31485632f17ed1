package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportCmd(c *cli) *cobra.Command {
	var instagram bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the habits (or Instagram data) with a JSON backup",
		Long: `Import validates the whole file before touching anything. Older backups
using boolean completion maps or per-weekday arrays are migrated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			if instagram {
				if err := c.app.Instagram.Import(cmd.Context(), data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d Instagram entries\n",
					okStyle.Render("✓"), len(c.app.Instagram.Entries()))
				return nil
			}

			if err := c.app.Tracker.Import(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s imported %d habits\n",
				okStyle.Render("✓"), len(c.app.Tracker.State().Habits))
			return nil
		},
	}
	cmd.Flags().BoolVar(&instagram, "instagram", false, "import an Instagram follower log")
	return cmd
}
