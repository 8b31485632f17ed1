package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		out       string
		instagram bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON backup of the habits (or Instagram data)",
		Long: `Export writes the current snapshot to a file. Without --out the file is
named like the dashboard download, e.g. habit_tracker_export_2025-04-29.json.
Use --out - to print to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data     []byte
				filename string
				err      error
			)
			if instagram {
				data, filename, err = c.app.Instagram.Export()
			} else {
				data, filename, err = c.app.Tracker.Export()
			}
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s exported to %s\n", okStyle.Render("✓"), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file, - for stdout")
	cmd.Flags().BoolVar(&instagram, "instagram", false, "export the Instagram follower log")
	return cmd
}
