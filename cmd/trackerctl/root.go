package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/comitanigiacomo/kanso-tracker/internal/bootstrap"
	"github.com/comitanigiacomo/kanso-tracker/internal/config"
	"github.com/comitanigiacomo/kanso-tracker/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// cli carries the state shared by every subcommand of one invocation.
type cli struct {
	verbose bool
	app     *bootstrap.App
	log     *zap.Logger
}

// run executes one invocation. The tracker is shut down even when the
// command fails, so the pending save is never lost.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, c := newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if tErr := c.teardown(); tErr != nil && err == nil {
		err = tErr
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:   "trackerctl",
		Short: "Kanso habit tracker from the terminal",
		Long: `trackerctl drives the same tracker as the HTTP API.

Every command loads the stored state (remote first when sync is enabled,
local otherwise), applies its change and flushes the save before exiting.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newHabitsCmd(c),
		newToggleCmd(c),
		newStatusCmd(c),
		newStatsCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newResetCmd(c),
		newInstagramCmd(c),
		newSyncCmd(c),
	)
	return root, c
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if level == "" || level == "info" {
		// Keep the terminal quiet unless asked.
		level = zapcore.WarnLevel.String()
	}
	if c.verbose {
		level = zapcore.DebugLevel.String()
	}
	c.log, err = logger.New(level)
	if err != nil {
		return err
	}

	c.app, err = bootstrap.New(cfg, c.log, bootstrap.Options{})
	if err != nil {
		return err
	}
	if err := c.app.Start(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load tracker: %w", err)
	}
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := c.app.Shutdown(ctx)
	c.app = nil
	if c.log != nil {
		_ = c.log.Sync()
	}
	return err
}
