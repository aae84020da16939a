package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/runner"
	"github.com/panyam/treefill/utils"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-format inputs whenever they change",
	Long: `Format every job once, then keep watching the job inputs and re-format a
file shortly after it changes (settings.debounce_ms, default 200ms). New files
matching a pattern job are picked up as they appear. Stop with Ctrl-C.

Examples:
  treefill watch
  treefill -v watch          # Log every detected change`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runWatch(cmd))
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher := runner.NewWatcher(runner.New(cfg), nil)
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	utils.LogTreefill("Watching %d jobs, press Ctrl-C to stop", len(cfg.Jobs))

	<-ctx.Done()
	utils.LogTreefill("Shutting down...")
	return watcher.Stop()
}
