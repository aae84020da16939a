package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/runner"
	"github.com/panyam/treefill/utils"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [jobs...]",
	Short: "Format every configured job once",
	Long: `Run all jobs from the configuration file once, or only the named ones.

Files are formatted in parallel (bounded by settings.concurrency); the lines of
a single file are always processed in order. The first failure stops the run.

Examples:
  treefill run                # Run all jobs
  treefill run wordle         # Run only the "wordle" job
  treefill -c ci.yaml run     # Use another config file`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runJobs(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runJobs(cmd *cobra.Command, jobs []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := runner.New(cfg).Run(ctx, jobs...)
	if err != nil {
		return err
	}

	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
	}
	if cfg.Settings.Verbose {
		utils.LogTreefill("%d files formatted, %d changed", len(results), changed)
	}
	return nil
}
