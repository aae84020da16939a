package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/runner"
	"github.com/panyam/treefill/utils"
)

var checkDiff bool

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [jobs...]",
	Short: "Verify that formatted outputs are up to date",
	Long: `Check that every job's output file holds exactly what "treefill run" would
write, without changing anything. Stale or missing outputs are listed and the
command exits with status 1, which makes it usable in CI.

Examples:
  treefill check            # List stale outputs
  treefill check --diff     # Also show the differing lines per job`,
	Run: func(cmd *cobra.Command, args []string) {
		stale, err := runCheck(cmd, args, os.Stdout)
		exitOnError(err)
		if stale > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVarP(&checkDiff, "diff", "d", false, "Show differing lines")
}

// runCheck returns the number of stale outputs.
func runCheck(cmd *cobra.Command, jobs []string, out io.Writer) (int, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return 0, err
	}
	colorManager := initLogging(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := runner.New(cfg)
	tasks, err := r.Tasks(jobs...)
	if err != nil {
		return 0, err
	}
	results, err := r.CheckTasks(ctx, tasks)
	if err != nil {
		return 0, err
	}

	stale := 0
	for i, res := range results {
		if res.UpToDate {
			continue
		}
		stale++
		fmt.Fprintln(out, res.Output)
		if checkDiff {
			job := tasks[i].Job
			pw := utils.NewColoredPrefixWriter([]io.Writer{out}, "["+job.Name+"] ", colorManager, job)
			fmt.Fprintln(pw, strings.Join(res.Diff, "\n"))
		}
	}
	if cfg.Settings.Verbose {
		utils.LogTreefill("%d of %d outputs stale", stale, len(results))
	}
	return stale, nil
}
