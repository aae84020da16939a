// Package runner executes the formatting jobs of a config, once or on file changes.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/panyam/treefill/config"
	"github.com/panyam/treefill/formatter"
	"github.com/panyam/treefill/utils"
)

// Runner formats the tasks produced by a config's jobs.
// Each file is formatted sequentially; different files may run in parallel.
type Runner struct {
	Config  *config.Config
	Options formatter.Options
	Verbose bool

	concurrency int
}

// New creates a runner for cfg.
func New(cfg *config.Config) *Runner {
	n := cfg.Settings.Concurrency
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		Config:      cfg,
		Options:     cfg.Settings.FormatOptions(),
		Verbose:     cfg.Settings.Verbose,
		concurrency: n,
	}
}

// Jobs returns the selected jobs, or all jobs when names is empty.
func (r *Runner) Jobs(names ...string) ([]*config.Job, error) {
	if len(names) == 0 {
		jobs := make([]*config.Job, len(r.Config.Jobs))
		for i := range r.Config.Jobs {
			jobs[i] = &r.Config.Jobs[i]
		}
		return jobs, nil
	}

	var jobs []*config.Job
	for _, name := range names {
		found := false
		for i := range r.Config.Jobs {
			if r.Config.Jobs[i].Name == name {
				jobs = append(jobs, &r.Config.Jobs[i])
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("job %q not found", name)
		}
	}
	return jobs, nil
}

// Tasks resolves the selected jobs into tasks. Two tasks may not share an output.
func (r *Runner) Tasks(names ...string) ([]config.Task, error) {
	jobs, err := r.Jobs(names...)
	if err != nil {
		return nil, err
	}

	var tasks []config.Task
	outputs := make(map[string]string)
	for _, job := range jobs {
		jobTasks, err := job.Resolve()
		if err != nil {
			return nil, err
		}
		for _, task := range jobTasks {
			key := filepath.Clean(task.Output)
			if owner, ok := outputs[key]; ok {
				return nil, fmt.Errorf("output %q is written by both %q and %q", task.Output, owner, task.Input)
			}
			outputs[key] = task.Input
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

// RunTask formats a single task.
func (r *Runner) RunTask(ctx context.Context, task config.Task) (formatter.Result, error) {
	res, err := formatter.FormatFile(ctx, task.Input, task.Output, r.Options)
	if err != nil {
		return res, fmt.Errorf("job %q: %w", task.Job.Name, err)
	}
	if res.Changed {
		utils.LogJob(task.Job, "%s -> %s (%d lines)", task.Input, task.Output, res.Lines)
	} else if r.Verbose {
		utils.LogJob(task.Job, "%s unchanged", task.Output)
	}
	return res, nil
}

// Run formats every task of the selected jobs. The first failure cancels the
// remaining tasks and is returned; results are in task order.
func (r *Runner) Run(ctx context.Context, names ...string) ([]formatter.Result, error) {
	tasks, err := r.Tasks(names...)
	if err != nil {
		return nil, err
	}

	results := make([]formatter.Result, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			res, err := r.RunTask(gctx, task)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Check reports, for every task, whether its output is up to date.
func (r *Runner) Check(ctx context.Context, names ...string) ([]formatter.CheckResult, error) {
	tasks, err := r.Tasks(names...)
	if err != nil {
		return nil, err
	}
	return r.CheckTasks(ctx, tasks)
}

// CheckTasks checks the given tasks; results are in task order.
func (r *Runner) CheckTasks(ctx context.Context, tasks []config.Task) ([]formatter.CheckResult, error) {
	results := make([]formatter.CheckResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := formatter.Check(task.Input, task.Output, r.Options)
			if err != nil {
				return fmt.Errorf("job %q: %w", task.Job.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
