package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/panyam/gocurrent"

	"github.com/panyam/treefill/config"
	"github.com/panyam/treefill/formatter"
	"github.com/panyam/treefill/utils"
)

// DefaultDebounce is the quiet period after the last change to an input
// before it is formatted again.
const DefaultDebounce = 200 * time.Millisecond

// Report describes one formatting run triggered by the watcher.
type Report struct {
	Task   config.Task
	Result formatter.Result
	Err    error
	Time   time.Time
}

// Watcher re-formats job inputs whenever they change on disk.
type Watcher struct {
	runner   *Runner
	debounce time.Duration

	// File watching
	fsWatcher   *fsnotify.Watcher
	watchedDirs map[string]bool
	timers      map[string]*time.Timer
	mutex       sync.Mutex

	// Reports are delivered one at a time, in completion order
	reports *gocurrent.Writer[Report]

	stopChan    chan struct{}
	stoppedChan chan struct{}
	pending     sync.WaitGroup
}

// NewWatcher creates a watcher for the runner's jobs. onReport receives every
// report; when nil, reports are only logged.
func NewWatcher(r *Runner, onReport func(Report) error) *Watcher {
	debounce := DefaultDebounce
	if ms := r.Config.Settings.DebounceMs; ms > 0 {
		debounce = time.Duration(ms) * time.Millisecond
	}
	if onReport == nil {
		onReport = logReport
	}
	return &Watcher{
		runner:      r,
		debounce:    debounce,
		watchedDirs: make(map[string]bool),
		timers:      make(map[string]*time.Timer),
		reports:     gocurrent.NewWriter(onReport),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// SetDebounce changes the quiet period used for later changes.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.debounce = d
}

// Start formats every task once, then begins watching the job inputs.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	w.mutex.Lock()
	w.fsWatcher = fsWatcher
	for _, job := range w.runner.Config.Jobs {
		if err := w.watchJob(&job); err != nil {
			w.mutex.Unlock()
			fsWatcher.Close()
			return fmt.Errorf("failed to watch job %q: %w", job.Name, err)
		}
	}
	w.mutex.Unlock()

	tasks, err := w.runner.Tasks()
	if err != nil {
		fsWatcher.Close()
		return err
	}
	for _, task := range tasks {
		w.run(ctx, task)
	}

	go w.watchFiles(ctx)
	return nil
}

// Stop stops watching and waits for in-flight runs to finish.
func (w *Watcher) Stop() error {
	w.mutex.Lock()
	if w.fsWatcher == nil {
		w.mutex.Unlock()
		return nil
	}
	close(w.stopChan)
	for path, timer := range w.timers {
		if timer.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mutex.Unlock()

	<-w.stoppedChan
	w.pending.Wait()

	w.mutex.Lock()
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	w.watchedDirs = make(map[string]bool)
	w.mutex.Unlock()

	w.reports.Stop()
	return err
}

// WatchedDirectories returns the directories currently watched.
func (w *Watcher) WatchedDirectories() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	dirs := make([]string, 0, len(w.watchedDirs))
	for dir := range w.watchedDirs {
		dirs = append(dirs, dir)
	}
	return dirs
}

// watchJob adds the directories that can hold the job's inputs.
func (w *Watcher) watchJob(job *config.Job) error {
	root := job.Root()
	if root == "" {
		root = "."
	}
	_, err := w.addTree(job, root)
	return err
}

// addTree watches dir and every directory below it that can hold inputs of
// job. It returns tasks for the inputs already present there.
// Callers hold w.mutex.
func (w *Watcher) addTree(job *config.Job, dir string) ([]config.Task, error) {
	var tasks []config.Task
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !job.MayHold(path) {
				return filepath.SkipDir
			}
			return w.addDir(path)
		}
		if job.Matches(path) {
			tasks = append(tasks, job.TaskFor(path))
		}
		return nil
	})
	return tasks, err
}

// watchNewDir watches a directory created after Start, including directories
// created under it before the watch was in place, and schedules the inputs
// already written there.
func (w *Watcher) watchNewDir(ctx context.Context, dir string) {
	var tasks []config.Task
	w.mutex.Lock()
	for i := range w.runner.Config.Jobs {
		job := &w.runner.Config.Jobs[i]
		if !job.MayHold(dir) {
			continue
		}
		found, err := w.addTree(job, dir)
		if err != nil {
			utils.LogWatch("Error watching new directory %s: %v", dir, err)
		}
		tasks = append(tasks, found...)
	}
	w.mutex.Unlock()

	for _, task := range tasks {
		w.schedule(ctx, task)
	}
}

func (w *Watcher) addDir(dir string) error {
	if w.watchedDirs[dir] {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.watchedDirs[dir] = true
	if w.runner.Verbose {
		utils.LogWatch("Watching directory: %s", dir)
	}
	return nil
}

func (w *Watcher) watchFiles(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(ctx, event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			utils.LogWatch("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleFileEvent(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.watchNewDir(ctx, event.Name)
			return
		}
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	for i := range w.runner.Config.Jobs {
		job := &w.runner.Config.Jobs[i]
		if job.Matches(event.Name) {
			if w.runner.Verbose {
				utils.LogWatch("[%s] File change detected: %s", job.Name, event.Name)
			}
			w.schedule(ctx, job.TaskFor(event.Name))
		}
	}
}

// schedule (re)starts the debounce timer for the task's input.
func (w *Watcher) schedule(ctx context.Context, task config.Task) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}

	if timer, ok := w.timers[task.Input]; ok && timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mutex.Lock()
		if w.timers[task.Input] == timer {
			delete(w.timers, task.Input)
		}
		w.mutex.Unlock()
		w.run(ctx, task)
	})
	w.timers[task.Input] = timer
}

func (w *Watcher) run(ctx context.Context, task config.Task) {
	if _, err := os.Stat(task.Input); os.IsNotExist(err) {
		// Removed or renamed away; the next create event brings it back.
		return
	}
	res, err := w.runner.RunTask(ctx, task)
	w.reports.Send(Report{Task: task, Result: res, Err: err, Time: time.Now()})
}

func logReport(r Report) error {
	if r.Err != nil {
		utils.LogJob(r.Task.Job, "Error: %v", r.Err)
	}
	return nil
}
