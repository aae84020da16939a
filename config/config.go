// Package config loads .treefill.yaml / .treefill.toml job files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/panyam/treefill/formatter"
)

const (
	// DefaultConfigPath is where commands look for a config when none is given.
	DefaultConfigPath = "./.treefill.yaml"

	// DefaultInput and DefaultOutput are used when no config file exists.
	DefaultInput  = "tree.txt"
	DefaultOutput = "tree_plus.txt"

	// DefaultOutputSuffix is inserted before the extension of pattern inputs.
	DefaultOutputSuffix = "_plus"
)

// Config represents the top-level structure of the config file.
type Config struct {
	Settings Settings `yaml:"settings" toml:"settings"`
	Jobs     []Job    `yaml:"jobs" toml:"jobs"`

	// Path is the absolute path of the file the config was loaded from.
	Path string `yaml:"-" toml:"-"`
}

// Settings defines global settings shared by all jobs.
type Settings struct {
	Verbose           bool              `yaml:"verbose,omitempty" toml:"verbose,omitempty"`
	PrefixLogs        bool              `yaml:"prefix_logs,omitempty" toml:"prefix_logs,omitempty"`
	PrefixMaxLength   int               `yaml:"prefix_max_length,omitempty" toml:"prefix_max_length,omitempty"`
	ColorLogs         bool              `yaml:"color_logs,omitempty" toml:"color_logs,omitempty"`
	ColorScheme       string            `yaml:"color_scheme,omitempty" toml:"color_scheme,omitempty"`
	CustomColors      map[string]string `yaml:"custom_colors,omitempty" toml:"custom_colors,omitempty"`
	KeepTrailingSpace bool              `yaml:"keep_trailing_space,omitempty" toml:"keep_trailing_space,omitempty"`
	TrailingNewline   bool              `yaml:"trailing_newline,omitempty" toml:"trailing_newline,omitempty"`
	Concurrency       int               `yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	DebounceMs        int               `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty"`
}

// GetColorLogs implements utils.ColorSettings.
func (s *Settings) GetColorLogs() bool { return s.ColorLogs }

// GetColorScheme implements utils.ColorSettings.
func (s *Settings) GetColorScheme() string { return s.ColorScheme }

// GetCustomColors implements utils.ColorSettings.
func (s *Settings) GetCustomColors() map[string]string { return s.CustomColors }

// FormatOptions returns the formatter options selected by these settings.
func (s *Settings) FormatOptions() formatter.Options {
	return formatter.Options{
		KeepTrailingSpace: s.KeepTrailingSpace,
		TrailingNewline:   s.TrailingNewline,
	}
}

// Job defines one input (or input pattern) and where its formatted output goes.
type Job struct {
	Name         string `yaml:"name" toml:"name"`
	Input        string `yaml:"input" toml:"input"`
	Output       string `yaml:"output,omitempty" toml:"output,omitempty"`
	OutputSuffix string `yaml:"output_suffix,omitempty" toml:"output_suffix,omitempty"`
	Color        string `yaml:"color,omitempty" toml:"color,omitempty"`
	Prefix       string `yaml:"prefix,omitempty" toml:"prefix,omitempty"`

	// Pattern forces Input to be read as a glob (true) or a file name
	// (false). When unset, any of "*?[{" in Input makes it a glob.
	Pattern *bool `yaml:"pattern,omitempty" toml:"pattern,omitempty"`
}

// GetName returns the job name (implements utils.ColorRule)
func (j *Job) GetName() string { return j.Name }

// GetColor returns the job color (implements utils.ColorRule)
func (j *Job) GetColor() string { return j.Color }

// GetPrefix returns the job log prefix (implements utils.ColorRule)
func (j *Job) GetPrefix() string { return j.Prefix }

// IsPattern reports whether Input is a glob rather than a single file.
func (j *Job) IsPattern() bool {
	if j.Pattern != nil {
		return *j.Pattern
	}
	return strings.ContainsAny(j.Input, "*?[{")
}

// Task is one concrete input/output pair produced by resolving a job.
type Task struct {
	Job    *Job
	Input  string
	Output string
}

// Resolve expands the job into tasks. Literal inputs produce exactly one task
// even when the file does not exist yet, so the read error surfaces later.
func (j *Job) Resolve() ([]Task, error) {
	if !j.IsPattern() {
		out := j.Output
		if out == "" {
			out = OutputPath(j.Input, j.suffix())
		}
		return []Task{{Job: j, Input: j.Input, Output: out}}, nil
	}

	matches, err := doublestar.FilepathGlob(j.Input, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("job %q: bad input pattern %q: %w", j.Name, j.Input, err)
	}

	suffix := j.suffix()
	var tasks []Task
	for _, m := range matches {
		// Skip our own outputs when they match the input pattern too.
		if strings.HasSuffix(strings.TrimSuffix(m, filepath.Ext(m)), suffix) {
			continue
		}
		tasks = append(tasks, Task{Job: j, Input: m, Output: OutputPath(m, suffix)})
	}
	return tasks, nil
}

// TaskFor returns the task that formats path, which must be an input of the job.
func (j *Job) TaskFor(path string) Task {
	if !j.IsPattern() && j.Output != "" {
		return Task{Job: j, Input: path, Output: j.Output}
	}
	return Task{Job: j, Input: path, Output: OutputPath(path, j.suffix())}
}

// Matches reports whether path is an input of this job.
func (j *Job) Matches(path string) bool {
	if !j.IsPattern() {
		return filepath.Clean(path) == filepath.Clean(j.Input)
	}
	matched, err := doublestar.PathMatch(j.Input, path)
	if err != nil || !matched {
		return false
	}
	return !strings.HasSuffix(strings.TrimSuffix(path, filepath.Ext(path)), j.suffix())
}

// Root returns the directory that holds every possible input of the job.
func (j *Job) Root() string {
	if !j.IsPattern() {
		return filepath.Dir(j.Input)
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(j.Input))
	return filepath.FromSlash(base)
}

// MayHold reports whether dir is the job's Root or a directory below it in
// which inputs of the job can appear, directly or further down.
func (j *Job) MayHold(dir string) bool {
	rel, err := filepath.Rel(j.Root(), dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	if rel == "." {
		return true
	}
	if !j.IsPattern() {
		return false
	}

	_, pattern := doublestar.SplitPattern(filepath.ToSlash(j.Input))
	dirSegments := strings.Split(pattern, "/")
	dirSegments = dirSegments[:len(dirSegments)-1]
	for i, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if i >= len(dirSegments) {
			return false
		}
		if dirSegments[i] == "**" {
			return true
		}
		if ok, err := doublestar.Match(dirSegments[i], part); err != nil || !ok {
			return false
		}
	}
	return true
}

func (j *Job) suffix() string {
	if j.OutputSuffix != "" {
		return j.OutputSuffix
	}
	return DefaultOutputSuffix
}

// OutputPath inserts suffix before the extension of input: tree.txt -> tree_plus.txt.
func OutputPath(input, suffix string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + suffix + ext
}

// Default returns a config with a single job, used when no config file exists.
func Default(input, output string) *Config {
	return &Config{
		Jobs: []Job{{Name: "tree", Input: input, Output: output}},
	}
}

// Load reads and unmarshals the config file, resolving relative job paths
// against the config file's directory. Files ending in .toml are parsed as
// TOML, everything else as YAML.
func Load(configPath string) (*Config, error) {
	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for config file: %w", err)
	}

	data, err := os.ReadFile(absConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %q", absConfigPath)
		}
		return nil, fmt.Errorf("failed to read config file %q: %w", absConfigPath, err)
	}

	config, err := Parse(data, filepath.Ext(absConfigPath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", absConfigPath, err)
	}
	config.Path = absConfigPath

	baseDir := filepath.Dir(absConfigPath)
	for i := range config.Jobs {
		job := &config.Jobs[i]
		job.Input = resolvePath(baseDir, job.Input)
		if job.Output != "" {
			job.Output = resolvePath(baseDir, job.Output)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", absConfigPath, err)
	}
	return config, nil
}

// Parse decodes config data; ext selects the format (".toml" or YAML otherwise).
func Parse(data []byte, ext string) (*Config, error) {
	var config Config
	if strings.EqualFold(ext, ".toml") {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// Validate checks job names and paths.
func (c *Config) Validate() error {
	if len(c.Jobs) == 0 {
		return fmt.Errorf("no jobs defined")
	}
	seen := make(map[string]bool)
	for i := range c.Jobs {
		job := &c.Jobs[i]
		if job.Name == "" {
			return fmt.Errorf("job %d has no name", i+1)
		}
		if seen[job.Name] {
			return fmt.Errorf("duplicate job name %q", job.Name)
		}
		seen[job.Name] = true

		if job.Input == "" {
			return fmt.Errorf("job %q has no input", job.Name)
		}
		if job.IsPattern() {
			if !doublestar.ValidatePattern(filepath.ToSlash(job.Input)) {
				return fmt.Errorf("job %q has an invalid input pattern %q", job.Name, job.Input)
			}
			if job.Output != "" {
				return fmt.Errorf("job %q: output cannot be set for a pattern input, use output_suffix", job.Name)
			}
			continue
		}
		out := job.Output
		if out == "" {
			out = OutputPath(job.Input, job.suffix())
		}
		if filepath.Clean(out) == filepath.Clean(job.Input) {
			return fmt.Errorf("job %q writes over its own input %q", job.Name, job.Input)
		}
	}
	if c.Settings.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	return nil
}

func resolvePath(baseDir, p string) string {
	if p == "" || p == "-" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
