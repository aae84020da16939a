package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/treefill/config"
	"github.com/panyam/treefill/formatter"
)

const (
	rawTree       = "root\n   child-a\n      leaf-1\n   child-b\n"
	formattedTree = "ROOT\nROOCHILD-A\nROOCHILEAF-1\nROOCHILD-B"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tree.txt"), rawTree)
	writeFile(t, filepath.Join(dir, "trees", "a.txt"), "a\n  b\n")
	writeFile(t, filepath.Join(dir, "trees", "deep", "c.txt"), "xyz\n c\n")

	cfg := &config.Config{
		Settings: config.Settings{Concurrency: 2},
		Jobs: []config.Job{
			{Name: "wordle", Input: filepath.Join(dir, "tree.txt"), Output: filepath.Join(dir, "tree_plus.txt")},
			{Name: "trees", Input: filepath.Join(dir, "trees", "**", "*.txt")},
		},
	}

	r := New(cfg)
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Changed, res.Input)
	}

	assert.Equal(t, formattedTree, readFile(t, filepath.Join(dir, "tree_plus.txt")))
	assert.Equal(t, "A\nAB", readFile(t, filepath.Join(dir, "trees", "a_plus.txt")))
	assert.Equal(t, "XYZ\nXC", readFile(t, filepath.Join(dir, "trees", "deep", "c_plus.txt")))

	// Running again resolves the same inputs (outputs are skipped) and changes nothing.
	results, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 3)
	for _, res := range results {
		assert.False(t, res.Changed, res.Input)
	}
}

func TestRunner_RunSelectedJob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), rawTree)
	writeFile(t, filepath.Join(dir, "b.txt"), rawTree)

	cfg := &config.Config{Jobs: []config.Job{
		{Name: "a", Input: filepath.Join(dir, "a.txt")},
		{Name: "b", Input: filepath.Join(dir, "b.txt")},
	}}

	results, err := New(cfg).Run(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "b_plus.txt"), results[0].Output)

	_, err = os.Stat(filepath.Join(dir, "a_plus.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = New(cfg).Run(context.Background(), "missing")
	assert.EqualError(t, err, `job "missing" not found`)
}

func TestRunner_FailFast(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Settings: config.Settings{Concurrency: 1},
		Jobs: []config.Job{
			{Name: "missing", Input: filepath.Join(dir, "nope.txt")},
		},
	}

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, formatter.ErrInputUnreadable))
	assert.Contains(t, err.Error(), `job "missing"`)
}

func TestRunner_DuplicateOutputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	cfg := &config.Config{Jobs: []config.Job{
		{Name: "a", Input: filepath.Join(dir, "a.txt"), Output: out},
		{Name: "b", Input: filepath.Join(dir, "b.txt"), Output: out},
	}}

	_, err := New(cfg).Tasks()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "written by both")
}

func TestRunner_Check(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), rawTree)
	writeFile(t, filepath.Join(dir, "b.txt"), rawTree)
	writeFile(t, filepath.Join(dir, "a_plus.txt"), formattedTree)

	cfg := &config.Config{Jobs: []config.Job{
		{Name: "a", Input: filepath.Join(dir, "a.txt")},
		{Name: "b", Input: filepath.Join(dir, "b.txt")},
	}}

	results, err := New(cfg).Check(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].UpToDate)
	assert.False(t, results[1].UpToDate)
	assert.NotEmpty(t, results[1].Diff)
}

func TestNew_DefaultConcurrency(t *testing.T) {
	r := New(config.Default("tree.txt", "tree_plus.txt"))
	assert.Greater(t, r.concurrency, 0)
	assert.False(t, r.Options.TrailingNewline)
}
