package formatter

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTree = "root\n   child-a\n\n      leaf-1\n   child-b\n"

const sampleFormatted = "ROOT\nROOCHILD-A\nROOCHILEAF-1\nROOCHILD-B"

func TestFormatFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))

	res, err := FormatFile(context.Background(), in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Lines)
	assert.True(t, res.Changed)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleFormatted, string(data))

	// A second run finds nothing to change.
	res, err = FormatFile(context.Background(), in, out, Options{})
	require.NoError(t, err)
	assert.False(t, res.Changed)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestFormatFile_TrailingNewline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))

	_, err := FormatFile(context.Background(), in, out, Options{TrailingNewline: true})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleFormatted+"\n", string(data))
}

func TestFormatFile_KeepsOutputMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0600))
	require.NoError(t, os.Chmod(out, 0600))

	res, err := FormatFile(context.Background(), in, out, Options{})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0600), info.Mode().Perm())

	// New outputs get the default mode.
	fresh := filepath.Join(dir, "fresh_plus.txt")
	_, err = FormatFile(context.Background(), in, fresh, Options{})
	require.NoError(t, err)
	info, err = os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0644), info.Mode().Perm())
}

func TestFormatFile_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte("\n  \n"), 0644))

	res, err := FormatFile(context.Background(), in, out, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Lines)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFormatFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tree_plus.txt")

	_, err := FormatFile(context.Background(), filepath.Join(dir, "nope.txt"), out, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputUnreadable))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.False(t, errors.Is(err, ErrOutputUnwritable))

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "read", fe.Op)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output is produced on failure")
}

func TestFormatFile_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))

	out := filepath.Join(dir, "missing-dir", "tree_plus.txt")
	_, err := FormatFile(context.Background(), in, out, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutputUnwritable))
	assert.False(t, errors.Is(err, ErrInputUnreadable))
}

func TestFormatFile_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FormatFile(ctx, in, out, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFormatStream(t *testing.T) {
	var buf bytes.Buffer
	n, err := FormatStream(context.Background(), strings.NewReader(sampleTree), &buf, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, sampleFormatted, buf.String())
}

func TestReadLines_NoTrailingNewline(t *testing.T) {
	lines, err := ReadLines(strings.NewReader("a\n  b"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "  B"}, lines)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "tree.txt")
	out := filepath.Join(dir, "tree_plus.txt")
	require.NoError(t, os.WriteFile(in, []byte(sampleTree), 0644))

	t.Run("Missing output", func(t *testing.T) {
		res, err := Check(in, out, Options{})
		require.NoError(t, err)
		assert.False(t, res.UpToDate)
		assert.Len(t, res.Diff, 4)
	})

	t.Run("Up to date", func(t *testing.T) {
		require.NoError(t, os.WriteFile(out, []byte(sampleFormatted), 0644))
		res, err := Check(in, out, Options{})
		require.NoError(t, err)
		assert.True(t, res.UpToDate)
		assert.Empty(t, res.Diff)
	})

	t.Run("Stale", func(t *testing.T) {
		require.NoError(t, os.WriteFile(out, []byte("ROOT\nCHILD-A\nROOCHILEAF-1\nROOCHILD-B"), 0644))
		res, err := Check(in, out, Options{})
		require.NoError(t, err)
		assert.False(t, res.UpToDate)
		assert.Equal(t, []string{"-2: CHILD-A", "+2: ROOCHILD-A"}, res.Diff)
	})
}

func TestDiff(t *testing.T) {
	assert.Nil(t, Diff([]string{"A"}, []string{"A"}))
	assert.Equal(t, []string{"+2: B"}, Diff([]string{"A"}, []string{"A", "B"}))
	assert.Equal(t, []string{"-2: B"}, Diff([]string{"A", "B"}, []string{"A"}))
	assert.Equal(t, []string{"+1: A", "+2: B"}, Diff(nil, []string{"A", "B"}))
}

func TestDiff_AlignsShiftedLines(t *testing.T) {
	have := []string{"A", "AB", "ABC", "ABCD"}

	t.Run("Insertion", func(t *testing.T) {
		want := []string{"X", "A", "AB", "ABC", "ABCD"}
		assert.Equal(t, []string{"+1: X"}, Diff(have, want))
	})

	t.Run("Removal", func(t *testing.T) {
		want := []string{"A", "ABC", "ABCD"}
		assert.Equal(t, []string{"-2: AB"}, Diff(have, want))
	})

	t.Run("Replacement", func(t *testing.T) {
		want := []string{"A", "AX", "ABC", "ABCD"}
		assert.Equal(t, []string{"-2: AB", "+2: AX"}, Diff(have, want))
	})
}
