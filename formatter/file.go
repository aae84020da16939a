package formatter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Result describes one formatted file.
type Result struct {
	Input   string
	Output  string
	Lines   int
	Changed bool // false when the output already held the formatted text
}

// CheckResult describes whether an output file is up to date with its input.
type CheckResult struct {
	Input    string
	Output   string
	UpToDate bool
	Diff     []string
}

// ReadLines reads every line from r and normalizes them.
func ReadLines(r io.Reader, opts Options) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return Normalize(lines, opts), nil
}

// WriteLines writes lines joined by "\n" to w.
func WriteLines(w io.Writer, lines []string, opts Options) error {
	bw := bufio.NewWriter(w)
	for i, line := range lines {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}
	if opts.TrailingNewline && len(lines) > 0 {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatStream reads raw lines from r and writes the formatted result to w.
// It returns the number of lines written.
func FormatStream(ctx context.Context, r io.Reader, w io.Writer, opts Options) (int, error) {
	lines, err := ReadLines(r, opts)
	if err != nil {
		return 0, readError("-", err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out := Fill(lines)
	if err := WriteLines(w, out, opts); err != nil {
		return 0, writeError("-", err)
	}
	return len(out), nil
}

// ReadFile opens path and returns its normalized lines.
func ReadFile(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, readError(path, err)
	}
	defer f.Close()

	lines, err := ReadLines(f, opts)
	if err != nil {
		return nil, readError(path, err)
	}
	return lines, nil
}

// FormatFile formats the input file and writes the result to output.
// The output is replaced atomically; when formatting fails it is left as it was.
func FormatFile(ctx context.Context, input, output string, opts Options) (Result, error) {
	res := Result{Input: input, Output: output}

	lines, err := ReadFile(input, opts)
	if err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	out := Fill(lines)
	res.Lines = len(out)
	res.Changed, err = WriteFile(output, out, opts)
	return res, err
}

// WriteFile writes formatted lines to path, replacing it atomically. It
// reports false without touching the file when it already holds the same text.
func WriteFile(path string, lines []string, opts Options) (bool, error) {
	var buf bytes.Buffer
	if err := WriteLines(&buf, lines, opts); err != nil {
		return false, writeError(path, err)
	}

	existing, err := os.ReadFile(path)
	if err == nil && bytes.Equal(existing, buf.Bytes()) {
		return false, nil
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return false, writeError(path, err)
	}
	return true, nil
}

// Check reports whether output holds exactly what FormatFile would write
// for input. A missing output counts as out of date.
func Check(input, output string, opts Options) (CheckResult, error) {
	res := CheckResult{Input: input, Output: output}

	lines, err := ReadFile(input, opts)
	if err != nil {
		return res, err
	}
	want := Fill(lines)

	data, err := os.ReadFile(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Diff = Diff(nil, want)
			return res, nil
		}
		return res, readError(output, err)
	}

	var buf bytes.Buffer
	if err := WriteLines(&buf, want, opts); err != nil {
		return res, err
	}
	if bytes.Equal(data, buf.Bytes()) {
		res.UpToDate = true
		return res, nil
	}
	res.Diff = Diff(SplitLines(string(data)), want)
	return res, nil
}

// Diff lists the lines removed from have and added in want as "-N: line" and
// "+N: line" entries. N is the 1-based line number in have for removals and in
// want for additions. Lines common to both are omitted.
func Diff(have, want []string) []string {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(joinLines(have), joinLines(want))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var out []string
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				oldLine++
				out = append(out, fmt.Sprintf("-%d: %s", oldLine, line))
			case diffmatchpatch.DiffInsert:
				newLine++
				out = append(out, fmt.Sprintf("+%d: %s", newLine, line))
			}
		}
	}
	return out
}

// joinLines terminates every line with "\n" so the last line diffs like the rest.
func joinLines(lines []string) string {
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// defaultFileMode is used for outputs that do not exist yet.
const defaultFileMode fs.FileMode = 0644

// writeAtomic writes data to a temp file next to dest and renames it into place.
// An existing dest keeps its permission bits.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".treefill-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, fileMode(dest)); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func fileMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return defaultFileMode
}
