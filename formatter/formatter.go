// Package formatter fills in omitted indentation of tree-shaped text dumps.
//
// A decision tree printed by a solver often only spells out the part of each
// line that differs from the line above it:
//
//	ROOT
//	   CHILD-A
//	      LEAF-1
//
// Format copies the leading span of every line from the previous formatted
// line, so each line carries its full path again. The rule is applied
// literally: there is no validation that the indentation describes a
// consistent tree.
package formatter

import (
	"strings"
	"unicode"
)

// Options controls how raw lines are normalized before prefixes are filled.
type Options struct {
	// KeepTrailingSpace retains trailing whitespace on non-blank lines.
	// Blank detection always ignores trailing whitespace.
	KeepTrailingSpace bool

	// TrailingNewline appends a final "\n" when lines are written out.
	TrailingNewline bool
}

// Normalize drops blank lines and uppercases the rest, preserving order.
func Normalize(lines []string, opts Options) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		if opts.KeepTrailingSpace {
			trimmed = strings.TrimRight(line, "\r\n")
		}
		out = append(out, strings.ToUpper(trimmed))
	}
	return out
}

// Boundary returns the number of leading whitespace characters in line.
func Boundary(line string) int {
	n := 0
	for _, r := range line {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// Inherit builds one formatted line: the first Boundary(line) characters come
// from previous and the rest from line. When previous is shorter than the
// boundary the prefix is truncated, not padded.
func Inherit(previous, line string) string {
	boundary := Boundary(line)
	if boundary == 0 {
		return line
	}

	prev := []rune(previous)
	if boundary < len(prev) {
		prev = prev[:boundary]
	}
	return string(prev) + string([]rune(line)[boundary:])
}

// Fill applies prefix inheritance to lines that are already normalized.
// The first line is returned unchanged.
func Fill(lines []string) []string {
	if len(lines) == 0 {
		return []string{}
	}

	out := make([]string, len(lines))
	out[0] = lines[0]
	previous := out[0]
	for i := 1; i < len(lines); i++ {
		previous = Inherit(previous, lines[i])
		out[i] = previous
	}
	return out
}

// Format normalizes raw lines and fills their prefixes.
func Format(lines []string, opts Options) []string {
	return Fill(Normalize(lines, opts))
}

// FormatString formats a block of text and returns it joined by "\n".
func FormatString(text string, opts Options) string {
	out := strings.Join(Format(SplitLines(text), opts), "\n")
	if opts.TrailingNewline && out != "" {
		out += "\n"
	}
	return out
}

// SplitLines splits text on "\n". A final empty segment produced by a
// trailing newline is not returned.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
