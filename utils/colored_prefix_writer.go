package utils

import (
	"bytes"
	"io"
	"os"
	"regexp"
)

// ColoredPrefixWriter is an io.Writer that adds a prefix to each line of output.
// Terminal writers get the colored prefix; other writers (report files) get the
// plain prefix with ANSI codes stripped from the line as well.
type ColoredPrefixWriter struct {
	terminalWriters []io.Writer
	fileWriters     []io.Writer
	prefix          string
	coloredPrefix   string
}

// NewColoredPrefixWriter creates a new ColoredPrefixWriter for the given job
func NewColoredPrefixWriter(writers []io.Writer, prefix string, colorManager *ColorManager, rule ColorRule) *ColoredPrefixWriter {
	var terminalWriters, fileWriters []io.Writer
	for _, writer := range writers {
		if writer == os.Stdout || writer == os.Stderr {
			terminalWriters = append(terminalWriters, writer)
		} else {
			fileWriters = append(fileWriters, writer)
		}
	}

	coloredPrefix := prefix
	if colorManager != nil && colorManager.IsEnabled() {
		coloredPrefix = colorManager.FormatPrefix(prefix, rule)
	}

	return &ColoredPrefixWriter{
		terminalWriters: terminalWriters,
		fileWriters:     fileWriters,
		prefix:          prefix,
		coloredPrefix:   coloredPrefix,
	}
}

// Write implements the io.Writer interface
func (cpw *ColoredPrefixWriter) Write(p []byte) (n int, err error) {
	if len(cpw.terminalWriters) > 0 {
		out := prefixLines(p, cpw.coloredPrefix, false)
		for _, w := range cpw.terminalWriters {
			if _, err := w.Write(out); err != nil {
				return 0, err
			}
		}
	}
	if len(cpw.fileWriters) > 0 {
		out := prefixLines(p, cpw.prefix, true)
		for _, w := range cpw.fileWriters {
			if _, err := w.Write(out); err != nil {
				return 0, err
			}
		}
	}
	return len(p), nil
}

// prefixLines prefixes every non-empty line of p, keeping its newlines.
func prefixLines(p []byte, prefix string, stripANSI bool) []byte {
	var out []byte
	lines := bytes.Split(p, []byte("\n"))
	for i, line := range lines {
		if len(line) > 0 {
			if stripANSI {
				line = ansiRegex.ReplaceAll(line, nil)
			}
			out = append(out, prefix...)
			out = append(out, line...)
		}
		if i < len(lines)-1 {
			out = append(out, '\n')
		}
	}
	return out
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripColorCodes removes ANSI color codes from a string
func StripColorCodes(input string) string {
	return ansiRegex.ReplaceAllString(input, "")
}
