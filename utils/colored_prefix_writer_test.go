package utils

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

// TestStripColorCodes verifies that ANSI color codes are properly stripped
func TestStripColorCodes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "ROOCHILD-A",
			expected: "ROOCHILD-A",
		},
		{
			name:     "red text",
			input:    "\x1b[31m-2: CHILD-A\x1b[0m",
			expected: "-2: CHILD-A",
		},
		{
			name:     "bold prefix",
			input:    "\x1b[36m\x1b[1m[wordle] \x1b[0m+2: ROOCHILD-A",
			expected: "[wordle] +2: ROOCHILD-A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripColorCodes(tt.input))
		})
	}
}

func TestColoredPrefixWriter_Lines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Single line", "hello", "[job] hello"},
		{"Multiple lines", "hello\nworld", "[job] hello\n[job] world"},
		{"Trailing newline", "hello\nworld\n", "[job] hello\n[job] world\n"},
		{"Empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cpw := NewColoredPrefixWriter([]io.Writer{&buf}, "[job] ", nil, &SimpleColorRule{Name: "job"})
			n, err := cpw.Write([]byte(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, len(tt.input), n)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

// TestColoredPrefixWriter_TerminalAndFile verifies terminals keep colors while
// report files get plain text
func TestColoredPrefixWriter_TerminalAndFile(t *testing.T) {
	var terminalBuf, fileBuf bytes.Buffer

	cpw := &ColoredPrefixWriter{
		terminalWriters: []io.Writer{&terminalBuf},
		fileWriters:     []io.Writer{&fileBuf},
		prefix:          "[wordle] ",
		coloredPrefix:   "\x1b[36m[wordle] \x1b[0m",
	}

	_, err := cpw.Write([]byte("\x1b[31m-2: CHILD-A\x1b[0m\n+2: ROOCHILD-A\n"))
	assert.NoError(t, err)

	assert.Contains(t, terminalBuf.String(), "\x1b[36m[wordle] \x1b[0m\x1b[31m-2: CHILD-A")
	assert.False(t, strings.Contains(fileBuf.String(), "\x1b["))
	assert.Equal(t, "[wordle] -2: CHILD-A\n[wordle] +2: ROOCHILD-A\n", fileBuf.String())
}

func TestColoredPrefixWriter_ColorManager(t *testing.T) {
	cm := &ColorManager{enabled: true, colorMap: map[string]*color.Color{}}
	var buf bytes.Buffer
	rule := &SimpleColorRule{Name: "wordle", Color: "red"}

	cpw := NewColoredPrefixWriter([]io.Writer{&buf}, "[wordle] ", cm, rule)
	assert.NotEqual(t, "[wordle] ", cpw.coloredPrefix)
	assert.Equal(t, "[wordle] ", StripColorCodes(cpw.coloredPrefix))

	// buf is not a terminal, so it receives the plain prefix
	_, err := cpw.Write([]byte("x"))
	assert.NoError(t, err)
	assert.Equal(t, "[wordle] x", buf.String())
}
