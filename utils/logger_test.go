package utils

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCenterPrefix(t *testing.T) {
	assert.Equal(t, "  ab  ", CenterPrefix("ab", 6))
	assert.Equal(t, " ab  ", CenterPrefix("ab", 5))
	assert.Equal(t, "treefill", CenterPrefix("treefill", 4))
}

func TestLogger_LogWithPrefix(t *testing.T) {
	tests := []struct {
		name       string
		prefixLogs bool
		maxLength  int
		expected   string
	}{
		{"Plain prefix", false, 0, "[watch] changed tree.txt\n"},
		{"Centered prefix", true, 9, "[  watch  ] changed tree.txt\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.prefixLogs, tt.maxLength, nil)
			logger.SetOutput(&buf)
			logger.LogWithPrefix("watch", "changed %s", "tree.txt")
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestLogger_LogRule(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(false, 0, nil)
	logger.SetOutput(&buf)

	logger.LogRule(&SimpleColorRule{Name: "wordle"}, "%d lines", 4)
	logger.LogRule(&SimpleColorRule{Name: "wordle", Prefix: "wdl"}, "done")
	assert.Equal(t, "[wordle] 4 lines\n[wdl] done\n", buf.String())
}

func TestLogger_Colored(t *testing.T) {
	var buf bytes.Buffer
	cm := &ColorManager{enabled: true, colorMap: map[string]*color.Color{}}
	logger := NewLogger(false, 0, cm)
	logger.SetOutput(&buf)

	logger.LogRule(&SimpleColorRule{Name: "wordle", Color: "green"}, "ok")
	out := buf.String()
	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, "[wordle] ok\n", StripColorCodes(out))
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := InitGlobalLogger(false, 0, nil)
	logger.SetOutput(&buf)
	defer func() { globalLogger = nil }()

	assert.Same(t, logger, GlobalLogger())
	LogTreefill("starting")
	LogServe("listening on %s", ":8080")
	LogJob(&SimpleColorRule{Name: "wordle"}, "formatted")
	assert.Equal(t, "[treefill] starting\n[serve] listening on :8080\n[wordle] formatted\n", buf.String())
}
