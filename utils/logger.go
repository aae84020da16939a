package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LoggerConfig holds configuration for consistent logging
type LoggerConfig struct {
	PrefixLogs      bool
	PrefixMaxLength int
	ColorManager    ColorFormatter
	Output          io.Writer
}

// ColorFormatter interface for formatting colored prefixes
type ColorFormatter interface {
	IsEnabled() bool
	FormatPrefix(prefix string, rule interface{}) string
}

// Logger provides consistent prefixed logging across all components
type Logger struct {
	config *LoggerConfig
	mu     sync.Mutex
}

// NewLogger creates a new logger writing to stdout
func NewLogger(prefixLogs bool, prefixMaxLength int, colorManager ColorFormatter) *Logger {
	return &Logger{
		config: &LoggerConfig{
			PrefixLogs:      prefixLogs,
			PrefixMaxLength: prefixMaxLength,
			ColorManager:    colorManager,
			Output:          os.Stdout,
		},
	}
}

// SetOutput redirects the logger, mostly for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Output = w
}

// LogWithPrefix logs a message with the specified prefix (e.g., "treefill", "watch", or a job name)
func (l *Logger) LogWithPrefix(prefix, format string, args ...interface{}) {
	l.log(prefix, map[string]interface{}{"Name": prefix}, format, args...)
}

// LogRule logs a message prefixed by a job, honouring its custom prefix and color
func (l *Logger) LogRule(rule ColorRule, format string, args ...interface{}) {
	prefix := rule.GetName()
	if rule.GetPrefix() != "" {
		prefix = rule.GetPrefix()
	}
	l.log(prefix, rule, format, args...)
}

func (l *Logger) log(prefix string, rule interface{}, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	colored := l.config.ColorManager != nil && l.config.ColorManager.IsEnabled()

	var prefixStr string
	if l.config.PrefixLogs && l.config.PrefixMaxLength > 0 {
		prefixStr = "[" + CenterPrefix(prefix, l.config.PrefixMaxLength) + "] "
	} else {
		prefixStr = "[" + prefix + "] "
	}
	if colored {
		prefixStr = l.config.ColorManager.FormatPrefix(prefixStr, rule)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.config.Output, "%s%s\n", prefixStr, message)
}

// CenterPrefix pads prefix with spaces on both sides up to width.
// Longer prefixes are returned unchanged.
func CenterPrefix(prefix string, width int) string {
	totalPadding := width - len(prefix)
	if totalPadding <= 0 {
		return prefix
	}
	leftPadding := totalPadding / 2
	rightPadding := totalPadding - leftPadding
	return strings.Repeat(" ", leftPadding) + prefix + strings.Repeat(" ", rightPadding)
}

// Global logger instance that can be used before config is loaded
var globalLogger *Logger

// InitGlobalLogger initializes the global logger with configuration
func InitGlobalLogger(prefixLogs bool, prefixMaxLength int, colorManager ColorFormatter) *Logger {
	globalLogger = NewLogger(prefixLogs, prefixMaxLength, colorManager)
	return globalLogger
}

// GlobalLogger returns the global logger, or nil before InitGlobalLogger
func GlobalLogger() *Logger {
	return globalLogger
}

// LogTreefill logs a general message using the global logger
func LogTreefill(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.LogWithPrefix("treefill", format, args...)
	} else {
		log.Printf("[treefill] "+format, args...)
	}
}

// LogWatch logs a watcher message using the global logger
func LogWatch(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.LogWithPrefix("watch", format, args...)
	} else {
		log.Printf("[watch] "+format, args...)
	}
}

// LogServe logs an HTTP/MCP server message using the global logger
func LogServe(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.LogWithPrefix("serve", format, args...)
	} else {
		log.Printf("[serve] "+format, args...)
	}
}

// LogJob logs a message for a single job using the global logger
func LogJob(rule ColorRule, format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.LogRule(rule, format, args...)
	} else {
		log.Printf("[%s] "+format, append([]interface{}{rule.GetName()}, args...)...)
	}
}
