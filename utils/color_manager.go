package utils

import (
	"hash/fnv"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// ColorSettings represents the color configuration needed by ColorManager
type ColorSettings interface {
	GetColorLogs() bool
	GetColorScheme() string
	GetCustomColors() map[string]string
}

// ColorRule represents a job (or any named log source) that can be colored
type ColorRule interface {
	GetName() string
	GetColor() string
	GetPrefix() string
}

// ColorManager assigns stable colors to log prefixes
type ColorManager struct {
	enabled      bool
	scheme       string
	customColors map[string]string
	colorMap     map[string]*color.Color
	mu           sync.RWMutex
}

var darkPalette = []*color.Color{
	newColor(color.FgCyan, color.Bold),
	newColor(color.FgYellow, color.Bold),
	newColor(color.FgGreen, color.Bold),
	newColor(color.FgMagenta, color.Bold),
	newColor(color.FgBlue, color.Bold),
	newColor(color.FgHiCyan),
	newColor(color.FgHiYellow),
	newColor(color.FgHiGreen),
	newColor(color.FgHiMagenta),
}

var lightPalette = []*color.Color{
	newColor(color.FgBlue),
	newColor(color.FgRed),
	newColor(color.FgMagenta),
	newColor(color.FgCyan),
	newColor(color.FgGreen),
	newColor(color.FgHiBlue),
	newColor(color.FgHiMagenta),
}

var namedColors = map[string][]color.Attribute{
	"black":        {color.FgBlack},
	"red":          {color.FgRed},
	"green":        {color.FgGreen},
	"yellow":       {color.FgYellow},
	"blue":         {color.FgBlue},
	"magenta":      {color.FgMagenta},
	"cyan":         {color.FgCyan},
	"white":        {color.FgWhite},
	"hi-red":       {color.FgHiRed},
	"hi-green":     {color.FgHiGreen},
	"hi-yellow":    {color.FgHiYellow},
	"hi-blue":      {color.FgHiBlue},
	"hi-magenta":   {color.FgHiMagenta},
	"hi-cyan":      {color.FgHiCyan},
	"bold-red":     {color.FgRed, color.Bold},
	"bold-green":   {color.FgGreen, color.Bold},
	"bold-yellow":  {color.FgYellow, color.Bold},
	"bold-blue":    {color.FgBlue, color.Bold},
	"bold-magenta": {color.FgMagenta, color.Bold},
	"bold-cyan":    {color.FgCyan, color.Bold},
}

// NewColorManager creates a new color manager with the given settings.
// Colors stay off unless enabled in settings and the terminal supports them.
func NewColorManager(settings ColorSettings) *ColorManager {
	cm := &ColorManager{
		enabled:      settings.GetColorLogs(),
		scheme:       settings.GetColorScheme(),
		customColors: settings.GetCustomColors(),
		colorMap:     make(map[string]*color.Color),
	}
	if cm.scheme == "" {
		cm.scheme = "auto"
	}
	if cm.enabled && !isTerminalColorCapable() {
		cm.enabled = false
	}
	return cm
}

// IsEnabled returns whether color formatting is enabled
func (cm *ColorManager) IsEnabled() bool {
	return cm.enabled
}

// EnableColors forces colors on regardless of terminal detection
func (cm *ColorManager) EnableColors() {
	cm.enabled = true
}

// DisableColors turns colors off for this ColorManager only
func (cm *ColorManager) DisableColors() {
	cm.enabled = false
}

// GetColorForRule returns the color for a job: its own color, then a custom
// mapping from settings, then a palette entry picked by name hash.
func (cm *ColorManager) GetColorForRule(rule ColorRule) *color.Color {
	if !cm.enabled {
		return nil
	}

	key := rule.GetName()
	if rule.GetPrefix() != "" {
		key = rule.GetPrefix()
	}

	cm.mu.RLock()
	existing, ok := cm.colorMap[key]
	cm.mu.RUnlock()
	if ok {
		return existing
	}

	c := ParseColor(rule.GetColor())
	if c == nil && cm.customColors != nil {
		if custom, ok := cm.customColors[key]; ok {
			c = ParseColor(custom)
		}
	}
	if c == nil {
		c = cm.paletteColor(key)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	if existing, ok := cm.colorMap[key]; ok {
		return existing
	}
	cm.colorMap[key] = c
	return c
}

func (cm *ColorManager) paletteColor(name string) *color.Color {
	palette := darkPalette
	if cm.scheme == "light" {
		palette = lightPalette
	}
	hash := fnv.New32a()
	hash.Write([]byte(name))
	return palette[int(hash.Sum32()%uint32(len(palette)))]
}

// FormatPrefix applies color formatting to a prefix string. rule is either a
// ColorRule or a map with a "Name" entry.
func (cm *ColorManager) FormatPrefix(prefix string, rule interface{}) string {
	if !cm.enabled {
		return prefix
	}

	var c *color.Color
	switch r := rule.(type) {
	case ColorRule:
		c = cm.GetColorForRule(r)
	case map[string]interface{}:
		if name, ok := r["Name"].(string); ok {
			c = cm.GetColorForRule(&SimpleColorRule{Name: name})
		}
	}
	if c == nil {
		return prefix
	}

	return c.Sprint(prefix)
}

// SimpleColorRule is a basic implementation of ColorRule for plain names
type SimpleColorRule struct {
	Name   string
	Color  string
	Prefix string
}

func (r *SimpleColorRule) GetName() string   { return r.Name }
func (r *SimpleColorRule) GetColor() string  { return r.Color }
func (r *SimpleColorRule) GetPrefix() string { return r.Prefix }

// ParseColor converts a color name such as "cyan" or "bold-red" to a color.
// Unknown names return nil.
func ParseColor(name string) *color.Color {
	attrs, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil
	}
	return newColor(attrs...)
}

// newColor builds a color that always emits escape codes. color.NoColor
// reflects stdout, which may differ from the writer a prefix ends up in.
func newColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

func isTerminalColorCapable() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "dumb" {
		return false
	}
	if os.Getenv("COLORTERM") != "" {
		return true
	}
	if strings.Contains(term, "color") || strings.Contains(term, "256") ||
		term == "xterm" || term == "screen" || term == "tmux" {
		return true
	}
	fileInfo, err := os.Stdout.Stat()
	return err == nil && fileInfo.Mode()&os.ModeCharDevice != 0
}
