// Package debug provides category-based debug logging and logger setup.
//
// Two orthogonal controls:
//   - Categories (WHAT to debug): DATAAGENT_DEBUG env or logging.debug config
//   - Levels (HOW MUCH detail): DATAAGENT_LOG_LEVEL env or logging.level config
//
// Usage:
//
//	debug.Log("sandbox", "spawn", "script", path)
//	if debug.Enabled("fetch") { /* expensive formatting */ }
//
// Categories: sandbox, fetch, providers, engine, tools, mcp, transport, config, all.
package debug

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

// LevelTrace is below slog.LevelDebug. At TRACE, generated scripts and
// full child-process output are logged.
const LevelTrace = slog.LevelDebug - 4

// categories holds the enabled category set. Init may run while request
// goroutines are logging, so the set is swapped atomically.
var categories atomic.Pointer[map[string]bool]

func init() {
	set := parseCategories(os.Getenv("DATAAGENT_DEBUG"))
	categories.Store(&set)
}

// Options configures the process-wide logger.
type Options struct {
	// Categories is a comma-separated category list. DATAAGENT_DEBUG wins.
	Categories string
	// Level is TRACE, DEBUG, INFO, WARN or ERROR. DATAAGENT_LOG_LEVEL wins.
	Level string
	// Format selects "text" (default) or "json" output.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// Init installs the default slog logger and the enabled categories, and
// returns the logger for callers that inject it explicitly.
func Init(opts Options) *slog.Logger {
	cats := os.Getenv("DATAAGENT_DEBUG")
	if cats == "" {
		cats = opts.Categories
	}
	set := parseCategories(cats)
	categories.Store(&set)

	level := os.Getenv("DATAAGENT_LOG_LEVEL")
	if level == "" {
		level = opts.Level
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Enabled reports whether debug output is active for the given category.
func Enabled(category string) bool {
	set := *categories.Load()
	return set["all"] || set[category]
}

// Log emits a DEBUG record tagged with the category, if it is enabled.
func Log(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Debug(msg, append([]any{"debug", category}, args...)...)
}

// Trace emits a TRACE record tagged with the category, if it is enabled.
func Trace(category string, msg string, args ...any) {
	if !Enabled(category) {
		return
	}
	slog.Log(context.Background(), LevelTrace, msg, append([]any{"debug", category}, args...)...)
}

// TraceEnabled reports whether TRACE output would be emitted for category.
func TraceEnabled(category string) bool {
	return Enabled(category) && slog.Default().Enabled(context.Background(), LevelTrace)
}

// ParseLevel converts a level string to a slog.Level. Unknown values map to INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Categories returns the enabled categories.
func Categories() []string {
	set := *categories.Load()
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}
	return result
}

// Truncate shortens s to at most maxLen bytes without splitting a UTF-8
// sequence, appending "..." when anything was cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Preview flattens s onto one line and truncates it for log attributes.
func Preview(s string, maxLen int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), maxLen)
}

func parseCategories(s string) map[string]bool {
	m := make(map[string]bool)
	for _, cat := range strings.Split(s, ",") {
		cat = strings.TrimSpace(strings.ToLower(cat))
		if cat != "" {
			m[cat] = true
		}
	}
	return m
}
