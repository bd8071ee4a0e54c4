// Package logger holds the process-wide structured logger.
//
// Logging is off until Init enables it. Library packages never call Init;
// they take a *slog.Logger and fall back to L through OrDefault.
package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger. It discards everything until Init enables logging.
var L = discard()

// file is the open log file, if logging goes to one.
var file *os.File

const (
	logPrefix     = "partsim-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Stderr  bool       // Text to stderr instead of JSON to a file
	LogDir  string     // Directory for log files. Default: ~/.partsim/logs
	Level   slog.Level // Minimum level. The zero value is LevelInfo
}

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Init replaces L according to opts, closing any log file opened by an
// earlier call.
func Init(opts Options) error {
	if err := Close(); err != nil {
		return err
	}
	if !opts.Enabled {
		return nil
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if opts.Stderr {
		L = slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))
		return nil
	}

	f, err := openLogFile(opts.LogDir, time.Now())
	if err != nil {
		return err
	}
	file = f
	L = slog.New(slog.NewJSONHandler(f, handlerOpts))
	return nil
}

// Close closes the current log file and turns logging off.
func Close() error {
	L = discard()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// openLogFile opens today's file in dir for appending, pruning expired
// files first.
func openLogFile(dir string, now time.Time) (*os.File, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".partsim", "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	cleanOldLogs(dir, now)

	name := filepath.Join(dir, logPrefix+now.Format(dateLayout)+logSuffix)
	return os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// ParseLevel maps "debug", "info", "warn" and "error" (any case) to slog
// levels. Anything else yields LevelInfo.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// OrDefault returns l, or the global logger when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return L
	}
	return l
}

// Component is OrDefault(l) tagged with a component attribute.
func Component(l *slog.Logger, name string) *slog.Logger {
	return OrDefault(l).With("component", name)
}

// cleanOldLogs removes partsim log files dated more than retentionDays
// before now. Errors are ignored.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		day, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix))
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
