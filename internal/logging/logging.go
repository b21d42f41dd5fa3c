// Package logging holds the slog logger shared by the library. Output goes
// to stderr; the level follows the VerboseLogging configuration flag.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/paveg/tidyframe/internal/config"
)

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the library logger with its level synced to the global
// configuration.
func Logger() *slog.Logger {
	if config.GetGlobalConfig().VerboseLogging {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetOutput redirects library logging, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}
