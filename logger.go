package g3d

import (
	"log/slog"

	"github.com/gogpu/g3d/internal/logx"
)

// SetLogger configures the logger for g3d and all its sub-packages.
// By default, g3d produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by g3d:
//   - [slog.LevelDebug]: internal diagnostics (pipeline cache misses, buffer sizes)
//   - [slog.LevelInfo]: important lifecycle events (device acquired, surface configured)
//   - [slog.LevelWarn]: non-fatal issues (skipped materials, resource release errors)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	g3d.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger used by g3d.
// Sub-packages (context/, resource/, render/) share the same logger
// configuration through an internal package, so there is a single
// process-wide setting.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logx.Get()
}
