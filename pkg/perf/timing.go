// Package perf times hot paths of the panel. Set WINGROUP_PERF=1 to log
// timings at debug level through the panel logger.
package perf

import (
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/b/wingroup/pkg/logger"
)

var enabled = os.Getenv("WINGROUP_PERF") == "1"

// Timer tracks elapsed time for a named operation
type Timer struct {
	name  string
	start time.Time
}

// Start begins timing an operation
func Start(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop ends timing and logs the result
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if enabled {
		logger.Logger.Log(log.DebugLevel, "perf", "op", t.name, "elapsed", elapsed)
	}
	return elapsed
}

// Track times fn.
func Track(name string, fn func()) time.Duration {
	t := Start(name)
	fn()
	return t.Stop()
}

// SetEnabled overrides WINGROUP_PERF.
func SetEnabled(on bool) {
	enabled = on
}

// IsEnabled reports whether timings are being logged.
func IsEnabled() bool {
	return enabled
}
