// Package msplog is the shared trace logger used by the assembler's
// macro expander and the emulator. It is deliberately tiny: a no-op default so the
// core packages are silent by default, and a single package-level switch
// a caller can flip on for debug tracing.
package msplog

import "fmt"

// Logger receives trace messages from the assembler and emulator.
type Logger interface {
	Log(msg string)
}

type noopLogger struct{}

func (l *noopLogger) Log(msg string) {}

var (
	defaultLogger Logger = &noopLogger{}
	logger               = defaultLogger

	enabled = false
)

// SetLogger installs impl as the trace sink. Passing nil restores the
// no-op default.
func SetLogger(impl Logger) {
	if impl == nil {
		logger = defaultLogger
	} else {
		logger = impl
	}
}

// SetEnabled turns tracing on or off. Disabled by default.
func SetEnabled(v bool) {
	enabled = v
}

// Enabled reports whether tracing is currently switched on.
func Enabled() bool {
	return enabled
}

// Logf formats and emits a trace message if tracing is enabled.
func Logf(format string, args ...interface{}) {
	if !enabled {
		return
	}
	logger.Log(fmt.Sprintf(format, args...))
}
