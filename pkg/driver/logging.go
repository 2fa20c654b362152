package driver

import (
	"io"
	"os"
	"strings"

	"github.com/oarkflow/log"
)

// LogLevelEnv sets the default log level when no flag is given.
const LogLevelEnv = "TLOX_LOG"

const defaultLogLevel = "warn"

// NewLogger returns a console logger writing to w (stderr when nil). An empty
// level falls back to $TLOX_LOG, then to warn.
func NewLogger(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	level = strings.TrimSpace(level)
	if level == "" {
		level = strings.TrimSpace(os.Getenv(LogLevelEnv))
	}
	if level == "" {
		level = defaultLogLevel
	}
	return &log.Logger{
		Level:  log.ParseLevel(strings.ToLower(level)),
		Writer: &log.ConsoleWriter{Writer: w},
	}
}
