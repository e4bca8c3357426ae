package output

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostics logger. Diagnostics go to w (stderr in
// the CLI); progress goes through Printer.
func NewLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "quack",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
