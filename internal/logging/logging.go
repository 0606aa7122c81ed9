// Package logging builds the structured logger shared by every component.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Prefix is printed in front of every log line.
const Prefix = "annotate"

// New returns a logger writing to w at the given level ("debug", "info",
// "warn", "error"). An empty level means info.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          Prefix,
		Level:           lvl,
	})

	return logger, nil
}

// NewTestLogger creates a debug logger that writes to a buffer for testing.
func NewTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false, // Easier to test without timestamps
		Prefix:          "test",
		Level:           log.DebugLevel,
	})

	return logger, &buf
}

// Performance logs how long an operation took at debug level.
func Performance(logger *log.Logger, operation string, start time.Time) {
	logger.Debug("performance", "operation", operation, "duration", time.Since(start))
}
