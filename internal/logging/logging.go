// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Options selects level and format of the root logger.
type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New returns the root logger. Components derive named sub-loggers from it
// with Named, and raft receives the same instance.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "booksdb",
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
}
