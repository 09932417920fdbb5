// Copyright (c) 2026 The tenet authors
//
// Use of this software is governed by the GNU General Public License v3
// included in the LICENSE file and at www.gnu.org/licenses/gpl-3.0.html.

// Package logging configures the process-wide structured logger and hands out
// component-scoped loggers. All packages of this module log through zerolog;
// the zero value of a zerolog.Logger is usable, so library types accept a
// logger and fall back to a disabled one when none is provided.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var setupOnce sync.Once

// Setup initializes the global logger. The level is parsed by zerolog
// ("trace", "debug", "info", "warn", "error"); an empty string defaults to
// "info". With console set, output is rendered for humans instead of JSON.
// Only the first call has an effect.
func Setup(level string, console bool) error {
	if level == "" {
		level = zerolog.LevelInfoValue
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("failed to parse log level %q: %w", level, err)
	}
	setupOnce.Do(func() {
		var out io.Writer = os.Stderr
		if console {
			out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		}
		zerolog.SetGlobalLevel(parsed)
		zerolog.DurationFieldUnit = time.Millisecond
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	})
	return nil
}

// WithComponent returns the global logger tagged with a component name.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// Disabled returns a logger discarding all events. It is the default for
// library types whose callers did not ask for logging.
func Disabled() zerolog.Logger {
	return zerolog.Nop()
}
