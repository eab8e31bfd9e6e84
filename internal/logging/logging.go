// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// LevelEnv overrides log.level when set.
const LevelEnv = "LAKEBOOT_LOG_LEVEL"

// Options selects the logger's level, format and sink.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // auto, console or json
	Out    io.Writer
}

// New returns a logger writing to opts.Out (stderr when nil). Every record
// carries a run_id unique to the invocation. An unparsable level falls back
// to info.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var w io.Writer = out
	if useConsole(opts.Format, out) {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.Kitchen,
		}
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
}

// ResolveLevel picks the first non-empty of flag, the LAKEBOOT_LOG_LEVEL
// environment variable and the configured level.
func ResolveLevel(flag string, lookup func(string) (string, bool), configured string) string {
	if flag != "" {
		return flag
	}
	if lookup != nil {
		if v, ok := lookup(LevelEnv); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return configured
}

func useConsole(format string, out io.Writer) bool {
	switch format {
	case "console":
		return true
	case "json":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}
