// Package logging installs the process-wide zerolog logger: human
// readable output on stderr filtered by verbosity, plus an append-only
// debug log under the XDG state directory so a run can be inspected
// after the fact. Packages pull named child loggers with GetLogger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arthur-debert/stencil/pkg/paths"
)

// Setup configures the global logger. verbosity counts -v flags: 0
// warns, 1 informs, 2 debugs with caller info, 3 and up traces. The
// console follows that level; the state-dir file records debug
// regardless, so a failed run leaves a usable trail even without -v.
func Setup(verbosity int) {
	console := consoleLevel(verbosity)

	// The global level is the floor across all sinks. It only drops
	// below debug when the console asks for trace.
	global := zerolog.DebugLevel
	if console < global {
		global = console
	}
	zerolog.SetGlobalLevel(global)

	term := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}

	var sink io.Writer = &zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: term},
		Level:  console,
	}

	file, ferr := openLogFile()
	if ferr == nil {
		sink = zerolog.MultiLevelWriter(sink, file)
	}

	ctx := zerolog.New(sink).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if ferr != nil {
		log.Warn().Err(ferr).Msg("debug log unavailable, logging to stderr only")
	}
}

// GetLogger returns a child of the global logger tagged with a
// component name. Every package logs through one of these.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// consoleLevel maps counted -v flags to the stderr threshold.
func consoleLevel(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// openLogFile opens the debug log in append mode, creating its parent
// directory on first use.
func openLogFile() (*os.File, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, err
	}

	logPath := p.LogFilePath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}
