package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the process logs.
type Options struct {
	Level string
	// File, when set, adds a rotating log file next to stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	// JSON disables the human-readable console writer on stderr.
	JSON bool
}

// New builds the process logger and applies the global level.
// The returned closer releases the rotating file, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	Configure(opts.Level)
	var stderr io.Writer = os.Stderr
	if !opts.JSON {
		stderr = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	writers := []io.Writer{stderr}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   true,
		}
		writers = append(writers, lj)
		closer = lj
	}
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger(), closer
}

// Configure sets the global zerolog level from a user supplied name.
// Unknown names fall back to info.
func Configure(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "all", "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "none", "off", "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
