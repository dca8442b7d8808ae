package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level, output format and optional log file.
type Options struct {
	Level       string
	Format      string
	File        string
	Service     string
	Environment string
}

// New constructs a zerolog logger and sets the global level. When File is set, output is
// written to stdout and to a size-rotated file. The returned closer releases the file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.Logger{}, nil, err
	}

	var out io.Writer
	switch strings.ToLower(opts.Format) {
	case "json":
		out = os.Stdout
	case "console", "":
		out = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	default:
		return zerolog.Logger{}, nil, errors.New("unsupported log format")
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("create log directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     14,
		}
		// the file always gets JSON lines
		out = zerolog.MultiLevelWriter(out, file)
		closer = file
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	if opts.Environment != "" {
		ctx = ctx.Str("environment", opts.Environment)
	}

	zerolog.SetGlobalLevel(lvl)
	return ctx.Logger().Level(lvl), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
