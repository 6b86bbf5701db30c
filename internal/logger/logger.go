package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options control where and how verbosely the service logs.
type Options struct {
	Level slog.Level
	File  string
}

// New creates a preconfigured slog.Logger writing JSON to stdout or a rotating file.
// The returned closer releases the file, it is a no-op for stdout.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		writer io.Writer = os.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		rotating := newRotatingWriter(opts.File)
		writer, closer = rotating, rotating
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: opts.Level})
	return slog.New(handler), closer
}

func newRotatingWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxAge:     7,   // days
		MaxBackups: 7,
		Compress:   true,
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
