package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

// ParseLevel maps debug, info, warn and error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger writing text or json to w. Source locations are
// reported relative to rootPath when they fall under it.
func New(w io.Writer, lvl slog.Level, format, rootPath string) (*slog.Logger, error) {
	ho := slog.HandlerOptions{
		Level:     lvl,
		AddSource: rootPath != "",
	}

	var h slog.Handler
	switch format {
	case "json":
		h = slog.NewJSONHandler(w, &ho)
	case "", "text":
		h = slog.NewTextHandler(w, &ho)
	default:
		return nil, fmt.Errorf("log format must be json or text, got %q", format)
	}

	if rootPath == "" {
		return slog.New(h), nil
	}
	return slog.New(&handler{
		baseHandler: h,
		rootPath:    strings.TrimSuffix(rootPath, "/") + "/",
	}), nil
}

// RootPath returns the prefix to trim from source locations: configured when
// set, otherwise the working directory. An empty result disables source.
func RootPath(configured string) string {
	if configured != "" {
		return configured
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

type handler struct {
	baseHandler slog.Handler
	rootPath    string
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.baseHandler.Enabled(ctx, level)
}

func (h *handler) Handle(ctx context.Context, record slog.Record) error {
	if record.PC == 0 {
		return h.baseHandler.Handle(ctx, record)
	}

	fs := runtime.CallersFrames([]uintptr{record.PC})
	f, _ := fs.Next()
	file := strings.TrimPrefix(f.File, h.rootPath)

	// The base handler would add the untrimmed source; drop the PC and add
	// our own attribute instead.
	trimmed := slog.NewRecord(record.Time, record.Level, record.Message, 0)
	record.Attrs(func(a slog.Attr) bool {
		trimmed.AddAttrs(a)
		return true
	})
	trimmed.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
		Function: f.Function,
		File:     file,
		Line:     f.Line,
	}))

	return h.baseHandler.Handle(ctx, trimmed)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &handler{
		baseHandler: h.baseHandler.WithAttrs(attrs),
		rootPath:    h.rootPath,
	}
}

func (h *handler) WithGroup(name string) slog.Handler {
	return &handler{
		baseHandler: h.baseHandler.WithGroup(name),
		rootPath:    h.rootPath,
	}
}
