package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var base = slog.New(slog.NewJSONHandler(os.Stdout, nil))

func Init() {
	SetOutput(os.Stdout)
	Info("logger initialized", nil)
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	base = slog.New(slog.NewJSONHandler(w, nil))
	slog.SetDefault(base)
}

func Info(msg string, fields map[string]any) {
	write(slog.LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write(slog.LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	write(slog.LevelError, msg, fields)
}

func Fatal(msg string, fields map[string]any) {
	write(slog.LevelError+4, msg, fields)
	os.Exit(1)
}

func write(level slog.Level, msg string, fields map[string]any) {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	base.LogAttrs(context.Background(), level, msg, attrs...)
}
