package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) slog() slog.Level {
	switch l {
	case Debug:
		return slog.LevelDebug
	case Warn:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

// Logger es la interfaz que usan servicios, adapters y el store.
// Los campos van en un map para no acoplar a los callers con slog.
type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)

	// SLog expone el *slog.Logger subyacente (httplog lo necesita concreto).
	SLog() *slog.Logger
}

type slogLogger struct {
	l *slog.Logger
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// File: si viene, escribe a ese archivo con rotación (lumberjack).
	// Vacío => stdout.
	File      string
	MaxSizeMB int

	// Output permite inyectar un writer (tests). Tiene prioridad sobre File.
	Output io.Writer
}

func New(opts Options) Logger {
	w := opts.Output
	if w == nil {
		w = os.Stdout
		if f := strings.TrimSpace(opts.File); f != "" {
			size := opts.MaxSizeMB
			if size <= 0 {
				size = 50
			}
			w = &lumberjack.Logger{
				Filename:   f,
				MaxSize:    size,
				MaxBackups: 3,
				Compress:   true,
			}
		}
	}

	hopts := &slog.HandlerOptions{Level: opts.Level.slog()}

	var h slog.Handler
	switch opts.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, hopts)
	default:
		h = slog.NewTextHandler(w, hopts)
	}

	l := slog.New(h)
	if app := strings.TrimSpace(opts.App); app != "" {
		l = l.With("app", app)
	}
	return &slogLogger{l: l}
}

// NewFromEnv crea logger desde env:
// - LOG_LEVEL=debug|info|warn|error (default info)
// - LOG_FORMAT=text|json (default text)
// - LOG_FILE=/ruta/archivo.log (opcional, con rotación)
// - LOG_MAX_SIZE_MB=50 (opcional)
// - APP_NAME=pet-marketplace (opcional)
func NewFromEnv() Logger {
	size, _ := strconv.Atoi(strings.TrimSpace(os.Getenv("LOG_MAX_SIZE_MB")))
	return New(Options{
		Level:     ParseLevel(os.Getenv("LOG_LEVEL")),
		Format:    ParseFormat(os.Getenv("LOG_FORMAT")),
		App:       os.Getenv("APP_NAME"),
		File:      os.Getenv("LOG_FILE"),
		MaxSizeMB: size,
	})
}

// Nop descarta todo. Útil en tests y como default de Options.
func Nop() Logger {
	return &slogLogger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *slogLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	return &slogLogger{l: l.l.With(attrs(fields)...)}
}

func (l *slogLogger) Debug(msg string, fields map[string]any) { l.log(slog.LevelDebug, msg, fields) }
func (l *slogLogger) Info(msg string, fields map[string]any)  { l.log(slog.LevelInfo, msg, fields) }
func (l *slogLogger) Warn(msg string, fields map[string]any)  { l.log(slog.LevelWarn, msg, fields) }
func (l *slogLogger) Error(msg string, fields map[string]any) { l.log(slog.LevelError, msg, fields) }

func (l *slogLogger) SLog() *slog.Logger { return l.l }

func (l *slogLogger) log(lvl slog.Level, msg string, fields map[string]any) {
	l.l.Log(context.Background(), lvl, msg, attrs(fields)...)
}

func attrs(fields map[string]any) []any {
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out = append(out, slog.Any(k, v))
	}
	return out
}
