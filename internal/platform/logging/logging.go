package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Config captures logging configuration options.
type Config struct {
	Level    string
	Dir      string
	Filename string
}

// Logger wraps slog with printf-style helpers used across the server.
type Logger struct {
	slogger *slog.Logger
	file    *os.File
	mu      sync.Mutex
}

var ansiColors = map[slog.Level]string{
	slog.LevelDebug: "\x1b[36m",
	slog.LevelInfo:  "\x1b[32m",
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

var tagColors = map[string]string{
	"HTTP":     "\x1b[95m",
	"AUTH":     "\x1b[94m",
	"ANALYSIS": "\x1b[34m",
	"IMAGE":    "\x1b[35m",
	"BOOT":     "\x1b[96m",
	"STORAGE":  "\x1b[92m",
}

const (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
)

// consoleHandler renders colored, single-line records for terminals.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	timeStr := r.Time.Format("2006-01-02 15:04:05.000")
	levelColor, ok := ansiColors[r.Level]
	if !ok {
		levelColor = colorReset
	}

	msg := r.Message
	if tag, rest, found := splitTag(msg); found {
		if color, ok := tagColors[tag]; ok {
			msg = fmt.Sprintf("%s[%s]%s %s", color, tag, colorReset, rest)
		}
	}

	_, err := fmt.Fprintf(
		h.writer,
		"%s%s%s %s%-5s%s %s\n",
		colorTime, timeStr, colorReset,
		levelColor, strings.ToUpper(r.Level.String()), colorReset,
		msg,
	)
	return err
}

func (h *consoleHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *consoleHandler) WithGroup(_ string) slog.Handler      { return h }

func splitTag(msg string) (tag, rest string, found bool) {
	if !strings.HasPrefix(msg, "[") {
		return "", msg, false
	}
	end := strings.Index(msg, "]")
	if end <= 1 {
		return "", msg, false
	}
	return msg[1:end], strings.TrimSpace(msg[end+1:]), true
}

// multiHandler fans a record out to every child handler.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	children := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		children[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: children}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	children := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		children[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: children}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a Logger writing colored output to stdout and, when a
// directory is configured, plain text to a dated log file.
func New(cfg Config) (*Logger, error) {
	level := parseLevel(cfg.Level)

	handlers := []slog.Handler{
		&consoleHandler{writer: os.Stdout, level: level},
	}

	var file *os.File
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		filename := cfg.Filename
		if filename == "" {
			filename = "server.log"
		}
		path := filepath.Join(cfg.Dir, filename)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	}

	return &Logger{
		slogger: slog.New(&multiHandler{handlers: handlers}),
		file:    file,
	}, nil
}

// Slog exposes the structured logger for integrations that want it raw.
func (l *Logger) Slog() *slog.Logger {
	return l.slogger
}

func (l *Logger) log(level slog.Level, format string, args ...any) {
	if l == nil || l.slogger == nil {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.slogger.Log(context.Background(), level, msg)
}

func (l *Logger) Debug(format string, args ...any) { l.log(slog.LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(slog.LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(slog.LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(slog.LevelError, format, args...) }

// Tag variants prefix the message with a module label picked up by the
// console handler's coloring.
func (l *Logger) DebugTag(tag, format string, args ...any) {
	l.log(slog.LevelDebug, "["+tag+"] "+format, args...)
}

func (l *Logger) InfoTag(tag, format string, args ...any) {
	l.log(slog.LevelInfo, "["+tag+"] "+format, args...)
}

func (l *Logger) WarnTag(tag, format string, args ...any) {
	l.log(slog.LevelWarn, "["+tag+"] "+format, args...)
}

func (l *Logger) ErrorTag(tag, format string, args ...any) {
	l.log(slog.LevelError, "["+tag+"] "+format, args...)
}

// Close flushes and releases the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Sync()
		_ = l.file.Close()
		l.file = nil
	}
}

// CleanupOldLogs removes dated log files older than the retention window.
func CleanupOldLogs(dir string, retention time.Duration) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, entry.Name()))
		}
	}
	return nil
}
