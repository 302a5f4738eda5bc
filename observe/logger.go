package observe

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger writes structured entries. Implementations are safe for
// concurrent use and never fail the caller.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	// WithTool returns a logger that tags entries with the tool identity.
	WithTool(meta ToolMeta) Logger
	// With returns a logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// LogLevel orders log entries by severity.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"debug", "info", "warn", "error"}

// ParseLogLevel parses a level name case-insensitively. Unknown names map
// to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "info"
	}
	return levelNames[l]
}

// redactedKeys are field keys whose values never reach the log output.
var redactedKeys = map[string]bool{
	"credentials":      true,
	"credentials_json": true,
	"private_key":      true,
	"access_token":     true,
	"refresh_token":    true,
	"token":            true,
	"authorization":    true,
	"password":         true,
	"secret":           true,
	"api_key":          true,
}

const redacted = "[REDACTED]"

func redact(f Field) any {
	if redactedKeys[strings.ToLower(f.Key)] {
		return redacted
	}
	return f.Value
}

// jsonLogger writes one JSON object per line.
type jsonLogger struct {
	level LogLevel
	out   *syncWriter
	attrs map[string]any
}

// syncWriter is shared by a root logger and everything derived from it so
// lines never interleave.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger creates a JSON logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a JSON logger writing to w.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{level: ParseLogLevel(level), out: &syncWriter{w: w}, attrs: map[string]any{}}
}

func (l *jsonLogger) with(extra map[string]any) *jsonLogger {
	attrs := maps.Clone(l.attrs)
	maps.Copy(attrs, extra)
	return &jsonLogger{level: l.level, out: l.out, attrs: attrs}
}

func (l *jsonLogger) WithTool(meta ToolMeta) Logger {
	extra := map[string]any{"tool.id": meta.ToolID(), "tool.name": meta.Name}
	if meta.Namespace != "" {
		extra["tool.namespace"] = meta.Namespace
	}
	return l.with(extra)
}

func (l *jsonLogger) With(fields ...Field) Logger {
	extra := make(map[string]any, len(fields))
	for _, f := range fields {
		extra[f.Key] = redact(f)
	}
	return l.with(extra)
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.write(ctx, LevelError, msg, fields)
}

func (l *jsonLogger) write(ctx context.Context, level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(l.attrs)+len(fields)+4)
	maps.Copy(entry, l.attrs)
	for _, f := range fields {
		entry[f.Key] = redact(f)
	}
	if ctx != nil {
		if id := InvocationID(ctx); id != "" {
			entry["invocation_id"] = id
		}
	}
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	line = append(line, '\n')

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_, _ = l.out.w.Write(line)
}

type nopLogger struct{}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...Field) {}
func (nopLogger) Info(context.Context, string, ...Field)  {}
func (nopLogger) Warn(context.Context, string, ...Field)  {}
func (nopLogger) Error(context.Context, string, ...Field) {}
func (n nopLogger) WithTool(ToolMeta) Logger              { return n }
func (n nopLogger) With(...Field) Logger                  { return n }
