// Package logger provides leveled structured JSON logging with context
// propagation. Fields are emitted flat at the top level of each line,
// alongside the reserved time, level, msg and caller keys.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown strings fall back
// to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Field is one key-value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field  { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Err renders an error under the "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Duration renders a duration in its human form ("1.5s").
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Latency is the conventional key for request timing.
func Latency(d time.Duration) Field { return Duration("latency", d) }

// Options configures a Logger.
type Options struct {
	Output    io.Writer
	Level     Level
	AddCaller bool
}

// DefaultOptions logs info and above to stdout with caller locations.
func DefaultOptions() Options {
	return Options{
		Output:    os.Stdout,
		Level:     LevelInfo,
		AddCaller: true,
	}
}

// Logger writes JSON log lines. Loggers are immutable; With returns a
// derived logger and the original is untouched.
type Logger struct {
	mu        *sync.Mutex
	output    io.Writer
	level     Level
	addCaller bool
	fields    []Field
}

// New creates a Logger with the given options.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Logger{
		mu:        &sync.Mutex{},
		output:    opts.Output,
		level:     opts.Level,
		addCaller: opts.AddCaller,
	}
}

// Default creates a Logger with default options.
func Default() *Logger {
	return New(DefaultOptions())
}

// With returns a Logger that attaches the given fields to every line.
func (l *Logger) With(fields ...Field) *Logger {
	derived := *l
	derived.fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	return &derived
}

// WithRequestID returns a Logger carrying the request trace field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(String("request_id", requestID))
}

func (l *Logger) Debug(msg string, fields ...Field) { l.write(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.write(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.write(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.write(LevelError, msg, fields) }

// Fatal logs the message and exits.
func (l *Logger) Fatal(msg string, fields ...Field) {
	l.write(LevelFatal, msg, fields)
	os.Exit(1)
}

func (l *Logger) write(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	line := make(map[string]any, len(l.fields)+len(fields)+4)
	for _, f := range l.fields {
		line[f.Key] = f.Value
	}
	for _, f := range fields {
		line[f.Key] = f.Value
	}

	// Reserved keys win over field keys of the same name.
	line["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["msg"] = msg

	if l.addCaller {
		if _, file, lineNo, ok := runtime.Caller(2); ok {
			if idx := strings.LastIndex(file, "/"); idx >= 0 {
				file = file[idx+1:]
			}
			line["caller"] = fmt.Sprintf("%s:%d", file, lineNo)
		}
	}

	data, err := json.Marshal(line)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":%q,"msg":%q,"marshal_error":%q}`, level.String(), msg, err.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write(data)
	l.output.Write([]byte("\n"))
}

type ctxKey struct{}

// WithContext attaches the logger to the context.
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the context's logger, or a default one.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}
