// Package logging wraps zap behind a key/value API and stamps records with
// the active trace when a context is given.
package logging

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

// Logger is safe for concurrent use. A nil *Logger logs through Default.
type Logger struct {
	zap *zap.Logger
}

// MirrorFunc receives every record that passed the level check, for
// exporters that ship logs beside stdout.
type MirrorFunc func(ctx context.Context, level Level, msg string, args ...any)

var (
	defaultLogger atomic.Pointer[Logger]
	mirror        atomic.Pointer[MirrorFunc]
)

// SetMirror installs fn as the process-wide log mirror. nil removes it.
func SetMirror(fn MirrorFunc) {
	if fn == nil {
		mirror.Store(nil)
		return
	}
	mirror.Store(&fn)
}

// New builds the process logger. Development gets a colored console encoder,
// every other environment gets JSON lines on stdout.
func New(development bool, level Level) *Logger {
	if development {
		return NewConsole(level)
	}
	return NewJSON(level)
}

func NewJSON(level Level) *Logger {
	return build(zapcore.NewJSONEncoder(encoderConfig(zapcore.CapitalLevelEncoder)), level)
}

func NewConsole(level Level) *Logger {
	return build(zapcore.NewConsoleEncoder(encoderConfig(zapcore.CapitalColorLevelEncoder)), level)
}

func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNop()
	}
	return &Logger{zap: z}
}

// ParseLevel accepts debug, info, warn and error; anything else is info.
func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

func build(encoder zapcore.Encoder, level Level) *Logger {
	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	// Skip the exported method and write so callers see their own frame.
	return FromZap(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel)))
}

func encoderConfig(encodeLevel zapcore.LevelEncoder) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.EncodeLevel = encodeLevel
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	return cfg
}

func Default() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	return NewNop()
}

func SetDefault(logger *Logger) {
	if logger == nil {
		logger = NewNop()
	}
	defaultLogger.Store(logger)
}

func (l *Logger) orDefault() *Logger {
	if l == nil || l.zap == nil {
		return Default()
	}
	return l
}

func (l *Logger) Zap() *zap.Logger {
	return l.orDefault().zap
}

func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// With returns a child logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{zap: l.orDefault().zap.With(fields(args)...)}
}

func (l *Logger) Debug(msg string, args ...any) { l.write(context.Background(), LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.write(context.Background(), LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.write(context.Background(), LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.write(context.Background(), LevelError, msg, args) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, msg, args)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, msg, args)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, msg, args)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, msg, args)
}

func (l *Logger) write(ctx context.Context, level Level, msg string, args []any) {
	ce := l.orDefault().zap.Check(level, msg)
	if ce == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fs := fields(args)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fs = append(fs, zap.Stringer("trace_id", sc.TraceID()), zap.Stringer("span_id", sc.SpanID()))
	}
	ce.Write(fs...)

	if fn := mirror.Load(); fn != nil {
		(*fn)(ctx, level, msg, args...)
	}
}

// fields pairs args into zap fields. Errors keep their structured form and a
// trailing key without a value is logged as null.
func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, (len(args)+1)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if key == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			out = append(out, zap.Reflect(key, nil))
			break
		}
		if err, ok := args[i+1].(error); ok {
			out = append(out, zap.NamedError(key, err))
			continue
		}
		out = append(out, zap.Any(key, args[i+1]))
	}
	return out
}
