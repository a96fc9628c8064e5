package diag

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogOptions: logger settings taken from config.Logging.
type LogOptions struct {
	// Level: debug|info|warn|error; anything else means info.
	Level string
	// Format: json (default) or console.
	Format string
	// Dir: when set, events go to a size-rotated file in Dir instead of stderr.
	Dir string
	// MaxBytes: rotation threshold for Dir; <=0 uses 10 MiB.
	MaxBytes int64
}

// Logger emits the pipeline event vocabulary (comp, stage, code, dur_ms, count, kv)
// as structured zap entries. A nil *Logger is a valid no-op.
type Logger struct {
	z    *zap.Logger
	sink *RotatingFile
}

// NewLogger builds a zap core from opts and tags every entry with corr_id.
func NewLogger(corrID string, opts LogOptions) *Logger {
	var ws zapcore.WriteSyncer
	var sink *RotatingFile
	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		sink = NewRotatingFile(dir, opts.MaxBytes)
		ws = sink
	} else {
		ws = zapcore.Lock(os.Stderr)
	}
	core := zapcore.NewCore(buildEncoder(opts.Format), ws, parseLevel(opts.Level))
	l := NewWithCore(corrID, core)
	l.sink = sink
	return l
}

// NewWithCore wraps an existing core (tests use zaptest/observer).
func NewWithCore(corrID string, core zapcore.Core) *Logger {
	z := zap.New(core).Named("phonebook")
	if corrID != "" {
		z = z.With(zap.String("corr_id", corrID))
	}
	return &Logger{z: z}
}

func buildEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.LevelKey = "level"
	ec.MessageKey = "msg"
	ec.NameKey = "logger"
	ec.CallerKey = zapcore.OmitKey
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func eventFields(comp, stage string, kv map[string]string, extra ...zap.Field) []zap.Field {
	fs := make([]zap.Field, 0, 3+len(extra))
	fs = append(fs, zap.String("comp", comp), zap.String("stage", stage))
	fs = append(fs, extra...)
	if len(kv) > 0 {
		fs = append(fs, zap.Any("kv", kv))
	}
	return fs
}

// Start logs a start event and returns a timer for Finish.
func (l *Logger) Start(comp, msg string) *Timer {
	return l.StartWithKV(comp, msg, nil)
}

// StartWithKV logs a start event with key/values.
func (l *Logger) StartWithKV(comp, msg string, kv map[string]string) *Timer {
	if l == nil {
		return nil
	}
	l.z.Info(msg, eventFields(comp, "start", kv)...)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// DebugStart emits a debug-only start-like event.
func (l *Logger) DebugStart(comp, msg string, kv map[string]string) {
	if l == nil {
		return
	}
	l.z.Debug(msg, eventFields(comp, "start", kv)...)
}

// Warn logs a non-fatal observation.
func (l *Logger) Warn(comp, msg string, kv map[string]string) {
	if l == nil {
		return
	}
	l.z.Warn(msg, eventFields(comp, "warn", kv)...)
}

// Error logs an error event; durSince, when set, adds dur_ms.
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.ErrorWithKV(comp, code, msg, durSince, nil)
}

// ErrorWithKV is Error with key/values (e.g. the failing path).
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, kv map[string]string) {
	if l == nil {
		return
	}
	extra := []zap.Field{zap.String("code", code)}
	if durSince != nil {
		extra = append(extra, zap.Int64("dur_ms", time.Since(*durSince).Milliseconds()))
	}
	l.z.Error(msg, eventFields(comp, "error", kv, extra...)...)
}

// Debugf is a printf-style debug line, used for %+v stacks of wrapped errors.
func (l *Logger) Debugf(template string, args ...any) {
	if l == nil {
		return
	}
	l.z.Sugar().Debugf(template, args...)
}

// Sync flushes buffered entries and closes the rotating sink if any.
// Sync errors on terminals (EINVAL/ENOTTY) are ignored.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	if err := l.z.Sync(); err != nil && !isIgnorableSyncError(err) {
		_, _ = os.Stderr.WriteString("log sync error: " + err.Error() + "\n")
	}
	if l.sink != nil {
		_ = l.sink.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "invalid argument") ||
		strings.Contains(s, "inappropriate ioctl for device")
}

// Timer measures start→finish.
type Timer struct {
	l    *Logger
	comp string
	t0   time.Time
}

// Finish logs the finish event with an optional count.
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	t.l.z.Info(msg, eventFields(t.comp, "finish", nil,
		zap.Int64("dur_ms", time.Since(t.t0).Milliseconds()),
		zap.Int64("count", count))...)
}

// Elapsed reports time since Start.
func (t *Timer) Elapsed() time.Duration {
	if t == nil {
		return 0
	}
	return time.Since(t.t0)
}
