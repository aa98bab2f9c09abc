// Package logger builds the zap loggers used by the command line tools. The
// library packages never log on their own; they take a *zap.SugaredLogger
// and default to a no-op one.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the logging level.
type LogLevel string

// LogFormat represents the logging format.
type LogFormat string

const (
	DebugLevel LogLevel = "DEBUG"
	InfoLevel  LogLevel = "INFO"
	WarnLevel  LogLevel = "WARN"
	ErrorLevel LogLevel = "ERROR"
	// ProductionLevel is an alias for InfoLevel, used for easier configuration.
	ProductionLevel LogLevel = "PRODUCTION"

	// FormatConsole indicates human-readable console format.
	FormatConsole LogFormat = "CONSOLE"
	// FormatJSON indicates structured JSON format.
	FormatJSON LogFormat = "JSON"
)

// Component names used with For.
const (
	ComponentLoop    = "loop"
	ComponentTasks   = "tasks"
	ComponentMetrics = "metrics"
	ComponentCLI     = "cli"
)

var (
	mu     sync.Mutex
	global *zap.Logger
)

// ParseLevel converts a level name to a zapcore.Level. Unknown names map to info.
func ParseLevel(level LogLevel) zapcore.Level {
	switch strings.ToUpper(string(level)) {
	case string(DebugLevel):
		return zapcore.DebugLevel
	case string(WarnLevel):
		return zapcore.WarnLevel
	case string(ErrorLevel):
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseFormat returns the format for a name, or def if it is not known.
func ParseFormat(format string, def LogFormat) LogFormat {
	f := LogFormat(strings.ToUpper(format))
	if f != FormatConsole && f != FormatJSON {
		return def
	}
	return f
}

// timeEncoder encodes the time as a human-readable timestamp.
func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000 MST"))
}

// New creates a zap logger writing to stdout.
func New(level LogLevel, format LogFormat) *zap.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a zap logger writing to w.
func NewWithWriter(w io.Writer, level LogLevel, format LogFormat) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "component",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == FormatConsole {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = timeEncoder
		encoderConfig.ConsoleSeparator = " | "
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(ParseLevel(level)))
	return zap.New(core, zap.AddCaller())
}

// Initialize installs l as the global logger returned by For.
func Initialize(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	zap.ReplaceGlobals(l)
}

// For creates a named logger for a specific component. Before Initialize it
// returns a no-op logger.
func For(component string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		return zap.NewNop().Sugar().Named(component)
	}
	return global.Sugar().Named(component)
}

// Sync flushes any buffered log entries.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		return nil
	}
	return global.Sync()
}
