// Package logging provides scoped, structured logging for a single build
// invocation. Unlike an ambient global logger, a Logger is a value: it is
// constructed once at process start and passed explicitly to every
// component that needs it. Nothing in this package keeps package-level
// mutable state.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies which subsystem emitted a log line.
type Category string

const (
	CategoryFingerprint Category = "fingerprint"
	CategoryStore       Category = "store"
	CategoryDetect      Category = "detect"
	CategoryDepIndex    Category = "depindex"
	CategoryPlan        Category = "plan"
	CategorySections    Category = "sections"
	CategoryGenerate    Category = "generate"
	CategoryLangDetect  Category = "detect-lang"
	CategoryStructural  Category = "structural"
	CategoryQuality     Category = "quality"
	CategorySynth       Category = "synth"
	CategoryWatch       Category = "watch"
	CategoryCLI         Category = "cli"
	CategoryManifest    Category = "manifest"
	CategoryOracle      Category = "oracle"
)

// Level mirrors the LOG_LEVEL environment variable's vocabulary.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
	LevelFatal Level = "FATAL"
)

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError, LevelFatal:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger wraps a *zap.Logger scoped to one category. It is safe to derive
// further Loggers from it with With, but it never reaches back into
// package-level state.
type Logger struct {
	z        *zap.Logger
	category Category
}

// New builds the root Logger for a process. level comes from LOG_LEVEL or
// --verbose; jsonFormat controls structured vs console encoding.
func New(level Level, jsonFormat bool) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if jsonFormat {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.OutputPaths = []string{"stderr"}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{z: z, category: CategoryCLI}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{z: zap.NewNop(), category: CategoryCLI}
}

// With returns a derived Logger scoped to category, sharing the same sink.
func (l *Logger) With(category Category) *Logger {
	return &Logger{z: l.z.With(zap.String("category", string(category))), category: category}
}

// WithRequestID tags every subsequent entry with a correlation id — used
// for oracle request/response pairs and build invocation ids.
func (l *Logger) WithRequestID(id string) *Logger {
	return &Logger{z: l.z.With(zap.String("req", id)), category: l.category}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.z.Error(msg, fields...) }

// Sync flushes buffered log entries. Errors writing to stderr on some
// platforms are expected and ignored, matching the teacher's CLI shutdown.
func (l *Logger) Sync() {
	_ = l.z.Sync()
}

// LevelFromEnv reads LOG_LEVEL, defaulting to INFO.
func LevelFromEnv() Level {
	switch Level(os.Getenv("LOG_LEVEL")) {
	case LevelDebug, LevelWarn, LevelError, LevelFatal:
		return Level(os.Getenv("LOG_LEVEL"))
	default:
		return LevelInfo
	}
}
