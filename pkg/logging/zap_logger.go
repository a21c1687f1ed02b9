package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures a ZapLogger.
type Config struct {
	// OutputPath is the log file. Empty means stderr.
	OutputPath string

	// Verbose enables debug-level output.
	Verbose bool

	// Console selects the human-readable encoder instead of
	// JSON lines.
	Console bool

	// Fields are attached to every entry.
	Fields map[string]any
}

// ZapLogger implements Logger on top of a zap.Logger.
type ZapLogger struct {
	z      *zap.Logger
	toFile bool
}

// NewZapLogger builds a zap-backed logger from cfg.
func NewZapLogger(cfg Config) (*ZapLogger, error) {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.DisableStacktrace = true
	if cfg.Console {
		zc.Encoding = "console"
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	if cfg.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	toFile := cfg.OutputPath != ""
	if toFile {
		if err := os.MkdirAll(
			filepath.Dir(cfg.OutputPath), 0o755,
		); err != nil {
			return nil, fmt.Errorf(
				"failed to create log directory: %w", err,
			)
		}
		zc.OutputPaths = []string{cfg.OutputPath}
	} else {
		zc.OutputPaths = []string{"stderr"}
	}
	if len(cfg.Fields) > 0 {
		zc.InitialFields = cfg.Fields
	}

	z, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapLogger{z: z, toFile: toFile}, nil
}

// NewFromZap wraps an existing zap.Logger.
func NewFromZap(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z}
}

// Info logs an informational message.
func (l *ZapLogger) Info(msg string, fields ...Field) {
	l.z.Info(msg, zapFields(fields)...)
}

// Warn logs a warning message.
func (l *ZapLogger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, zapFields(fields)...)
}

// Error logs an error message.
func (l *ZapLogger) Error(msg string, fields ...Field) {
	l.z.Error(msg, zapFields(fields)...)
}

// Debug logs a debug message. It is dropped unless the logger
// level enables debug.
func (l *ZapLogger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, zapFields(fields)...)
}

// WithFields returns a new Logger with additional default
// fields.
func (l *ZapLogger) WithFields(fields ...Field) Logger {
	return &ZapLogger{
		z:      l.z.With(zapFields(fields)...),
		toFile: l.toFile,
	}
}

// Close flushes buffered entries. Sync errors on terminal
// streams are ignored.
func (l *ZapLogger) Close() error {
	if err := l.z.Sync(); err != nil && l.toFile {
		return err
	}
	return nil
}

// Zap returns the underlying zap.Logger.
func (l *ZapLogger) Zap() *zap.Logger { return l.z }
