// Package logger provides the application Logger backed by zap.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface used across the service.
// Messages are printf-style; structured fields go through Named/With on the zap side.
type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Fatal(format string, v ...interface{}) // Calls os.Exit(1) after logging
	Named(name string) Logger
	Sync() error
}

// Config selects level, encoder and sinks.
type Config struct {
	Level string
	Dev   bool
	// File, when set, adds a daily rotated file sink next to stdout.
	File   string
	MaxAge time.Duration
}

// LevelFromString maps a level name to a zap level, defaulting to info.
func LevelFromString(l string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ZapLogger adapts a zap SugaredLogger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a logger: console encoding in dev mode, JSON with ISO8601 timestamps otherwise.
func New(cfg Config) (*ZapLogger, error) {
	var encoder zapcore.Encoder
	if cfg.Dev {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		maxAge := cfg.MaxAge
		if maxAge <= 0 {
			maxAge = 7 * 24 * time.Hour
		}
		rotator, err := rotatelogs.New(
			cfg.File+".%Y%m%d",
			rotatelogs.WithLinkName(cfg.File),
			rotatelogs.WithMaxAge(maxAge),
			rotatelogs.WithRotationTime(24*time.Hour),
		)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, sink, LevelFromString(cfg.Level))
	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Dev {
		opts = append(opts, zap.Development())
	}
	return NewZapLogger(zap.New(core, opts...)), nil
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar()}
}

// NewNop returns a logger that discards everything.
func NewNop() *ZapLogger {
	return NewZapLogger(zap.NewNop())
}

// Zap exposes the underlying logger for structured call sites.
func (z *ZapLogger) Zap() *zap.Logger {
	return z.sugar.Desugar()
}

func (z *ZapLogger) Debug(format string, v ...interface{}) { z.sugar.Debugf(format, v...) }

func (z *ZapLogger) Info(format string, v ...interface{}) { z.sugar.Infof(format, v...) }

func (z *ZapLogger) Warn(format string, v ...interface{}) { z.sugar.Warnf(format, v...) }

func (z *ZapLogger) Error(format string, v ...interface{}) { z.sugar.Errorf(format, v...) }

func (z *ZapLogger) Fatal(format string, v ...interface{}) { z.sugar.Fatalf(format, v...) }

// Named returns a child logger tagged with a component name.
func (z *ZapLogger) Named(name string) Logger {
	return &ZapLogger{sugar: z.sugar.Named(name)}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
