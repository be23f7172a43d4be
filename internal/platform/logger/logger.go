package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger so components depend on one project type.
type Logger struct {
	*zap.Logger
	config Config
}

// New builds a logger from cfg. A broken configuration falls back to a
// production zap logger writing to stdout.
func New(cfg Config) *Logger {
	level := cfg.ZapLevel()
	zc := baseConfig(level)
	zc.Level.SetLevel(level)
	zc.OutputPaths, zc.ErrorOutputPaths = sinks(cfg.OutputFile)

	if console(cfg.Format) {
		zc.Encoding = "console"
		if !toFile(cfg.OutputFile) {
			zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	} else {
		zc.Encoding = "json"
	}

	zl, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: invalid configuration, using defaults: %v\n", err)
		zl, _ = zap.NewProduction()
	}

	l := &Logger{Logger: zl, config: cfg}
	l.Debug("Logger initialized",
		zap.String("level", level.String()),
		zap.String("encoding", zc.Encoding),
		zap.Strings("output_paths", zc.OutputPaths),
	)
	return l
}

func baseConfig(level zapcore.Level) zap.Config {
	if level == zapcore.DebugLevel {
		return zap.NewDevelopmentConfig()
	}
	zc := zap.NewProductionConfig()
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc
}

func console(format string) bool {
	switch strings.ToLower(format) {
	case "console", "text":
		return true
	}
	return false
}

func toFile(output string) bool {
	return output != "" && output != "stdout" && output != "stderr"
}

// sinks returns the output and error paths. A file output is mirrored to
// stdout; if its directory cannot be created only stdout is used.
func sinks(output string) (out, errOut []string) {
	if !toFile(output) {
		if output == "" {
			output = "stdout"
		}
		return []string{output}, []string{"stderr"}
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create %s, writing to stdout: %v\n", filepath.Dir(output), err)
		return []string{"stdout"}, []string{"stderr"}
	}
	return []string{output, "stdout"}, []string{output, "stderr"}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named adds a path segment to the logger name.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name), config: l.config}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...), config: l.config}
}
