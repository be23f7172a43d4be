package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestConfig_ZapLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, Config{Level: in}.ZapLevel(), in)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "Console")
	t.Setenv("LOG_OUTPUT_FILE", "stderr")

	cfg := ConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stderr", cfg.OutputFile)
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := New(Config{Level: "info", Format: "json", OutputFile: path})
	require.NotNil(t, l)

	l.Named("test").With(zap.String("k", "v")).Info("hello")
	_ = l.Sync()
	assert.FileExists(t, path)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Named("x").With(zap.Int("n", 1)).Error("ignored")
	})
}

func TestSinks(t *testing.T) {
	out, errOut := sinks("")
	assert.Equal(t, []string{"stdout"}, out)
	assert.Equal(t, []string{"stderr"}, errOut)

	out, _ = sinks("stderr")
	assert.Equal(t, []string{"stderr"}, out)

	path := filepath.Join(t.TempDir(), "app.log")
	out, errOut = sinks(path)
	assert.Equal(t, []string{path, "stdout"}, out)
	assert.Equal(t, []string{path, "stderr"}, errOut)
}
