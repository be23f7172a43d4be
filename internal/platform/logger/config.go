package logger

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config selects the level, encoding and destination of a Logger.
// OutputFile is "stdout", "stderr" or a file path that is teed to stdout.
type Config struct {
	Level      string
	Format     string
	OutputFile string
}

var envDefaults = map[string]string{
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",
	"LOG_OUTPUT_FILE": "stdout",
}

func env(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return envDefaults[key]
}

// ConfigFromEnv is used before the full configuration is loaded.
func ConfigFromEnv() Config {
	return Config{
		Level:      strings.ToLower(env("LOG_LEVEL")),
		Format:     strings.ToLower(env("LOG_FORMAT")),
		OutputFile: env("LOG_OUTPUT_FILE"),
	}
}

// ZapLevel parses Level. Unknown values mean info.
func (c Config) ZapLevel() zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(c.Level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil || name == "" {
		return zapcore.InfoLevel
	}
	return lvl
}
