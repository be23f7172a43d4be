package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultJWTSecret = "change-me-classifieds-secret"

// Config holds all configuration for the API server and the CLI.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	HTTPPort    string `mapstructure:"HTTP_PORT"`

	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	TokenTTL    time.Duration `mapstructure:"TOKEN_TTL"`
	MockLatency time.Duration `mapstructure:"MOCK_LATENCY"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	AdCacheTTL    time.Duration `mapstructure:"AD_CACHE_TTL"`

	ImageStore     string `mapstructure:"IMAGE_STORE"`
	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	NATSURL string `mapstructure:"NATS_URL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	OTelEndpoint      string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSampleRatio   float64 `mapstructure:"OTEL_SAMPLE_RATIO"`
	PrometheusEnabled bool    `mapstructure:"PROMETHEUS_ENABLED"`
	// PrometheusPort moves /metrics to a dedicated listener when set.
	PrometheusPort    string  `mapstructure:"PROMETHEUS_METRICS_PORT"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogFormat     string `mapstructure:"LOG_FORMAT"`
	LogOutputFile string `mapstructure:"LOG_OUTPUT_FILE"`

	APIBaseURL     string `mapstructure:"API_BASE_URL"`
	SessionStorage string `mapstructure:"SESSION_STORAGE"`
	SessionFile    string `mapstructure:"SESSION_FILE"`
}

// Logger returns the logger configuration part.
func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat, OutputFile: c.LogOutputFile}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "classifieds")
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("MOCK_LATENCY", "300ms")
	v.SetDefault("STORAGE_DRIVER", "memory")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "classifieds")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("AD_CACHE_TTL", "1h")
	v.SetDefault("IMAGE_STORE", "memory")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "classifieds")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@classifieds.local")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
	v.SetDefault("PROMETHEUS_ENABLED", true)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("SESSION_STORAGE", "file")
	v.SetDefault("SESSION_FILE", "")
}

// Load reads configuration from the environment and an optional config.env
// file in the working directory. Environment variables win over the file.
func Load(appLogger *logger.Logger) (*Config, error) {
	return load(viper.New(), ".", appLogger)
}

func load(v *viper.Viper, dir string, appLogger *logger.Logger) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			appLogger.Debug("No config.env file found, relying on environment variables.")
		} else {
			appLogger.Warn("Error reading config.env file", zap.Error(err))
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == defaultJWTSecret {
		appLogger.Warn("JWT_SECRET is set to its default insecure value. Please set a strong secret in your environment.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("image_store", cfg.ImageStore),
		zap.Bool("redis_enabled", cfg.RedisAddr != ""),
		zap.Bool("nats_enabled", cfg.NATSURL != ""),
		zap.Bool("smtp_enabled", cfg.SMTPHost != ""),
		zap.Duration("mock_latency", cfg.MockLatency),
		zap.String("otel_endpoint", cfg.OTelEndpoint),
	)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "memory":
	case "mongo":
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("config: MONGO_URI and MONGO_DATABASE are required for STORAGE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.ImageStore {
	case "memory", "minio":
	default:
		return fmt.Errorf("config: unknown IMAGE_STORE %q", c.ImageStore)
	}
	switch c.SessionStorage {
	case "file":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("config: REDIS_ADDR is required for SESSION_STORAGE=redis")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_STORAGE %q", c.SessionStorage)
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must not be empty")
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		return errors.New("config: OTEL_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.MockLatency < 0 {
		return errors.New("config: MOCK_LATENCY must not be negative")
	}
	return nil
}
