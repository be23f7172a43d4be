package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/adapter/restclient"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/cli"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/client/session"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/config"
	"github.com/Abdurahmanit/GroupProject/classifieds/internal/platform/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisSessionProfile = "default"

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	logCfg := logger.ConfigFromEnv()
	if _, set := os.LookupEnv("LOG_LEVEL"); !set {
		logCfg.Level = "warn"
	}
	if logCfg.OutputFile == "stdout" {
		logCfg.OutputFile = "stderr"
	}
	logCfg.Format = "console"
	appLogger := logger.New(logCfg)
	defer appLogger.Sync()

	cfg, err := config.Load(appLogger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var storage session.Storage
	switch cfg.SessionStorage {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		storage = session.NewRedisStorage(rdb, redisSessionProfile, cfg.TokenTTL)
	default:
		path := cfg.SessionFile
		if path == "" {
			path = session.DefaultFilePath()
		}
		storage = session.NewFileStorage(path)
	}

	backend := restclient.New(cfg.APIBaseURL, appLogger)
	app := cli.NewApp(backend, storage, os.Stdout, appLogger)

	if err := cli.NewRootCmd(app).ExecuteContext(ctx); err != nil {
		appLogger.Debug("Command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, cli.Message(err))
		return 1
	}
	return 0
}
