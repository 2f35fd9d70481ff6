package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/Temutjin2k/ride-dispatch/config"
	"github.com/Temutjin2k/ride-dispatch/internal/app"
	"github.com/Temutjin2k/ride-dispatch/pkg/logger"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
	envPath    = flag.String("env-file", ".env", "Path to an optional .env file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelDebug)

	// .env is optional, real environment variables win
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		log.Warn(ctx, "failed to load env file", "path", *envPath, "error", err.Error())
	}

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		os.Exit(1)
	}

	log = logger.InitLogger(cfg.ServiceName, cfg.LogLevel)

	// Printing configuration
	config.PrintConfig(ctx, log, cfg)

	// Creating application
	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		os.Exit(1)
	}

	// Running the apllication
	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		os.Exit(1)
	}
}
