package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/soocke/pixel-label-go/app"
	"github.com/soocke/pixel-label-go/config"
)

func main() {
	cfgPath := flag.String("config", "pixel-label.json", "path to the JSON config file")
	dataset := flag.String("dataset", "", "dataset directory (overrides the config)")
	debugFlag := flag.Bool("debug", false, "debug logging and periodic runtime stats")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		NewLogger(slog.LevelInfo).Error("config load failed", "path", *cfgPath, "error", err)
		os.Exit(1)
	}
	if *dataset != "" {
		cfg.DatasetDir = *dataset
	}
	if *debugFlag {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	application, err := app.NewApp("Pixel Label", cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	application.Start()
}
