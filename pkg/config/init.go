package config

import (
	"fmt"

	"github.com/foxhuntgame/foxhunt/pkg/logger"
)

// Initialize loads configuration and sets up the global logger
func Initialize() (*Config, *logger.Logger, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	loggerCfg := logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Environment: cfg.Log.Environment,
		Encoding:    cfg.Log.Encoding,
	}

	appLogger, err := logger.New(loggerCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.SetGlobalLogger(appLogger)

	appLogger.WithFields(map[string]interface{}{
		"environment":        cfg.Server.Environment,
		"server_port":        cfg.Server.Port,
		"stream_port":        cfg.Stream.Port,
		"selection_interval": cfg.Hunt.SelectionInterval.String(),
		"threshold_meters":   cfg.Hunt.ProximityThreshold,
		"log_level":          cfg.Log.Level,
	}).Info("Configuration and logger initialized")

	return cfg, appLogger, nil
}
