package app

import (
	"fmt"

	"go.uber.org/zap"

	"podbrief/internal/app/logging"
	"podbrief/internal/config"
)

// Bootstrap loads configuration and builds the logger shared by every command.
func Bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewLogger(cfg.App.IsDevelopment())
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
