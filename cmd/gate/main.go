package main

import (
	"context"
	"os"

	"github.com/romariotrain/bick-platform/internal/app"
	"github.com/romariotrain/bick-platform/internal/config"
	"github.com/romariotrain/bick-platform/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New("gate", cfg.LogLevel, cfg.LogPretty)

	code := app.Run("gate", logger, func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	})
	os.Exit(code)
}
