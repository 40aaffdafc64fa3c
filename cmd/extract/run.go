package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/extract"
	"github.com/romariotrain/bick-platform/internal/bick/httpapi"
	"github.com/romariotrain/bick-platform/internal/config"
	"github.com/romariotrain/bick-platform/internal/execx"
)

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	publisher, err := assets.NewPublisher(ctx, assets.Config{
		Endpoint:   cfg.S3Endpoint,
		Region:     cfg.S3Region,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Bucket:     cfg.S3Bucket,
		CDNBaseURL: cfg.CDNBaseURL,
	}, logger)
	if err != nil {
		return fmt.Errorf("asset publisher: %w", err)
	}

	extractor := extract.NewExtractor(execx.ExecRunner{}, cfg.YtdlpBin, logger)
	handler := httpapi.NewExtractHandler(extractor, publisher, logger)
	router := httpapi.NewExtractRouter(handler)

	srv := &http.Server{
		Addr:              cfg.ExtractAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ExtractAddr).Msg("extract listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil

	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen and serve: %w", err)
	}
}
