package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/gate"
	"github.com/romariotrain/bick-platform/internal/bick/httpapi"
	"github.com/romariotrain/bick-platform/internal/bick/queue"
	"github.com/romariotrain/bick-platform/internal/config"
	pg "github.com/romariotrain/bick-platform/internal/storage/postgres"
)

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	outboxRepo := pg.NewOutboxRepo(db)
	repo := pg.NewBickRepo(db, outboxRepo)

	q := queue.New(cfg.RedisAddr, logger)
	defer q.Close()

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

	svc := gate.New(repo, q, publisher)
	router := httpapi.NewRouter(httpapi.New(svc))

	srv := &http.Server{
		Addr:              cfg.GateAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.GateAddr).Msg("gate listening")
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
