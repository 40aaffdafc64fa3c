package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/extract"
	"github.com/romariotrain/bick-platform/internal/bick/ffmpeg"
	"github.com/romariotrain/bick-platform/internal/bick/queue"
	"github.com/romariotrain/bick-platform/internal/bick/worker"
	"github.com/romariotrain/bick-platform/internal/config"
	"github.com/romariotrain/bick-platform/internal/execx"
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

	media := ffmpeg.NewTool(execx.ExecRunner{}, cfg.FFmpegBin, cfg.FFprobeBin)
	extractor := extract.NewExtractor(execx.ExecRunner{}, cfg.YtdlpBin, logger)
	processor := worker.NewProcessor(repo, publisher, media, extractor, logger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency:    cfg.WorkerConcurrency,
			Queues:         map[string]int{queue.ProcessingQueue: 1},
			RetryDelayFunc: queue.RetryDelay,
			ErrorHandler:   asynq.ErrorHandlerFunc(processor.HandleError),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypeProcess, processor.HandleProcessTask)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Int("concurrency", cfg.WorkerConcurrency).
			Str("queue", queue.ProcessingQueue).
			Msg("worker consuming")
		errCh <- srv.Run(mux)
	}()

	select {
	case <-ctx.Done():
		srv.Shutdown()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("asynq server: %w", err)
		}
		return nil
	}
}
