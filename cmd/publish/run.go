package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/kafka"
	"github.com/romariotrain/bick-platform/internal/bick/outbox"
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

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("kafka producer: %w", err)
	}
	defer producer.Close()

	interval, err := time.ParseDuration(cfg.OutboxInterval)
	if err != nil {
		return fmt.Errorf("parse OUTBOX_INTERVAL: %w", err)
	}

	publisher, err := outbox.NewPublisher(outbox.Config{
		Source:    pg.NewOutboxRepo(db),
		Sink:      producer,
		Interval:  interval,
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("outbox publisher: %w", err)
	}

	if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
