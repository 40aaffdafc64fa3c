// Package outbox drains the transactional outbox table into Kafka.
// Delivery is at-least-once; consumers must be idempotent.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/storage/postgres"
)

// EventSource is the outbox table surface the poller reads.
type EventSource interface {
	GetPending(ctx context.Context, limit int) ([]postgres.OutboxRecord, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// EventSink publishes drained events to the bus.
type EventSink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Publisher polls pending outbox rows and pushes them to Kafka.
type Publisher struct {
	source    EventSource
	sink      EventSink
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

type Config struct {
	Source    EventSource
	Sink      EventSink
	Interval  time.Duration
	BatchSize int
	Logger    zerolog.Logger
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Source == nil {
		return nil, fmt.Errorf("event source is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("event sink is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got: %v", cfg.Interval)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got: %d", cfg.BatchSize)
	}

	return &Publisher{
		source:    cfg.Source,
		sink:      cfg.Sink,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		logger:    cfg.Logger.With().Str("component", "outbox_publisher").Logger(),
	}, nil
}

// Start blocks until ctx is cancelled, draining one batch per tick.
// Errors inside a batch are logged, never fatal.
func (p *Publisher) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().
		Dur("interval", p.interval).
		Int("batch_size", p.batchSize).
		Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox publisher stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.drainBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("drain batch")
			}
		}
	}
}

func (p *Publisher) drainBatch(ctx context.Context) error {
	records, err := p.source.GetPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	var published, failed int
	for _, record := range records {
		evLogger := p.logger.With().
			Str("event_id", record.EventID).
			Str("event_type", record.EventType).
			Str("aggregate_id", record.AggregateID).
			Logger()

		if err := p.sink.Publish(ctx, record.EventID, record.Payload); err != nil {
			evLogger.Error().Err(err).Msg("publish event")
			failed++
			// пропускаем, строка останется pending до следующего тика
			continue
		}
		published++

		if err := p.source.MarkProcessed(ctx, record.ID); err != nil {
			// Опубликовано, но не помечено: событие уйдёт повторно.
			// Для at-least-once это допустимо.
			evLogger.Warn().Err(err).Msg("mark processed")
		}
	}

	p.logger.Info().
		Int("total", len(records)).
		Int("published", published).
		Int("failed", failed).
		Msg("outbox batch drained")
	return nil
}
