package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ProducerConfig {
	return ProducerConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "bick-events",
		Logger:  zerolog.Nop(),
	}
}

func TestNewProducer_AppliesDefaults(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	assert.Equal(t, "bick-events", producer.config.Topic)
	assert.Equal(t, 3, producer.config.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, producer.config.RetryBackoff)
	assert.Equal(t, 10*time.Second, producer.config.WriteTimeout)
	assert.Equal(t, 100, producer.config.BatchSize)
	assert.False(t, producer.config.Async)
}

func TestNewProducer_KeepsExplicitConfig(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 5
	cfg.RetryBackoff = 200 * time.Millisecond
	cfg.WriteTimeout = 5 * time.Second
	cfg.BatchSize = 50
	cfg.Async = true

	producer, err := NewProducer(cfg)
	require.NoError(t, err)

	assert.Equal(t, 5, producer.config.MaxRetries)
	assert.Equal(t, 200*time.Millisecond, producer.config.RetryBackoff)
	assert.Equal(t, 5*time.Second, producer.config.WriteTimeout)
	assert.Equal(t, 50, producer.config.BatchSize)
	assert.True(t, producer.config.Async)
}

func TestNewProducer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProducerConfig)
		wantErr string
	}{
		{name: "empty brokers", mutate: func(c *ProducerConfig) { c.Brokers = nil }, wantErr: "brokers list is empty"},
		{name: "empty topic", mutate: func(c *ProducerConfig) { c.Topic = "" }, wantErr: "topic is empty"},
		{name: "negative max retries", mutate: func(c *ProducerConfig) { c.MaxRetries = -1 }, wantErr: "max_retries cannot be negative"},
		{name: "negative retry backoff", mutate: func(c *ProducerConfig) { c.RetryBackoff = -time.Second }, wantErr: "retry_backoff cannot be negative"},
		{name: "negative write timeout", mutate: func(c *ProducerConfig) { c.WriteTimeout = -time.Second }, wantErr: "write_timeout cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			producer, err := NewProducer(cfg)
			require.Error(t, err)
			assert.Nil(t, producer)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsRetriableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retriable bool
	}{
		{name: "nil error", err: nil, retriable: false},
		{name: "context canceled", err: context.Canceled, retriable: false},
		{name: "context deadline exceeded", err: context.DeadlineExceeded, retriable: false},
		{name: "connection refused", err: errors.New("connection refused"), retriable: true},
		{name: "connection reset", err: errors.New("connection reset by peer"), retriable: true},
		{name: "timeout", err: errors.New("i/o timeout"), retriable: true},
		{name: "leader not available", err: errors.New("leader not available"), retriable: true},
		{name: "invalid message", err: errors.New("invalid message format"), retriable: false},
		{name: "message too large", err: errors.New("message too large"), retriable: false},
		{name: "authorization failed", err: errors.New("authorization failed"), retriable: false},
		{name: "unknown error defaults to retriable", err: errors.New("some random error"), retriable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retriable, isRetriableError(tt.err))
		})
	}
}

func TestProducer_GetMetrics(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	metrics := producer.GetMetrics()
	assert.Equal(t, int64(0), metrics.MessagesPublished)
	assert.Equal(t, int64(0), metrics.MessagesFailed)
	assert.Equal(t, int64(0), metrics.RetriesTotal)

	// Имитируем публикацию
	producer.metrics.MessagesPublished.Add(10)
	producer.metrics.MessagesFailed.Add(2)
	producer.metrics.RetriesTotal.Add(5)
	producer.metrics.PublishDuration.Add(int64(100 * time.Millisecond))

	metrics = producer.GetMetrics()
	assert.Equal(t, int64(10), metrics.MessagesPublished)
	assert.Equal(t, int64(2), metrics.MessagesFailed)
	assert.Equal(t, int64(5), metrics.RetriesTotal)
	assert.Equal(t, 10*time.Millisecond, metrics.AvgPublishTime)
}

func TestProducer_GetMetrics_NothingPublished(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	producer.metrics.PublishDuration.Add(int64(100 * time.Millisecond))

	assert.Equal(t, time.Duration(0), producer.GetMetrics().AvgPublishTime)
}

func TestProducer_Close(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	_ = producer.Close()
	assert.True(t, producer.closed.Load())

	err = producer.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already closed")
}

func TestProducer_PublishAfterClose(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	producer.closed.Store(true)

	err = producer.Publish(context.Background(), "key", []byte("value"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "producer is closed")
}

func TestProducer_PublishBatch_Empty(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	assert.NoError(t, producer.PublishBatch(context.Background(), nil))
}

func TestProducer_HealthCheckAfterClose(t *testing.T) {
	producer, err := NewProducer(testConfig())
	require.NoError(t, err)

	producer.closed.Store(true)

	err = producer.HealthCheck(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "producer is closed")
}
