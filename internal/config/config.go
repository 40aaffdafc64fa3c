// Package config reads service configuration from the environment.
// A local .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds settings for all bick-platform binaries. Each binary
// uses the slice it needs and ignores the rest.
type Config struct {
	DatabaseURL string
	RedisAddr   string

	GateAddr    string
	ExtractAddr string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	CDNBaseURL  string

	KafkaBrokers []string
	KafkaTopic   string

	YtdlpBin   string
	FFmpegBin  string
	FFprobeBin string

	WorkerConcurrency int

	OutboxInterval  string
	OutboxBatchSize int

	LogLevel  string
	LogPretty bool
}

// Load reads the environment, applying defaults for everything except
// the credentials a binary cannot invent.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),

		GateAddr:    getEnv("GATE_ADDR", ":8080"),
		ExtractAddr: getEnv("EXTRACT_ADDR", ":8082"),

		S3Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:9000"),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    getEnv("S3_BUCKET", "bicks"),
		CDNBaseURL:  getEnv("CDN_BASE_URL", "http://localhost:9000/bicks"),

		KafkaBrokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		KafkaTopic:   getEnv("KAFKA_TOPIC", "bick-events"),

		YtdlpBin:   getEnv("YTDLP_BIN", "yt-dlp"),
		FFmpegBin:  getEnv("FFMPEG_BIN", "ffmpeg"),
		FFprobeBin: getEnv("FFPROBE_BIN", "ffprobe"),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 5),

		OutboxInterval:  getEnv("OUTBOX_INTERVAL", "1s"),
		OutboxBatchSize: getEnvInt("OUTBOX_BATCH_SIZE", 100),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),
	}
}

// RequireDatabase fails fast when the DSN is missing.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
