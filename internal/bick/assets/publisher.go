package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const defaultPresignTTL = time.Hour

// Config holds the object storage connection parameters.
type Config struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	CDNBaseURL string
}

// Publisher uploads bick assets to S3-compatible storage and resolves
// their public CDN URLs.
type Publisher struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucket     string
	cdnBaseURL string
	logger     zerolog.Logger
}

func NewPublisher(ctx context.Context, cfg Config, logger zerolog.Logger) (*Publisher, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		// MinIO и прочие self-hosted хранилища работают по path-style
		o.UsePathStyle = true
	})

	return &Publisher{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucket:     cfg.Bucket,
		cdnBaseURL: cfg.CDNBaseURL,
		logger:     logger.With().Str("component", "asset_publisher").Logger(),
	}, nil
}

// Upload puts an object under the given key. Uploads are idempotent:
// re-publishing the same key overwrites the previous object.
func (p *Publisher) Upload(ctx context.Context, key, contentType string, data []byte) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}

	p.logger.Debug().Str("key", key).Int("size", len(data)).Msg("asset uploaded")
	return nil
}

// Download fetches an object's full contents.
func (p *Publisher) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}

// PresignPut issues a presigned upload URL for direct client uploads.
// A zero ttl falls back to one hour.
func (p *Publisher) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}

	req, err := p.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign put %s: %w", key, err)
	}

	return req.URL, time.Now().Add(ttl), nil
}

// PublicURL resolves the CDN URL an uploaded key is served from.
func (p *Publisher) PublicURL(key string) string {
	return PublicURL(p.cdnBaseURL, key)
}

// PublicURL joins the CDN base with a storage key, tolerant of a
// trailing slash on the base.
func PublicURL(cdnBaseURL, key string) string {
	return strings.TrimRight(cdnBaseURL, "/") + "/" + key
}
