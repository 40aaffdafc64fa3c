// Package worker consumes processing tasks and drives a bick from
// processing to live or failed.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/romariotrain/bick-platform/internal/bick/extract"
	"github.com/romariotrain/bick-platform/internal/bick/ffmpeg"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

// Repository is the slice of the database surface the worker touches.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bick, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, fields repository.UpdateFields) (*models.Bick, error)
	InsertAsset(ctx context.Context, a *models.BickAsset) error
}

// AssetStore moves bytes between the worker and object storage.
type AssetStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
}

// Acquirer re-downloads a bick's source when the stored original is
// gone. Optional; a nil Acquirer disables the fallback.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string) (*extract.Result, error)
}

// MediaTool is the ffmpeg/ffprobe surface the pipeline needs.
type MediaTool interface {
	Probe(ctx context.Context, path string) (ffmpeg.ProbeResult, error)
	TranscodeMP3(ctx context.Context, src, dst string) error
	ExtractPCM(ctx context.Context, src string) ([]byte, error)
	RenderWaveformPNG(ctx context.Context, src, dst string) error
	RenderTeaser(ctx context.Context, audio, image, dst string) error
}

// Processor handles bick processing tasks. One Processor serves all
// worker goroutines; it holds no per-job state.
type Processor struct {
	repo     Repository
	store    AssetStore
	media    MediaTool
	acquirer Acquirer
	logger   zerolog.Logger
	clock    func() time.Time
}

func NewProcessor(repo Repository, store AssetStore, media MediaTool, acquirer Acquirer, logger zerolog.Logger) *Processor {
	return &Processor{
		repo:     repo,
		store:    store,
		media:    media,
		acquirer: acquirer,
		logger:   logger.With().Str("component", "worker").Logger(),
		clock:    time.Now,
	}
}

// HandleProcessTask is the asynq handler for bick:process tasks.
// Malformed payloads and non-retryable failures are joined with
// asynq.SkipRetry so the queue archives them immediately.
func (p *Processor) HandleProcessTask(ctx context.Context, task *asynq.Task) error {
	var job models.ProcessingJob
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}
	if err := job.Validate(); err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}

	bickID, err := uuid.Parse(job.BickID)
	if err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}

	bick, err := p.repo.GetByID(ctx, bickID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// бик удалили раньше, чем задача дошла до воркера
			p.logger.Warn().Str("bick_id", job.BickID).Msg("bick gone, dropping task")
			return nil
		}
		return models.NewProcessingError(models.ErrorDatabase, job.BickID, "load", "load bick", err)
	}

	switch bick.Status {
	case models.RemovedStatus:
		p.logger.Info().Str("bick_id", job.BickID).Msg("bick removed, dropping task")
		return nil
	case models.LiveStatus:
		// повторная доставка после успешной обработки
		p.logger.Info().Str("bick_id", job.BickID).Msg("bick already live, dropping task")
		return nil
	}

	if err := p.process(ctx, bick, job); err != nil {
		perr, ok := models.AsProcessingError(err)
		if ok && !perr.Retryable() {
			return errors.Join(err, asynq.SkipRetry)
		}
		return err
	}
	return nil
}

// terminalFailure reports whether no further attempt will follow:
// either the error refuses retries, or this attempt was the last one
// the task was allowed.
func terminalFailure(err error, retried, maxRetry int) bool {
	return errors.Is(err, asynq.SkipRetry) || retried >= maxRetry
}

// HandleError runs after every failed attempt. Once retries are
// exhausted, or the failure is terminal, the bick is flipped to failed.
func (p *Processor) HandleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if !terminalFailure(err, retried, maxRetry) {
		return
	}

	var job models.ProcessingJob
	if jerr := json.Unmarshal(task.Payload(), &job); jerr != nil {
		p.logger.Error().Err(jerr).Msg("terminal failure with unreadable payload")
		return
	}
	bickID, perr := uuid.Parse(job.BickID)
	if perr != nil {
		return
	}

	p.logger.Error().
		Err(err).
		Str("bick_id", job.BickID).
		Int("attempts", retried+1).
		Msg("processing failed permanently")

	if _, uerr := p.repo.UpdateStatus(ctx, bickID, models.FailedStatus, repository.UpdateFields{}); uerr != nil {
		p.logger.Error().Err(uerr).Str("bick_id", job.BickID).Msg("mark failed")
	}
}
