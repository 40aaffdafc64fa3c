package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
	"github.com/romariotrain/bick-platform/internal/bick/waveform"
)

// process runs the full pipeline for one job: fetch the original,
// validate it, derive the playable mp3, the waveform peaks and the promo
// assets, publish everything, then flip the bick live. Every failure is
// a typed ProcessingError so the handler can decide on retries.
func (p *Processor) process(ctx context.Context, bick *models.Bick, job models.ProcessingJob) error {
	bickID := bick.ID
	fail := func(t models.ProcessingErrorType, step, msg string, cause error) error {
		return models.NewProcessingError(t, job.BickID, step, msg, cause)
	}

	dir, err := os.MkdirTemp("", "bick-process-")
	if err != nil {
		return fail(models.ErrorDownloadFailed, "prepare", "create temp dir", err)
	}
	defer os.RemoveAll(dir)

	// 1. original из хранилища; для биков с source_url хранилище могло
	// ещё не получить файл, тогда перекачиваем с платформы
	srcPath, err := p.fetchOriginal(ctx, bick, job, dir)
	if err != nil {
		return err
	}

	// 2. validate: файл обязан содержать хотя бы один аудиопоток
	probe, err := p.media.Probe(ctx, srcPath)
	if err != nil {
		return fail(models.ErrorInvalidAudio, "validate", "file is not decodable", err)
	}
	if probe.AudioStreamCount() == 0 {
		return fail(models.ErrorInvalidAudio, "validate", "no audio streams", nil)
	}
	durationMs := probe.DurationMs()

	// 3. playable mp3
	mp3Path := filepath.Join(dir, assets.NameAudio)
	if err := p.media.TranscodeMP3(ctx, srcPath, mp3Path); err != nil {
		return fail(models.ErrorFFmpegFailed, "transcode", "mp3 rendition", err)
	}
	if err := p.publishFile(ctx, bickID, models.AssetAudio, assets.NameAudio, mp3Path, "audio/mpeg", nil); err != nil {
		return err
	}

	// 4. waveform peaks
	pcm, err := p.media.ExtractPCM(ctx, mp3Path)
	if err != nil {
		return fail(models.ErrorFFmpegFailed, "waveform", "pcm decode", err)
	}
	peaks := waveform.ExtractPeaks(pcm, waveform.DefaultPeakCount)
	peaksJSON, err := json.Marshal(peaks)
	if err != nil {
		return fail(models.ErrorFFmpegFailed, "waveform", "encode peaks", err)
	}
	meta := models.Metadata{"peaks": strconv.Itoa(len(peaks))}
	if err := p.publishBytes(ctx, bickID, models.AssetWaveformJSON, assets.NameWaveform, peaksJSON, "application/json", meta); err != nil {
		return err
	}

	// 5. promo: og image и teaser
	ogPath := filepath.Join(dir, assets.NameOGImage)
	if err := p.media.RenderWaveformPNG(ctx, mp3Path, ogPath); err != nil {
		return fail(models.ErrorFFmpegFailed, "promo", "og image", err)
	}
	if err := p.publishFile(ctx, bickID, models.AssetOGImage, assets.NameOGImage, ogPath, "image/png", nil); err != nil {
		return err
	}

	teaserPath := filepath.Join(dir, assets.NameTeaser)
	if err := p.media.RenderTeaser(ctx, mp3Path, ogPath, teaserPath); err != nil {
		return fail(models.ErrorFFmpegFailed, "promo", "teaser", err)
	}
	if err := p.publishFile(ctx, bickID, models.AssetTeaserMP4, assets.NameTeaser, teaserPath, "video/mp4", nil); err != nil {
		return err
	}

	// 6. финальный переход
	publishedAt := p.clock().UTC()
	_, err = p.repo.UpdateStatus(ctx, bickID, models.LiveStatus, repository.UpdateFields{
		DurationMs:         &durationMs,
		OriginalDurationMs: &durationMs,
		PublishedAt:        &publishedAt,
	})
	if err != nil {
		return fail(models.ErrorDatabase, "finalize", "mark live", err)
	}

	p.logger.Info().
		Str("bick_id", job.BickID).
		Int64("duration_ms", durationMs).
		Int("peaks", len(peaks)).
		Msg("bick is live")
	return nil
}

// fetchOriginal places the job's original audio into the job dir. The
// storage copy is authoritative; acquisition from the source platform is
// only a fallback and its result is written back to storage so retries
// take the fast path.
func (p *Processor) fetchOriginal(ctx context.Context, bick *models.Bick, job models.ProcessingJob, dir string) (string, error) {
	srcPath := filepath.Join(dir, "original")

	original, err := p.store.Download(ctx, job.StorageKey)
	if err == nil {
		if werr := os.WriteFile(srcPath, original, 0o600); werr != nil {
			return "", models.NewProcessingError(models.ErrorDownloadFailed, job.BickID, "download", "write original", werr)
		}
		return srcPath, nil
	}

	if p.acquirer == nil || bick.SourceURL == nil {
		return "", models.NewProcessingError(models.ErrorDownloadFailed, job.BickID, "download", "fetch original", err)
	}

	p.logger.Warn().Err(err).Str("bick_id", job.BickID).Msg("original missing in storage, re-acquiring from source")
	res, aerr := p.acquirer.Acquire(ctx, *bick.SourceURL)
	if aerr != nil {
		return "", models.NewProcessingError(models.ErrorDownloadFailed, job.BickID, "download", "acquire source", aerr)
	}
	defer res.Cleanup()

	data, rerr := os.ReadFile(res.LocalAudioPath)
	if rerr != nil {
		return "", models.NewProcessingError(models.ErrorDownloadFailed, job.BickID, "download", "read acquired audio", rerr)
	}
	if werr := os.WriteFile(srcPath, data, 0o600); werr != nil {
		return "", models.NewProcessingError(models.ErrorDownloadFailed, job.BickID, "download", "write original", werr)
	}
	if uerr := p.store.Upload(ctx, job.StorageKey, "audio/mpeg", data); uerr != nil {
		return "", models.NewProcessingError(models.ErrorUploadFailed, job.BickID, "download", "restore original", uerr)
	}
	return srcPath, nil
}

func (p *Processor) publishFile(ctx context.Context, bickID uuid.UUID, assetType models.AssetType, name, path, mime string, meta models.Metadata) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.NewProcessingError(models.ErrorFFmpegFailed, bickID.String(), "publish", "read "+name, err)
	}
	return p.publishBytes(ctx, bickID, assetType, name, data, mime, meta)
}

// publishBytes uploads a derived asset and records its row. The asset
// row carries the CDN URL so readers never rebuild keys themselves.
func (p *Processor) publishBytes(ctx context.Context, bickID uuid.UUID, assetType models.AssetType, name string, data []byte, mime string, meta models.Metadata) error {
	key := assets.KeyFor(bickID.String(), name)
	if err := p.store.Upload(ctx, key, mime, data); err != nil {
		return models.NewProcessingError(models.ErrorUploadFailed, bickID.String(), "publish", "upload "+name, err)
	}

	asset := &models.BickAsset{
		BickID:     bickID,
		AssetType:  assetType,
		StorageKey: key,
		CDNURL:     p.store.PublicURL(key),
		MimeType:   mime,
		SizeBytes:  int64(len(data)),
		Metadata:   meta,
	}
	if err := p.repo.InsertAsset(ctx, asset); err != nil {
		return models.NewProcessingError(models.ErrorDatabase, bickID.String(), "publish", "record "+name, err)
	}
	return nil
}
