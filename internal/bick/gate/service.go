// Package gate is the public-facing application service: it registers
// uploads, kicks off processing and answers status reads.
package gate

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/bick-platform/internal/bick/assets"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

const uploadURLTTL = time.Hour

// Enqueuer schedules processing jobs.
type Enqueuer interface {
	EnqueueProcess(ctx context.Context, job models.ProcessingJob) (string, error)
}

// Presigner issues direct-upload URLs for object storage.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error)
}

type Service struct {
	repo      repository.BickRepository
	queue     Enqueuer
	presigner Presigner
	clock     func() time.Time
	idGen     func() uuid.UUID
}

func New(repo repository.BickRepository, queue Enqueuer, presigner Presigner) *Service {
	return &Service{
		repo:      repo,
		queue:     queue,
		presigner: presigner,
		clock:     time.Now,
		idGen:     uuid.New,
	}
}

type RegisterUploadInput struct {
	OwnerID          *uuid.UUID
	Title            string
	Description      *string
	OriginalFilename string
}

type RegisterUploadResult struct {
	Bick       *models.Bick
	StorageKey string
	UploadURL  string
	ExpiresAt  time.Time
}

// RegisterUpload creates the bick row in processing state and hands the
// client a presigned URL for the original file. Processing starts only
// after the client confirms the upload via StartProcessing.
func (s *Service) RegisterUpload(ctx context.Context, in RegisterUploadInput) (*RegisterUploadResult, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.OriginalFilename) == "" {
		return nil, models.ErrInvalidArgument
	}

	now := s.clock()
	id := s.idGen()

	b := &models.Bick{
		ID:               id,
		Status:           models.ProcessingStatus,
		OwnerID:          in.OwnerID,
		Slug:             makeSlug(in.Title, id),
		Title:            in.Title,
		Description:      in.Description,
		OriginalFilename: in.OriginalFilename,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	key := assets.OriginalKey(id.String(), in.OriginalFilename)
	uploadURL, expiresAt, err := s.presigner.PresignPut(ctx, key, "application/octet-stream", uploadURLTTL)
	if err != nil {
		return nil, err
	}

	return &RegisterUploadResult{
		Bick:       b,
		StorageKey: key,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// StartProcessing enqueues the processing job once the original is in
// storage. Enqueueing is deduplicated by bick id, so repeated calls are
// safe.
func (s *Service) StartProcessing(ctx context.Context, id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		return "", models.ErrInvalidArgument
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if b.Status != models.ProcessingStatus {
		return "", models.ErrConflict
	}

	key := assets.OriginalKey(b.ID.String(), b.OriginalFilename)
	if err := s.recordOriginal(ctx, b.ID, key); err != nil {
		return "", err
	}

	return s.queue.EnqueueProcess(ctx, models.ProcessingJob{
		BickID:           b.ID.String(),
		StorageKey:       key,
		OriginalFilename: b.OriginalFilename,
	})
}

type CreateFromURLInput struct {
	OwnerID          *uuid.UUID
	Title            string
	SourceURL        string
	StorageKey       string
	OriginalFilename string
	ThumbnailURL     string
}

// CreateFromURL registers a bick whose original was already acquired
// from a remote platform and placed into storage, then enqueues
// processing right away.
func (s *Service) CreateFromURL(ctx context.Context, in CreateFromURLInput) (*models.Bick, error) {
	if strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.SourceURL) == "" ||
		strings.TrimSpace(in.StorageKey) == "" {
		return nil, models.ErrInvalidArgument
	}
	if in.OriginalFilename == "" {
		in.OriginalFilename = "audio.mp3"
	}

	now := s.clock()
	id := s.idGen()

	b := &models.Bick{
		ID:               id,
		Status:           models.ProcessingStatus,
		OwnerID:          in.OwnerID,
		Slug:             makeSlug(in.Title, id),
		Title:            in.Title,
		SourceURL:        &in.SourceURL,
		OriginalFilename: in.OriginalFilename,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	// Аудио уже лежит в хранилище под ключом сервиса извлечения,
	// этот ключ и есть источник истины для повторной обработки
	if err := s.recordOriginal(ctx, id, in.StorageKey); err != nil {
		return nil, err
	}

	// Превью с исходной платформы остаётся внешней ссылкой
	if in.ThumbnailURL != "" {
		thumb := &models.BickAsset{
			ID:        s.idGen(),
			BickID:    id,
			AssetType: models.AssetThumbnail,
			CDNURL:    in.ThumbnailURL,
			MimeType:  "image/jpeg",
			CreatedAt: now,
		}
		if err := s.repo.InsertAsset(ctx, thumb); err != nil {
			return nil, err
		}
	}

	if _, err := s.queue.EnqueueProcess(ctx, models.ProcessingJob{
		BickID:           id.String(),
		StorageKey:       in.StorageKey,
		OriginalFilename: in.OriginalFilename,
	}); err != nil {
		return nil, err
	}
	return b, nil
}

// Retry re-runs processing for a failed bick. The status transition
// itself enforces that only failed bicks can go back to processing.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*models.Bick, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}

	b, err := s.repo.UpdateStatus(ctx, id, models.ProcessingStatus, repository.UpdateFields{})
	if err != nil {
		return nil, err
	}

	key, err := s.originalStorageKey(ctx, b)
	if err != nil {
		return nil, err
	}

	if _, err := s.queue.EnqueueProcess(ctx, models.ProcessingJob{
		BickID:           b.ID.String(),
		StorageKey:       key,
		OriginalFilename: b.OriginalFilename,
	}); err != nil {
		return nil, err
	}
	return b, nil
}

// recordOriginal remembers where the original file lives. The row is
// replaced on re-runs, so the latest key always wins.
func (s *Service) recordOriginal(ctx context.Context, bickID uuid.UUID, key string) error {
	return s.repo.InsertAsset(ctx, &models.BickAsset{
		ID:         s.idGen(),
		BickID:     bickID,
		AssetType:  models.AssetOriginal,
		StorageKey: key,
		MimeType:   "application/octet-stream",
		CreatedAt:  s.clock(),
	})
}

// originalStorageKey resolves the key the original was actually stored
// under. From-url bicks keep the acquisition-time key in their original
// asset row; the filename-derived key only covers rows created before
// originals were recorded.
func (s *Service) originalStorageKey(ctx context.Context, b *models.Bick) (string, error) {
	list, err := s.repo.ListAssets(ctx, b.ID)
	if err != nil {
		return "", err
	}
	for _, a := range list {
		if a.AssetType == models.AssetOriginal {
			return a.StorageKey, nil
		}
	}
	return assets.OriginalKey(b.ID.String(), b.OriginalFilename), nil
}

// Remove takes a live bick off the platform.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) (*models.Bick, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	return s.repo.UpdateStatus(ctx, id, models.RemovedStatus, repository.UpdateFields{})
}

// GetBick returns the bick with its published assets.
func (s *Service) GetBick(ctx context.Context, id uuid.UUID) (*models.Bick, []models.BickAsset, error) {
	if id == uuid.Nil {
		return nil, nil, models.ErrInvalidArgument
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.repo.ListAssets(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return b, list, nil
}

// makeSlug builds a URL-safe slug: lowered title plus a short id suffix
// to keep slugs unique without a second round trip.
func makeSlug(title string, id uuid.UUID) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(sb.String(), "-")
	short := id.String()[:8]
	if slug == "" {
		return short
	}
	return slug + "-" + short
}
