package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/romariotrain/bick-platform/internal/bick/domain"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

const bickColumns = `id, status, owner_id, slug, title, description, source_url,
	original_filename, duration_ms, original_duration_ms, play_count, share_count,
	created_at, updated_at, published_at`

type BickRepo struct {
	db     *sqlx.DB
	outbox *OutboxRepo
}

func NewBickRepo(db *sqlx.DB, outbox *OutboxRepo) *BickRepo {
	return &BickRepo{db: db, outbox: outbox}
}

func (r *BickRepo) Create(ctx context.Context, b *models.Bick) error {
	const q = `
		INSERT INTO bick (id, status, owner_id, slug, title, description, source_url,
			original_filename, duration_ms, original_duration_ms, play_count, share_count,
			created_at, updated_at, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.Status, b.OwnerID, b.Slug, b.Title, b.Description, b.SourceURL,
		b.OriginalFilename, b.DurationMs, b.OriginalDurationMs, b.PlayCount, b.ShareCount,
		b.CreatedAt, b.UpdatedAt, b.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("bick create: %w", err)
	}
	return nil
}

func (r *BickRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bick, error) {
	q := `SELECT ` + bickColumns + ` FROM bick WHERE id = $1`

	var b models.Bick
	if err := r.db.GetContext(ctx, &b, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("bick get by id: %w", err)
	}

	return &b, nil
}

// UpdateStatus validates the lifecycle transition and commits the row update
// together with the outbox event in one transaction. A failed transaction
// leaves the persisted status unchanged.
func (r *BickRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, fields repository.UpdateFields) (*models.Bick, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateTransition(domain.Status(current.Status), domain.Status(status)); err != nil {
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // откатится если не сделаем Commit

	q := `
		UPDATE bick
		SET status = $2,
			duration_ms = COALESCE($3::bigint, duration_ms),
			original_duration_ms = COALESCE($4::bigint, original_duration_ms),
			published_at = COALESCE($5::timestamptz, published_at),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bickColumns

	var updated models.Bick
	if err := tx.GetContext(ctx, &updated, q, id, status, fields.DurationMs, fields.OriginalDurationMs, fields.PublishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("bick update status: %w", err)
	}

	event := models.NewBickStatusChanged(id, current.Status, status)
	if err := r.outbox.Add(ctx, tx, event); err != nil {
		return nil, fmt.Errorf("add outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &updated, nil
}

// InsertAsset records a published asset. A re-run of the pipeline replaces
// the previous asset of the same type for the bick.
func (r *BickRepo) InsertAsset(ctx context.Context, a *models.BickAsset) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	const q = `
		INSERT INTO bick_asset (id, bick_id, asset_type, storage_key, cdn_url,
			mime_type, size_bytes, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (bick_id, asset_type) DO UPDATE
		SET storage_key = EXCLUDED.storage_key,
			cdn_url = EXCLUDED.cdn_url,
			mime_type = EXCLUDED.mime_type,
			size_bytes = EXCLUDED.size_bytes,
			metadata = EXCLUDED.metadata,
			created_at = EXCLUDED.created_at
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.BickID, a.AssetType, a.StorageKey, a.CDNURL,
		a.MimeType, a.SizeBytes, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("asset insert: %w", err)
	}
	return nil
}

func (r *BickRepo) ListAssets(ctx context.Context, bickID uuid.UUID) ([]models.BickAsset, error) {
	const q = `
		SELECT id, bick_id, asset_type, storage_key, cdn_url, mime_type, size_bytes, metadata, created_at
		FROM bick_asset
		WHERE bick_id = $1
		ORDER BY asset_type
	`

	var assets []models.BickAsset
	if err := r.db.SelectContext(ctx, &assets, q, bickID); err != nil {
		return nil, fmt.Errorf("asset list: %w", err)
	}

	return assets, nil
}
