package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/romariotrain/bick-platform/internal/bick/models"
)

// UpdateFields carries the optional columns a status transition may set.
// Nil pointers leave the stored value untouched.
type UpdateFields struct {
	DurationMs         *int64
	OriginalDurationMs *int64
	PublishedAt        *time.Time
}

// BickRepository is the narrow database surface the pipeline depends on.
// Call sites depend on this interface, never on a concrete client.
type BickRepository interface {
	Create(ctx context.Context, b *models.Bick) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bick, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, fields UpdateFields) (*models.Bick, error)
	InsertAsset(ctx context.Context, a *models.BickAsset) error
	ListAssets(ctx context.Context, bickID uuid.UUID) ([]models.BickAsset, error)
}
