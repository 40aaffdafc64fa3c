package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/bick-platform/internal/bick/domain"
	"github.com/romariotrain/bick-platform/internal/bick/models"
)

// MemoryRepository is an in-memory BickRepository for tests and local runs.
type MemoryRepository struct {
	mu     sync.RWMutex
	bicks  map[uuid.UUID]*models.Bick
	assets map[uuid.UUID][]models.BickAsset
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		bicks:  make(map[uuid.UUID]*models.Bick),
		assets: make(map[uuid.UUID][]models.BickAsset),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, b *models.Bick) error {
	if b == nil || b.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bicks[b.ID]; exists {
		return models.ErrConflict
	}

	// Защитная копия, чтобы внешняя сторона не могла мутировать хранимый объект
	cp := *b
	r.bicks[b.ID] = &cp

	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bick, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bicks[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, fields UpdateFields) (*models.Bick, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bicks[id]
	if !ok {
		return nil, models.ErrNotFound
	}

	if err := domain.ValidateTransition(domain.Status(b.Status), domain.Status(status)); err != nil {
		return nil, err
	}

	b.Status = status
	if fields.DurationMs != nil {
		b.DurationMs = *fields.DurationMs
	}
	if fields.OriginalDurationMs != nil {
		b.OriginalDurationMs = *fields.OriginalDurationMs
	}
	if fields.PublishedAt != nil {
		b.PublishedAt = fields.PublishedAt
	}
	b.UpdatedAt = time.Now()

	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) InsertAsset(ctx context.Context, a *models.BickAsset) error {
	if a == nil || a.BickID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-running the pipeline replaces the asset of the same type.
	existing := r.assets[a.BickID]
	kept := existing[:0]
	for _, old := range existing {
		if old.AssetType != a.AssetType {
			kept = append(kept, old)
		}
	}
	r.assets[a.BickID] = append(kept, *a)

	return nil
}

func (r *MemoryRepository) ListAssets(ctx context.Context, bickID uuid.UUID) ([]models.BickAsset, error) {
	if bickID == uuid.Nil {
		return nil, models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.BickAsset, len(r.assets[bickID]))
	copy(out, r.assets[bickID])
	return out, nil
}
