package gate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) Create(ctx context.Context, b *models.Bick) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *RepoMock) GetByID(ctx context.Context, id uuid.UUID) (*models.Bick, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Bick), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, fields repository.UpdateFields) (*models.Bick, error) {
	args := m.Called(ctx, id, status, fields)
	if v := args.Get(0); v != nil {
		return v.(*models.Bick), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) InsertAsset(ctx context.Context, a *models.BickAsset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *RepoMock) ListAssets(ctx context.Context, bickID uuid.UUID) ([]models.BickAsset, error) {
	args := m.Called(ctx, bickID)
	if v := args.Get(0); v != nil {
		return v.([]models.BickAsset), args.Error(1)
	}
	return nil, args.Error(1)
}

type QueueMock struct {
	mock.Mock
}

func (m *QueueMock) EnqueueProcess(ctx context.Context, job models.ProcessingJob) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

type PresignerMock struct {
	mock.Mock
}

func (m *PresignerMock) PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
