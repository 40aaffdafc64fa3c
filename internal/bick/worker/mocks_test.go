package worker

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/bick-platform/internal/bick/extract"
	"github.com/romariotrain/bick-platform/internal/bick/ffmpeg"
	"github.com/romariotrain/bick-platform/internal/bick/models"
	"github.com/romariotrain/bick-platform/internal/bick/repository"
)

type RepoMock struct {
	mock.Mock
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

type StoreMock struct {
	mock.Mock
}

func (m *StoreMock) Upload(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *StoreMock) Download(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *StoreMock) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

type AcquirerMock struct {
	mock.Mock
}

func (m *AcquirerMock) Acquire(ctx context.Context, rawURL string) (*extract.Result, error) {
	args := m.Called(ctx, rawURL)
	if v := args.Get(0); v != nil {
		return v.(*extract.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type MediaToolMock struct {
	mock.Mock
}

func (m *MediaToolMock) Probe(ctx context.Context, path string) (ffmpeg.ProbeResult, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(ffmpeg.ProbeResult), args.Error(1)
}

func (m *MediaToolMock) TranscodeMP3(ctx context.Context, src, dst string) error {
	args := m.Called(ctx, src, dst)
	return args.Error(0)
}

func (m *MediaToolMock) ExtractPCM(ctx context.Context, src string) ([]byte, error) {
	args := m.Called(ctx, src)
	if v := args.Get(0); v != nil {
		return v.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MediaToolMock) RenderWaveformPNG(ctx context.Context, src, dst string) error {
	args := m.Called(ctx, src, dst)
	return args.Error(0)
}

func (m *MediaToolMock) RenderTeaser(ctx context.Context, audio, image, dst string) error {
	args := m.Called(ctx, audio, image, dst)
	return args.Error(0)
}
