package httpapi

import (
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/bick-platform/internal/bick/models"
)

type RegisterUploadRequest struct {
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	OwnerID          *string `json:"ownerId,omitempty"`
	OriginalFilename string  `json:"originalFilename"`
}

type RegisterUploadResponse struct {
	Bick       BickResponse `json:"bick"`
	StorageKey string       `json:"storageKey"`
	UploadURL  string       `json:"uploadUrl"`
	ExpiresAt  time.Time    `json:"expiresAt"`
}

type CreateFromURLRequest struct {
	Title            string `json:"title"`
	SourceURL        string `json:"sourceUrl"`
	StorageKey       string `json:"storageKey"`
	OriginalFilename string `json:"originalFilename,omitempty"`
	ThumbnailURL     string `json:"thumbnailUrl,omitempty"`
}

type StartProcessingResponse struct {
	TaskID string `json:"taskId"`
}

type BickResponse struct {
	ID          uuid.UUID       `json:"id"`
	Status      string          `json:"status"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	SourceURL   *string         `json:"sourceUrl,omitempty"`
	DurationMs  int64           `json:"durationMs"`
	CreatedAt   time.Time       `json:"createdAt"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	Assets      []AssetResponse `json:"assets,omitempty"`
}

type AssetResponse struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
}

type ExtractRequest struct {
	URL string `json:"url"`
}

type ExtractResponse struct {
	Success      bool   `json:"success"`
	AudioURL     string `json:"audioUrl"`
	StorageKey   string `json:"storageKey"`
	DurationMs   int64  `json:"durationMs"`
	SourceTitle  string `json:"sourceTitle,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

type ExtractErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func toBickResponse(b *models.Bick, list []models.BickAsset) BickResponse {
	resp := BickResponse{
		ID:          b.ID,
		Status:      string(b.Status),
		Slug:        b.Slug,
		Title:       b.Title,
		Description: b.Description,
		SourceURL:   b.SourceURL,
		DurationMs:  b.DurationMs,
		CreatedAt:   b.CreatedAt,
		PublishedAt: b.PublishedAt,
	}
	for _, a := range list {
		resp.Assets = append(resp.Assets, AssetResponse{
			Type:      string(a.AssetType),
			URL:       a.CDNURL,
			MimeType:  a.MimeType,
			SizeBytes: a.SizeBytes,
		})
	}
	return resp
}
