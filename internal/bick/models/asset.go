package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetOriginal     AssetType = "original"
	AssetAudio        AssetType = "audio"
	AssetWaveformJSON AssetType = "waveform_json"
	AssetOGImage      AssetType = "og_image"
	AssetTeaserMP4    AssetType = "teaser_mp4"
	AssetThumbnail    AssetType = "thumbnail"
)

// BickAsset is a derived or original file owned by exactly one bick.
// Rows are never mutated in place, only replaced when the pipeline re-runs.
type BickAsset struct {
	ID         uuid.UUID `db:"id"`
	BickID     uuid.UUID `db:"bick_id"`
	AssetType  AssetType `db:"asset_type"`
	StorageKey string    `db:"storage_key"`
	CDNURL     string    `db:"cdn_url"`
	MimeType   string    `db:"mime_type"`
	SizeBytes  int64     `db:"size_bytes"`
	Metadata   Metadata  `db:"metadata"`
	CreatedAt  time.Time `db:"created_at"`
}

// Metadata is an opaque key-value bag stored as JSONB.
type Metadata map[string]string

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("metadata scan: unsupported type %T", src)
	}
}
