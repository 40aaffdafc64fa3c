package models

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	ProcessingStatus Status = "processing"
	LiveStatus       Status = "live"
	FailedStatus     Status = "failed"
	RemovedStatus    Status = "removed"
)

// Bick is a short audio clip. Status is the only durable signal of the
// processing outcome; assets hang off the bick via BickAsset.
type Bick struct {
	ID                 uuid.UUID  `db:"id"`
	Status             Status     `db:"status"`
	OwnerID            *uuid.UUID `db:"owner_id"`
	Slug               string     `db:"slug"`
	Title              string     `db:"title"`
	Description        *string    `db:"description"`
	SourceURL          *string    `db:"source_url"`
	OriginalFilename   string     `db:"original_filename"`
	DurationMs         int64      `db:"duration_ms"`
	OriginalDurationMs int64      `db:"original_duration_ms"`
	PlayCount          int64      `db:"play_count"`
	ShareCount         int64      `db:"share_count"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
	PublishedAt        *time.Time `db:"published_at"`
}
