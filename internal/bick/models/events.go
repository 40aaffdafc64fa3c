package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BickStatusChanged is emitted for every status transition of a bick.
// Delivery through the outbox is at-least-once; consumers must be idempotent.
type BickStatusChanged struct {
	eventID    uuid.UUID
	bickID     uuid.UUID
	from       Status
	to         Status
	occurredAt time.Time
}

func NewBickStatusChanged(bickID uuid.UUID, from, to Status) *BickStatusChanged {
	return &BickStatusChanged{
		eventID:    uuid.New(),
		bickID:     bickID,
		from:       from,
		to:         to,
		occurredAt: time.Now(),
	}
}

// Реализация интерфейса DomainEvent
func (e *BickStatusChanged) EventID() uuid.UUID     { return e.eventID }
func (e *BickStatusChanged) EventType() string      { return "BickStatusChanged" }
func (e *BickStatusChanged) AggregateID() uuid.UUID { return e.bickID }
func (e *BickStatusChanged) OccurredAt() time.Time  { return e.occurredAt }

func (e *BickStatusChanged) From() Status { return e.from }
func (e *BickStatusChanged) To() Status   { return e.to }

// Кастомная JSON сериализация
func (e *BickStatusChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID    uuid.UUID `json:"event_id"`
		BickID     uuid.UUID `json:"bick_id"`
		From       Status    `json:"from"`
		To         Status    `json:"to"`
		OccurredAt time.Time `json:"occurred_at"`
	}{
		EventID:    e.eventID,
		BickID:     e.bickID,
		From:       e.from,
		To:         e.to,
		OccurredAt: e.occurredAt,
	})
}
