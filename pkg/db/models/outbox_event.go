package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// OutboxEvent stages a domain event for asynchronous publication.
type OutboxEvent struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	EventType   enums.OutboxEventType `gorm:"column:event_type;not null"`
	AggregateID uuid.UUID             `gorm:"column:aggregate_id;type:uuid;not null;index"`
	Payload     json.RawMessage       `gorm:"column:payload;type:jsonb;not null"`
	Status      enums.OutboxStatus    `gorm:"column:status;not null;default:'pending';index"`
	Attempts    int                   `gorm:"column:attempts;not null;default:0"`
	LastError   *string               `gorm:"column:last_error"`
	PublishedAt *time.Time            `gorm:"column:published_at"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}
