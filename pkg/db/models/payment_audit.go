package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// PaymentAudit records every admin mutation applied to a payment. Overrides
// that fall outside the transition table are applied but flagged OutOfPolicy
// so reconciliation can review them.
type PaymentAudit struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PaymentID   uuid.UUID           `gorm:"column:payment_id;type:uuid;not null;index"`
	Action      enums.AuditAction   `gorm:"column:action;type:audit_action;not null"`
	FromStatus  enums.PaymentStatus `gorm:"column:from_status;type:payment_status;not null"`
	ToStatus    enums.PaymentStatus `gorm:"column:to_status;type:payment_status;not null"`
	ActorID     uuid.UUID           `gorm:"column:actor_id;type:uuid;not null"`
	Notes       *string             `gorm:"column:notes"`
	OutOfPolicy bool                `gorm:"column:out_of_policy;not null;default:false"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
