package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// Payment records one settlement attempt for a booking. Amount and currency
// are immutable once the row exists; TransactionID is populated only by the
// gateway path and PaymentReference only by the bank-transfer path.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BookingID        uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Method           enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	Status           enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	AmountCents      int64               `gorm:"column:amount_cents;not null"`
	Currency         enums.Currency      `gorm:"column:currency;not null"`
	TransactionID    *string             `gorm:"column:transaction_id"`
	PaymentReference *string             `gorm:"column:payment_reference;uniqueIndex"`
	ProofOfPayment   *string             `gorm:"column:proof_of_payment_url"`
	RefundCents      int64               `gorm:"column:refund_cents;not null;default:0"`
	RefundReason     *string             `gorm:"column:refund_reason"`
	RefundStatus     enums.RefundStatus  `gorm:"column:refund_status;type:refund_status;not null;default:'none'"`
	Notes            *string             `gorm:"column:notes"`

	// Denormalized display snapshot for list rendering; the Booking row stays
	// authoritative.
	GuestName string `gorm:"column:guest_name;not null"`
	ItemName  string `gorm:"column:item_name;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
