package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// Booking is a hotel or car reservation, independent of whether it is paid.
type Booking struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	BookingType     enums.BookingType   `gorm:"column:booking_type;type:booking_type;not null"`
	Status          enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending'"`
	ItemID          uuid.UUID           `gorm:"column:item_id;type:uuid;not null"`
	ItemName        string              `gorm:"column:item_name;not null"`
	GuestName       string              `gorm:"column:guest_name;not null"`
	GuestEmail      string              `gorm:"column:guest_email;not null;index"`
	StartDate       time.Time           `gorm:"column:start_date;not null"`
	EndDate         time.Time           `gorm:"column:end_date;not null"`
	SpecialRequests *string             `gorm:"column:special_requests"`
	UnitPriceCents  int64               `gorm:"column:unit_price_cents;not null"`
	TotalCents      int64               `gorm:"column:total_cents;not null"`
	Currency        enums.Currency      `gorm:"column:currency;not null;default:'USD'"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
