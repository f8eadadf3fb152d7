package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

// CreateBookingInput is the payload accepted when a guest creates a booking.
type CreateBookingInput struct {
	BookingType     string  `json:"bookingType" validate:"required,oneof=hotel car"`
	ItemID          string  `json:"itemId" validate:"required,uuid4"`
	ItemName        string  `json:"itemName" validate:"required,max=200"`
	GuestName       string  `json:"guestName" validate:"required,max=120"`
	GuestEmail      string  `json:"guestEmail" validate:"required,email"`
	StartDate       string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	SpecialRequests *string `json:"specialRequests,omitempty" validate:"omitempty,max=2000"`
	UnitPriceCents  int64   `json:"unitPriceCents" validate:"required,gt=0"`
	Currency        string  `json:"currency" validate:"omitempty,oneof=USD EUR GBP NGN"`
}

// BookingResponse is the wire representation of a booking.
type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	BookingType     string    `json:"bookingType"`
	Status          string    `json:"status"`
	ItemID          uuid.UUID `json:"itemId"`
	ItemName        string    `json:"itemName"`
	GuestName       string    `json:"guestName"`
	GuestEmail      string    `json:"guestEmail"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	SpecialRequests *string   `json:"specialRequests,omitempty"`
	Days            int64     `json:"days"`
	UnitPriceCents  int64     `json:"unitPriceCents"`
	TotalCents      int64     `json:"totalCents"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"createdAt"`
}

// QuoteResponse previews pricing without creating a booking.
type QuoteResponse struct {
	Days           int64  `json:"days"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
	TotalCents     int64  `json:"totalCents"`
	Currency       string `json:"currency"`
}

// ToResponse maps a booking row onto its wire shape.
func ToResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		BookingType:     b.BookingType.String(),
		Status:          b.Status.String(),
		ItemID:          b.ItemID,
		ItemName:        b.ItemName,
		GuestName:       b.GuestName,
		GuestEmail:      b.GuestEmail,
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		SpecialRequests: b.SpecialRequests,
		Days:            ChargeableDays(b.StartDate, b.EndDate),
		UnitPriceCents:  b.UnitPriceCents,
		TotalCents:      b.TotalCents,
		Currency:        b.Currency.String(),
		CreatedAt:       b.CreatedAt,
	}
}

func currencyOrDefault(raw string) enums.Currency {
	if raw == "" {
		return enums.CurrencyUSD
	}
	c, err := enums.ParseCurrency(raw)
	if err != nil {
		return enums.CurrencyUSD
	}
	return c
}
