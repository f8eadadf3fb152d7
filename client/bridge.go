package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	taxRate    = "0.12"
	dateLayout = "2006-01-02"
)

// BookingDraft is the locally-entered booking form. It is validated and
// priced client-side before anything goes over the wire; a server failure
// leaves the draft untouched so the user can retry.
type BookingDraft struct {
	BookingType     string
	ItemID          string
	ItemName        string
	GuestName       string
	GuestEmail      string
	StartDate       string
	EndDate         string
	SpecialRequests string
	UnitPriceCents  int64
	Currency        string
}

// Validate checks the draft without any network call. Missing required
// fields or inverted dates block submission locally.
func (d BookingDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.GuestName) == "":
		return fmt.Errorf("guest name is required")
	case strings.TrimSpace(d.GuestEmail) == "":
		return fmt.Errorf("guest email is required")
	case !strings.Contains(d.GuestEmail, "@"):
		return fmt.Errorf("guest email is invalid")
	case d.BookingType != "hotel" && d.BookingType != "car":
		return fmt.Errorf("booking type must be hotel or car")
	case strings.TrimSpace(d.ItemID) == "":
		return fmt.Errorf("item is required")
	case d.UnitPriceCents <= 0:
		return fmt.Errorf("unit price must be positive")
	}

	start, end, err := d.dates()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end date must not be before start date")
	}
	return nil
}

func (d BookingDraft) dates() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, d.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date is required as YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, d.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date is required as YYYY-MM-DD")
	}
	return start, end, nil
}

// BookingToPaymentBridge turns a validated draft into a persisted booking
// ready for payment initialization.
type BookingToPaymentBridge struct {
	api *Client
}

func NewBookingToPaymentBridge(api *Client) *BookingToPaymentBridge {
	return &BookingToPaymentBridge{api: api}
}

// Quote prices the draft deterministically: days is the ceiling of the stay
// length with a one-day minimum, tax is a flat 12%, and the total is rounded
// half-up to whole cents. The server applies the same rule, so the preview
// always matches the persisted total.
func (b *BookingToPaymentBridge) Quote(draft BookingDraft) (*Quote, error) {
	if draft.UnitPriceCents <= 0 {
		return nil, fmt.Errorf("unit price must be positive")
	}
	start, end, err := draft.dates()
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date must not be before start date")
	}

	span := end.Sub(start)
	days := int64(span / (24 * time.Hour))
	if span%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}

	subtotal := decimal.NewFromInt(draft.UnitPriceCents).Mul(decimal.NewFromInt(days))
	total := subtotal.Mul(decimal.NewFromInt(1).Add(decimal.RequireFromString(taxRate))).Round(0)

	currency := draft.Currency
	if currency == "" {
		currency = "USD"
	}
	return &Quote{
		Days:           days,
		UnitPriceCents: draft.UnitPriceCents,
		SubtotalCents:  subtotal.IntPart(),
		TotalCents:     total.IntPart(),
		Currency:       currency,
	}, nil
}

// CreateBooking validates the draft and persists it. The returned booking id
// is what GatewaySelector operates on.
func (b *BookingToPaymentBridge) CreateBooking(ctx context.Context, draft BookingDraft) (*Booking, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	input := CreateBookingInput{
		BookingType:    draft.BookingType,
		ItemID:         draft.ItemID,
		ItemName:       draft.ItemName,
		GuestName:      draft.GuestName,
		GuestEmail:     draft.GuestEmail,
		StartDate:      draft.StartDate,
		EndDate:        draft.EndDate,
		UnitPriceCents: draft.UnitPriceCents,
		Currency:       draft.Currency,
	}
	if requests := strings.TrimSpace(draft.SpecialRequests); requests != "" {
		input.SpecialRequests = &requests
	}
	return b.api.CreateBooking(ctx, input)
}
