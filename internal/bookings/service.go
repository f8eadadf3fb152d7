package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

// ServiceParams groups dependencies for the booking service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
}

// Service orchestrates booking creation and pricing.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds a booking service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	return &Service{repo: params.Repo, logg: params.Logger}, nil
}

// Create validates the stay window, prices it server-side, and persists the
// booking in pending state.
func (s *Service) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	start, end, err := parseStay(input.StartDate, input.EndDate)
	if err != nil {
		return nil, err
	}

	bookingType, err := enums.ParseBookingType(input.BookingType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	itemID, err := uuid.Parse(input.ItemID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "itemId must be a valid uuid")
	}

	_, totalCents := Quote(input.UnitPriceCents, start, end)

	booking := &models.Booking{
		ID:              uuid.New(),
		BookingType:     bookingType,
		Status:          enums.BookingStatusPending,
		ItemID:          itemID,
		ItemName:        input.ItemName,
		GuestName:       input.GuestName,
		GuestEmail:      input.GuestEmail,
		StartDate:       start,
		EndDate:         end,
		SpecialRequests: input.SpecialRequests,
		UnitPriceCents:  input.UnitPriceCents,
		TotalCents:      totalCents,
		Currency:        currencyOrDefault(input.Currency),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithBookingID(ctx, booking.ID.String()), "booking created")
	}
	return booking, nil
}

// PreviewQuote prices a stay without persisting anything.
func (s *Service) PreviewQuote(ctx context.Context, unitPriceCents int64, startDate, endDate, currency string) (*QuoteResponse, error) {
	if unitPriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unitPriceCents must be positive")
	}
	start, end, err := parseStay(startDate, endDate)
	if err != nil {
		return nil, err
	}
	days, totalCents := Quote(unitPriceCents, start, end)
	return &QuoteResponse{
		Days:           days,
		UnitPriceCents: unitPriceCents,
		SubtotalCents:  unitPriceCents * days,
		TotalCents:     totalCents,
		Currency:       currencyOrDefault(currency).String(),
	}, nil
}

// Get returns a booking by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func parseStay(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "endDate must not be before startDate")
	}
	return start, end, nil
}
