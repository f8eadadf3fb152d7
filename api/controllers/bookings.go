package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/api/validators"
	"github.com/skyhaventravel/skyhaven-backend/internal/banktransfer"
	bookingsvc "github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

// CreateBooking creates a pending booking with server-side pricing. The
// quoted total is computed here, never taken from the client.
func CreateBooking(svc *bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload bookingsvc.CreateBookingInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bookingsvc.ToResponse(booking))
	}
}

// BookingDetail returns a single booking by id.
func BookingDetail(svc *bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		booking, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bookingsvc.ToResponse(booking))
	}
}

type quoteRequest struct {
	UnitPriceCents int64  `json:"unitPriceCents" validate:"required,gt=0"`
	StartDate      string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate        string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Currency       string `json:"currency" validate:"omitempty,oneof=USD EUR GBP NGN"`
}

// BookingQuote previews pricing for a stay without persisting anything.
func BookingQuote(svc *bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.PreviewQuote(r.Context(), payload.UnitPriceCents, payload.StartDate, payload.EndDate, payload.Currency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CompleteBookingPayment parks a bank-transfer booking while an admin
// reconciles the transfer. Safe to retry.
func CompleteBookingPayment(svc *banktransfer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank transfer service unavailable"))
			return
		}

		id, err := pathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.CompletePayment(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"bookingId": id.String(), "status": status.String()})
	}
}

func pathUUID(r *http.Request, key string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, key+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return id, nil
}
