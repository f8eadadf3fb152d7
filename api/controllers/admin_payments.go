package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/api/middleware"
	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/api/validators"
	paymentsvc "github.com/skyhaventravel/skyhaven-backend/internal/payments"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	"github.com/skyhaventravel/skyhaven-backend/pkg/pagination"
)

const (
	filterDateLayout = "2006-01-02"
	maxSearchLen     = 100
)

// AdminListPayments returns a filtered, paginated payment listing.
func AdminListPayments(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminPaymentStats summarizes the payment ledger by status.
func AdminPaymentStats(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminExportPayments streams the filtered payment set as CSV. Export
// ignores pagination; the filters select the rows, all of them go out.
func AdminExportPayments(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", paymentsvc.ExportFilename(time.Now().UTC())))
		if err := svc.ExportCSV(r.Context(), w, filters); err != nil {
			// headers are already gone; log instead of writing a second body
			if logg != nil {
				logg.Error(r.Context(), "payment export failed", err)
			}
		}
	}
}

// AdminPaymentDetail returns a payment joined with its booking and full
// audit history.
func AdminPaymentDetail(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminVerifyPayment confirms a manually reconciled bank transfer and
// confirms its booking in the same transaction.
func AdminVerifyPayment(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// notes are optional; verify accepts an empty body
		var payload paymentsvc.VerifyInput
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		payment, err := svc.Verify(r.Context(), id, actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentsvc.ToResponse(payment))
	}
}

// AdminRefundPayment applies a full or partial refund to a completed payment.
func AdminRefundPayment(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentsvc.RefundInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Refund(r.Context(), id, actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentsvc.ToResponse(payment))
	}
}

// AdminUpdatePaymentStatus forces a payment into the given status. The
// override is always applied; transitions outside the normal lifecycle are
// flagged in the audit trail rather than rejected.
func AdminUpdatePaymentStatus(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		id, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := actorUUID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentsvc.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.UpdateStatus(r.Context(), id, actorID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentsvc.ToResponse(payment))
	}
}

func actorUUID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func parseListFilters(r *http.Request) (paymentsvc.ListFilters, error) {
	var filters paymentsvc.ListFilters
	q := r.URL.Query()

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(q.Get("method")); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid method filter")
		}
		filters.Method = &method
	}
	if raw := strings.TrimSpace(q.Get("booking_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking_id filter")
		}
		filters.BookingID = &id
	}
	filters.Search = validators.SanitizeString(q.Get("search"), maxSearchLen)

	if raw := strings.TrimSpace(q.Get("date_from")); raw != "" {
		from, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_from filter")
		}
		filters.DateFrom = &from
	}
	if raw := strings.TrimSpace(q.Get("date_to")); raw != "" {
		to, err := time.Parse(filterDateLayout, raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date_to filter")
		}
		// inclusive upper bound on the day
		end := to.Add(24*time.Hour - time.Nanosecond)
		filters.DateTo = &end
	}
	if filters.DateFrom != nil && filters.DateTo != nil && filters.DateTo.Before(*filters.DateFrom) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	if raw := strings.TrimSpace(q.Get("amount_min")); raw != "" {
		min, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || min < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "amount_min must be a non-negative integer")
		}
		filters.AmountMin = &min
	}
	if raw := strings.TrimSpace(q.Get("amount_max")); raw != "" {
		max, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || max < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "amount_max must be a non-negative integer")
		}
		filters.AmountMax = &max
	}
	if filters.AmountMin != nil && filters.AmountMax != nil && *filters.AmountMax < *filters.AmountMin {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "amount_max must not be below amount_min")
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return filters, err
	}
	perPage, err := validators.ParseQueryInt(r, "per_page", pagination.DefaultPerPage, 1, pagination.MaxPerPage)
	if err != nil {
		return filters, err
	}
	filters.Page = pagination.Params{Page: page, PerPage: perPage}
	return filters, nil
}
