package controllers

import (
	"net/http"

	"github.com/skyhaventravel/skyhaven-backend/api/responses"
	"github.com/skyhaventravel/skyhaven-backend/api/validators"
	"github.com/skyhaventravel/skyhaven-backend/internal/bankaccounts"
	"github.com/skyhaventravel/skyhaven-backend/internal/banktransfer"
	paymentsvc "github.com/skyhaventravel/skyhaven-backend/internal/payments"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/gateways"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
)

// InitializePayment starts a payment for a booking. Instant methods return
// a provider redirect; bank transfers return a reconciliation reference.
func InitializePayment(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		var payload paymentsvc.InitializeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initialize(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ConfirmPayment records a successful provider redirect return for an
// instant payment and confirms its booking.
func ConfirmPayment(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentsvc.ConfirmInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.MarkGatewayCompleted(r.Context(), paymentID, payload.TransactionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, paymentsvc.ToResponse(payment))
	}
}

// PaymentMethods lists the payment methods the deployment can actually
// serve, in a stable order.
func PaymentMethods(registry *gateways.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methods := []string{}
		if registry != nil {
			for _, m := range registry.Available() {
				methods = append(methods, m.String())
			}
		}
		// bank transfer needs no gateway
		methods = append(methods, enums.PaymentMethodBankTransfer.String())
		responses.WriteSuccess(w, map[string]any{"methods": methods})
	}
}

// UploadPaymentProof accepts a multipart proof-of-payment file for a
// pending bank transfer.
func UploadPaymentProof(svc *banktransfer.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank transfer service unavailable"))
			return
		}

		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(banktransfer.MaxProofBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "proof file is required"))
			return
		}
		defer file.Close()

		payment, err := svc.UploadProof(r.Context(), paymentID, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// BankAccounts lists the active accounts guests can pay bank transfers into.
func BankAccounts(svc *bankaccounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bank accounts service unavailable"))
			return
		}

		accounts, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"accounts": accounts})
	}
}
