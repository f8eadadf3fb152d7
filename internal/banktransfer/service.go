// Package banktransfer covers the manual reconciliation path: the customer
// wires money quoting a reference, uploads proof, and marks the booking as
// paid so an admin can verify the transfer against the bank statement.
package banktransfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	"github.com/skyhaventravel/skyhaven-backend/internal/payments"
	dbpkg "github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox/payloads"
)

// proof uploads are bounded; anything bigger is rejected before hitting GCS.
const MaxProofBytes = 5 << 20

var allowedProofTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// Uploader persists the proof document and returns its URL.
type Uploader interface {
	UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

// ServiceParams groups dependencies for the bank transfer service.
type ServiceParams struct {
	DB       *dbpkg.Client
	Payments payments.Repository
	Bookings bookings.Repository
	Uploader Uploader
	Outbox   *outbox.Service
	Logger   *logger.Logger
}

// Service handles proof uploads and the customer-side completion handshake.
type Service struct {
	db       *dbpkg.Client
	payments payments.Repository
	bookings bookings.Repository
	uploader Uploader
	outbox   *outbox.Service
	logg     *logger.Logger
}

// NewService builds a bank transfer service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, errors.New("db is required")
	}
	if params.Payments == nil {
		return nil, errors.New("payments repo is required")
	}
	if params.Bookings == nil {
		return nil, errors.New("bookings repo is required")
	}
	return &Service{
		db:       params.DB,
		payments: params.Payments,
		bookings: params.Bookings,
		uploader: params.Uploader,
		outbox:   params.Outbox,
		logg:     params.Logger,
	}, nil
}

// UploadProof attaches a proof document to a pending bank transfer and moves
// it into processing. Re-uploading replaces the previous document.
func (s *Service) UploadProof(ctx context.Context, paymentID uuid.UUID, contentType string, size int64, body io.Reader) (*payments.PaymentResponse, error) {
	ext, ok := allowedProofTypes[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof must be a JPEG, PNG, or PDF")
	}
	if size > MaxProofBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof file exceeds the 5MB limit")
	}

	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != enums.PaymentMethodBankTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "proof uploads apply to bank transfers only")
	}
	if payment.Status != enums.PaymentStatusPending && payment.Status != enums.PaymentStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %q cannot accept proof", payment.Status))
	}
	if s.uploader == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "proof storage is not configured")
	}

	object := path.Join("proofs", payment.BookingID.String(), payment.ID.String()+ext)
	url, err := s.uploader.UploadObject(ctx, object, contentType, io.LimitReader(body, MaxProofBytes))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing proof of payment")
	}

	payment.ProofOfPayment = &url
	payment.Status = enums.PaymentStatusProcessing

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.payments.WithTx(tx).Update(ctx, payment); err != nil {
			return err
		}
		if s.outbox == nil {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:   enums.OutboxEventPaymentProofUploaded,
			AggregateID: payment.ID,
			Data: payloads.ProofUploaded{
				PaymentID:        payment.ID,
				BookingID:        payment.BookingID,
				PaymentReference: deref(payment.PaymentReference),
				ProofURL:         url,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithPaymentID(ctx, payment.ID.String()), "proof of payment uploaded")
	}
	resp := payments.ToResponse(payment)
	return &resp, nil
}

// CompletePayment is the customer's "I have paid" signal. It parks the
// booking in pending verification until an admin verifies the transfer.
// Calling it again while already parked is a no-op so retries are safe.
func (s *Service) CompletePayment(ctx context.Context, bookingID uuid.UUID) (enums.BookingStatus, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return "", err
	}

	switch booking.Status {
	case enums.BookingStatusPendingVerification:
		return booking.Status, nil
	case enums.BookingStatusConfirmed:
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "booking is already confirmed")
	case enums.BookingStatusCancelled:
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "booking is cancelled")
	}

	rows, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	var hasTransfer, hasProof bool
	for _, p := range rows {
		if p.Method != enums.PaymentMethodBankTransfer {
			continue
		}
		if p.Status != enums.PaymentStatusPending && p.Status != enums.PaymentStatusProcessing {
			continue
		}
		hasTransfer = true
		if p.ProofOfPayment != nil && *p.ProofOfPayment != "" {
			hasProof = true
			break
		}
	}
	if !hasTransfer {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "no open bank transfer for this booking")
	}
	if !hasProof {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "no proof of payment on file")
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, enums.BookingStatusPendingVerification); err != nil {
		return "", err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithBookingID(ctx, bookingID.String()), "booking awaiting payment verification")
	}
	return enums.BookingStatusPendingVerification, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
