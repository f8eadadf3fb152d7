package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/internal/bookings"
	dbpkg "github.com/skyhaventravel/skyhaven-backend/pkg/db"
	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	"github.com/skyhaventravel/skyhaven-backend/pkg/gateways"
	"github.com/skyhaventravel/skyhaven-backend/pkg/logger"
	"github.com/skyhaventravel/skyhaven-backend/pkg/metrics"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox"
	"github.com/skyhaventravel/skyhaven-backend/pkg/outbox/payloads"
)

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	DB       *dbpkg.Client
	Repo     Repository
	Bookings bookings.Repository
	Gateways *gateways.Registry
	Outbox   *outbox.Service
	Metrics  *metrics.PaymentMetrics
	Logger   *logger.Logger
}

// Service orchestrates the payment lifecycle from initialization through
// verification, refunds, and admin overrides.
type Service struct {
	db       *dbpkg.Client
	repo     Repository
	bookings bookings.Repository
	gateways *gateways.Registry
	outbox   *outbox.Service
	metrics  *metrics.PaymentMetrics
	logg     *logger.Logger
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, errors.New("db is required")
	}
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Bookings == nil {
		return nil, errors.New("bookings repo is required")
	}
	return &Service{
		db:       params.DB,
		repo:     params.Repo,
		bookings: params.Bookings,
		gateways: params.Gateways,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

// NewReference issues the reconciliation reference customers quote on a bank
// transfer. The suffix keeps retried initializations distinguishable.
func NewReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("SKY-%s-%06d", bookingID, time.Now().UnixMilli()%1_000_000)
}

// Initialize opens a payment for a booking. Instant methods get a provider
// redirect; bank transfers get a reconciliation reference instead.
func (s *Service) Initialize(ctx context.Context, input InitializeInput) (*InitializeResponse, error) {
	bookingID, err := uuid.Parse(input.BookingID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bookingId must be a valid uuid")
	}
	method, err := enums.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == enums.BookingStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is cancelled")
	}

	existing, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Status == enums.PaymentStatusCompleted {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "booking is already paid")
		}
	}

	payment := &models.Payment{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		Method:       method,
		Status:       enums.PaymentStatusPending,
		AmountCents:  booking.TotalCents,
		Currency:     booking.Currency,
		RefundStatus: enums.RefundStatusNone,
		GuestName:    booking.GuestName,
		ItemName:     booking.ItemName,
	}

	resp := &InitializeResponse{}

	if method.IsInstant() {
		gw, err := s.gateways.For(method)
		if err != nil {
			return nil, err
		}
		result, err := gw.Initialize(ctx, gateways.InitializeRequest{
			PaymentID:     payment.ID,
			BookingID:     booking.ID,
			Reference:     NewReference(booking.ID),
			AmountCents:   payment.AmountCents,
			Currency:      payment.Currency,
			CustomerEmail: booking.GuestEmail,
			CustomerName:  booking.GuestName,
			Description:   booking.ItemName,
		})
		if err != nil {
			s.metrics.IncInitializeFailure(method.String())
			return nil, err
		}
		payment.TransactionID = &result.TransactionID
		resp.RedirectURL = result.RedirectURL
	} else {
		ref := NewReference(booking.ID)
		payment.PaymentReference = &ref
		resp.Reference = ref
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.OutboxEventPaymentInitialized, payment.ID, nil, payloads.PaymentInitialized{
			PaymentID:   payment.ID,
			BookingID:   booking.ID,
			Method:      method.String(),
			AmountCents: payment.AmountCents,
			Currency:    payment.Currency.String(),
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "uq_payments_payment_reference") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment reference already issued")
		}
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithPaymentID(s.logg.WithBookingID(ctx, booking.ID.String()), payment.ID.String())
		s.logg.Info(logCtx, "payment initialized")
	}

	resp.Payment = ToResponse(payment)
	return resp, nil
}

// Verify confirms a manually reconciled bank transfer and confirms the
// booking in the same transaction.
func (s *Service) Verify(ctx context.Context, paymentID, actorID uuid.UUID, input VerifyInput) (*models.Payment, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveMutationDuration("verify", time.Since(start)) }()

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Method != enums.PaymentMethodBankTransfer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only bank transfers are verified manually")
	}
	if payment.Status != enums.PaymentStatusPending && payment.Status != enums.PaymentStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %q cannot be verified", payment.Status))
	}
	if payment.ProofOfPayment == nil || *payment.ProofOfPayment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no proof of payment on file")
	}

	from := payment.Status
	payment.Status = enums.PaymentStatusCompleted
	if input.Notes != "" {
		payment.Notes = &input.Notes
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, payment); err != nil {
			return err
		}
		if err := txRepo.InsertAudit(ctx, s.newAudit(payment.ID, enums.AuditActionVerify, from, payment.Status, actorID, input.Notes, false)); err != nil {
			return err
		}
		if err := s.bookings.WithTx(tx).UpdateStatus(ctx, payment.BookingID, enums.BookingStatusConfirmed); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.OutboxEventPaymentVerified, payment.ID, &actorID, payloads.PaymentVerified{
			PaymentID:  payment.ID,
			BookingID:  payment.BookingID,
			FromStatus: from.String(),
			ToStatus:   payment.Status.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(from.String(), payment.Status.String())
	if s.logg != nil {
		s.logg.Info(s.logg.WithPaymentID(ctx, payment.ID.String()), "bank transfer verified")
	}
	return payment, nil
}

// Refund applies a refund, accumulating across partial refunds. The running
// total can never exceed the captured amount.
func (s *Service) Refund(ctx context.Context, paymentID, actorID uuid.UUID, input RefundInput) (*models.Payment, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveMutationDuration("refund", time.Since(start)) }()

	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != enums.PaymentStatusCompleted && payment.Status != enums.PaymentStatusRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %q cannot be refunded", payment.Status))
	}

	newTotal := payment.RefundCents + input.AmountCents
	if newTotal > payment.AmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("refund total %d would exceed captured amount %d", newTotal, payment.AmountCents))
	}

	from := payment.Status
	payment.RefundCents = newTotal
	payment.RefundReason = &input.Reason
	if newTotal == payment.AmountCents {
		payment.RefundStatus = enums.RefundStatusFull
		payment.Status = enums.PaymentStatusRefunded
	} else {
		payment.RefundStatus = enums.RefundStatusPartial
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, payment); err != nil {
			return err
		}
		if err := txRepo.InsertAudit(ctx, s.newAudit(payment.ID, enums.AuditActionRefund, from, payment.Status, actorID, input.Reason, false)); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.OutboxEventPaymentRefunded, payment.ID, &actorID, payloads.PaymentRefunded{
			PaymentID:        payment.ID,
			BookingID:        payment.BookingID,
			RefundCents:      input.AmountCents,
			TotalRefundCents: newTotal,
			RefundStatus:     payment.RefundStatus.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	if from != payment.Status {
		s.metrics.ObserveTransition(from.String(), payment.Status.String())
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithPaymentID(ctx, payment.ID.String()), "refund applied")
	}
	return payment, nil
}

// UpdateStatus forces a payment into the requested status. Transitions
// outside the settlement flow are applied anyway but flagged out-of-policy
// in the audit trail.
func (s *Service) UpdateStatus(ctx context.Context, paymentID, actorID uuid.UUID, input UpdateStatusInput) (*models.Payment, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveMutationDuration("status_override", time.Since(start)) }()

	to, err := enums.ParsePaymentStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == to {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment is already %q", to))
	}

	from := payment.Status
	outOfPolicy := !TransitionAllowed(from, to)
	payment.Status = to
	if input.Notes != "" {
		payment.Notes = &input.Notes
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, payment); err != nil {
			return err
		}
		if err := txRepo.InsertAudit(ctx, s.newAudit(payment.ID, enums.AuditActionStatusOverride, from, to, actorID, input.Notes, outOfPolicy)); err != nil {
			return err
		}
		if to == enums.PaymentStatusCompleted {
			if err := s.bookings.WithTx(tx).UpdateStatus(ctx, payment.BookingID, enums.BookingStatusConfirmed); err != nil {
				return err
			}
		}
		return s.emit(ctx, tx, enums.OutboxEventPaymentStatusOverridden, payment.ID, &actorID, payloads.StatusOverridden{
			PaymentID:   payment.ID,
			FromStatus:  from.String(),
			ToStatus:    to.String(),
			OutOfPolicy: outOfPolicy,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(from.String(), to.String())
	if outOfPolicy {
		s.metrics.IncOutOfPolicy(from.String(), to.String())
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"payment_id": payment.ID.String(),
				"from":       from.String(),
				"to":         to.String(),
			})
			s.logg.Warn(logCtx, "status override outside settlement flow")
		}
	}
	return payment, nil
}

// MarkGatewayCompleted records a successful provider redirect return for an
// instant payment and confirms its booking.
func (s *Service) MarkGatewayCompleted(ctx context.Context, paymentID uuid.UUID, transactionID string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !payment.Method.IsInstant() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bank transfers are confirmed by an admin")
	}
	if payment.Status == enums.PaymentStatusCompleted {
		return payment, nil
	}
	if payment.Status != enums.PaymentStatusPending && payment.Status != enums.PaymentStatusProcessing {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment in status %q cannot be completed", payment.Status))
	}

	from := payment.Status
	payment.Status = enums.PaymentStatusCompleted
	if transactionID != "" {
		payment.TransactionID = &transactionID
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Update(ctx, payment); err != nil {
			return err
		}
		if err := txRepo.InsertAudit(ctx, s.newAudit(payment.ID, enums.AuditActionGatewayConfirm, from, payment.Status, uuid.Nil, "", false)); err != nil {
			return err
		}
		return s.bookings.WithTx(tx).UpdateStatus(ctx, payment.BookingID, enums.BookingStatusConfirmed)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveTransition(from.String(), payment.Status.String())
	return payment, nil
}

// List returns one page of payments for the admin table.
func (s *Service) List(ctx context.Context, filters ListFilters) (*ListResponse, error) {
	rows, page, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	out := make([]PaymentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToResponse(&rows[i]))
	}
	return &ListResponse{Payments: out, Page: page}, nil
}

// Stats summarizes the ledger for the dashboard cards.
func (s *Service) Stats(ctx context.Context) (*StatsResponse, error) {
	return s.repo.Stats(ctx)
}

// Detail joins a payment with its booking context and full audit history.
func (s *Service) Detail(ctx context.Context, paymentID uuid.UUID) (*DetailResponse, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	detail := &DetailResponse{Payment: ToResponse(payment), Audits: []AuditResponse{}}

	booking, err := s.bookings.FindByID(ctx, payment.BookingID)
	if err == nil {
		detail.Booking = &BookingSummary{
			ID:          booking.ID,
			BookingType: booking.BookingType.String(),
			Status:      booking.Status.String(),
			ItemName:    booking.ItemName,
			GuestName:   booking.GuestName,
			GuestEmail:  booking.GuestEmail,
			StartDate:   booking.StartDate,
			EndDate:     booking.EndDate,
			TotalCents:  booking.TotalCents,
			Currency:    booking.Currency.String(),
		}
	} else if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	audits, err := s.repo.ListAudits(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range audits {
		detail.Audits = append(detail.Audits, toAuditResponse(a))
	}
	return detail, nil
}

func (s *Service) newAudit(paymentID uuid.UUID, action enums.AuditAction, from, to enums.PaymentStatus, actorID uuid.UUID, notes string, outOfPolicy bool) *models.PaymentAudit {
	audit := &models.PaymentAudit{
		ID:          uuid.New(),
		PaymentID:   paymentID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		ActorID:     actorID,
		OutOfPolicy: outOfPolicy,
	}
	if notes != "" {
		audit.Notes = &notes
	}
	return audit
}

func (s *Service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, aggregateID uuid.UUID, actorID *uuid.UUID, data any) error {
	if s.outbox == nil {
		return nil
	}
	event := outbox.DomainEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Data:        data,
	}
	if actorID != nil {
		event.Actor = &outbox.ActorRef{UserID: *actorID, Role: enums.ActorRoleAdmin.String()}
	}
	return s.outbox.Emit(ctx, tx, event)
}
