package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	"github.com/skyhaventravel/skyhaven-backend/pkg/pagination"
)

// ListFilters narrows the admin payment list. Zero values mean "no filter".
type ListFilters struct {
	Status    *enums.PaymentStatus
	Method    *enums.PaymentMethod
	BookingID *uuid.UUID
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *int64
	AmountMax *int64
	Page      pagination.Params
}

// InitializeInput starts a payment for a booking.
type InitializeInput struct {
	BookingID string `json:"bookingId" validate:"required,uuid4"`
	Method    string `json:"method" validate:"required,oneof=stripe paystack flutterwave paypal bank_transfer"`
}

// ConfirmInput records the provider's transaction id on redirect return.
type ConfirmInput struct {
	TransactionID string `json:"transactionId" validate:"omitempty,max=255"`
}

// RefundInput applies a full or partial refund.
type RefundInput struct {
	AmountCents int64  `json:"amountCents" validate:"required,gt=0"`
	Reason      string `json:"reason" validate:"required,max=500"`
}

// VerifyInput confirms a manually reconciled bank transfer.
type VerifyInput struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// UpdateStatusInput forces a payment into the given status.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed failed refunded"`
	Notes  string `json:"notes" validate:"omitempty,max=2000"`
}

// PaymentResponse is the wire representation of a payment row.
type PaymentResponse struct {
	ID               uuid.UUID `json:"id"`
	BookingID        uuid.UUID `json:"bookingId"`
	Method           string    `json:"method"`
	Status           string    `json:"status"`
	AmountCents      int64     `json:"amountCents"`
	Currency         string    `json:"currency"`
	TransactionID    *string   `json:"transactionId,omitempty"`
	PaymentReference *string   `json:"paymentReference,omitempty"`
	ProofOfPayment   *string   `json:"proofOfPayment,omitempty"`
	RefundCents      int64     `json:"refundCents"`
	RefundReason     *string   `json:"refundReason,omitempty"`
	RefundStatus     string    `json:"refundStatus"`
	Notes            *string   `json:"notes,omitempty"`
	GuestName        string    `json:"guestName"`
	ItemName         string    `json:"itemName"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// InitializeResponse carries the provider redirect for instant methods, or
// the reconciliation reference for bank transfers.
type InitializeResponse struct {
	Payment     PaymentResponse `json:"payment"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// AuditResponse is one entry of a payment's mutation history.
type AuditResponse struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	ActorID     uuid.UUID `json:"actorId"`
	Notes       *string   `json:"notes,omitempty"`
	OutOfPolicy bool      `json:"outOfPolicy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DetailResponse joins a payment with its booking and audit history.
type DetailResponse struct {
	Payment PaymentResponse `json:"payment"`
	Booking *BookingSummary `json:"booking,omitempty"`
	Audits  []AuditResponse `json:"audits"`
}

// BookingSummary is the booking context shown on a payment detail view.
type BookingSummary struct {
	ID          uuid.UUID `json:"id"`
	BookingType string    `json:"bookingType"`
	Status      string    `json:"status"`
	ItemName    string    `json:"itemName"`
	GuestName   string    `json:"guestName"`
	GuestEmail  string    `json:"guestEmail"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	TotalCents  int64     `json:"totalCents"`
	Currency    string    `json:"currency"`
}

// StatusBucket aggregates payments sharing a status.
type StatusBucket struct {
	Status      string `json:"status"`
	Count       int64  `json:"count"`
	AmountCents int64  `json:"amountCents"`
}

// StatsResponse summarizes the payment ledger for the admin dashboard.
type StatsResponse struct {
	TotalCount           int64          `json:"totalCount"`
	TotalAmountCents     int64          `json:"totalAmountCents"`
	CompletedAmountCents int64          `json:"completedAmountCents"`
	RefundedAmountCents  int64          `json:"refundedAmountCents"`
	ByStatus             []StatusBucket `json:"byStatus"`
}

// ListResponse is one page of payments plus paging metadata.
type ListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Page     pagination.Page   `json:"pagination"`
}

// ToResponse maps a payment row onto its wire shape.
func ToResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		BookingID:        p.BookingID,
		Method:           p.Method.String(),
		Status:           p.Status.String(),
		AmountCents:      p.AmountCents,
		Currency:         p.Currency.String(),
		TransactionID:    p.TransactionID,
		PaymentReference: p.PaymentReference,
		ProofOfPayment:   p.ProofOfPayment,
		RefundCents:      p.RefundCents,
		RefundReason:     p.RefundReason,
		RefundStatus:     p.RefundStatus.String(),
		Notes:            p.Notes,
		GuestName:        p.GuestName,
		ItemName:         p.ItemName,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toAuditResponse(a models.PaymentAudit) AuditResponse {
	return AuditResponse{
		ID:          a.ID,
		Action:      a.Action.String(),
		FromStatus:  a.FromStatus.String(),
		ToStatus:    a.ToStatus.String(),
		ActorID:     a.ActorID,
		Notes:       a.Notes,
		OutOfPolicy: a.OutOfPolicy,
		CreatedAt:   a.CreatedAt,
	}
}
