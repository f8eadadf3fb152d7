package payloads

import "github.com/google/uuid"

// PaymentInitialized is emitted when a payment row is created for a booking.
type PaymentInitialized struct {
	PaymentID   uuid.UUID `json:"paymentId"`
	BookingID   uuid.UUID `json:"bookingId"`
	Method      string    `json:"method"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
}

// ProofUploaded is emitted when a bank-transfer proof document is attached.
type ProofUploaded struct {
	PaymentID        uuid.UUID `json:"paymentId"`
	BookingID        uuid.UUID `json:"bookingId"`
	PaymentReference string    `json:"paymentReference"`
	ProofURL         string    `json:"proofUrl"`
}

// PaymentVerified is emitted when an admin confirms a bank transfer.
type PaymentVerified struct {
	PaymentID  uuid.UUID `json:"paymentId"`
	BookingID  uuid.UUID `json:"bookingId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
}

// PaymentRefunded is emitted on each refund, full or partial.
type PaymentRefunded struct {
	PaymentID        uuid.UUID `json:"paymentId"`
	BookingID        uuid.UUID `json:"bookingId"`
	RefundCents      int64     `json:"refundCents"`
	TotalRefundCents int64     `json:"totalRefundCents"`
	RefundStatus     string    `json:"refundStatus"`
}

// StatusOverridden is emitted when an admin forces a status change.
type StatusOverridden struct {
	PaymentID   uuid.UUID `json:"paymentId"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	OutOfPolicy bool      `json:"outOfPolicy"`
}
