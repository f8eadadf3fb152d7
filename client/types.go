package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Payment mirrors the server's payment representation. Amount and currency
// never change after creation; refunds accumulate in RefundCents.
type Payment struct {
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

// Booking is the server's booking representation.
type Booking struct {
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

// Quote is a priced booking preview.
type Quote struct {
	Days           int64  `json:"days"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	SubtotalCents  int64  `json:"subtotalCents"`
	TotalCents     int64  `json:"totalCents"`
	Currency       string `json:"currency"`
}

// TaxCents is the portion of the quote total attributable to tax.
func (q Quote) TaxCents() int64 {
	return q.TotalCents - q.SubtotalCents
}

// Page describes the slice returned alongside a listing.
type Page struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// StatusBucket is one row of the per-status stats breakdown.
type StatusBucket struct {
	Status      string `json:"status"`
	Count       int64  `json:"count"`
	AmountCents int64  `json:"amountCents"`
}

// Stats is the global payment aggregate. It is computed server-side over the
// whole table, never derived locally from the page currently loaded.
type Stats struct {
	TotalCount           int64          `json:"totalCount"`
	TotalAmountCents     int64          `json:"totalAmountCents"`
	CompletedAmountCents int64          `json:"completedAmountCents"`
	RefundedAmountCents  int64          `json:"refundedAmountCents"`
	ByStatus             []StatusBucket `json:"byStatus"`
}

// Audit is one entry of a payment's admin audit trail.
type Audit struct {
	ID          uuid.UUID `json:"id"`
	Action      string    `json:"action"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	ActorID     uuid.UUID `json:"actorId"`
	Notes       *string   `json:"notes,omitempty"`
	OutOfPolicy bool      `json:"outOfPolicy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookingSummary is the denormalized booking view attached to a payment
// detail.
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

// PaymentDetail is the drill-down view for one payment.
type PaymentDetail struct {
	Payment Payment         `json:"payment"`
	Booking *BookingSummary `json:"booking,omitempty"`
	Audits  []Audit         `json:"audits"`
}

// InitializeResult is returned by payment initialization. RedirectURL is set
// for instant gateways; Reference is the server-issued transaction reference.
type InitializeResult struct {
	Payment     Payment `json:"payment"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
	Reference   string  `json:"reference,omitempty"`
}

// BankAccount is a destination account for manual transfers.
type BankAccount struct {
	ID            uuid.UUID `json:"id"`
	BankName      string    `json:"bankName"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
}

// Filters is a pure query description over the payment listing. The zero
// value matches everything.
type Filters struct {
	Status    string
	Method    string
	BookingID string
	Search    string
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *int64
	AmountMax *int64
}

// Query renders the filter set as listing query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Method != "" {
		q.Set("method", f.Method)
	}
	if f.BookingID != "" {
		q.Set("booking_id", f.BookingID)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.DateFrom != nil {
		q.Set("date_from", f.DateFrom.Format("2006-01-02"))
	}
	if f.DateTo != nil {
		q.Set("date_to", f.DateTo.Format("2006-01-02"))
	}
	if f.AmountMin != nil {
		q.Set("amount_min", strconv.FormatInt(*f.AmountMin, 10))
	}
	if f.AmountMax != nil {
		q.Set("amount_max", strconv.FormatInt(*f.AmountMax, 10))
	}
	return q
}

func pagedQuery(f Filters, page, perPage int) url.Values {
	q := f.Query()
	q.Set("page", strconv.Itoa(page))
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	return q
}
