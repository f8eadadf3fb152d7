package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ReconcileState is the customer-side bank-transfer progress. Verified and
// Rejected are reached only through admin action, observed via Refresh.
type ReconcileState string

const (
	StateAwaitingDetails           ReconcileState = "awaiting_details"
	StateAwaitingProof             ReconcileState = "awaiting_proof"
	StateProofUploaded             ReconcileState = "proof_uploaded"
	StateAwaitingAdminVerification ReconcileState = "awaiting_admin_verification"
	StateVerified                  ReconcileState = "verified"
	StateRejected                  ReconcileState = "rejected"
)

// NewClientReference builds the advisory reference shown to the customer for
// the wire transfer memo. The server issues the authoritative reference when
// the payment row is created; this one is display metadata only.
func NewClientReference(bookingID uuid.UUID) string {
	return fmt.Sprintf("SKY-%s-%06d", bookingID, time.Now().UnixMilli()%1_000_000)
}

// BankTransferFlow drives one booking's manual reconciliation. The flow only
// ever moves forward; a failed upload or completion call leaves the state
// where it was so the user can retry.
type BankTransferFlow struct {
	api       *Client
	bookingID uuid.UUID

	state     ReconcileState
	reference string
	accounts  []BankAccount
	payment   *Payment
	err       string
}

func NewBankTransferFlow(api *Client, bookingID uuid.UUID) *BankTransferFlow {
	return &BankTransferFlow{
		api:       api,
		bookingID: bookingID,
		state:     StateAwaitingDetails,
		reference: NewClientReference(bookingID),
	}
}

func (f *BankTransferFlow) State() ReconcileState { return f.state }

// Reference is the transfer reference to show the customer. It starts as the
// client-generated advisory value and is replaced by the server-issued one
// once the payment row exists.
func (f *BankTransferFlow) Reference() string { return f.reference }

func (f *BankTransferFlow) Accounts() []BankAccount { return f.accounts }

func (f *BankTransferFlow) Payment() *Payment { return f.payment }

// Err is the last operation failure, cleared on the next success.
func (f *BankTransferFlow) Err() string { return f.err }

// FetchDetails loads the destination bank accounts and advances to the
// proof-upload step.
func (f *BankTransferFlow) FetchDetails(ctx context.Context) error {
	accounts, err := f.api.BankAccounts(ctx)
	if err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	f.accounts = accounts
	if f.state == StateAwaitingDetails {
		f.state = StateAwaitingProof
	}
	return nil
}

// UploadProof sends the proof-of-payment artifact. The payment row is
// created lazily on the first upload attempt; a failure at either step keeps
// the state at awaiting_proof with nothing partially applied.
func (f *BankTransferFlow) UploadProof(ctx context.Context, filename, contentType string, body io.Reader) error {
	if f.state != StateAwaitingProof && f.state != StateProofUploaded {
		return fmt.Errorf("bank transfer: proof upload is not available in state %s", f.state)
	}

	if f.payment == nil {
		result, err := f.api.InitializePayment(ctx, f.bookingID, "bank_transfer")
		if err != nil {
			f.err = err.Error()
			return err
		}
		f.payment = &result.Payment
		if result.Reference != "" {
			f.reference = result.Reference
		}
	}

	payment, err := f.api.UploadProof(ctx, f.payment.ID, filename, contentType, body)
	if err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	f.payment = payment
	if payment.PaymentReference != nil && *payment.PaymentReference != "" {
		f.reference = *payment.PaymentReference
	}
	f.state = StateProofUploaded
	return nil
}

// CompletePayment marks the transfer as sent, parking the booking for admin
// verification. Without an uploaded proof it is rejected locally before any
// network call. Retrying after a failure does not require re-uploading.
func (f *BankTransferFlow) CompletePayment(ctx context.Context) error {
	if f.state != StateProofUploaded && f.state != StateAwaitingAdminVerification {
		return fmt.Errorf("bank transfer: upload proof of payment before completing")
	}

	if _, err := f.api.CompleteBookingPayment(ctx, f.bookingID); err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	f.state = StateAwaitingAdminVerification
	return nil
}

// Refresh re-reads the booking to observe the admin's decision. The flow
// never flips to verified or rejected on its own; only fetched server state
// moves it there.
func (f *BankTransferFlow) Refresh(ctx context.Context) error {
	if f.state != StateAwaitingAdminVerification {
		return nil
	}

	booking, err := f.api.BookingDetail(ctx, f.bookingID)
	if err != nil {
		f.err = err.Error()
		return err
	}
	f.err = ""
	switch booking.Status {
	case "confirmed":
		f.state = StateVerified
	case "cancelled":
		f.state = StateRejected
	}
	return nil
}
