package client

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// AdminPaymentWorkflow layers the mutating admin operations on top of the
// record store. Every mutation follows the same discipline: request, then on
// success re-fetch the detail and the current listing page. The store never
// shows a status synthesized from request parameters; only fetched server
// state is visible.
type AdminPaymentWorkflow struct {
	api   *Client
	store *PaymentRecordStore
}

func NewAdminPaymentWorkflow(api *Client, store *PaymentRecordStore) *AdminPaymentWorkflow {
	return &AdminPaymentWorkflow{api: api, store: store}
}

// Store exposes the backing record store for views.
func (w *AdminPaymentWorkflow) Store() *PaymentRecordStore { return w.store }

func (w *AdminPaymentWorkflow) resync(ctx context.Context, paymentID uuid.UUID) error {
	if err := w.store.FetchDetail(ctx, paymentID); err != nil {
		return err
	}
	return w.store.ListPayments(ctx, w.store.CurrentPage())
}

// Verify requests server-side verification of a bank transfer, then pulls
// the authoritative post-verification state.
func (w *AdminPaymentWorkflow) Verify(ctx context.Context, paymentID uuid.UUID, notes string) error {
	if _, err := w.api.VerifyPayment(ctx, paymentID, notes); err != nil {
		return err
	}
	return w.resync(ctx, paymentID)
}

// Refund requests a partial or full refund. The amount bound and the reason
// requirement are checked locally first; a request that would fail them
// never reaches the network.
func (w *AdminPaymentWorkflow) Refund(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) error {
	if amountCents <= 0 {
		return fmt.Errorf("refund amount must be positive")
	}
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("refund reason is required")
	}
	if known := w.knownPayment(paymentID); known != nil {
		if amountCents > known.AmountCents-known.RefundCents {
			return fmt.Errorf("refund amount %d exceeds refundable balance %d", amountCents, known.AmountCents-known.RefundCents)
		}
	}

	if _, err := w.api.RefundPayment(ctx, paymentID, amountCents, reason); err != nil {
		return err
	}
	return w.resync(ctx, paymentID)
}

// UpdateStatus requests an admin status override. Any target status is
// accepted here; the server applies its transition table and audits
// out-of-policy overrides.
func (w *AdminPaymentWorkflow) UpdateStatus(ctx context.Context, paymentID uuid.UUID, status, notes string) error {
	if strings.TrimSpace(status) == "" {
		return fmt.Errorf("status is required")
	}
	if _, err := w.api.UpdatePaymentStatus(ctx, paymentID, status, notes); err != nil {
		return err
	}
	return w.resync(ctx, paymentID)
}

// ExportCSV downloads the CSV rendering of the store's current filter set
// into out. It reads nothing into the store.
func (w *AdminPaymentWorkflow) ExportCSV(ctx context.Context, out io.Writer) (int64, error) {
	return w.api.ExportPayments(ctx, w.store.Snapshot().Filters, out)
}

// knownPayment looks the payment up in the local projection, preferring the
// selected detail over the listed row.
func (w *AdminPaymentWorkflow) knownPayment(paymentID uuid.UUID) *Payment {
	state := w.store.Snapshot()
	if state.Selected != nil && state.Selected.Payment.ID == paymentID {
		return &state.Selected.Payment
	}
	for i := range state.Payments {
		if state.Payments[i].ID == paymentID {
			return &state.Payments[i]
		}
	}
	return nil
}
