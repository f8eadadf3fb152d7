package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// adminFixture adds the mutating admin endpoints on top of the listing
// fixture, applying refund and status rules the way the real server does.
type adminFixture struct {
	*paymentsFixture

	mutations atomic.Int64
	// verifyLagsBehind makes verification succeed while the read side still
	// reports the old state, mimicking a stale replica.
	verifyLagsBehind atomic.Bool
}

func newAdminFixture() *adminFixture {
	return &adminFixture{paymentsFixture: newPaymentsFixture()}
}

func (f *adminFixture) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", f.paymentsFixture.handler())

	mux.HandleFunc("POST /api/v1/admin/payments/{paymentId}/verify", func(w http.ResponseWriter, r *http.Request) {
		f.mutations.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := uuid.Parse(r.PathValue("paymentId"))
		row := f.findPayment(id)
		if row == nil {
			writeFixtureError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
			return
		}
		verified := *row
		verified.Status = "completed"
		if !f.verifyLagsBehind.Load() {
			f.storePayment(verified)
		}
		writeFixtureData(w, verified)
	})

	mux.HandleFunc("POST /api/v1/admin/payments/{paymentId}/refund", func(w http.ResponseWriter, r *http.Request) {
		f.mutations.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := uuid.Parse(r.PathValue("paymentId"))
		row := f.findPayment(id)
		if row == nil {
			writeFixtureError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
			return
		}

		var body struct {
			AmountCents int64  `json:"amountCents"`
			Reason      string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeFixtureError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bad body")
			return
		}
		if body.AmountCents <= 0 || row.RefundCents+body.AmountCents > row.AmountCents {
			writeFixtureError(w, http.StatusConflict, "STATE_CONFLICT", "refund exceeds refundable balance")
			return
		}

		updated := *row
		updated.RefundCents += body.AmountCents
		updated.RefundReason = &body.Reason
		if updated.RefundCents == updated.AmountCents {
			updated.RefundStatus = "full"
			updated.Status = "refunded"
		} else {
			updated.RefundStatus = "partial"
		}
		f.storePayment(updated)
		writeFixtureData(w, updated)
	})

	mux.HandleFunc("PUT /api/v1/admin/payments/{paymentId}/status", func(w http.ResponseWriter, r *http.Request) {
		f.mutations.Add(1)
		f.mu.Lock()
		defer f.mu.Unlock()
		id, _ := uuid.Parse(r.PathValue("paymentId"))
		row := f.findPayment(id)
		if row == nil {
			writeFixtureError(w, http.StatusNotFound, "NOT_FOUND", "payment not found")
			return
		}

		var body struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeFixtureError(w, http.StatusBadRequest, "VALIDATION_ERROR", "bad body")
			return
		}
		updated := *row
		updated.Status = body.Status
		f.storePayment(updated)
		writeFixtureData(w, updated)
	})

	mux.HandleFunc("GET /api/v1/admin/payments/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,status,amount_cents\n"))
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, p := range f.payments {
			if status := r.URL.Query().Get("status"); status != "" && p.Status != status {
				continue
			}
			_, _ = w.Write([]byte(p.ID.String() + "," + p.Status + ",1000\n"))
		}
	})

	return mux
}

func newAdminWorkflow(t *testing.T) (*adminFixture, *AdminPaymentWorkflow) {
	t.Helper()
	fixture := newAdminFixture()
	api := testClient(t, fixture.handler())
	store := NewPaymentRecordStore(api)
	return fixture, NewAdminPaymentWorkflow(api, store)
}

func TestRefundExceedingAmountRejectedBeforeNetwork(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[0] // amount 1000

	err := workflow.Refund(ctx, target.ID, 1500, "duplicate charge")
	require.Error(t, err)
	require.Zero(t, fixture.mutations.Load())
}

func TestRefundEmptyReasonRejectedBeforeNetwork(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[0]

	err := workflow.Refund(ctx, target.ID, 100, "  ")
	require.Error(t, err)
	require.Zero(t, fixture.mutations.Load())
}

func TestRefundSequenceNeverExceedsAmount(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[1] // amount 2000

	require.NoError(t, workflow.Refund(ctx, target.ID, 1200, "overcharge"))
	// The remaining balance is 800; the second attempt is blocked locally.
	require.Error(t, workflow.Refund(ctx, target.ID, 1200, "overcharge"))
	require.NoError(t, workflow.Refund(ctx, target.ID, 800, "goodwill"))

	state := workflow.Store().Snapshot()
	require.NotNil(t, state.Selected)
	payment := state.Selected.Payment
	require.LessOrEqual(t, payment.RefundCents, payment.AmountCents)
	require.EqualValues(t, 2000, payment.RefundCents)
	require.Equal(t, "full", payment.RefundStatus)
	require.Equal(t, "refunded", payment.Status)
}

func TestVerifyRefetchesAuthoritativeState(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[0]
	listCallsBefore := fixture.listCalls.Load()

	require.NoError(t, workflow.Verify(ctx, target.ID, "matched wire ref"))

	state := workflow.Store().Snapshot()
	require.NotNil(t, state.Selected)
	require.Equal(t, "completed", state.Selected.Payment.Status)
	require.Greater(t, fixture.listCalls.Load(), listCallsBefore)

	var listed *Payment
	for i := range state.Payments {
		if state.Payments[i].ID == target.ID {
			listed = &state.Payments[i]
		}
	}
	require.NotNil(t, listed)
	require.Equal(t, "completed", listed.Status)
}

func TestStoreReflectsOnlyFetchedStateAfterVerify(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[0]
	fixture.verifyLagsBehind.Store(true)

	// Verification succeeds, but the read side still reports the old
	// status. The store must show the fetched state, not the request's
	// implied outcome.
	require.NoError(t, workflow.Verify(ctx, target.ID, ""))

	state := workflow.Store().Snapshot()
	require.NotNil(t, state.Selected)
	require.Equal(t, target.Status, state.Selected.Payment.Status)
}

func TestUpdateStatusResyncsStore(t *testing.T) {
	fixture, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().ListPayments(ctx, 1))
	target := fixture.payments[2]

	require.NoError(t, workflow.UpdateStatus(ctx, target.ID, "failed", "expired transfer window"))

	state := workflow.Store().Snapshot()
	require.NotNil(t, state.Selected)
	require.Equal(t, "failed", state.Selected.Payment.Status)
}

func TestExportCSVUsesCurrentFilters(t *testing.T) {
	_, workflow := newAdminWorkflow(t)
	ctx := context.Background()

	require.NoError(t, workflow.Store().SetFilters(ctx, Filters{Status: "pending"}))

	var buf bytes.Buffer
	n, err := workflow.ExportCSV(ctx, &buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 4) // header plus the three pending rows
}
