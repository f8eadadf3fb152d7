package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConfirmPaymentReportsProviderReturn(t *testing.T) {
	paymentID := uuid.New()
	var received confirmInput
	api := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/payments/"+paymentID.String()+"/confirm", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		writeFixtureData(w, Payment{
			ID:            paymentID,
			Method:        "stripe",
			Status:        "completed",
			TransactionID: strPtr(received.TransactionID),
		})
	}))

	payment, err := api.ConfirmPayment(context.Background(), paymentID, "pi_9f3a2c")
	require.NoError(t, err)
	require.Equal(t, "completed", payment.Status)
	require.Equal(t, "pi_9f3a2c", received.TransactionID)
}

func TestMutationsCarryFreshIdempotencyKeys(t *testing.T) {
	var mu sync.Mutex
	var keys []string
	api := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			mu.Lock()
			keys = append(keys, r.Header.Get("Idempotency-Key"))
			mu.Unlock()
		} else {
			// reads must not spend idempotency keys
			if r.Header.Get("Idempotency-Key") != "" {
				w.WriteHeader(http.StatusTeapot)
				return
			}
		}
		writeFixtureData(w, Payment{ID: uuid.New(), Status: "completed"})
	}))

	ctx := context.Background()
	_, err := api.ConfirmPayment(ctx, uuid.New(), "pi_1")
	require.NoError(t, err)
	_, err = api.ConfirmPayment(ctx, uuid.New(), "pi_2")
	require.NoError(t, err)
	_, err = api.UploadProof(ctx, uuid.New(), "receipt.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	_, err = api.PaymentDetail(ctx, uuid.New())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, keys, 3)
	seen := map[string]bool{}
	for _, key := range keys {
		require.NotEmpty(t, key)
		_, err := uuid.Parse(key)
		require.NoError(t, err)
		require.False(t, seen[key], "idempotency key reused across attempts")
		seen[key] = true
	}
}

func TestFiltersQueryIncludesAmountBounds(t *testing.T) {
	min, max := int64(1000), int64(50000)
	q := Filters{Status: "completed", AmountMin: &min, AmountMax: &max}.Query()
	require.Equal(t, "completed", q.Get("status"))
	require.Equal(t, "1000", q.Get("amount_min"))
	require.Equal(t, "50000", q.Get("amount_max"))

	q = Filters{}.Query()
	require.Empty(t, q.Get("amount_min"))
	require.Empty(t, q.Get("amount_max"))
}

func strPtr(s string) *string { return &s }
