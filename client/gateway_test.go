package client

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGatewaySelectorInstantMethodRedirects(t *testing.T) {
	bookingID := uuid.New()
	var received initializeInput
	api := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/payments/initialize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusCreated)
		writeFixtureData(w, InitializeResult{
			Payment:     Payment{ID: uuid.New(), BookingID: bookingID, Method: "stripe", Status: "pending"},
			RedirectURL: "https://checkout.stripe.com/pay/cs_test",
		})
	}))
	selector := NewGatewaySelector(api)

	attempt, err := selector.Start(context.Background(), &Booking{ID: bookingID}, "stripe")
	require.NoError(t, err)
	require.Equal(t, "https://checkout.stripe.com/pay/cs_test", attempt.RedirectURL)
	require.Nil(t, attempt.BankTransfer)
	require.Equal(t, bookingID.String(), received.BookingID)
	require.Equal(t, "stripe", received.Method)
}

func TestGatewaySelectorBankTransferDefersInitialization(t *testing.T) {
	var calls atomic.Int64
	api := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	selector := NewGatewaySelector(api)

	attempt, err := selector.Start(context.Background(), &Booking{ID: uuid.New()}, "bank_transfer")
	require.NoError(t, err)
	require.NotNil(t, attempt.BankTransfer)
	require.Empty(t, attempt.RedirectURL)
	require.Equal(t, StateAwaitingDetails, attempt.BankTransfer.State())
	require.Zero(t, calls.Load())
}

func TestGatewaySelectorRejectsUnknownMethod(t *testing.T) {
	selector := NewGatewaySelector(nil)
	_, err := selector.Start(context.Background(), &Booking{ID: uuid.New()}, "cash")
	require.Error(t, err)
}
