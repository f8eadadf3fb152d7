package gateways

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

func validRequest() InitializeRequest {
	return InitializeRequest{
		PaymentID:     uuid.New(),
		BookingID:     uuid.New(),
		Reference:     "SKY-abc-123456",
		AmountCents:   33600,
		Currency:      enums.CurrencyUSD,
		CustomerEmail: "guest@example.com",
		CustomerName:  "Ada Guest",
		Description:   "Harbor View Suite",
	}
}

func TestRegistryResolvesConfiguredGateways(t *testing.T) {
	pg := NewPaystackGateway(config.PaystackConfig{SecretKey: "sk", BaseURL: "https://api.paystack.co"})
	reg := NewRegistry(pg)

	gw, err := reg.For(enums.PaymentMethodPaystack)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentMethodPaystack, gw.Method())

	_, err = reg.For(enums.PaymentMethodPayPal)
	require.Error(t, err)

	require.Equal(t, []enums.PaymentMethod{enums.PaymentMethodPaystack}, reg.Available())
}

func TestInitializeRequestValidation(t *testing.T) {
	pg := NewPaystackGateway(config.PaystackConfig{SecretKey: "sk", BaseURL: "https://api.paystack.co"})

	req := validRequest()
	req.AmountCents = 0
	_, err := pg.Initialize(context.Background(), req)
	require.Error(t, err)

	req = validRequest()
	req.Reference = ""
	_, err = pg.Initialize(context.Background(), req)
	require.Error(t, err)
}

func TestPaystackInitialize(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/xyz",
				"access_code":       "xyz",
				"reference":         gotBody["reference"],
			},
		})
	}))
	defer srv.Close()

	pg := NewPaystackGateway(config.PaystackConfig{SecretKey: "sk_test_abc", BaseURL: srv.URL})
	res, err := pg.Initialize(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "Bearer sk_test_abc", gotAuth)
	require.Equal(t, float64(33600), gotBody["amount"])
	require.Equal(t, "https://checkout.paystack.com/xyz", res.RedirectURL)
	require.Equal(t, "SKY-abc-123456", res.TransactionID)
}

func TestPaystackInitializeRejectedTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "invalid key"})
	}))
	defer srv.Close()

	pg := NewPaystackGateway(config.PaystackConfig{SecretKey: "sk", BaseURL: srv.URL})
	_, err := pg.Initialize(context.Background(), validRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid key")
}

func TestFlutterwaveInitializeConvertsToMajorUnits(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]any{"link": "https://checkout.flutterwave.com/pay/abc"},
		})
	}))
	defer srv.Close()

	fg := NewFlutterwaveGateway(config.FlutterwaveConfig{SecretKey: "FLWSECK", BaseURL: srv.URL})
	res, err := fg.Initialize(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "336.00", gotBody["amount"])
	require.Equal(t, "https://checkout.flutterwave.com/pay/abc", res.RedirectURL)
}

func TestPayPalInitializeFetchesTokenOnce(t *testing.T) {
	var tokenCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenCalls++
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "cid", user)
			require.Equal(t, "csecret", pass)
			json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
		case "/v2/checkout/orders":
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{
				"id": "ORDER-1",
				"links": []map[string]string{
					{"href": "https://paypal.com/self", "rel": "self"},
					{"href": "https://paypal.com/approve/ORDER-1", "rel": "approve"},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	pp := NewPayPalGateway(config.PayPalConfig{ClientID: "cid", Secret: "csecret", BaseURL: srv.URL})

	res, err := pp.Initialize(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "ORDER-1", res.TransactionID)
	require.Equal(t, "https://paypal.com/approve/ORDER-1", res.RedirectURL)

	_, err = pp.Initialize(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, 1, tokenCalls)
}

type stubCheckout struct {
	got  *stripe.CheckoutSessionParams
	sess *stripe.CheckoutSession
}

func (s *stubCheckout) Create(_ context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	s.got = params
	return s.sess, nil
}

func TestStripeInitializeBuildsCheckoutSession(t *testing.T) {
	stub := &stubCheckout{sess: &stripe.CheckoutSession{
		ID:  "cs_test_1",
		URL: "https://checkout.stripe.com/c/cs_test_1",
	}}
	gw := &StripeGateway{
		checkout:   stub,
		successURL: "https://skyhaven.example/pay/success",
		cancelURL:  "https://skyhaven.example/pay/cancel",
	}

	res, err := gw.Initialize(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "cs_test_1", res.TransactionID)
	require.Equal(t, "https://checkout.stripe.com/c/cs_test_1", res.RedirectURL)

	require.Len(t, stub.got.LineItems, 1)
	require.Equal(t, int64(33600), *stub.got.LineItems[0].PriceData.UnitAmount)
	require.Equal(t, "SKY-abc-123456", *stub.got.ClientReferenceID)
}
