// Package client is the Go SDK for the Skyhaven payment API. It wraps the
// booking, payment, bank-transfer and admin endpoints, and layers a local
// record store plus workflow helpers on top of them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// APIError is a decoded server error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Options configures an API client.
type Options struct {
	// BaseURL is the server root, e.g. https://api.skyhaventravel.com.
	BaseURL string
	// Token is a bearer token attached to every request. Only admin
	// endpoints require one.
	Token string
	// Timeout bounds each request; defaults to 15s.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a thin, stateless HTTP client. Stateful concerns (the record
// store, reconciliation flows) live in the types built on top of it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("client: base URL is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    base,
		token:      opts.Token,
		httpClient: httpClient,
	}, nil
}

// WithToken returns a copy of the client authenticated with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	// Mutations get a fresh key per attempt so a caller's retry is a new
	// request, while transport-level replays of one attempt dedupe.
	if method == http.MethodPost || method == http.MethodPut {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	return c.httpClient.Do(req)
}

// call issues the request and decodes the success envelope's data field into
// out. Non-2xx responses are returned as *APIError.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("client: decoding response: %w", err)
	}
	return json.Unmarshal(envelope.Data, out)
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: "UNKNOWN"}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	} else {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// CreateBookingInput is the booking creation payload. Dates are calendar
// days in YYYY-MM-DD form.
type CreateBookingInput struct {
	BookingType     string  `json:"bookingType"`
	ItemID          string  `json:"itemId"`
	ItemName        string  `json:"itemName"`
	GuestName       string  `json:"guestName"`
	GuestEmail      string  `json:"guestEmail"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
	UnitPriceCents  int64   `json:"unitPriceCents"`
	Currency        string  `json:"currency,omitempty"`
}

func (c *Client) CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error) {
	var booking Booking
	if err := c.call(ctx, http.MethodPost, "/api/v1/bookings", nil, input, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *Client) BookingDetail(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := c.call(ctx, http.MethodGet, "/api/v1/bookings/"+bookingID.String(), nil, nil, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

type quoteInput struct {
	UnitPriceCents int64  `json:"unitPriceCents"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	Currency       string `json:"currency,omitempty"`
}

// BookingQuote asks the server to price a stay. LocalQuote computes the same
// figure without a network round trip.
func (c *Client) BookingQuote(ctx context.Context, unitPriceCents int64, startDate, endDate, currency string) (*Quote, error) {
	var quote Quote
	input := quoteInput{UnitPriceCents: unitPriceCents, StartDate: startDate, EndDate: endDate, Currency: currency}
	if err := c.call(ctx, http.MethodPost, "/api/v1/bookings/quote", nil, input, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

type initializeInput struct {
	BookingID string `json:"bookingId"`
	Method    string `json:"method"`
}

func (c *Client) InitializePayment(ctx context.Context, bookingID uuid.UUID, method string) (*InitializeResult, error) {
	var result InitializeResult
	input := initializeInput{BookingID: bookingID.String(), Method: method}
	if err := c.call(ctx, http.MethodPost, "/api/v1/payments/initialize", nil, input, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type confirmInput struct {
	TransactionID string `json:"transactionId,omitempty"`
}

// ConfirmPayment reports the provider redirect return for an instant
// payment. Bank transfers are settled by an admin instead.
func (c *Client) ConfirmPayment(ctx context.Context, paymentID uuid.UUID, transactionID string) (*Payment, error) {
	var payment Payment
	input := confirmInput{TransactionID: transactionID}
	if err := c.call(ctx, http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/confirm", nil, input, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) PaymentMethods(ctx context.Context) ([]string, error) {
	var out struct {
		Methods []string `json:"methods"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/payments/methods", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Methods, nil
}

func (c *Client) BankAccounts(ctx context.Context) ([]BankAccount, error) {
	var out struct {
		Accounts []BankAccount `json:"accounts"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/bank-accounts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// UploadProof sends a proof-of-payment artifact as a multipart upload. The
// server enforces the content-type and size limits; size must be the exact
// byte length of body.
func (c *Client) UploadProof(ctx context.Context, paymentID uuid.UUID, filename, contentType string, body io.Reader) (*Payment, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/payments/"+paymentID.String()+"/proof", nil, &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp)
	}
	var envelope struct {
		Data Payment `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("client: decoding response: %w", err)
	}
	return &envelope.Data, nil
}

// CompletePaymentResult reports the booking status after the customer marks
// a bank transfer as sent.
type CompletePaymentResult struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func (c *Client) CompleteBookingPayment(ctx context.Context, bookingID uuid.UUID) (*CompletePaymentResult, error) {
	var result CompletePaymentResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/bookings/"+bookingID.String()+"/complete-payment", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PaymentPage is one page of the admin listing.
type PaymentPage struct {
	Payments []Payment `json:"payments"`
	Page     Page      `json:"pagination"`
}

func (c *Client) ListPayments(ctx context.Context, filters Filters, page, perPage int) (*PaymentPage, error) {
	var out PaymentPage
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/payments/", pagedQuery(filters, page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PaymentStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/payments/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) PaymentDetail(ctx context.Context, paymentID uuid.UUID) (*PaymentDetail, error) {
	var detail PaymentDetail
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/payments/"+paymentID.String(), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

type verifyInput struct {
	Notes string `json:"notes,omitempty"`
}

func (c *Client) VerifyPayment(ctx context.Context, paymentID uuid.UUID, notes string) (*Payment, error) {
	var payment Payment
	var payload any
	if notes != "" {
		payload = verifyInput{Notes: notes}
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/admin/payments/"+paymentID.String()+"/verify", nil, payload, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

type refundInput struct {
	AmountCents int64  `json:"amountCents"`
	Reason      string `json:"reason"`
}

func (c *Client) RefundPayment(ctx context.Context, paymentID uuid.UUID, amountCents int64, reason string) (*Payment, error) {
	var payment Payment
	input := refundInput{AmountCents: amountCents, Reason: reason}
	if err := c.call(ctx, http.MethodPost, "/api/v1/admin/payments/"+paymentID.String()+"/refund", nil, input, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

type statusInput struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

func (c *Client) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status, notes string) (*Payment, error) {
	var payment Payment
	input := statusInput{Status: status, Notes: notes}
	if err := c.call(ctx, http.MethodPut, "/api/v1/admin/payments/"+paymentID.String()+"/status", nil, input, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ExportPayments streams the filtered CSV export into w and returns the byte
// count written.
func (c *Client) ExportPayments(ctx context.Context, filters Filters, w io.Writer) (int64, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/admin/payments/export", filters.Query(), nil, "")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, decodeAPIError(resp)
	}
	return io.Copy(w, resp.Body)
}
