package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
)

// PaystackGateway drives Paystack's transaction-initialize API. Paystack
// amounts are already expressed in subunits, matching our cents.
type PaystackGateway struct {
	httpClient  *http.Client
	secretKey   string
	baseURL     string
	callbackURL string
}

func NewPaystackGateway(cfg config.PaystackConfig) *PaystackGateway {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil
	}
	return &PaystackGateway{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		secretKey:   secret,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		callbackURL: cfg.CallbackURL,
	}
}

func (g *PaystackGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodPaystack
}

func (g *PaystackGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	body := map[string]any{
		"email":     req.CustomerEmail,
		"amount":    req.AmountCents,
		"reference": req.Reference,
		"currency":  string(req.Currency),
	}
	if g.callbackURL != "" {
		body["callback_url"] = g.callbackURL
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paystack request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayStatusError("paystack", resp)
	}

	var out struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			AuthorizationURL string `json:"authorization_url"`
			AccessCode       string `json:"access_code"`
			Reference        string `json:"reference"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding paystack response")
	}
	if !out.Status {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paystack rejected transaction: %s", out.Message))
	}

	return &InitializeResult{
		TransactionID: out.Data.Reference,
		RedirectURL:   out.Data.AuthorizationURL,
	}, nil
}

func gatewayStatusError(provider string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	msg := fmt.Sprintf("%s returned %s", provider, resp.Status)
	if len(b) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.TrimSpace(string(b)))
	}
	return pkgerrors.New(pkgerrors.CodeDependency, msg)
}
