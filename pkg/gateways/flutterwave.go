package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
)

// FlutterwaveGateway drives Flutterwave's hosted payments API. Flutterwave
// expects amounts in major units, so cents are converted before sending.
type FlutterwaveGateway struct {
	httpClient  *http.Client
	secretKey   string
	baseURL     string
	redirectURL string
}

func NewFlutterwaveGateway(cfg config.FlutterwaveConfig) *FlutterwaveGateway {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil
	}
	return &FlutterwaveGateway{
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		secretKey:   secret,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		redirectURL: cfg.RedirectURL,
	}
}

func (g *FlutterwaveGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodFlutterwave
}

func (g *FlutterwaveGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	amount := decimal.NewFromInt(req.AmountCents).Div(decimal.NewFromInt(100))
	body := map[string]any{
		"tx_ref":       req.Reference,
		"amount":       amount.StringFixed(2),
		"currency":     string(req.Currency),
		"redirect_url": g.redirectURL,
		"customer": map[string]string{
			"email": req.CustomerEmail,
			"name":  req.CustomerName,
		},
		"customizations": map[string]string{
			"title":       "Skyhaven Travel",
			"description": req.Description,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "flutterwave request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayStatusError("flutterwave", resp)
	}

	var out struct {
		Status  string `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Link string `json:"link"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding flutterwave response")
	}
	if out.Status != "success" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("flutterwave rejected payment: %s", out.Message))
	}

	return &InitializeResult{
		TransactionID: req.Reference,
		RedirectURL:   out.Data.Link,
	}, nil
}
