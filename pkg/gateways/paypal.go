package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
)

// PayPalGateway drives PayPal's checkout orders API. Access tokens come from
// the client-credentials flow and are cached until close to expiry.
type PayPalGateway struct {
	httpClient *http.Client
	clientID   string
	secret     string
	baseURL    string
	returnURL  string
	cancelURL  string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalGateway(cfg config.PayPalConfig) *PayPalGateway {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.Secret) == "" {
		return nil
	}
	return &PayPalGateway{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		clientID:   strings.TrimSpace(cfg.ClientID),
		secret:     strings.TrimSpace(cfg.Secret),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		returnURL:  cfg.ReturnURL,
		cancelURL:  cfg.CancelURL,
	}
}

func (g *PayPalGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodPayPal
}

func (g *PayPalGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	token, err := g.token(ctx)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromInt(req.AmountCents).Div(decimal.NewFromInt(100))
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{
			{
				"reference_id": req.Reference,
				"description":  req.Description,
				"amount": map[string]string{
					"currency_code": string(req.Currency),
					"value":         amount.StringFixed(2),
				},
			},
		},
		"application_context": map[string]string{
			"return_url": g.returnURL,
			"cancel_url": g.cancelURL,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v2/checkout/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, gatewayStatusError("paypal", resp)
	}

	var out struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding paypal response")
	}

	var approve string
	for _, link := range out.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			approve = link.Href
			break
		}
	}
	if approve == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "paypal order has no approval link")
	}

	return &InitializeResult{
		TransactionID: out.ID,
		RedirectURL:   approve,
	}, nil
}

func (g *PayPalGateway) token(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.accessToken != "" && time.Until(g.tokenExpiry) > time.Minute {
		return g.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.SetBasicAuth(g.clientID, g.secret)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "paypal token request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("paypal token endpoint returned %s", resp.Status))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding paypal token response")
	}

	g.accessToken = out.AccessToken
	g.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return g.accessToken, nil
}
