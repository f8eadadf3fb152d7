// Package gateways abstracts the hosted-checkout providers a payment can be
// initialized against. Each provider returns a redirect URL the customer
// completes payment on; settlement lands back through status polling or
// admin confirmation.
package gateways

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
)

// InitializeRequest carries everything a provider needs to open a checkout.
type InitializeRequest struct {
	PaymentID     uuid.UUID
	BookingID     uuid.UUID
	Reference     string
	AmountCents   int64
	Currency      enums.Currency
	CustomerEmail string
	CustomerName  string
	Description   string
}

// InitializeResult is the provider-issued handle for a started checkout.
type InitializeResult struct {
	TransactionID string
	RedirectURL   string
}

type Gateway interface {
	Method() enums.PaymentMethod
	Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error)
}

// Registry resolves the gateway for an instant payment method.
type Registry struct {
	gateways map[enums.PaymentMethod]Gateway
}

func NewRegistry(gws ...Gateway) *Registry {
	r := &Registry{gateways: make(map[enums.PaymentMethod]Gateway, len(gws))}
	for _, gw := range gws {
		if gw == nil {
			continue
		}
		r.gateways[gw.Method()] = gw
	}
	return r
}

func (r *Registry) For(method enums.PaymentMethod) (Gateway, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no payment gateways configured")
	}
	gw, ok := r.gateways[method]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("payment method %q is not available", method))
	}
	return gw, nil
}

// Available lists the instant methods with a configured gateway.
func (r *Registry) Available() []enums.PaymentMethod {
	if r == nil {
		return nil
	}
	out := make([]enums.PaymentMethod, 0, len(r.gateways))
	for _, m := range enums.PaymentMethods() {
		if _, ok := r.gateways[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (req InitializeRequest) validate() error {
	if req.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if req.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference is required")
	}
	if req.CustomerEmail == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if !req.Currency.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency")
	}
	return nil
}
