package gateways

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
	pkgerrors "github.com/skyhaventravel/skyhaven-backend/pkg/errors"
	pkgstripe "github.com/skyhaventravel/skyhaven-backend/pkg/stripe"
)

// checkoutCreator is the subset of Stripe's checkout API the gateway needs,
// extracted so tests can stub session creation.
type checkoutCreator interface {
	Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeCheckout struct{}

func (stripeCheckout) Create(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return session.New(params)
}

type StripeGateway struct {
	checkout   checkoutCreator
	successURL string
	cancelURL  string
}

func NewStripeGateway(client *pkgstripe.Client, cfg config.StripeConfig) *StripeGateway {
	if client == nil {
		return nil
	}
	return &StripeGateway{
		checkout:   stripeCheckout{},
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
	}
}

func (g *StripeGateway) Method() enums.PaymentMethod {
	return enums.PaymentMethodStripe
}

func (g *StripeGateway) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		CustomerEmail:     stripe.String(req.CustomerEmail),
		ClientReferenceID: stripe.String(req.Reference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(req.Currency)),
					UnitAmount: stripe.Int64(req.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
			},
		},
	}

	sess, err := g.checkout.Create(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe checkout session failed")
	}

	return &InitializeResult{
		TransactionID: sess.ID,
		RedirectURL:   sess.URL,
	}, nil
}
