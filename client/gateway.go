package client

import (
	"context"
	"fmt"
)

// PaymentAttempt is the outcome of starting a payment. Exactly one of
// RedirectURL (instant gateways) or BankTransfer (manual reconciliation) is
// populated.
type PaymentAttempt struct {
	Method       string
	Payment      *Payment
	RedirectURL  string
	BankTransfer *BankTransferFlow
}

// GatewaySelector routes a chosen payment method to the matching flow:
// instant gateways are initialized immediately and hand back a redirect URL,
// while bank transfers get a reconciliation flow that defers initialization
// until the customer uploads proof.
type GatewaySelector struct {
	api *Client
}

func NewGatewaySelector(api *Client) *GatewaySelector {
	return &GatewaySelector{api: api}
}

// Start begins a payment attempt for the booking. Retrying after a failed
// initialization is allowed; each retry creates a fresh payment row
// server-side.
func (s *GatewaySelector) Start(ctx context.Context, booking *Booking, method string) (*PaymentAttempt, error) {
	if booking == nil {
		return nil, fmt.Errorf("gateway: booking is required")
	}

	switch method {
	case "bank_transfer":
		return &PaymentAttempt{
			Method:       method,
			BankTransfer: NewBankTransferFlow(s.api, booking.ID),
		}, nil
	case "stripe", "paystack", "flutterwave", "paypal":
		result, err := s.api.InitializePayment(ctx, booking.ID, method)
		if err != nil {
			return nil, err
		}
		return &PaymentAttempt{
			Method:      method,
			Payment:     &result.Payment,
			RedirectURL: result.RedirectURL,
		}, nil
	default:
		return nil, fmt.Errorf("gateway: unsupported payment method %q", method)
	}
}
