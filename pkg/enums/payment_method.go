package enums

import "fmt"

// PaymentMethod identifies the provider chosen to settle a booking.
type PaymentMethod string

const (
	PaymentMethodStripe       PaymentMethod = "stripe"
	PaymentMethodPaystack     PaymentMethod = "paystack"
	PaymentMethodFlutterwave  PaymentMethod = "flutterwave"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodStripe,
	PaymentMethodPaystack,
	PaymentMethodFlutterwave,
	PaymentMethodPayPal,
	PaymentMethodBankTransfer,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsInstant reports whether the method settles through a redirect gateway.
// Bank transfers settle through manual reconciliation instead.
func (p PaymentMethod) IsInstant() bool {
	return p.IsValid() && p != PaymentMethodBankTransfer
}

// PaymentMethods returns every known method in declaration order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(validPaymentMethods))
	copy(out, validPaymentMethods)
	return out
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
