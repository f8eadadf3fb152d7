package payments

import "github.com/skyhaventravel/skyhaven-backend/pkg/enums"

// allowedTransitions is the expected settlement flow. Admin overrides may
// step outside it; those land in the audit trail flagged out-of-policy.
var allowedTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending:    {enums.PaymentStatusProcessing, enums.PaymentStatusCompleted, enums.PaymentStatusFailed},
	enums.PaymentStatusProcessing: {enums.PaymentStatusCompleted, enums.PaymentStatusFailed},
	enums.PaymentStatusCompleted:  {enums.PaymentStatusRefunded},
	enums.PaymentStatusFailed:     {},
	enums.PaymentStatusRefunded:   {},
}

// TransitionAllowed reports whether from->to follows the settlement flow.
func TransitionAllowed(from, to enums.PaymentStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}
