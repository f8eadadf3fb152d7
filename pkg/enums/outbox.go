package enums

import "fmt"

// OutboxEventType labels domain events staged for publication.
type OutboxEventType string

const (
	OutboxEventPaymentInitialized      OutboxEventType = "payment.initialized"
	OutboxEventPaymentProofUploaded    OutboxEventType = "payment.proof_uploaded"
	OutboxEventPaymentVerified         OutboxEventType = "payment.verified"
	OutboxEventPaymentRefunded         OutboxEventType = "payment.refunded"
	OutboxEventPaymentStatusOverridden OutboxEventType = "payment.status_overridden"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventPaymentInitialized,
	OutboxEventPaymentProofUploaded,
	OutboxEventPaymentVerified,
	OutboxEventPaymentRefunded,
	OutboxEventPaymentStatusOverridden,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxStatus tracks publication progress of an outbox row.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// String implements fmt.Stringer.
func (o OutboxStatus) String() string {
	return string(o)
}
