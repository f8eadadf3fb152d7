package enums

import "fmt"

// AuditAction labels a recorded admin payment mutation.
type AuditAction string

const (
	AuditActionVerify         AuditAction = "verify"
	AuditActionRefund         AuditAction = "refund"
	AuditActionStatusOverride AuditAction = "status_override"
	AuditActionGatewayConfirm AuditAction = "gateway_confirm"
)

var validAuditActions = []AuditAction{
	AuditActionVerify,
	AuditActionRefund,
	AuditActionStatusOverride,
	AuditActionGatewayConfirm,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
