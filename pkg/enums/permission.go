package enums

// Permission gates individual admin payment operations. The server re-checks
// permissions on every mutating call; clients may only use them to hide
// controls.
type Permission string

const (
	PermissionPaymentsView     Permission = "payments:view"
	PermissionPaymentsVerify   Permission = "payments:verify"
	PermissionPaymentsRefund   Permission = "payments:refund"
	PermissionPaymentsOverride Permission = "payments:override"
	PermissionPaymentsExport   Permission = "payments:export"
)

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}
