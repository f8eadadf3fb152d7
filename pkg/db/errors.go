package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique
// violation. With a constraint name it matches that specific index, which
// is how payment reference collisions are told apart from other
// duplicate-key failures.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
