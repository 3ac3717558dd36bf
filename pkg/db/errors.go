package db

import "strings"

// IsUniqueViolation reports whether err looks like a Postgres unique
// violation. A non-empty constraintName narrows the match to that constraint;
// sqlite emits a compatible "UNIQUE constraint failed" message in tests.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" && strings.Contains(msg, constraintName) {
		return true
	}
	if constraintName != "" {
		return false
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
