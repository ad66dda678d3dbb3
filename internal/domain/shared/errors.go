package shared

import (
	"errors"

	"github.com/samber/oops"
)

// Error kinds form the stable taxonomy every surface translates into.
const (
	KindNotFound     = "NOT_FOUND"
	KindInvalidInput = "INVALID_INPUT"
	KindConflict     = "CONFLICT"
	KindUnavailable  = "UNAVAILABLE"
)

// NewNotFound creates a not-found domain error. Missing locations, profiles
// and selections are normal outcomes, never crashes.
func NewNotFound(format string, args ...interface{}) error {
	return oops.Code(KindNotFound).In("domain").Errorf(format, args...)
}

// NewInvalidInput creates an invalid-input domain error
func NewInvalidInput(format string, args ...interface{}) error {
	return oops.Code(KindInvalidInput).In("domain").Errorf(format, args...)
}

// NewConflict creates a conflict domain error
func NewConflict(format string, args ...interface{}) error {
	return oops.Code(KindConflict).In("domain").Errorf(format, args...)
}

// NewUnavailable wraps an external collaborator failure or timeout
func NewUnavailable(err error, format string, args ...interface{}) error {
	return oops.Code(KindUnavailable).In("domain").Wrapf(err, format, args...)
}

// Kind extracts the taxonomy kind from an error, or empty when the error
// carries none.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var oopsErr oops.OopsError
	if errors.As(err, &oopsErr) {
		return oopsErr.Code()
	}
	return ""
}

// IsNotFound reports whether err is a not-found domain error
func IsNotFound(err error) bool {
	return Kind(err) == KindNotFound
}

// IsUnavailable reports whether err is an unavailable domain error
func IsUnavailable(err error) bool {
	return Kind(err) == KindUnavailable
}
