package models

import "errors"

var (
	// ErrStorage marks an unreadable or unwritable persisted record.
	ErrStorage = errors.New("storage error")
	// ErrValidation marks a malformed ingress payload.
	ErrValidation = errors.New("validation error")
	// ErrDelivery marks any notifier failure.
	ErrDelivery = errors.New("delivery error")
	// ErrAuthorization marks an upload token mismatch.
	ErrAuthorization = errors.New("authorization error")
)
