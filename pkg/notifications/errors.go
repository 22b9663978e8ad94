package notifications

import "errors"

var (
	ErrValidation           = errors.New("notifications: validation failed")
	ErrNotFound             = errors.New("notifications: notification not found")
	ErrStorage              = errors.New("notifications: storage failure")
	ErrUnknownRole          = errors.New("notifications: unknown role")
	ErrConnectionRejected   = errors.New("notifications: realtime connection rejected")
	ErrDirectoryUnavailable = errors.New("notifications: recipient directory unavailable")
	ErrNoDirectory          = errors.New("notifications: recipient directory not configured")
)
