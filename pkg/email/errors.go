package email

import "errors"

var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email config")
	ErrInvalidMessage    = errors.New("invalid email message")
	ErrDisabled          = errors.New("email delivery is not configured")
)
