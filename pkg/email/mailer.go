package email

import (
	"context"
	"errors"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// Sender delivers a single rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a rendered email ready for delivery.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

func (m Message) Validate() error {
	err := validator.Apply(
		validator.RequiredString("to", m.To),
		validator.When(m.To != "", validator.ValidEmail("to", m.To)),
		validator.RequiredString("subject", m.Subject),
		validator.MaxLenString("subject", m.Subject, 998),
		validator.RequiredString("html_body", m.HTMLBody),
	)
	if err != nil {
		return errors.Join(ErrInvalidMessage, err)
	}
	return nil
}

// New picks a transport from cfg. It returns ErrDisabled when neither
// Postmark nor a dev directory is configured; callers treat that as
// "email off" rather than a startup failure.
func New(cfg Config) (Sender, error) {
	switch {
	case cfg.PostmarkServerToken != "":
		return NewPostmarkSender(cfg)
	case cfg.DevDir != "":
		return NewDevSender(cfg.DevDir), nil
	default:
		return nil, ErrDisabled
	}
}
