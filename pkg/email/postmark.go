package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/postmark"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

type PostmarkSender struct {
	client *postmark.Client
	from   string
	reply  string
}

// NewPostmarkSender validates cfg and builds a Postmark-backed Sender.
// The account token is optional; only the server token is needed to send.
func NewPostmarkSender(cfg Config) (*PostmarkSender, error) {
	err := validator.Apply(
		validator.RequiredString("postmark_server_token", cfg.PostmarkServerToken),
		validator.ValidEmail("sender_email", cfg.SenderEmail),
		validator.When(cfg.SupportEmail != "", validator.ValidEmail("support_email", cfg.SupportEmail)),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	return &PostmarkSender{
		client: postmark.NewClient(cfg.PostmarkServerToken, cfg.PostmarkAccountToken),
		from:   cfg.SenderEmail,
		reply:  cfg.SupportEmail,
	}, nil
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       s.from,
		ReplyTo:    s.reply,
		To:         msg.To,
		Subject:    msg.Subject,
		Tag:        msg.Tag,
		HTMLBody:   msg.HTMLBody,
		TextBody:   msg.TextBody,
		TrackOpens: false,
		TrackLinks: "None",
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
