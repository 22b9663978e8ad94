package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// DevSender writes each message to dir as an .html body plus a .json
// envelope so local runs can inspect notification emails without a provider.
type DevSender struct {
	dir string
	seq atomic.Uint64
}

func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

type devEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Tag       string    `json:"tag,omitempty"`
	TextBody  string    `json:"text_body,omitempty"`
}

func (d *DevSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	now := time.Now().UTC()
	label := msg.Tag
	if label == "" {
		label = msg.Subject
	}
	base := fmt.Sprintf("%s_%04d_%s", now.Format("20060102T150405"), d.seq.Add(1), slug(label))

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(msg.HTMLBody), 0o644); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}

	data, err := json.MarshalIndent(devEnvelope{
		Timestamp: now,
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
		TextBody:  msg.TextBody,
	}, "", "  ")
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	return nil
}

// slug keeps [a-z0-9-_.], maps spaces to "_" and caps the length at 64.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
		if b.Len() >= 64 {
			break
		}
	}
	if b.Len() == 0 {
		return "email"
	}
	return b.String()
}
