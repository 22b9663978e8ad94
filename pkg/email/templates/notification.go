package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// NotificationView is the data a notification email shows.
type NotificationView struct {
	Title   string
	Message string
	Type    string
	// Link is absolute by the time it reaches the template; empty hides the button.
	Link string
}

// Notification renders a minimal, inline-styled HTML email for a notification.
// Every user-provided value is escaped and links with unsafe schemes are
// replaced by templ's failed-sanitization URL.
func Notification(v NotificationView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html><body style="font-family:sans-serif;background:#f6f7f9;padding:24px">`)
		b.WriteString(`<table role="presentation" width="100%" style="max-width:560px;margin:0 auto;background:#ffffff;border-radius:8px;padding:24px">`)
		if v.Type != "" {
			b.WriteString(`<tr><td style="color:#6b7280;font-size:12px;text-transform:uppercase">`)
			b.WriteString(templ.EscapeString(v.Type))
			b.WriteString(`</td></tr>`)
		}
		b.WriteString(`<tr><td><h1 style="font-size:20px;margin:8px 0">`)
		b.WriteString(templ.EscapeString(v.Title))
		b.WriteString(`</h1></td></tr><tr><td><p style="font-size:15px;line-height:1.5;color:#111827">`)
		b.WriteString(templ.EscapeString(v.Message))
		b.WriteString(`</p></td></tr>`)
		if v.Link != "" {
			b.WriteString(`<tr><td><a href="`)
			b.WriteString(templ.EscapeString(string(templ.URL(v.Link))))
			b.WriteString(`" style="display:inline-block;margin-top:12px;padding:10px 16px;background:#2563eb;color:#ffffff;border-radius:6px;text-decoration:none">Open</a></td></tr>`)
		}
		b.WriteString(`</table></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// NotificationText is the plain-text alternative of Notification.
func NotificationText(v NotificationView) string {
	var b strings.Builder
	b.WriteString(v.Title)
	b.WriteString("\n\n")
	b.WriteString(v.Message)
	if v.Link != "" {
		b.WriteString("\n\n")
		b.WriteString(v.Link)
	}
	return b.String()
}
