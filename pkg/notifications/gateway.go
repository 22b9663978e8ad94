package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/email"
	"github.com/dmitrymomot/notifykit/pkg/email/templates"
	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Gateway is the single entry point for raising and querying notifications.
// It persists first and only then pushes to live connections.
type Gateway struct {
	storage     Storage
	broadcaster Broadcaster
	directory   RecipientDirectory
	mailer      email.Sender
	emailLimit  *rate.Limiter
	linkBase    string
	concurrency int
	logger      *slog.Logger
}

type GatewayOption func(*Gateway)

func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithDirectory sets the lookup NotifyAllInRole uses to find recipients.
func WithDirectory(d RecipientDirectory) GatewayOption {
	return func(g *Gateway) { g.directory = d }
}

// WithMailer enables the email side-channel of NotifyAllInRole.
func WithMailer(m email.Sender) GatewayOption {
	return func(g *Gateway) { g.mailer = m }
}

// WithEmailRateLimit caps outgoing fan-out emails at perSecond with the given burst.
func WithEmailRateLimit(perSecond float64, burst int) GatewayOption {
	return func(g *Gateway) {
		g.emailLimit = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithEmailLinkBase turns root-relative notification links into absolute
// URLs in emails, e.g. "https://app.example.com".
func WithEmailLinkBase(base string) GatewayOption {
	return func(g *Gateway) { g.linkBase = strings.TrimRight(base, "/") }
}

// WithFanOutConcurrency bounds concurrent creates during NotifyAllInRole.
func WithFanOutConcurrency(n int) GatewayOption {
	return func(g *Gateway) {
		if n > 0 {
			g.concurrency = n
		}
	}
}

func NewGateway(storage Storage, broadcaster Broadcaster, opts ...GatewayOption) *Gateway {
	if broadcaster == nil {
		broadcaster = NoOpBroadcaster{}
	}
	g := &Gateway{
		storage:     storage,
		broadcaster: broadcaster,
		emailLimit:  rate.NewLimiter(rate.Limit(10), 10),
		concurrency: 8,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create validates params, stores the notification and pushes it to live
// connections. A notification with a RecipientID is pushed only to the
// "role:recipientId" room and never to the role room, so other members of
// the role do not see it. Without a RecipientID it goes to the role room.
// Push failures are logged and never returned; a storage failure returns
// before any push is attempted.
func (g *Gateway) Create(ctx context.Context, params CreateParams) (*Notification, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	n := params.notification()
	n.ID = uuid.New()

	stored, err := g.storage.Create(ctx, n)
	if err != nil {
		return nil, err
	}

	g.push(ctx, *stored)
	return stored, nil
}

func (g *Gateway) push(ctx context.Context, n Notification) {
	var err error
	if n.RecipientID != "" {
		err = g.broadcaster.BroadcastToRecipient(ctx, n.RecipientRole, n.RecipientID, n)
	} else {
		err = g.broadcaster.BroadcastToRole(ctx, n.RecipientRole, n)
	}
	if err != nil {
		g.logger.LogAttrs(ctx, slog.LevelWarn, "notification stored but realtime push failed",
			logger.NotificationID(n.ID),
			logger.Role(n.RecipientRole),
			logger.RecipientID(n.RecipientID),
			logger.Error(err),
		)
	}
}

// FanOutParams describe a notification raised for every recipient of a role.
type FanOutParams struct {
	Role     Role           `json:"role"`
	Type     string         `json:"type,omitempty"`
	Title    string         `json:"title"`
	Message  string         `json:"message"`
	Link     string         `json:"link,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	// Email set to false skips the email side-channel. Left unset, every
	// recipient with an address is emailed when a mailer is configured.
	Email *bool `json:"email,omitempty"`
}

func (p FanOutParams) wantsEmail() bool {
	return p.Email == nil || *p.Email
}

func (p FanOutParams) forRecipient(id string) CreateParams {
	return CreateParams{
		Role:        p.Role,
		RecipientID: id,
		Type:        p.Type,
		Title:       p.Title,
		Message:     p.Message,
		Link:        p.Link,
		Metadata:    p.Metadata,
	}
}

// Fan-out failure stages.
const (
	StageNotification = "notification"
	StageEmail        = "email"
)

type FanOutFailure struct {
	RecipientID string `json:"recipientId"`
	Stage       string `json:"stage"`
	Error       string `json:"error"`
}

type FanOutResult struct {
	Created []Notification  `json:"created"`
	Emailed int             `json:"emailed"`
	Failed  []FanOutFailure `json:"failed"`
}

// NotifyAllInRole creates one notification per recipient of params.Role
// and, when a mailer is configured, emails each recipient that has an
// address unless params.Email is false. Recipients are processed
// independently: a failure is reported in the result and never undoes
// another recipient's notification. Only a directory failure or invalid
// params fail the whole call.
func (g *Gateway) NotifyAllInRole(ctx context.Context, params FanOutParams) (*FanOutResult, error) {
	if g.directory == nil {
		return nil, ErrNoDirectory
	}
	if err := params.forRecipient("").Validate(); err != nil {
		return nil, err
	}

	ctx = logger.WithContextAttrs(ctx, logger.Component("fan_out"))

	recipients, err := g.directory.Recipients(ctx, params.Role)
	if err != nil {
		return nil, errors.Join(ErrDirectoryUnavailable, err)
	}

	type outcome struct {
		notification *Notification
		emailErr     error
		emailed      bool
	}

	results := async.Map(ctx, recipients, g.concurrency, func(ctx context.Context, r Recipient) (outcome, error) {
		n, err := g.Create(ctx, params.forRecipient(r.ID))
		if err != nil {
			return outcome{}, err
		}
		out := outcome{notification: n}
		if params.wantsEmail() && g.mailer != nil && r.Email != "" {
			out.emailErr = g.sendEmail(ctx, r, *n)
			out.emailed = out.emailErr == nil
		}
		return out, nil
	})

	res := &FanOutResult{
		Created: make([]Notification, 0, len(recipients)),
		Failed:  []FanOutFailure{},
	}
	for _, r := range results {
		if r.Err != nil {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "fan-out notification failed",
				logger.Role(params.Role), logger.RecipientID(r.Input.ID), logger.Error(r.Err))
			res.Failed = append(res.Failed, FanOutFailure{RecipientID: r.Input.ID, Stage: StageNotification, Error: failureMessage(r.Err)})
			continue
		}
		res.Created = append(res.Created, *r.Value.notification)
		switch {
		case r.Value.emailed:
			res.Emailed++
		case r.Value.emailErr != nil:
			g.logger.LogAttrs(ctx, slog.LevelWarn, "fan-out email failed",
				logger.Role(params.Role), logger.RecipientID(r.Input.ID), logger.Error(r.Value.emailErr))
			res.Failed = append(res.Failed, FanOutFailure{RecipientID: r.Input.ID, Stage: StageEmail, Error: failureMessage(r.Value.emailErr)})
		}
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "fan-out completed",
		logger.Role(params.Role),
		logger.Count(len(res.Created)),
		slog.Int("failed", len(res.Failed)),
		slog.Int("emailed", res.Emailed),
	)
	return res, nil
}

func (g *Gateway) sendEmail(ctx context.Context, r Recipient, n Notification) error {
	if err := g.emailLimit.Wait(ctx); err != nil {
		return err
	}

	view := templates.NotificationView{
		Title:   n.Title,
		Message: n.Message,
		Type:    n.Type,
		Link:    g.absoluteLink(n.Link),
	}
	body, err := templates.Render(ctx, templates.Notification(view))
	if err != nil {
		return err
	}

	return g.mailer.Send(ctx, email.Message{
		To:       r.Email,
		Subject:  n.Title,
		HTMLBody: body,
		TextBody: templates.NotificationText(view),
		Tag:      n.Type,
	})
}

func (g *Gateway) absoluteLink(link string) string {
	if link == "" || g.linkBase == "" || !strings.HasPrefix(link, "/") || strings.HasPrefix(link, "//") {
		return link
	}
	return g.linkBase + link
}

// failureMessage keeps storage internals out of fan-out results.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrStorage):
		return ErrStorage.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return err.Error()
	}
}

func (g *Gateway) Get(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return g.storage.Get(ctx, id, owner)
}

func (g *Gateway) List(ctx context.Context, owner Owner, opts ListOptions) (*Page, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return g.storage.List(ctx, owner, opts)
}

func (g *Gateway) MarkRead(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	return g.storage.MarkRead(ctx, id, owner)
}

func (g *Gateway) MarkAllRead(ctx context.Context, owner Owner) (int64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	return g.storage.MarkAllRead(ctx, owner)
}

func (g *Gateway) CountUnread(ctx context.Context, owner Owner) (int64, error) {
	if err := owner.Validate(); err != nil {
		return 0, err
	}
	return g.storage.CountUnread(ctx, owner)
}
