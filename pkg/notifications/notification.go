package notifications

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// DefaultType is used when a notification is created without a type.
const DefaultType = "general"

const (
	maxTitleLen   = 255
	maxMessageLen = 5000
	maxTypeLen    = 64
	maxLinkLen    = 2048
	maxIDLen      = 128
)

// Notification is a persisted in-app notification.
//
// RecipientRole is the audience key used for every query and room; Role is
// kept as supplied. An empty RecipientID addresses the whole role.
type Notification struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Role          Role           `json:"role" db:"role"`
	RecipientRole Role           `json:"recipientRole" db:"recipient_role"`
	RecipientID   string         `json:"recipientId,omitempty" db:"recipient_id"`
	Type          string         `json:"type" db:"notification_type"`
	Title         string         `json:"title" db:"title"`
	Message       string         `json:"message" db:"message"`
	Link          string         `json:"link,omitempty" db:"link"`
	Metadata      map[string]any `json:"metadata,omitempty" db:"metadata"`
	IsRead        bool           `json:"isRead" db:"is_read"`
	ReadAt        *time.Time     `json:"readAt,omitempty" db:"read_at"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
}

// Owner returns the (recipientRole, recipientId) key the notification belongs to.
func (n Notification) Owner() Owner {
	return Owner{Role: n.RecipientRole, RecipientID: n.RecipientID}
}

// Owner identifies an audience: a whole role when RecipientID is empty,
// otherwise one recipient within it.
type Owner struct {
	Role        Role   `json:"role"`
	RecipientID string `json:"recipientId,omitempty"`
}

func (o Owner) Validate() error {
	err := validator.Apply(
		validator.RequiredString("role", string(o.Role)),
		validator.When(o.Role != "", validator.ValidRole("role", string(o.Role), RoleNames())),
		validator.MaxLenString("recipientId", o.RecipientID, maxIDLen),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// CreateParams are the caller-supplied fields of a new notification.
type CreateParams struct {
	Role          Role           `json:"role"`
	RecipientRole Role           `json:"recipientRole,omitempty"`
	RecipientID   string         `json:"recipientId,omitempty"`
	Type          string         `json:"type,omitempty"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	Link          string         `json:"link,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Validate checks every field and reports all failures at once.
func (p CreateParams) Validate() error {
	err := validator.Apply(
		validator.RequiredString("role", string(p.Role)),
		validator.When(p.Role != "", validator.ValidRole("role", string(p.Role), RoleNames())),
		validator.When(p.RecipientRole != "", validator.ValidRole("recipientRole", string(p.RecipientRole), RoleNames())),
		validator.MaxLenString("recipientId", p.RecipientID, maxIDLen),
		validator.MaxLenString("type", p.Type, maxTypeLen),
		validator.RequiredString("title", p.Title),
		validator.MaxLenString("title", p.Title, maxTitleLen),
		validator.RequiredString("message", p.Message),
		validator.MaxLenString("message", p.Message, maxMessageLen),
		validator.When(p.Link != "", validator.ValidURL("link", p.Link)),
		validator.MaxLenString("link", p.Link, maxLinkLen),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// notification builds the record to insert. ID and CreatedAt are left for
// the storage layer when zero.
func (p CreateParams) notification() Notification {
	n := Notification{
		Role:          p.Role,
		RecipientRole: p.RecipientRole,
		RecipientID:   strings.TrimSpace(p.RecipientID),
		Type:          strings.TrimSpace(p.Type),
		Title:         strings.TrimSpace(p.Title),
		Message:       strings.TrimSpace(p.Message),
		Link:          strings.TrimSpace(p.Link),
		Metadata:      p.Metadata,
	}
	return normalize(n)
}

// normalize applies defaults shared by every storage implementation.
func normalize(n Notification) Notification {
	if n.RecipientRole == "" {
		n.RecipientRole = n.Role
	}
	if n.Type == "" {
		n.Type = DefaultType
	}
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}
	return n
}

// validateInsert enforces the minimum a store accepts: non-empty role,
// title and message.
func validateInsert(n Notification) error {
	err := validator.Apply(
		validator.RequiredString("role", string(n.Role)),
		validator.RequiredString("title", n.Title),
		validator.RequiredString("message", n.Message),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}
