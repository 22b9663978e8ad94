package notifications

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Storage persists notifications. Implementations wrap backend failures
// with ErrStorage and report missing or foreign rows as ErrNotFound.
//
// Get, MarkRead, MarkAllRead and CountUnread match the owner exactly: an
// empty RecipientID selects role-wide rows only. List treats an empty
// RecipientID as "every row of the role".
type Storage interface {
	// Create inserts n and returns the stored record with IsRead=false and
	// CreatedAt set. A zero ID is replaced with a new one.
	Create(ctx context.Context, n Notification) (*Notification, error)
	Get(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error)
	// List returns one page ordered by CreatedAt descending, ID descending.
	List(ctx context.Context, owner Owner, opts ListOptions) (*Page, error)
	// MarkRead flips IsRead for the owned row. An already-read row is
	// returned unchanged.
	MarkRead(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error)
	// MarkAllRead flips every unread owned row and returns how many changed.
	MarkAllRead(ctx context.Context, owner Owner) (int64, error)
	CountUnread(ctx context.Context, owner Owner) (int64, error)
}

// ListOptions controls paging and filtering of List.
type ListOptions struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// Normalize applies the default limit and clamps out-of-range values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Page is one slice of a List result.
type Page struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	HasMore       bool           `json:"hasMore"`
}

func newPage(items []Notification, total int64, opts ListOptions) *Page {
	if items == nil {
		items = []Notification{}
	}
	return &Page{
		Notifications: items,
		Total:         total,
		HasMore:       int64(opts.Offset+opts.Limit) < total,
	}
}
