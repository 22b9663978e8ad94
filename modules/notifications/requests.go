package notifications

import (
	"strings"

	"github.com/google/uuid"

	notify "github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// OwnerQuery identifies the caller's inbox in the query string.
type OwnerQuery struct {
	Role        string `query:"role"`
	RecipientID string `query:"recipientId"`
}

func (q OwnerQuery) Owner() notify.Owner {
	return ownerFrom(q.Role, q.RecipientID)
}

// ListRequest handles GET /notifications.
type ListRequest struct {
	Role        string `query:"role"`
	RecipientID string `query:"recipientId"`
	Limit       *int   `query:"limit"`
	Offset      *int   `query:"offset"`
	UnreadOnly  bool   `query:"unreadOnly"`
}

func (r ListRequest) Owner() notify.Owner {
	return ownerFrom(r.Role, r.RecipientID)
}

// Validate rejects paging values outside the accepted range instead of
// silently clamping them.
func (r ListRequest) Validate() error {
	var rules []validator.Rule
	if r.Limit != nil {
		rules = append(rules,
			validator.MinNum("limit", *r.Limit, 1),
			validator.MaxNum("limit", *r.Limit, notify.MaxListLimit),
		)
	}
	if r.Offset != nil {
		rules = append(rules, validator.MinNum("offset", *r.Offset, 0))
	}
	return validator.Apply(rules...)
}

func (r ListRequest) Options() notify.ListOptions {
	opts := notify.ListOptions{UnreadOnly: r.UnreadOnly}
	if r.Limit != nil {
		opts.Limit = *r.Limit
	}
	if r.Offset != nil {
		opts.Offset = *r.Offset
	}
	return opts.Normalize()
}

// GetRequest handles GET /notifications/{id}.
type GetRequest struct {
	ID          uuid.UUID `path:"id" query:"-"`
	Role        string    `query:"role"`
	RecipientID string    `query:"recipientId"`
}

func (r GetRequest) Owner() notify.Owner {
	return ownerFrom(r.Role, r.RecipientID)
}

// MarkReadRequest handles PATCH /notifications/{id}/read.
type MarkReadRequest struct {
	ID          uuid.UUID `path:"id" json:"-"`
	Role        string    `json:"role"`
	RecipientID string    `json:"recipientId"`
}

func (r MarkReadRequest) Owner() notify.Owner {
	return ownerFrom(r.Role, r.RecipientID)
}

// OwnerBody identifies the caller's inbox in a JSON body.
type OwnerBody struct {
	Role        string `json:"role"`
	RecipientID string `json:"recipientId"`
}

func (b OwnerBody) Owner() notify.Owner {
	return ownerFrom(b.Role, b.RecipientID)
}

func ownerFrom(role, recipientID string) notify.Owner {
	return notify.Owner{
		Role:        notify.Role(strings.ToLower(strings.TrimSpace(role))),
		RecipientID: strings.TrimSpace(recipientID),
	}
}

type countResponse struct {
	Count int64 `json:"count"`
}

type updatedResponse struct {
	UpdatedCount int64 `json:"updatedCount"`
}
