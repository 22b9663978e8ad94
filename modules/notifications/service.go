package notifications

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/handler"
	"github.com/dmitrymomot/notifykit/pkg/binder"
	notify "github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Gateway is the part of notify.Gateway the HTTP surface uses.
type Gateway interface {
	Create(ctx context.Context, params notify.CreateParams) (*notify.Notification, error)
	NotifyAllInRole(ctx context.Context, params notify.FanOutParams) (*notify.FanOutResult, error)
	Get(ctx context.Context, id uuid.UUID, owner notify.Owner) (*notify.Notification, error)
	List(ctx context.Context, owner notify.Owner, opts notify.ListOptions) (*notify.Page, error)
	MarkRead(ctx context.Context, id uuid.UUID, owner notify.Owner) (*notify.Notification, error)
	MarkAllRead(ctx context.Context, owner notify.Owner) (int64, error)
	CountUnread(ctx context.Context, owner notify.Owner) (int64, error)
}

var _ Gateway = (*notify.Gateway)(nil)

type Service struct {
	gateway      Gateway
	errorHandler handler.ErrorHandler[handler.Context]
}

// NewService builds the notifications HTTP service. A nil errorHandler
// falls back to NewErrorHandler with the default logger.
func NewService(gateway Gateway, errorHandler handler.ErrorHandler[handler.Context]) *Service {
	if errorHandler == nil {
		errorHandler = handler.NewErrorHandler(nil, handler.WithErrorMapper(ErrorMapper))
	}
	return &Service{gateway: gateway, errorHandler: errorHandler}
}

// Handle returns the routes, meant to be mounted under /notifications.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/", handler.Wrap(s.list,
		handler.WithBinders[handler.Context, ListRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, ListRequest](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.create,
		handler.WithBinders[handler.Context, notify.CreateParams](binder.JSON()),
		handler.WithErrorHandler[handler.Context, notify.CreateParams](s.errorHandler),
	))
	r.Post("/fan-out", handler.Wrap(s.fanOut,
		handler.WithBinders[handler.Context, notify.FanOutParams](binder.JSON()),
		handler.WithErrorHandler[handler.Context, notify.FanOutParams](s.errorHandler),
	))
	r.Get("/unread-count", handler.Wrap(s.unreadCount,
		handler.WithBinders[handler.Context, OwnerQuery](binder.Query()),
		handler.WithErrorHandler[handler.Context, OwnerQuery](s.errorHandler),
	))
	r.Patch("/read-all", handler.Wrap(s.markAllRead,
		handler.WithBinders[handler.Context, OwnerBody](binder.JSON()),
		handler.WithErrorHandler[handler.Context, OwnerBody](s.errorHandler),
	))
	r.Get("/{id}", handler.Wrap(s.get,
		handler.WithBinders[handler.Context, GetRequest](binder.Path(chi.URLParam), binder.Query()),
		handler.WithErrorHandler[handler.Context, GetRequest](s.errorHandler),
	))
	r.Patch("/{id}/read", handler.Wrap(s.markRead,
		handler.WithBinders[handler.Context, MarkReadRequest](binder.Path(chi.URLParam), binder.JSON()),
		handler.WithErrorHandler[handler.Context, MarkReadRequest](s.errorHandler),
	))

	return r
}

func (s *Service) list(ctx handler.Context, req ListRequest) handler.Response {
	if err := req.Validate(); err != nil {
		return handler.Error(err)
	}
	page, err := s.gateway.List(ctx, req.Owner(), req.Options())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(page)
}

func (s *Service) create(ctx handler.Context, req notify.CreateParams) handler.Response {
	n, err := s.gateway.Create(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(n, handler.WithJSONStatus(http.StatusCreated))
}

func (s *Service) fanOut(ctx handler.Context, req notify.FanOutParams) handler.Response {
	res, err := s.gateway.NotifyAllInRole(ctx, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(res, handler.WithJSONStatus(http.StatusAccepted))
}

func (s *Service) unreadCount(ctx handler.Context, req OwnerQuery) handler.Response {
	count, err := s.gateway.CountUnread(ctx, req.Owner())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(countResponse{Count: count})
}

func (s *Service) get(ctx handler.Context, req GetRequest) handler.Response {
	n, err := s.gateway.Get(ctx, req.ID, req.Owner())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(n)
}

func (s *Service) markRead(ctx handler.Context, req MarkReadRequest) handler.Response {
	n, err := s.gateway.MarkRead(ctx, req.ID, req.Owner())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(n)
}

func (s *Service) markAllRead(ctx handler.Context, req OwnerBody) handler.Response {
	updated, err := s.gateway.MarkAllRead(ctx, req.Owner())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(updatedResponse{UpdatedCount: updated})
}

// ErrorMapper translates notification errors for handler.NewErrorHandler.
// Storage failures fall through to a generic 500.
func ErrorMapper(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, notify.ErrNotFound):
		return handler.ErrNotFound, true
	case errors.Is(err, notify.ErrValidation), errors.Is(err, notify.ErrUnknownRole):
		return handler.ErrUnprocessableEntity, true
	case errors.Is(err, notify.ErrNoDirectory):
		return handler.NewHTTPError(http.StatusNotImplemented, "fan_out_not_configured"), true
	case errors.Is(err, notify.ErrDirectoryUnavailable):
		return handler.ErrServiceUnavailable, true
	}
	return handler.HTTPError{}, false
}
