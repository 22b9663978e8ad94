package realtime

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Subscriber joins the rooms of an owner. notifications.RoomBroadcaster
// satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, owner notifications.Owner) (broadcast.Subscriber[notifications.Notification], error)
}

// Server upgrades HTTP requests to websocket connections bound to rooms.
type Server struct {
	rooms    Subscriber
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowedOrigins restricts the Origin header accepted during the
// handshake. "*" accepts any origin. Without this option only same-origin
// requests and requests without an Origin header are accepted.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) == 0 {
			return
		}
		allowed := slices.Clone(origins)
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(allowed, "*") {
				return true
			}
			return slices.Contains(allowed, origin)
		}
	}
}

// WithBufferSizes sets the websocket read and write buffer sizes.
func WithBufferSizes(read, write int) Option {
	return func(s *Server) {
		s.upgrader.ReadBufferSize = read
		s.upgrader.WriteBufferSize = write
	}
}

func NewServer(rooms Subscriber, opts ...Option) *Server {
	s := &Server{
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP performs the handshake and blocks until the connection ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		s.logger.DebugContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	q := r.URL.Query()
	role, err := notifications.ParseRole(q.Get("role"))
	if err != nil {
		s.reject(r.Context(), conn, errors.Join(notifications.ErrConnectionRejected, err), "unknown role")
		return
	}
	owner := notifications.Owner{Role: role, RecipientID: q.Get("recipientId")}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := s.rooms.Subscribe(ctx, owner)
	if err != nil {
		s.reject(ctx, conn, errors.Join(notifications.ErrConnectionRejected, err), "subscription unavailable")
		return
	}
	defer sub.Close()

	c := &client{
		conn:   conn,
		sub:    sub,
		logger: s.logger.With(logger.Role(owner.Role), logger.RecipientID(owner.RecipientID)),
	}

	if err := c.writeEvent(Event{Event: EventReady, Data: readyData{Role: string(owner.Role), RecipientID: owner.RecipientID}}); err != nil {
		c.logger.DebugContext(ctx, "websocket ready write failed", logger.Error(err))
		return
	}
	c.logger.DebugContext(ctx, "websocket connected", slog.Any("rooms", sub.Rooms()))

	go c.readPump(cancel)
	c.writePump(ctx)

	c.logger.DebugContext(ctx, "websocket disconnected")
}

func (s *Server) reject(ctx context.Context, conn *websocket.Conn, err error, message string) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "websocket connection rejected", logger.Error(err))

	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	_ = conn.WriteJSON(Event{Event: EventError, Data: errorData{Message: message}})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
		time.Now().Add(WriteWait))
}
