package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Heartbeat settings for every connection.
const (
	WriteWait      = 10 * time.Second    // max time to write a frame to the peer
	PongWait       = 60 * time.Second    // no pong within this window drops the connection
	PingPeriod     = (PongWait * 9) / 10 // must stay below PongWait
	MaxMessageSize = 512                 // clients only send control frames
)

type client struct {
	conn   *websocket.Conn
	sub    broadcast.Subscriber[notifications.Notification]
	logger *slog.Logger
}

// readPump drains incoming frames so control frames get processed and
// cancels once the peer goes away.
func (c *client) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.logger.Debug("websocket read failed", logger.Error(err))
			}
			return
		}
	}
}

// writePump forwards room messages to the peer and keeps the connection
// alive with pings. It returns when ctx is done, the subscription ends or a
// write fails.
func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.closeWith(websocket.CloseNormalClosure, "")
			return

		case msg, ok := <-c.sub.Receive():
			if !ok {
				// hub closed or this client fell behind
				c.closeWith(websocket.CloseGoingAway, "subscription ended")
				return
			}
			if err := c.writeEvent(Event{Event: EventNotification, Data: msg.Data}); err != nil {
				c.logger.Debug("websocket write failed",
					logger.Room(msg.Room),
					logger.NotificationID(msg.Data.ID),
					logger.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) writeEvent(e Event) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return c.conn.WriteJSON(e)
}

func (c *client) closeWith(code int, reason string) {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(WriteWait))
}
