package notifications

import (
	"context"
	"errors"

	"github.com/dmitrymomot/notifykit/pkg/broadcast"
)

// Broadcaster pushes a stored notification to live connections.
// Delivery is best effort: clients that are not connected never see the push.
type Broadcaster interface {
	BroadcastToRole(ctx context.Context, role Role, n Notification) error
	BroadcastToRecipient(ctx context.Context, role Role, recipientID string, n Notification) error
}

// NoOpBroadcaster discards every push.
type NoOpBroadcaster struct{}

func (NoOpBroadcaster) BroadcastToRole(context.Context, Role, Notification) error { return nil }

func (NoOpBroadcaster) BroadcastToRecipient(context.Context, Role, string, Notification) error {
	return nil
}

// RoomBroadcaster maps role and recipient pushes onto broadcast rooms
// named by RoleRoom and RecipientRoom.
type RoomBroadcaster struct {
	rooms broadcast.Broadcaster[Notification]
}

var _ Broadcaster = (*RoomBroadcaster)(nil)

func NewRoomBroadcaster(rooms broadcast.Broadcaster[Notification]) *RoomBroadcaster {
	return &RoomBroadcaster{rooms: rooms}
}

func (b *RoomBroadcaster) BroadcastToRole(ctx context.Context, role Role, n Notification) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	return b.rooms.Broadcast(ctx, broadcast.Message[Notification]{Room: RoleRoom(role), Data: n})
}

func (b *RoomBroadcaster) BroadcastToRecipient(ctx context.Context, role Role, recipientID string, n Notification) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	if recipientID == "" {
		return errors.Join(ErrValidation, errors.New("recipient id is empty"))
	}
	return b.rooms.Broadcast(ctx, broadcast.Message[Notification]{Room: RecipientRoom(role, recipientID), Data: n})
}

// Subscribe joins the rooms a connection identified by owner belongs to:
// the role room and, for a specific recipient, the recipient room.
func (b *RoomBroadcaster) Subscribe(ctx context.Context, owner Owner) (broadcast.Subscriber[Notification], error) {
	if !owner.Role.Valid() {
		return nil, ErrUnknownRole
	}
	rooms := []string{RoleRoom(owner.Role)}
	if owner.RecipientID != "" {
		rooms = append(rooms, RecipientRoom(owner.Role, owner.RecipientID))
	}
	return b.rooms.Subscribe(ctx, rooms...)
}
