package broadcast

import "errors"

var (
	ErrHubClosed    = errors.New("broadcast: hub is closed")
	ErrNoRooms      = errors.New("broadcast: at least one room is required")
	ErrEmptyRoom    = errors.New("broadcast: room name is empty")
	ErrPublish      = errors.New("broadcast: failed to publish message")
	ErrRelayStopped = errors.New("broadcast: relay subscription closed")
)
