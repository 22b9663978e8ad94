package realtime

// Event names written to clients.
const (
	EventReady        = "ready"
	EventNotification = "notification"
	EventError        = "error"
)

// Event is the envelope of every frame sent to a client.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type readyData struct {
	Role        string `json:"role"`
	RecipientID string `json:"recipientId,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}
