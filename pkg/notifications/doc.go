// Package notifications is the notification core: a Storage for
// notification records, a Broadcaster that pushes new records to live
// connections grouped in rooms, and a Gateway tying them together.
//
// Rooms are named after the audience. Every connection of a role joins the
// role room ("student"); a connection that identifies a recipient also joins
// the recipient room ("student:42"). A notification with a recipient is
// pushed to the recipient room only, one without a recipient to the role
// room, so a connection never sees notifications addressed to someone else.
//
// Realtime delivery is best effort. There is no queue or replay: a client
// that is offline when a notification is created sees it only through List.
//
// Basic wiring:
//
//	hub := broadcast.NewHub[notifications.Notification]()
//	gw := notifications.NewGateway(
//		notifications.NewPostgresStorage(pool),
//		notifications.NewRoomBroadcaster(hub),
//		notifications.WithGatewayLogger(log),
//	)
//
//	n, err := gw.Create(ctx, notifications.CreateParams{
//		Role:        notifications.RoleAdmin,
//		RecipientID: "7",
//		Type:        "registration",
//		Title:       "New Student Registered",
//		Message:     "Jane Doe has registered as student",
//	})
//
// Errors are classified with errors.Is against ErrValidation, ErrNotFound
// and ErrStorage. Validation failures also unwrap to
// validator.ValidationErrors for field-level details.
package notifications
