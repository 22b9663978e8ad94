// Package notifications mounts the notification HTTP API.
//
//	svc := notifications.NewService(gateway, errorHandler)
//	r.Mount("/notifications", svc.Handle())
//
// Routes:
//
//	GET    /                ?role=&recipientId=&limit=&offset=&unreadOnly=
//	POST   /                create one notification
//	POST   /fan-out         notify every recipient of a role
//	GET    /unread-count    ?role=&recipientId=
//	GET    /{id}            ?role=&recipientId=
//	PATCH  /{id}/read       {"role":"...","recipientId":"..."}
//	PATCH  /read-all        {"role":"...","recipientId":"..."}
//
// Pair the error handler with ErrorMapper so domain errors get their status
// codes:
//
//	errorHandler := handler.NewErrorHandler(log, handler.WithErrorMapper(notifications.ErrorMapper))
package notifications
