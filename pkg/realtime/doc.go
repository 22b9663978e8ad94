// Package realtime serves notification pushes over websockets.
//
// A client connects with
//
//	GET /ws?role=student&recipientId=42
//
// and joins the "student" room plus, when recipientId is present, the
// "student:42" room. Every frame the server writes is a JSON event:
//
//	{"event":"ready","data":{"role":"student","recipientId":"42"}}
//	{"event":"notification","data":{...notification record...}}
//	{"event":"error","data":{"message":"..."}}
//
// An unknown role is answered with a single error event followed by a close
// frame. Delivery is best effort: a client that is not connected when a
// notification is broadcast never receives it, and a client that cannot keep
// up is disconnected.
//
// Usage:
//
//	srv := realtime.NewServer(roomBroadcaster, realtime.WithLogger(log))
//	r.Get("/ws", srv.ServeHTTP)
package realtime
