// Package binder decodes HTTP request data into typed structs.
//
// Three sources are supported, each selected by its own struct tag:
//
//   - JSON(): the request body, using `json` tags; unknown fields are rejected
//   - Query(): URL query parameters, using `query` tags
//   - Path(extractor): router path parameters, using `path` tags
//
// Binders compose, so a single request type can collect values from several
// sources:
//
//	type MarkReadRequest struct {
//	    ID          uuid.UUID `path:"id" json:"-"`
//	    Role        string    `json:"role"`
//	    RecipientID string    `json:"recipientId"`
//	}
//
//	r.Patch("/{id}/read", handler.Wrap(markRead,
//	    handler.WithBinders[handler.Context, MarkReadRequest](
//	        binder.Path(chi.URLParam),
//	        binder.JSON(),
//	    ),
//	))
//
// Query and path binders support strings, integers, unsigned integers,
// floats, bools, pointers to those for optional values, slices for repeated
// or comma-separated query values, and any type implementing
// encoding.TextUnmarshaler such as uuid.UUID.
//
// # Error Handling
//
// Every failure wraps one of the package errors:
//
//   - ErrMissingContentType: no Content-Type header on a JSON request
//   - ErrUnsupportedMediaType: Content-Type is not application/json
//   - ErrRequestTooLarge: the JSON body exceeds the size limit
//   - ErrInvalidJSON: the body is not valid JSON for the target
//   - ErrInvalidQuery: a query parameter could not be converted
//   - ErrInvalidPath: a path parameter could not be converted
package binder
