package binder

import "net/http"

// Query creates a query parameter binder.
//
// It supports struct tags for custom parameter names:
//   - `query:"name"` binds to query parameter "name"
//   - `query:"-"` skips the field
//   - `query:"name,omitempty"` is the same as query:"name"
//
// Example:
//
//	type ListRequest struct {
//		Role       string `query:"role"`
//		Limit      *int   `query:"limit"`
//		UnreadOnly bool   `query:"unreadOnly"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrInvalidQuery)
	}
}
