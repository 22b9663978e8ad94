// Package handler provides typed HTTP handlers that render JSON envelopes.
//
// A HandlerFunc receives a request Context and a bound request value and
// returns a Response. Wrap adapts it to http.HandlerFunc, running the
// configured binders first and routing binding and rendering failures to an
// ErrorHandler.
//
//	type CreateRequest struct {
//	    Title string `json:"title"`
//	}
//
//	create := func(ctx handler.Context, req CreateRequest) handler.Response {
//	    item, err := svc.Create(ctx, req.Title)
//	    if err != nil {
//	        return handler.Error(err)
//	    }
//	    return handler.JSON(item, handler.WithJSONStatus(http.StatusCreated))
//	}
//
//	r.Post("/items", handler.Wrap(create,
//	    handler.WithBinders[handler.Context, CreateRequest](binder.JSON()),
//	    handler.WithErrorHandler[handler.Context, CreateRequest](errorHandler),
//	))
//
// Successful responses are written as {"data": ...}; failures as
// {"error": {"code": ..., "message": ..., "details": {...}}}. NewErrorHandler
// classifies errors into status codes: validation errors become 422 with
// per-field details, binding errors 400, HTTPError values keep their code,
// and anything unrecognised becomes a 500 without internal detail.
package handler
