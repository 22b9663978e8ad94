package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifykit/pkg/binder"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// ErrorMapper translates a domain error into an HTTPError. It returns false
// for errors it does not recognise.
type ErrorMapper func(err error) (HTTPError, bool)

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

func isClientError(statusCode int) bool {
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

func determineLogLevel(statusCode int) slog.Level {
	if isClientError(statusCode) {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func fromHTTPError(e HTTPError) ErrorInfo {
	return ErrorInfo{
		StatusCode: e.Code,
		Code:       e.Key,
		Message:    http.StatusText(e.Code),
	}
}

// classifyError resolves err to a response. Validation errors win over
// everything else so field details are never lost.
func classifyError(err error, mappers []ErrorMapper) ErrorInfo {
	var info ErrorInfo

	var httpErr HTTPError
	switch {
	case validator.IsValidationError(err):
		info = fromHTTPError(ErrUnprocessableEntity)
		info.Message = "validation failed"
		info.Details = validator.ExtractValidationErrors(err).Map()

	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		info = fromHTTPError(ErrUnsupportedMediaType)
		info.Message = err.Error()

	case errors.Is(err, binder.ErrRequestTooLarge):
		info = fromHTTPError(ErrRequestEntityTooLarge)

	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidQuery), errors.Is(err, binder.ErrInvalidPath):
		info = fromHTTPError(ErrBadRequest)
		info.Message = err.Error()

	case errors.As(err, &httpErr):
		info = fromHTTPError(httpErr)

	default:
		info = fromHTTPError(ErrInternalServerError)
		for _, m := range mappers {
			if mapped, ok := m(err); ok {
				info = fromHTTPError(mapped)
				break
			}
		}
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

func errorResponse(info ErrorInfo) Response {
	return JSON(JSONResponse{
		Error: &ErrorDetail{
			Code:    info.Code,
			Message: info.Message,
			Details: info.Details,
		},
	}, WithJSONStatus(info.StatusCode))
}

type errorHandlerConfig struct {
	mappers []ErrorMapper
}

type ErrorHandlerOption func(*errorHandlerConfig)

// WithErrorMapper registers a domain error translator. Mappers run in
// registration order; the first match wins.
func WithErrorMapper(m ErrorMapper) ErrorHandlerOption {
	return func(c *errorHandlerConfig) {
		if m != nil {
			c.mappers = append(c.mappers, m)
		}
	}
}

// NewErrorHandler creates the JSON error handler. Client errors are logged
// at warn, server errors at error, both with the request id.
// Configure this once in main.go and pass it to every route.
func NewErrorHandler(log *slog.Logger, opts ...ErrorHandlerOption) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	var cfg errorHandlerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		info := classifyError(err, cfg.mappers)

		log.LogAttrs(r.Context(), info.LogLevel, "request error",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", info.StatusCode),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		if renderErr := errorResponse(info).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response",
				logger.Error(renderErr),
				logger.Event("render_error"),
			)
		}
	}
}
