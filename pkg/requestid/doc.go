// Package requestid tags each HTTP request with a correlation ID.
//
// Middleware accepts a client-supplied X-Request-ID when it matches
// [A-Za-z0-9_-]{1,128} and otherwise generates a UUID. LoggerExtractor
// plugs into logger.WithContextExtractors so every log line emitted while
// handling the request carries request_id.
package requestid
