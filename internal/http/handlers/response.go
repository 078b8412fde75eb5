// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint so that
// success and failure shapes stay uniform:
//
//   - ok() writes a JSON success body.
//   - fail() writes the ErrorResponse envelope and aborts.
//   - FailError() translates an error returned by a service into the
//     envelope, using the apperr kind's status and description.
//
// Example error response:
//
//	HTTP/1.1 500 Internal Server Error
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "internal_error",
//	  "message": "error communicating with external service"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/verproxy/internal/apperr"
	"github.com/tbourn/verproxy/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"internal_error"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"database error"`
}

// fail aborts the request with a structured error. Server errors (>=500) are
// also logged with the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failKind reports an apperr kind. The low-level cause was logged where the
// kind was produced; only the kind's description reaches the client.
func failKind(c *gin.Context, kind apperr.Error) {
	middleware.SetErrorKind(c, kind)
	fail(c, kind.Status(), ErrCodeInternal, kind.Description())
}

// FailError writes the envelope for err. Errors outside the apperr taxonomy
// are logged and reported as a generic internal error.
func FailError(c *gin.Context, err error) {
	if kind, ok := apperr.Classify(err); ok {
		failKind(c, kind)
		return
	}
	middleware.LoggerFrom(c).Error().Err(err).Msg("unclassified error")
	fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}

// NotFound answers requests whose path matches no route.
func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, ErrCodeNotFound, "resource not found")
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	fail(c, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// relay writes a value decoded from a third party without HTML-escaping
// <, > and &, so strings come back exactly as the upstream sent them.
func relay(c *gin.Context, body any) {
	c.PureJSON(http.StatusOK, body)
}
