// Package apperr defines the closed error taxonomy surfaced by request
// handlers.
//
// Every failure that crosses from a collaborator (database pool, driver,
// outbound HTTP transport, JSON decoder) into the response layer is first
// logged with its full low-level detail and then erased to one of three coarse
// kinds. Callers only ever see the kind's description and HTTP status; the
// kinds exist for log and metric granularity, not for differentiated client
// behavior.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Error is a coarse failure kind. The zero value is not a valid kind.
type Error uint8

const (
	// Database covers connection acquisition and query failures.
	Database Error = iota + 1
	// HTTPExtern covers transport failures talking to the external endpoint,
	// including failures while reading its response body.
	HTTPExtern
	// JSONDecode covers malformed payloads returned by the external endpoint.
	JSONDecode
)

// Kinds lists every member of the taxonomy in declaration order.
var Kinds = []Error{Database, HTTPExtern, JSONDecode}

// Description returns the fixed human-readable text for the kind.
func (e Error) Description() string {
	switch e {
	case Database:
		return "database error"
	case HTTPExtern:
		return "error communicating with external service"
	case JSONDecode:
		return "error decoding JSON payload"
	default:
		return "unknown error"
	}
}

// Error implements the error interface.
func (e Error) Error() string { return e.Description() }

// Label returns a stable snake_case identifier used as a log field and
// metric label.
func (e Error) Label() string {
	switch e {
	case Database:
		return "database"
	case HTTPExtern:
		return "http_extern"
	case JSONDecode:
		return "json_decode"
	default:
		return "unknown"
	}
}

// Status maps the kind to an HTTP status code. None of the kinds represents a
// client error, so all of them map to 500.
func (e Error) Status() int {
	return http.StatusInternalServerError
}

// Classify extracts a taxonomy kind from err. It reports false when err is nil
// or carries no kind.
func Classify(err error) (Error, bool) {
	var kind Error
	if errors.As(err, &kind) && kind != 0 {
		return kind, true
	}
	return 0, false
}

// Erase logs cause with full detail and returns only the coarse kind. It is the
// single mapping point used at every collaborator boundary.
//
// The request-scoped logger stored in ctx is preferred so the entry carries the
// request id; the global logger is used otherwise.
func Erase(ctx context.Context, kind Error, cause error, msg string) Error {
	lg := loggerFrom(ctx)
	lg.Error().
		Err(cause).
		Str("kind", kind.Label()).
		Msg(msg)
	return kind
}

func loggerFrom(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if lg := zerolog.Ctx(ctx); lg != nil && lg.GetLevel() != zerolog.Disabled {
			return lg
		}
	}
	return &log.Logger
}
