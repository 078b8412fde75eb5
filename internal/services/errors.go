// Package services holds the per-route logic behind the HTTP handlers: the
// liveness reply, the database version lookup, and the external JSON relay.
// Services receive their resources (a leased connection, the shared HTTP
// client) as arguments and never reach for globals.
//
// Every failure a service returns has already been logged and erased to an
// apperr kind, so handlers only translate the kind to a response.
package services

import "errors"

// Wiring errors. These indicate a route was mounted without its provider
// middleware and are erased to the matching apperr kind before returning.
var (
	// ErrNoConnection is the cause logged when no leased connection reached
	// the service.
	ErrNoConnection = errors.New("no database connection leased for request")

	// ErrNoClient is the cause logged when no HTTP client reached the
	// service.
	ErrNoClient = errors.New("no http client available for request")
)
