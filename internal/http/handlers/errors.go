// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// Codes are lowercase snake_case and give clients a stable, machine-readable
// value to branch on. Every application failure (database, external service,
// JSON decoding) is reported as internal_error; the kind only shows up in
// logs and metrics.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "internal_error",
//	  "message": "database error"
//	}
package handlers

const (
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
)
