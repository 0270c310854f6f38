// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Every error response carries one of these codes next to the HTTP status so
// clients can branch on a stable value instead of parsing messages. Service
// errors are translated in writeServiceError; handlers only call fail
// directly for transport problems such as malformed JSON.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "payment_required",
//	  "message": "no free views remaining, subscription required"
//	}
package handlers

const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeForbidden       = "forbidden"
	ErrCodePaymentRequired = "payment_required"
	ErrCodeNotFound        = "not_found"
	ErrCodeConflict        = "conflict"
	ErrCodeRateLimited     = "too_many_requests"
	ErrCodeUpstream        = "upstream_failed"
	ErrCodeInternal        = "internal_error"

	ErrCodeMethodNotAllowed = "method_not_allowed"
)
