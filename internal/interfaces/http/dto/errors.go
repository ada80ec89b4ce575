package dto

import (
	"net/http"
	"strings"
)

// Error codes surfaced by the HTTP layer itself
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// domainCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed here fall back by prefix, then to 500.
var domainCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeInternal:     http.StatusInternalServerError,

	// identity
	"EMAIL_TAKEN":         http.StatusConflict,
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"TOKEN_EXPIRED":       http.StatusUnauthorized,
	"TOKEN_INVALID":       http.StatusUnauthorized,
	"TOKEN_REVOKED":       http.StatusUnauthorized,
	"USER_NOT_FOUND":      http.StatusNotFound,

	// messaging
	"RECIPIENT_NOT_FOUND": http.StatusNotFound,
	"RECIPIENT_INACTIVE":  http.StatusUnprocessableEntity,

	// tutoring
	"SLUG_TAKEN":             http.StatusConflict,
	"SUBJECT_NOT_FOUND":      http.StatusNotFound,
	"TUTOR_NOT_FOUND":        http.StatusNotFound,
	"SESSION_NOT_COMPLETED":  http.StatusUnprocessableEntity,
	"ALREADY_REVIEWED":       http.StatusConflict,
	"PLAN_GENERATION_FAILED": http.StatusBadGateway,

	// shared
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"VALIDATION_ERROR":     http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for a domain error code. Validation
// codes follow the INVALID_/EMPTY_/..._TOO_LONG naming convention and map to
// 400 without individual entries.
func GetHTTPStatus(code string) int {
	if status, ok := domainCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "EMPTY_") || strings.HasSuffix(code, "_TOO_LONG") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
