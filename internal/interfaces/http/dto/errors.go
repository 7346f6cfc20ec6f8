package dto

import "net/http"

// General error codes used by the transport layer itself.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// statusByCode maps domain error codes to HTTP statuses. NO_DATA is absent
// on purpose: it is a recoverable state rendered by the handler, not an HTTP
// failure.
var statusByCode = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,

	"AUTH_FAILED":  http.StatusUnauthorized,
	"UNAUTHORIZED": http.StatusUnauthorized,

	"FORBIDDEN":            http.StatusForbidden,
	"UNKNOWN_ROLE":         http.StatusForbidden,
	"ROLE_NOT_ASSIGNABLE":  http.StatusForbidden,
	"ACCOUNT_PROTECTED":    http.StatusForbidden,
	"SUPERADMIN_IMMUTABLE": http.StatusForbidden,

	"NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS": http.StatusConflict,
	"USERNAME_TAKEN": http.StatusConflict,

	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_USERNAME":     http.StatusBadRequest,
	"INVALID_PASSWORD":     http.StatusBadRequest,
	"INVALID_DISPLAY_NAME": http.StatusBadRequest,
	"INVALID_SCOPE":        http.StatusBadRequest,
	"UNKNOWN_VIEW":         http.StatusBadRequest,

	// Upstream dataset faults: the request was fine, the data source was not.
	"FETCH_ERROR":          http.StatusBadGateway,
	"SCHEMA_ERROR":         http.StatusBadGateway,
	"MERGE_ERROR":          http.StatusBadGateway,
	"DATA_INTEGRITY_ERROR": http.StatusBadGateway,
}

// GetHTTPStatus resolves the HTTP status for a domain error code.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
