package bankapi

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is returned without issuing a network call while the
// circuit breaker is open.
var ErrUpstreamUnavailable = errors.New("banking API is unavailable")

// AuthError reports that the upstream rejected the session credential (401).
// The transport layer never redirects or clears UI state itself; it surfaces
// this typed error and fires the credential's invalidation callback exactly
// once, leaving navigation to the hosting shell.
type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("bankapi: %s: upstream rejected credential", e.Op)
}

// APIError reports any non-2xx upstream response or transport failure other
// than a credential rejection. Detail carries the server-provided error
// string when the upstream sent one.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
	Timeout    bool
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("bankapi: %s: %v", e.Op, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("bankapi: %s: upstream returned %d: %s", e.Op, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("bankapi: %s: upstream returned %d", e.Op, e.StatusCode)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an upstream credential
// rejection.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// UpstreamDetail extracts the server-provided detail string from err, if any.
func UpstreamDetail(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}
