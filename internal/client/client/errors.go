package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable          = errors.New("server unavailable")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSessionExpired       = errors.New("session expired")
	ErrVerificationRequired = errors.New("email verification required")
	ErrRateLimited          = errors.New("too many attempts")
	ErrInvalidCode          = errors.New("invalid or expired code")
	ErrBadRequest           = errors.New("bad request")
	ErrServer               = errors.New("server error")
)

// APIError is a non-2xx reply of the backend. Kind is one of the sentinel
// errors above and is what errors.Is matches against.
type APIError struct {
	Status  int
	Message string
	// UserID is set on 403 replies asking for email verification.
	UserID int64
	Kind   error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Kind, e.Status)
	}
	return fmt.Sprintf("%v (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

func kindForStatus(status int, requiresVerification bool) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		if requiresVerification {
			return ErrVerificationRequired
		}
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return ErrServer
	}
}
