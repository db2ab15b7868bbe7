package users

import (
	"errors"
	"fmt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("account disabled")
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// NotVerifiedError is returned by Login for accounts whose email was never
// confirmed.
type NotVerifiedError struct {
	UserID int64
}

func (e *NotVerifiedError) Error() string {
	return fmt.Sprintf("email not verified for user %d", e.UserID)
}
