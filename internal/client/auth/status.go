package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// CodeLength is the number of digits of an email verification code.
const CodeLength = forms.CodeLength

// Status is the authentication state of the client. Only the Controller
// assigns it.
type Status int

const (
	StatusUnknown Status = iota
	StatusRestoring
	StatusUnauthenticated
	StatusAuthenticated
	StatusPendingVerification
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusRestoring:
		return "restoring"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	case StatusPendingVerification:
		return "pending_verification"
	default:
		return "invalid"
	}
}

var (
	// ErrInvalidState is returned by operations the current status does not
	// accept. Nothing changes when it is returned.
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrSuperseded means a newer logout, startup or invalidation happened
	// while the operation was in flight; its result was discarded.
	ErrSuperseded = errors.New("superseded by a newer operation")
)

// PendingRegistration identifies an account waiting for email
// verification. It lives in memory only.
type PendingRegistration struct {
	UserID int64
	Email  string
}

// Snapshot is a consistent view of the controller state.
type Snapshot struct {
	Status   Status
	Identity *models.Identity
	Pending  *PendingRegistration
	// Err is the error of the last flow, nil after a success.
	Err error
	// CodeRemaining is the time left on the verification countdown.
	CodeRemaining time.Duration
}
