package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/forms"
)

// describeError turns an operation error into a line for the user.
func describeError(err error) string {
	var fieldErrs forms.Errors
	if errors.As(err, &fieldErrs) {
		lines := make([]string, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			lines = append(lines, "  "+e.Field+": "+e.Message)
		}
		return "Please fix:\n" + strings.Join(lines, "\n")
	}
	var fieldErr forms.ValidationError
	if errors.As(err, &fieldErr) {
		return "Please fix:\n  " + fieldErr.Field + ": " + fieldErr.Message
	}

	var apiErr *client.APIError
	switch {
	case errors.Is(err, auth.ErrInvalidState):
		return "This command is not available now (see 'help')."
	case errors.Is(err, auth.ErrSuperseded):
		return "Cancelled by a newer action."
	case errors.Is(err, client.ErrSessionExpired):
		return "Session expired, please log in again."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unreachable, check your connection and try again."
	case errors.Is(err, client.ErrRateLimited):
		return "Too many attempts, please wait before trying again."
	case errors.Is(err, client.ErrInvalidCode):
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "Invalid code: " + apiErr.Message
		}
		return "Invalid or expired code."
	case errors.Is(err, client.ErrUnauthorized):
		return "Invalid email or password."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return "Error: " + apiErr.Message
	default:
		return "Error: " + err.Error()
	}
}
