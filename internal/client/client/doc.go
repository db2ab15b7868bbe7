// Package client talks to the authentication backend over HTTP/JSON.
//
// # Overview
//
// The package provides:
//  1. The Client interface used by the auth controller: registration,
//     email verification, login, profile and password reset calls.
//  2. A Gateway that every call goes through. It attaches the bearer access
//     token and a request id, and on a 401 refreshes the access token once
//     and re-issues the request exactly once. Concurrent refreshes for the
//     same expired token are coalesced into a single backend call.
//  3. HTTPClient, the Client implementation on top of the Gateway.
//
// # Error Handling
//
// Non-2xx replies are returned as *APIError whose Kind is one of the
// sentinel errors (ErrUnauthorized, ErrVerificationRequired, ErrRateLimited,
// ErrInvalidCode, ErrBadRequest, ErrServer, ErrUnavailable). Transport
// failures and timeouts map to ErrUnavailable and never touch the session.
// A session that cannot be refreshed is cleared through the TokenKeeper and
// reported as ErrSessionExpired.
//
// # Concurrency
//
// Gateway and HTTPClient are safe for concurrent use.
package client
