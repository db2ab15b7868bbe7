// Package common contains shared constants and helpers used across
// gophauth components.
package common

// Outbound HTTP header names and the bearer scheme prefix.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Logical storage keys of the persisted session. They are always cleared
// together.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyPro          = "pro"
)

// SessionKeys lists every persisted key that belongs to a session.
func SessionKeys() []string {
	return []string{KeyAccessToken, KeyRefreshToken, KeyUser, KeyPro}
}
