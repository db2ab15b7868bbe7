package models

type RegisterResponse struct {
	Message              string `json:"message"`
	UserID               int64  `json:"user_id"`
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requires_verification"`
}

// AuthResponse is returned by login and email verification.
type AuthResponse struct {
	Success      bool   `json:"success,omitempty"`
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
	Pro          *Pro   `json:"pro,omitempty"`
}

// Session returns the token pair carried by the response.
func (r AuthResponse) Session() Session {
	return Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// Identity returns the profile carried by the response.
func (r AuthResponse) Identity() Identity {
	return Identity{User: r.User, Pro: r.Pro}
}

type MeResponse struct {
	User User `json:"user"`
	Pro  *Pro `json:"pro,omitempty"`
}

func (r MeResponse) Identity() Identity {
	return Identity{User: r.User, Pro: r.Pro}
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

type SpecialtiesResponse struct {
	Specialties []Specialty `json:"specialites"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error                string `json:"error"`
	RequiresVerification bool   `json:"requires_verification,omitempty"`
	UserID               int64  `json:"user_id,omitempty"`
}
