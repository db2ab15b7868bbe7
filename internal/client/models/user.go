// Package models defines the wire and session types exchanged with the
// authentication backend.
package models

// Role distinguishes regular customers from professionals.
type Role string

const (
	RoleClient Role = "client"
	RolePro    Role = "pro"
)

// User is the account profile returned by the backend.
type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	Nom           string `json:"nom"`
	Prenom        string `json:"prenom"`
	Telephone     string `json:"telephone"`
	PhotoURL      string `json:"photo_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at,omitempty"`
	LastLogin     string `json:"last_login,omitempty"`
}

// Pro is the professional profile attached to users with RolePro.
type Pro struct {
	ID                int64    `json:"id"`
	UserID            int64    `json:"user_id"`
	Bio               string   `json:"bio,omitempty"`
	BusinessName      string   `json:"business_name"`
	SpecialtyID       int64    `json:"specialite_id"`
	Ville             string   `json:"ville"`
	AdresseSalon      string   `json:"adresse_salon"`
	Pays              string   `json:"pays"`
	Province          string   `json:"province"`
	CodePostal        string   `json:"code_postal"`
	TravailSalon      bool     `json:"travail_salon"`
	TravailDomicile   bool     `json:"travail_domicile"`
	DistanceMaxKm     *float64 `json:"distance_max_km,omitempty"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	RatingAvg         *float64 `json:"rating_avg,omitempty"`
	TotalReviews      int64    `json:"total_reviews,omitempty"`
	TotalAppointments int64    `json:"total_appointments,omitempty"`
	CreatedAt         string   `json:"created_at,omitempty"`
}

// Specialty is an entry of the professional specialties catalogue.
type Specialty struct {
	ID             int64  `json:"id"`
	Nom            string `json:"nom"`
	Slug           string `json:"slug"`
	Description    string `json:"description"`
	IconURL        string `json:"icone_url,omitempty"`
	OrdreAffichage int    `json:"ordre_affichage"`
	IsActive       bool   `json:"is_active"`
}

// Identity is the cached profile of the signed-in user. Pro is set only for
// professionals.
type Identity struct {
	User User
	Pro  *Pro
}

// IsPro reports whether the identity carries a professional profile.
func (i Identity) IsPro() bool {
	return i.User.Role == RolePro && i.Pro != nil
}

// Session is the persisted token pair.
type Session struct {
	AccessToken  string
	RefreshToken string
}

// Present reports whether both tokens are set. A half-present pair is
// treated as no session.
func (s Session) Present() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}
