package models

// ClientRegistration is the payload of POST /auth/inscription.
type ClientRegistration struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"`
	Nom             string `json:"nom" validate:"required"`
	Prenom          string `json:"prenom" validate:"required"`
	Telephone       string `json:"telephone" validate:"required,phone"`
}

// ProRegistration is the payload of POST /auth/inscription-pro.
// DistanceMaxKm is mandatory only for professionals travelling to clients.
type ProRegistration struct {
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,password"`
	ConfirmPassword string  `json:"-" validate:"required,eqfield=Password"`
	Nom             string  `json:"nom" validate:"required"`
	Prenom          string  `json:"prenom" validate:"required"`
	Telephone       string  `json:"telephone" validate:"required,phone"`
	BusinessName    string  `json:"business_name" validate:"required"`
	SpecialtyID     int64   `json:"specialite_id" validate:"required,gt=0"`
	Pays            string  `json:"pays" validate:"required"`
	Province        string  `json:"province" validate:"required"`
	Ville           string  `json:"ville" validate:"required"`
	AdresseSalon    string  `json:"adresse_salon" validate:"required"`
	CodePostal      string  `json:"code_postal" validate:"required"`
	TravailSalon    bool    `json:"travail_salon"`
	TravailDomicile bool    `json:"travail_domicile"`
	DistanceMaxKm   float64 `json:"distance_max_km,omitempty" validate:"required_if=TravailDomicile true,gte=0"`
	Bio             string  `json:"bio,omitempty"`
}

// LoginRequest is the payload of POST /auth/connexion.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest is the payload of POST /auth/verification-email.
type VerifyEmailRequest struct {
	UserID int64  `json:"user_id"`
	Code   string `json:"code"`
}

// ResendCodeRequest is the payload of POST /auth/envoyer-code.
type ResendCodeRequest struct {
	UserID int64 `json:"user_id"`
}

// ForgotPasswordRequest is the payload of POST /auth/mot-de-passe-oublie.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the payload of POST /auth/reinitialiser-mot-de-passe.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
