package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.ErrorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// fail maps service errors to the status codes clients rely on.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		nv    *users.NotVerifiedError
		errs  forms.Errors
		field forms.ValidationError
	)

	switch {
	case errors.As(err, &nv):
		writeJSON(w, http.StatusForbidden, models.ErrorResponse{
			Error:                "Email non vérifié",
			RequiresVerification: true,
			UserID:               nv.UserID,
		})
	case errors.As(err, &errs), errors.As(err, &field):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrInvalidCode),
		errors.Is(err, users.ErrCodeExpired),
		errors.Is(err, users.ErrAlreadyVerified),
		errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, users.ErrInvalidCredentials), errors.Is(err, users.ErrInvalidRefresh):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, users.ErrInactive):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, users.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func registered(u *users.User) models.RegisterResponse {
	return models.RegisterResponse{
		Message:              "Inscription réussie. Vérifiez votre email.",
		UserID:               u.Profile.ID,
		Email:                u.Profile.Email,
		RequiresVerification: true,
	}
}

func authResponse(msg string, p *users.TokenPair, u *users.User) models.AuthResponse {
	return models.AuthResponse{
		Success:      true,
		Message:      msg,
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		User:         u.Profile,
		Pro:          u.Pro,
	}
}

func (s *Server) registerClient(w http.ResponseWriter, r *http.Request) {
	var form models.ClientRegistration
	if !decodeBody(w, r, &form) {
		return
	}
	// the confirmation never travels over the wire
	form.ConfirmPassword = form.Password

	u, err := s.users.RegisterClient(r.Context(), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered(u))
}

func (s *Server) registerPro(w http.ResponseWriter, r *http.Request) {
	var form models.ProRegistration
	if !decodeBody(w, r, &form) {
		return
	}
	form.ConfirmPassword = form.Password

	u, err := s.users.RegisterPro(r.Context(), form)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registered(u))
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyEmailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, u, err := s.users.VerifyEmail(r.Context(), req.UserID, req.Code)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse("Email vérifié", pair, u))
}

func (s *Server) resendCode(w http.ResponseWriter, r *http.Request) {
	var req models.ResendCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.users.ResendCode(r.Context(), req.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Code envoyé"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	pair, u, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse("Connexion réussie", pair, u))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Me(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MeResponse{User: u.Profile, Pro: u.Pro})
}

// refresh expects the refresh token as the bearer credential.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	access, err := s.users.Refresh(r.Context(), token)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.RefreshResponse{AccessToken: access})
}

func (s *Server) specialties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.SpecialtiesResponse{Specialties: s.users.Specialties()})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.users.ForgotPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Si ce compte existe, un email a été envoyé"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Mot de passe réinitialisé"})
}
