package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// HTTPClient implements Client over a Gateway.
type HTTPClient struct {
	gw *Gateway
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(gw *Gateway) *HTTPClient {
	return &HTTPClient{gw: gw}
}

func (c *HTTPClient) RegisterClient(ctx context.Context, form models.ClientRegistration) (*models.RegisterResponse, error) {
	var out models.RegisterResponse
	err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/inscription", Body: form, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RegisterPro(ctx context.Context, form models.ProRegistration) (*models.RegisterResponse, error) {
	var out models.RegisterResponse
	err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/inscription-pro", Body: form, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail reports a rejected code as ErrInvalidCode with the server
// message kept in the *APIError.
func (c *HTTPClient) VerifyEmail(ctx context.Context, userID int64, code string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.gw.Do(ctx, Request{
		Method:     http.MethodPost,
		Path:       "/auth/verification-email",
		Body:       models.VerifyEmailRequest{UserID: userID, Code: code},
		Anonymous:  true,
		BadRequest: ErrInvalidCode,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ResendCode(ctx context.Context, userID int64) error {
	return c.gw.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/envoyer-code",
		Body:      models.ResendCodeRequest{UserID: userID},
		Anonymous: true,
	}, nil)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.gw.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/connexion",
		Body:      models.LoginRequest{Email: email, Password: password},
		Anonymous: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*models.MeResponse, error) {
	var out models.MeResponse
	if err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/moi"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Specialties(ctx context.Context) ([]models.Specialty, error) {
	var out models.SpecialtiesResponse
	err := c.gw.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/specialites", Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return out.Specialties, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	return c.gw.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/mot-de-passe-oublie",
		Body:      models.ForgotPasswordRequest{Email: email},
		Anonymous: true,
	}, nil)
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.gw.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/reinitialiser-mot-de-passe",
		Body:      models.ResetPasswordRequest{Token: token, NewPassword: newPassword},
		Anonymous: true,
	}, nil)
}
