package client

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/client/models"
)

// Client is the authentication backend as seen by the auth controller.
type Client interface {
	RegisterClient(ctx context.Context, form models.ClientRegistration) (*models.RegisterResponse, error)
	RegisterPro(ctx context.Context, form models.ProRegistration) (*models.RegisterResponse, error)
	VerifyEmail(ctx context.Context, userID int64, code string) (*models.AuthResponse, error)
	ResendCode(ctx context.Context, userID int64) error
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Me(ctx context.Context) (*models.MeResponse, error)
	Specialties(ctx context.Context) ([]models.Specialty, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}
