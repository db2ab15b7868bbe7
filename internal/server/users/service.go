package users

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/refreshtokens"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CodeSink receives every verification code and password reset token the
// service issues. There is no mail delivery; the sink is how they get out.
type CodeSink func(email, kind, value string)

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	codeValidityDuration         time.Duration
	maxCodeAttempts              int
	sink                         CodeSink
	now                          func() time.Time

	refreshes atomic.Int64
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config, sink CodeSink) *Service {
	if sink == nil {
		sink = func(string, string, string) {}
	}
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		codeValidityDuration:         cfg.CodeValidityDuration,
		maxCodeAttempts:              cfg.MaxCodeAttempts,
		sink:                         sink,
		now:                          time.Now,
	}
}

// Refreshes returns how many access tokens were issued through Refresh.
func (s *Service) Refreshes() int64 {
	return s.refreshes.Load()
}

func (s *Service) RegisterClient(ctx context.Context, form models.ClientRegistration) (*User, error) {
	if err := forms.Struct(form); err != nil {
		return nil, err
	}

	user := &User{Profile: models.User{
		Email:     strings.TrimSpace(form.Email),
		Role:      models.RoleClient,
		Nom:       form.Nom,
		Prenom:    form.Prenom,
		Telephone: form.Telephone,
		IsActive:  true,
	}}
	return s.register(ctx, user, form.Password)
}

func (s *Service) RegisterPro(ctx context.Context, form models.ProRegistration) (*User, error) {
	if err := forms.Struct(form); err != nil {
		return nil, err
	}

	pro := &models.Pro{
		Bio:             form.Bio,
		BusinessName:    form.BusinessName,
		SpecialtyID:     form.SpecialtyID,
		Ville:           form.Ville,
		AdresseSalon:    form.AdresseSalon,
		Pays:            form.Pays,
		Province:        form.Province,
		CodePostal:      form.CodePostal,
		TravailSalon:    form.TravailSalon,
		TravailDomicile: form.TravailDomicile,
	}
	if form.TravailDomicile {
		d := form.DistanceMaxKm
		pro.DistanceMaxKm = &d
	}

	user := &User{
		Profile: models.User{
			Email:     strings.TrimSpace(form.Email),
			Role:      models.RolePro,
			Nom:       form.Nom,
			Prenom:    form.Prenom,
			Telephone: form.Telephone,
			IsActive:  true,
		},
		Pro: pro,
	}
	return s.register(ctx, user, form.Password)
}

func (s *Service) register(ctx context.Context, user *User, password string) (*User, error) {
	user.Salt = common.GenerateRandByteArray(cryptox.SaltSize)
	user.Verifier = cryptox.DeriveKey([]byte(password), user.Salt)
	user.Profile.CreatedAt = s.now().UTC().Format(time.RFC3339)

	if err := s.setCode(user); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.sink(created.Profile.Email, "verification", created.Code)
	return created, nil
}

func (s *Service) setCode(user *User) error {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return err
	}
	user.Code = fmt.Sprintf("%04d", n.Int64())
	user.CodeExpires = s.now().Add(s.codeValidityDuration)
	user.CodeAttempts = 0
	return nil
}

// VerifyEmail confirms the email of userID and signs the user in.
func (s *Service) VerifyEmail(ctx context.Context, userID int64, code string) (*TokenPair, *User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.Profile.EmailVerified {
		return nil, nil, ErrAlreadyVerified
	}
	if user.CodeAttempts >= s.maxCodeAttempts {
		return nil, nil, ErrTooManyAttempts
	}
	if s.now().After(user.CodeExpires) {
		return nil, nil, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(user.Code), []byte(code)) != 1 {
		user.CodeAttempts++
		if err := s.repo.Update(ctx, user); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrInvalidCode
	}

	user.Profile.EmailVerified = true
	user.Code = ""
	user.CodeAttempts = 0

	return s.signIn(ctx, user)
}

// ResendCode issues a fresh code and resets the attempt counter.
func (s *Service) ResendCode(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Profile.EmailVerified {
		return ErrAlreadyVerified
	}
	if err := s.setCode(user); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.sink(user.Profile.Email, "verification", user.Code)
	return nil
}

func (s *Service) checkVerifier(verifier []byte, verifierCandidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, verifierCandidate) == 1
}

func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, *User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.checkVerifier(user.Verifier, cryptox.DeriveKey([]byte(password), user.Salt)) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Profile.IsActive {
		return nil, nil, ErrInactive
	}
	if !user.Profile.EmailVerified {
		return nil, nil, &NotVerifiedError{UserID: user.Profile.ID}
	}

	return s.signIn(ctx, user)
}

func (s *Service) signIn(ctx context.Context, user *User) (*TokenPair, *User, error) {
	user.Profile.LastLogin = s.now().UTC().Format(time.RFC3339)
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	accessToken, err := auth.GenerateToken(user.Profile.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, nil, err
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, nil, err
	}

	if err := s.refreshTokenRepo.Create(ctx, user.Profile.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// Authenticate resolves a bearer access token to its user id.
func (s *Service) Authenticate(accessToken string) (int64, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrInvalidRefresh
		}
		return "", err
	}
	if s.now().After(rt.Expires) {
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return "", ErrInvalidRefresh
	}

	token, err := auth.GenerateToken(rt.UserID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}
	s.refreshes.Add(1)
	return token, nil
}

// RevokeSessions drops every refresh token of userID.
func (s *Service) RevokeSessions(ctx context.Context, userID int64) error {
	return s.refreshTokenRepo.DeleteForUser(ctx, userID)
}

// ForgotPassword issues a reset token when email is registered. Unknown
// addresses succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := common.MakeRandHexString(16)
	if err != nil {
		return err
	}
	user.ResetToken = token
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.sink(user.Profile.Email, "reset", token)
	return nil
}

// ResetPassword replaces the password and revokes existing sessions.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if problem := forms.PasswordProblem(newPassword); problem != "" {
		return forms.ValidationError{Field: "new_password", Message: problem}
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return err
	}

	user.Salt = common.GenerateRandByteArray(cryptox.SaltSize)
	user.Verifier = cryptox.DeriveKey([]byte(newPassword), user.Salt)
	user.ResetToken = ""
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	return s.refreshTokenRepo.DeleteForUser(ctx, user.Profile.ID)
}

// Specialties returns the active entries of the catalogue.
func (s *Service) Specialties() []models.Specialty {
	out := make([]models.Specialty, 0, len(catalogue))
	for _, sp := range catalogue {
		if sp.IsActive {
			out = append(out, sp)
		}
	}
	return out
}

var catalogue = []models.Specialty{
	{ID: 1, Nom: "Coiffure", Slug: "coiffure", Description: "Coupe, couleur et coiffage", OrdreAffichage: 1, IsActive: true},
	{ID: 2, Nom: "Barbier", Slug: "barbier", Description: "Taille de barbe et rasage", OrdreAffichage: 2, IsActive: true},
	{ID: 3, Nom: "Esthétique", Slug: "esthetique", Description: "Soins du visage et du corps", OrdreAffichage: 3, IsActive: true},
	{ID: 4, Nom: "Onglerie", Slug: "onglerie", Description: "Manucure et pose d'ongles", OrdreAffichage: 4, IsActive: true},
	{ID: 5, Nom: "Maquillage", Slug: "maquillage", Description: "Maquillage événementiel", OrdreAffichage: 5, IsActive: false},
}
