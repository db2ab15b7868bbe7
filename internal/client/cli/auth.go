package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
)

// Register prompts for a customer account and submits it. On success the
// controller waits for the email code.
func (a *App) Register(ctx context.Context) error {
	form, err := a.readClientForm()
	if err != nil {
		return err
	}
	p, err := a.ctrl.RegisterClient(ctx, form)
	if err != nil {
		return err
	}
	a.announcePending(p)
	return nil
}

// RegisterPro prompts for a professional account, including the business
// profile, and submits it.
func (a *App) RegisterPro(ctx context.Context) error {
	base, err := a.readClientForm()
	if err != nil {
		return err
	}
	form := models.ProRegistration{
		Email:           base.Email,
		Password:        base.Password,
		ConfirmPassword: base.ConfirmPassword,
		Nom:             base.Nom,
		Prenom:          base.Prenom,
		Telephone:       base.Telephone,
	}

	if specialties, err := a.ctrl.Specialties(ctx); err == nil {
		a.printSpecialties(specialties)
	} else {
		a.log.Warn(ctx, "failed to load specialties", "error", err)
	}

	id, err := GetNumber(a.reader, "Specialty id", a.out)
	if err != nil {
		return err
	}
	form.SpecialtyID = int64(id)

	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Business name", &form.BusinessName},
		{"Country", &form.Pays},
		{"Province", &form.Province},
		{"City", &form.Ville},
		{"Salon address", &form.AdresseSalon},
		{"Postal code", &form.CodePostal},
	}
	for _, f := range fields {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}

	if form.TravailSalon, err = GetYesNo(a.reader, "Work at the salon?", a.out); err != nil {
		return err
	}
	if form.TravailDomicile, err = GetYesNo(a.reader, "Work at home?", a.out); err != nil {
		return err
	}
	if form.TravailDomicile {
		if form.DistanceMaxKm, err = GetNumber(a.reader, "Max distance (km)", a.out); err != nil {
			return err
		}
	}
	if form.Bio, err = getSimpleText(a.reader, "Bio (optional)", a.out); err != nil {
		return err
	}

	p, err := a.ctrl.RegisterPro(ctx, form)
	if err != nil {
		return err
	}
	a.announcePending(p)
	return nil
}

func (a *App) readClientForm() (models.ClientRegistration, error) {
	var form models.ClientRegistration
	var err error

	if form.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return form, err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return form, err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return form, err
	}
	defer common.WipeByteArray(confirm)
	form.Password, form.ConfirmPassword = string(password), string(confirm)

	if form.Prenom, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return form, err
	}
	if form.Nom, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return form, err
	}
	if form.Telephone, err = getSimpleText(a.reader, "Phone, e.g. +1 514 123 4567", a.out); err != nil {
		return form, err
	}
	return form, nil
}

func (a *App) announcePending(p auth.PendingRegistration) {
	a.printf("Account created. Enter the %d-digit code sent to %s with 'verify'.\n", auth.CodeLength, p.Email)
}

// Login prompts for credentials. An unverified account moves to the
// verification flow instead of failing.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	err = a.ctrl.Login(ctx, email, string(password))
	if errors.Is(err, client.ErrVerificationRequired) && a.ctrl.Snapshot().Pending != nil {
		a.printf("Email not verified. Enter the %d-digit code sent to %s with 'verify'.\n", auth.CodeLength, email)
		return nil
	}
	if err != nil {
		return err
	}

	a.printf("Logged in as %s\n", email)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	code, err := getSimpleText(a.reader, fmt.Sprintf("Enter the %d-digit code", auth.CodeLength), a.out)
	if err != nil {
		return err
	}
	if err := a.ctrl.VerifyEmail(ctx, 0, code); err != nil {
		return err
	}
	a.println("Email verified, you are logged in.")
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	if err := a.ctrl.ResendCode(ctx); err != nil {
		return err
	}
	a.println("A new code was sent.")
	return nil
}

// Back leaves the verification flow.
func (a *App) Back(context.Context) error {
	return a.ctrl.LeaveVerification()
}

func (a *App) Logout(ctx context.Context) error {
	_ = a.ctrl.Logout(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) Forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	if err := a.ctrl.ForgotPassword(ctx, email); err != nil {
		return err
	}
	a.println("If the account exists, reset instructions were sent.")
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.ctrl.ResetPassword(ctx, token, string(password)); err != nil {
		return err
	}
	a.println("Password changed, you can log in.")
	return nil
}
