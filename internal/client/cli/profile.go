package cli

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/metrics"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// Whoami reloads and prints the profile of the logged in user.
func (a *App) Whoami(ctx context.Context) error {
	id, err := a.ctrl.RefreshIdentity(ctx)
	if err != nil {
		return err
	}
	a.printIdentity(id)
	return nil
}

// Stats prints the token lifecycle counters of this run.
func (a *App) Stats(context.Context) error {
	if a.stats == nil {
		a.println("No statistics collected")
		return nil
	}
	lines, err := metrics.Counters(a.stats)
	if err != nil {
		return err
	}
	for _, l := range lines {
		a.println(l)
	}
	return nil
}

// Status prints the controller state without touching the network.
func (a *App) Status(ctx context.Context) error {
	snap := a.ctrl.Snapshot()
	a.printf("Status: %s\n", snap.Status)

	switch snap.Status {
	case auth.StatusAuthenticated:
		if snap.Identity != nil {
			a.printIdentity(*snap.Identity)
		}
		a.printTokenExpiry(ctx)
	case auth.StatusPendingVerification:
		if snap.Pending != nil {
			a.printf("Waiting for the code sent to %s (user %d)\n", snap.Pending.Email, snap.Pending.UserID)
		}
		if snap.CodeRemaining > 0 {
			a.printf("Code valid for %s\n", snap.CodeRemaining.Truncate(time.Second))
		} else {
			a.println("Code expired, use 'resend'.")
		}
	}
	if snap.Err != nil {
		a.printf("Last error: %s\n", describeError(snap.Err))
	}
	return nil
}

func (a *App) printTokenExpiry(ctx context.Context) {
	if a.tokens == nil {
		return
	}
	access, _, err := a.tokens.Tokens(ctx)
	if err != nil || access == "" {
		return
	}
	exp, err := session.ExpiresAt(access)
	if err != nil {
		a.log.Debug(ctx, "access token has no readable expiry", "error", err)
		return
	}
	if left := time.Until(exp); left > 0 {
		a.printf("Access token expires in %s\n", left.Truncate(time.Second))
	} else {
		a.println("Access token expired, it will be refreshed on the next request.")
	}
}

func (a *App) Specialties(ctx context.Context) error {
	specialties, err := a.ctrl.Specialties(ctx)
	if err != nil {
		return err
	}
	a.printSpecialties(specialties)
	return nil
}

func (a *App) printSpecialties(specialties []models.Specialty) {
	sorted := append([]models.Specialty(nil), specialties...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].OrdreAffichage < sorted[j].OrdreAffichage })
	for _, s := range sorted {
		if !s.IsActive {
			continue
		}
		a.printf("%3d  %s\n", s.ID, s.Nom)
	}
}

func (a *App) printIdentity(id models.Identity) {
	u := id.User
	a.printf("%s %s <%s> (%s)\n", u.Prenom, u.Nom, u.Email, u.Role)
	if u.Telephone != "" {
		a.printf("Phone: %s\n", u.Telephone)
	}
	if id.IsPro() && id.Pro != nil {
		p := id.Pro
		a.printf("Business: %s, %s (%s)\n", p.BusinessName, p.Ville, p.Province)
		if p.RatingAvg != nil {
			a.printf("Rating: %.1f (%d reviews)\n", *p.RatingAvg, p.TotalReviews)
		}
	}
}
