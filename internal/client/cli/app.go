package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Controller is the part of *auth.Controller the CLI drives.
type Controller interface {
	Startup(ctx context.Context) auth.Status
	Login(ctx context.Context, email, password string) error
	RegisterClient(ctx context.Context, form models.ClientRegistration) (auth.PendingRegistration, error)
	RegisterPro(ctx context.Context, form models.ProRegistration) (auth.PendingRegistration, error)
	VerifyEmail(ctx context.Context, userID int64, code string) error
	ResendCode(ctx context.Context) error
	LeaveVerification() error
	Logout(ctx context.Context) error
	RefreshIdentity(ctx context.Context) (models.Identity, error)
	Specialties(ctx context.Context) ([]models.Specialty, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Snapshot() auth.Snapshot
	Subscribe() (<-chan auth.Snapshot, func())
}

// TokenSource exposes the stored tokens for the status command.
type TokenSource interface {
	Tokens(ctx context.Context) (string, string, error)
}

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	ctrl   Controller
	tokens TokenSource
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
	stats  prometheus.Gatherer
}

func NewApp(ctrl Controller, tokens TokenSource, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Discard()
	}
	return &App{
		ctrl:   ctrl,
		tokens: tokens,
		reader: bufio.NewReader(in),
		out:    &lockedWriter{w: out},
		log:    log,
	}
}

// WithStats makes the stats command report the counters gathered from g.
func (a *App) WithStats(g prometheus.Gatherer) *App {
	a.stats = g
	return a
}

// Run restores the session and serves commands until exit or EOF.
func (a *App) Run(ctx context.Context) error {
	a.println("Welcome to gophauth CLI (type 'help' for commands)")

	switch a.ctrl.Startup(ctx) {
	case auth.StatusAuthenticated:
		if id := a.ctrl.Snapshot().Identity; id != nil {
			a.printf("Welcome back, %s\n", id.User.Email)
		}
	default:
		a.println("Not logged in")
	}

	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.watchStatus(watchCtx)
	}()

	runREPL(ctx, a, a.prompt, a.reader, a.out)

	cancel()
	<-done
	return nil
}

// watchStatus reports transitions the user did not ask for.
func (a *App) watchStatus(ctx context.Context) {
	updates, unsubscribe := a.ctrl.Subscribe()
	defer unsubscribe()

	prev := a.ctrl.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-updates:
			if prev.Status == auth.StatusAuthenticated && snap.Status == auth.StatusUnauthenticated &&
				errors.Is(snap.Err, client.ErrSessionExpired) {
				a.println("Session expired, please log in again.")
			}
			if snap.Status == auth.StatusPendingVerification && snap.Pending != nil &&
				snap.CodeRemaining == 0 && prev.CodeRemaining > 0 {
				a.println("Verification code expired, use 'resend' to get a new one.")
			}
			prev = snap
		}
	}
}

func (a *App) prompt() string {
	snap := a.ctrl.Snapshot()
	switch {
	case snap.Status == auth.StatusAuthenticated && snap.Identity != nil:
		return fmt.Sprintf("(%s)", snap.Identity.User.Email)
	case snap.Status == auth.StatusPendingVerification && snap.Pending != nil:
		return fmt.Sprintf("(verify %s)", snap.Pending.Email)
	default:
		return fmt.Sprintf("(%s)", snap.Status)
	}
}

func (a *App) status() auth.Status {
	return a.ctrl.Snapshot().Status
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
