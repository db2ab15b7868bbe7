package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fake controller
 *************/

type fakeCtrl struct {
	mu      sync.Mutex
	snap    auth.Snapshot
	updates chan auth.Snapshot

	loginErr   error
	email      string
	password   string
	pro        models.ProRegistration
	code       string
	logouts    int
	identity   models.Identity
	specialist []models.Specialty
}

func newFakeCtrl(status auth.Status) *fakeCtrl {
	return &fakeCtrl{snap: auth.Snapshot{Status: status}, updates: make(chan auth.Snapshot, 1)}
}

func (f *fakeCtrl) set(snap auth.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	select {
	case <-f.updates:
	default:
	}
	f.updates <- snap
}

func (f *fakeCtrl) Startup(context.Context) auth.Status { return f.Snapshot().Status }

func (f *fakeCtrl) Login(_ context.Context, email, password string) error {
	f.email, f.password = email, password
	if f.loginErr != nil {
		f.set(auth.Snapshot{Status: auth.StatusPendingVerification, Pending: &auth.PendingRegistration{UserID: 1, Email: email}})
		return f.loginErr
	}
	f.set(auth.Snapshot{Status: auth.StatusAuthenticated})
	return nil
}

func (f *fakeCtrl) RegisterClient(_ context.Context, form models.ClientRegistration) (auth.PendingRegistration, error) {
	f.email, f.password = form.Email, form.Password
	return auth.PendingRegistration{UserID: 1, Email: form.Email}, nil
}

func (f *fakeCtrl) RegisterPro(_ context.Context, form models.ProRegistration) (auth.PendingRegistration, error) {
	f.pro = form
	return auth.PendingRegistration{UserID: 2, Email: form.Email}, nil
}

func (f *fakeCtrl) VerifyEmail(_ context.Context, _ int64, code string) error {
	f.code = code
	return nil
}

func (f *fakeCtrl) ResendCode(context.Context) error { return nil }
func (f *fakeCtrl) LeaveVerification() error         { return nil }

func (f *fakeCtrl) Logout(context.Context) error {
	f.logouts++
	return nil
}

func (f *fakeCtrl) RefreshIdentity(context.Context) (models.Identity, error) { return f.identity, nil }

func (f *fakeCtrl) Specialties(context.Context) ([]models.Specialty, error) {
	return f.specialist, nil
}

func (f *fakeCtrl) ForgotPassword(context.Context, string) error        { return nil }
func (f *fakeCtrl) ResetPassword(context.Context, string, string) error { return nil }

func (f *fakeCtrl) Snapshot() auth.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeCtrl) Subscribe() (<-chan auth.Snapshot, func()) { return f.updates, func() {} }

func newTestApp(t *testing.T, ctrl Controller, input string) (*App, *bytes.Buffer) {
	t.Helper()
	stubTerminal(t, false, nil, nil)
	var out bytes.Buffer
	return NewApp(ctrl, nil, bytes.NewBufferString(input), &out, nil), &out
}

func TestLogin_VerificationRequiredSwitchesFlow(t *testing.T) {
	ctrl := newFakeCtrl(auth.StatusUnauthenticated)
	ctrl.loginErr = &client.APIError{Status: 403, UserID: 1, Kind: client.ErrVerificationRequired}
	a, out := newTestApp(t, ctrl, "jane@example.com\nSecret1!x\n")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "jane@example.com", ctrl.email)
	assert.Equal(t, "Secret1!x", ctrl.password)
	assert.Contains(t, out.String(), "Email not verified")
}

func TestRegisterPro_CollectsBusinessProfile(t *testing.T) {
	ctrl := newFakeCtrl(auth.StatusUnauthenticated)
	ctrl.specialist = []models.Specialty{
		{ID: 2, Nom: "Barbier", OrdreAffichage: 2, IsActive: true},
		{ID: 1, Nom: "Coiffure", OrdreAffichage: 1, IsActive: true},
		{ID: 9, Nom: "Ancien", OrdreAffichage: 0, IsActive: false},
	}
	input := "pro@example.com\nSecret1!x\nSecret1!x\nJo\nDoe\n+15141234567\n" +
		"1\nSalon Jo\nCanada\nQC\nMontreal\n1 rue X\nH2X 1Y4\ny\ny\n15\nHello\n"
	a, out := newTestApp(t, ctrl, input)

	require.NoError(t, a.RegisterPro(context.Background()))

	want := models.ProRegistration{
		Email: "pro@example.com", Password: "Secret1!x", ConfirmPassword: "Secret1!x",
		Nom: "Doe", Prenom: "Jo", Telephone: "+15141234567",
		BusinessName: "Salon Jo", SpecialtyID: 1, Pays: "Canada", Province: "QC", Ville: "Montreal",
		AdresseSalon: "1 rue X", CodePostal: "H2X 1Y4", TravailSalon: true, TravailDomicile: true,
		DistanceMaxKm: 15, Bio: "Hello",
	}
	assert.Equal(t, want, ctrl.pro)

	text := out.String()
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Coiffure")), bytes.Index(out.Bytes(), []byte("Barbier")))
	assert.NotContains(t, text, "Ancien")
	assert.Contains(t, text, "pro@example.com with 'verify'")
}

func TestLogout_AlwaysSucceeds(t *testing.T) {
	ctrl := newFakeCtrl(auth.StatusAuthenticated)
	a, out := newTestApp(t, ctrl, "")

	require.NoError(t, a.Logout(context.Background()))
	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, 2, ctrl.logouts)
	assert.Contains(t, out.String(), "Logged out.")
}

func TestStatus_PendingShowsCountdown(t *testing.T) {
	ctrl := newFakeCtrl(auth.StatusPendingVerification)
	ctrl.snap.Pending = &auth.PendingRegistration{UserID: 3, Email: "jane@example.com"}
	ctrl.snap.CodeRemaining = 9*time.Minute + 30*time.Second + 400*time.Millisecond
	a, out := newTestApp(t, ctrl, "")

	require.NoError(t, a.Status(context.Background()))
	assert.Contains(t, out.String(), "Status: pending_verification")
	assert.Contains(t, out.String(), "Code valid for 9m30s")
}

func TestWatchStatus_ReportsSessionExpiry(t *testing.T) {
	ctrl := newFakeCtrl(auth.StatusAuthenticated)
	a, out := newTestApp(t, ctrl, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.watchStatus(ctx)
	}()

	ctrl.set(auth.Snapshot{Status: auth.StatusUnauthenticated, Err: client.ErrSessionExpired})

	require.Eventually(t, func() bool {
		return bytes.Contains(a.outBytes(out), []byte("Session expired"))
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

// outBytes reads out under the App's writer lock.
func (a *App) outBytes(out *bytes.Buffer) []byte {
	lw := a.out.(*lockedWriter)
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return append([]byte(nil), out.Bytes()...)
}

/*************
 * End to end against the development backend
 *************/

type codeBox struct {
	mu    sync.Mutex
	codes map[string]string
	ready chan struct{}
}

func (c *codeBox) sink(email, kind, value string) {
	if kind != "verification" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[email] = value
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *codeBox) get(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

func TestApp_RegisterVerifyWhoamiLogout(t *testing.T) {
	stubTerminal(t, false, nil, nil)

	var cfg config.Config
	cfg.LoadDefaults()
	codes := &codeBox{codes: make(map[string]string), ready: make(chan struct{}, 1)}
	svc := users.NewService(users.NewMemoryRepository(), refreshtokens.NewMemoryRepository(), &cfg, codes.sink)
	ts := httptest.NewServer(httpapi.NewServer(":0", logging.Discard(), svc).Handler())
	defer ts.Close()

	mgr := session.NewManager(kv.NewMemoryRepository(), logging.Discard(), nil)
	ctrl := auth.New(client.NewHTTPClient(client.NewGateway(ts.URL, mgr)), mgr, auth.Options{SplashDelay: -1})

	pr, pw := io.Pipe()
	var out bytes.Buffer
	app := NewApp(ctrl, mgr, pr, &out, nil)

	go func() {
		defer pw.Close()
		write := func(s string) { _, _ = io.WriteString(pw, s) }
		write("register\njane@example.com\nSecret1!x\nSecret1!x\nJane\nDoe\n+1 514 123 4567\n")
		select {
		case <-codes.ready:
		case <-time.After(5 * time.Second):
			return
		}
		write("verify\n" + codes.get("jane@example.com") + "\n")
		write("whoami\nstatus\nlogout\nstatus\nexit\n")
	}()

	require.NoError(t, app.Run(context.Background()))

	text := app.outBytes(&out)
	assert.Contains(t, string(text), "Not logged in")
	assert.Contains(t, string(text), "Account created")
	assert.Contains(t, string(text), "Email verified, you are logged in.")
	assert.Contains(t, string(text), "Jane Doe <jane@example.com> (client)")
	assert.Contains(t, string(text), "Access token expires in")
	assert.Contains(t, string(text), "Logged out.")
	assert.Contains(t, string(text), "Status: unauthenticated")
	assert.Equal(t, auth.StatusUnauthenticated, ctrl.Status())
	assert.False(t, mgr.HasSession(context.Background()))
}
