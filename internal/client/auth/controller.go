// Package auth holds the authentication state machine of the client.
//
// The Controller is the only writer of the auth status. Screens call its
// operations and observe the result through Snapshot or Subscribe. Every
// operation that changes the persisted session goes through a single
// SessionStore, and results of flows that were overtaken by a logout,
// startup or invalidation are discarded with ErrSuperseded.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/forms"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

const (
	DefaultSplashDelay = 2 * time.Second
	DefaultCodeTTL     = 10 * time.Minute
)

// SessionStore is the persisted session as used by the controller.
// *session.Manager implements it.
type SessionStore interface {
	Load(ctx context.Context) (models.Session, error)
	Save(ctx context.Context, s models.Session, id models.Identity) error
	SaveIdentity(ctx context.Context, id models.Identity) error
	Clear(ctx context.Context) error
	HasSession(ctx context.Context) bool
	OnInvalidate(fn session.InvalidateFunc)
}

// Options tune a Controller. Zero values select the defaults.
type Options struct {
	// SplashDelay is the minimum duration of Startup.
	SplashDelay time.Duration
	// CodeTTL is the validity window shown for a verification code.
	CodeTTL time.Duration
	Clock   Clock
	Logger  logging.Logger
}

type Controller struct {
	api   client.Client
	store SessionStore
	log   logging.Logger
	clock Clock

	splashDelay time.Duration
	codeTTL     time.Duration
	countdown   *Countdown

	mu       sync.Mutex
	status   Status
	epoch    uint64
	identity *models.Identity
	pending  *PendingRegistration
	lastErr  error

	subsMu  sync.Mutex
	subs    map[int]chan Snapshot
	nextSub int
}

// New creates a controller in StatusUnknown and registers it for session
// invalidations on store.
func New(api client.Client, store SessionStore, opts Options) *Controller {
	if opts.SplashDelay < 0 {
		opts.SplashDelay = 0
	} else if opts.SplashDelay == 0 {
		opts.SplashDelay = DefaultSplashDelay
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultCodeTTL
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	c := &Controller{
		api:         api,
		store:       store,
		log:         opts.Logger,
		clock:       opts.Clock,
		splashDelay: opts.SplashDelay,
		codeTTL:     opts.CodeTTL,
		subs:        make(map[int]chan Snapshot),
	}
	c.countdown = NewCountdown(opts.Clock, c.codeExpired)
	store.OnInvalidate(c.invalidated)
	return c
}

// Startup restores a persisted session. It never fails: every problem
// ends in StatusUnauthenticated. It returns no earlier than SplashDelay
// after it was called, unless ctx ends first.
func (c *Controller) Startup(ctx context.Context) Status {
	start := c.clock.Now()

	c.mu.Lock()
	if c.status != StatusUnknown {
		s := c.status
		c.mu.Unlock()
		return s
	}
	c.epoch++
	epoch := c.epoch
	c.setStatusLocked(StatusRestoring)
	c.mu.Unlock()

	status := c.restore(ctx, epoch)
	c.wait(ctx, c.splashDelay-c.clock.Now().Sub(start))
	return status
}

func (c *Controller) restore(ctx context.Context, epoch uint64) Status {
	s, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn(ctx, "failed to load session", "error", err)
	}
	if err != nil || !s.Present() {
		return c.degrade(ctx, epoch, nil)
	}

	me, err := c.api.Me(ctx)
	if errors.Is(err, context.Canceled) {
		// no verdict on the stored session; keep it for the next start
		c.log.Info(ctx, "session restore interrupted", "error", err)
		return c.abandon(epoch, err)
	}
	if err != nil {
		c.log.Warn(ctx, "failed to restore session", "error", err)
		return c.degrade(ctx, epoch, err)
	}
	id := me.Identity()

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return c.status
	}
	if err := c.store.SaveIdentity(ctx, id); err != nil {
		c.log.Warn(ctx, "failed to cache identity", "error", err)
	}
	c.identity = &id
	c.lastErr = nil
	c.setStatusLocked(StatusAuthenticated)
	c.log.Info(ctx, "session restored", "user_id", id.User.ID)
	return c.status
}

func (c *Controller) degrade(ctx context.Context, epoch uint64, cause error) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return c.status
	}
	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session", "error", err)
	}
	c.identity = nil
	c.lastErr = cause
	c.setStatusLocked(StatusUnauthenticated)
	return c.status
}

// abandon ends a restore as StatusUnauthenticated without touching storage.
func (c *Controller) abandon(epoch uint64, cause error) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return c.status
	}
	c.identity = nil
	c.lastErr = cause
	c.setStatusLocked(StatusUnauthenticated)
	return c.status
}

func (c *Controller) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	done := make(chan struct{})
	t := c.clock.AfterFunc(d, func() { close(done) })
	defer t.Stop()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// Login authenticates with email and password. A 403 with a user id moves
// the controller to StatusPendingVerification and still returns the error,
// which matches client.ErrVerificationRequired.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	if err := forms.Credentials(email, password); err != nil {
		return err
	}
	epoch, err := c.begin(StatusUnauthenticated, StatusPendingVerification)
	if err != nil {
		return err
	}

	resp, err := c.api.Login(ctx, email, password)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return ErrSuperseded
	}
	if err != nil {
		var apiErr *client.APIError
		if errors.Is(err, client.ErrVerificationRequired) && errors.As(err, &apiErr) && apiErr.UserID != 0 {
			c.pending = &PendingRegistration{UserID: apiErr.UserID, Email: email}
			c.countdown.Reset(c.codeTTL)
			c.lastErr = err
			c.setStatusLocked(StatusPendingVerification)
			return err
		}
		c.pending = nil
		c.countdown.Stop()
		c.lastErr = err
		c.setStatusLocked(StatusUnauthenticated)
		return err
	}

	return c.authenticateLocked(ctx, resp)
}

// RegisterClient creates a customer account and waits for its email code.
func (c *Controller) RegisterClient(ctx context.Context, form models.ClientRegistration) (PendingRegistration, error) {
	if err := forms.Struct(form); err != nil {
		return PendingRegistration{}, err
	}
	return c.register(ctx, form.Email, func() (*models.RegisterResponse, error) {
		return c.api.RegisterClient(ctx, form)
	})
}

// RegisterPro creates a professional account and waits for its email code.
func (c *Controller) RegisterPro(ctx context.Context, form models.ProRegistration) (PendingRegistration, error) {
	if err := forms.Struct(form); err != nil {
		return PendingRegistration{}, err
	}
	return c.register(ctx, form.Email, func() (*models.RegisterResponse, error) {
		return c.api.RegisterPro(ctx, form)
	})
}

func (c *Controller) register(ctx context.Context, email string, call func() (*models.RegisterResponse, error)) (PendingRegistration, error) {
	epoch, err := c.begin(StatusUnauthenticated, StatusPendingVerification)
	if err != nil {
		return PendingRegistration{}, err
	}

	resp, err := call()

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return PendingRegistration{}, ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		c.publishLocked()
		return PendingRegistration{}, err
	}

	p := PendingRegistration{UserID: resp.UserID, Email: resp.Email}
	if p.Email == "" {
		p.Email = email
	}
	c.pending = &p
	c.countdown.Reset(c.codeTTL)
	c.lastErr = nil
	c.setStatusLocked(StatusPendingVerification)
	c.log.Info(ctx, "registration pending verification", "user_id", p.UserID)
	return p, nil
}

// VerifyEmail submits a verification code for the pending account.
// A userID of 0 selects the pending one.
func (c *Controller) VerifyEmail(ctx context.Context, userID int64, code string) error {
	if err := forms.Code(code); err != nil {
		return err
	}

	c.mu.Lock()
	if c.status != StatusPendingVerification || c.pending == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if userID == 0 {
		userID = c.pending.UserID
	} else if userID != c.pending.UserID {
		c.mu.Unlock()
		return ErrInvalidState
	}
	epoch := c.epoch
	c.mu.Unlock()

	resp, err := c.api.VerifyEmail(ctx, userID, code)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		c.publishLocked()
		return err
	}
	return c.authenticateLocked(ctx, resp)
}

// ResendCode asks for a new verification code and restarts the countdown.
func (c *Controller) ResendCode(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusPendingVerification || c.pending == nil {
		c.mu.Unlock()
		return ErrInvalidState
	}
	userID := c.pending.UserID
	epoch := c.epoch
	c.mu.Unlock()

	err := c.api.ResendCode(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.status != StatusPendingVerification {
		return ErrSuperseded
	}
	if err != nil {
		c.lastErr = err
		c.publishLocked()
		return err
	}
	c.countdown.Reset(c.codeTTL)
	c.lastErr = nil
	c.publishLocked()
	return nil
}

// LeaveVerification abandons the pending verification.
func (c *Controller) LeaveVerification() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPendingVerification {
		return ErrInvalidState
	}
	c.epoch++
	c.pending = nil
	c.countdown.Stop()
	c.lastErr = nil
	c.setStatusLocked(StatusUnauthenticated)
	return nil
}

// Logout drops the session. It is idempotent and always succeeds; storage
// errors are only logged.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.identity = nil
	c.pending = nil
	c.countdown.Stop()
	c.lastErr = nil
	c.setStatusLocked(StatusUnauthenticated)

	if err := c.store.Clear(ctx); err != nil {
		c.log.Warn(ctx, "failed to clear session on logout", "error", err)
	}
	return nil
}

// RefreshIdentity reloads the profile of the authenticated user.
func (c *Controller) RefreshIdentity(ctx context.Context) (models.Identity, error) {
	epoch, err := c.begin(StatusAuthenticated)
	if err != nil {
		return models.Identity{}, err
	}

	me, err := c.api.Me(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	id := me.Identity()

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return models.Identity{}, ErrSuperseded
	}
	if err := c.store.SaveIdentity(ctx, id); err != nil {
		c.log.Warn(ctx, "failed to cache identity", "error", err)
	}
	c.identity = &id
	c.publishLocked()
	return id, nil
}

func (c *Controller) Specialties(ctx context.Context) ([]models.Specialty, error) {
	return c.api.Specialties(ctx)
}

func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	if !forms.ValidEmail(email) {
		return forms.ValidationError{Field: "email", Message: "invalid email format"}
	}
	return c.api.ForgotPassword(ctx, email)
}

func (c *Controller) ResetPassword(ctx context.Context, token, newPassword string) error {
	var errs forms.Errors
	if token == "" {
		errs = append(errs, forms.ValidationError{Field: "token", Message: "required"})
	}
	if p := forms.PasswordProblem(newPassword); p != "" {
		errs = append(errs, forms.ValidationError{Field: "new_password", Message: p})
	}
	if len(errs) > 0 {
		return errs
	}
	return c.api.ResetPassword(ctx, token, newPassword)
}

// invalidated runs when the session store is about to drop a session the
// backend no longer accepts. The status leaves StatusAuthenticated before
// the tokens are removed.
func (c *Controller) invalidated(ctx context.Context, refreshToken string, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusAuthenticated {
		return
	}
	// a newer session was saved after the rejected one
	if s, err := c.store.Load(ctx); err == nil && s.RefreshToken != refreshToken {
		return
	}
	c.epoch++
	c.identity = nil
	c.lastErr = client.ErrSessionExpired
	c.setStatusLocked(StatusUnauthenticated)
	c.log.Info(ctx, "session expired", "reason", reason)
}

func (c *Controller) codeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == StatusPendingVerification {
		c.publishLocked()
	}
}

// authenticateLocked persists resp and enters StatusAuthenticated.
func (c *Controller) authenticateLocked(ctx context.Context, resp *models.AuthResponse) error {
	id := resp.Identity()
	if err := c.store.Save(ctx, resp.Session(), id); err != nil {
		c.log.Error(ctx, "failed to persist session", "error", err)
		c.identity = nil
		c.lastErr = err
		c.setStatusLocked(StatusUnauthenticated)
		return err
	}
	c.identity = &id
	c.pending = nil
	c.countdown.Stop()
	c.lastErr = nil
	c.setStatusLocked(StatusAuthenticated)
	c.log.Info(ctx, "authenticated", "user_id", id.User.ID)
	return nil
}

func (c *Controller) begin(allowed ...Status) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range allowed {
		if c.status == s {
			return c.epoch, nil
		}
	}
	return 0, ErrInvalidState
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel that always holds the latest snapshot, and
// a function that cancels the subscription. Intermediate states may be
// skipped by slow readers.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	ch <- c.snapshotLocked()
	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

func (c *Controller) setStatusLocked(s Status) {
	c.status = s
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	snap := c.snapshotLocked()

	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{Status: c.status, Err: c.lastErr}
	if c.identity != nil {
		id := *c.identity
		snap.Identity = &id
	}
	if c.pending != nil {
		p := *c.pending
		snap.Pending = &p
		snap.CodeRemaining = c.countdown.Remaining()
	}
	return snap
}
