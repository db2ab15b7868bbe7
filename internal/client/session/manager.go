// Package session persists the token pair and cached identity of the
// signed-in user and is the single writer of that state.
//
// The auth controller saves and clears sessions; the API gateway rotates the
// access token and invalidates sessions it cannot recover. Both go through
// Manager so every write is serialized behind one mutex.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophauth/internal/client/metrics"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// InvalidateFunc is called when a session is being invalidated, before its
// keys are removed. refreshToken identifies the session being dropped.
type InvalidateFunc func(ctx context.Context, refreshToken, reason string)

type Manager struct {
	mu       sync.Mutex
	repo     kv.Repository
	cache    models.Session
	loaded   bool
	dropping string // refresh token of the session being invalidated
	log      logging.Logger
	metrics  *metrics.Metrics

	lmu       sync.Mutex
	listeners []InvalidateFunc
}

func NewManager(repo kv.Repository, log logging.Logger, m *metrics.Metrics) *Manager {
	return &Manager{repo: repo, log: log, metrics: m}
}

// OnInvalidate registers fn to be called by every effective Invalidate.
// Listeners run without the manager lock held and may call back into it.
func (m *Manager) OnInvalidate(fn InvalidateFunc) {
	m.lmu.Lock()
	m.listeners = append(m.listeners, fn)
	m.lmu.Unlock()
}

// Load reads the persisted token pair. A half-present pair is wiped and
// reported as no session.
func (m *Manager) Load(ctx context.Context) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.loadLocked(ctx)
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (m *Manager) loadLocked(ctx context.Context) (models.Session, error) {
	if m.loaded {
		return m.cache, nil
	}

	access, err := m.repo.Get(ctx, common.KeyAccessToken)
	if err != nil {
		return models.Session{}, fmt.Errorf("read access token: %w", err)
	}
	refresh, err := m.repo.Get(ctx, common.KeyRefreshToken)
	if err != nil {
		return models.Session{}, fmt.Errorf("read refresh token: %w", err)
	}

	s := models.Session{AccessToken: string(access), RefreshToken: string(refresh)}
	if !s.Present() {
		if s.AccessToken != "" || s.RefreshToken != "" {
			m.log.Warn(ctx, "discarding half-present session")
			if err := m.repo.MultiRemove(ctx, common.SessionKeys()...); err != nil {
				return models.Session{}, fmt.Errorf("wipe partial session: %w", err)
			}
		}
		s = models.Session{}
	}

	m.cache = s
	m.loaded = true
	return s, nil
}

// Save persists s and id. Keys are written refresh token first, then access
// token, user and pro. The in-memory tokens change only once every write
// succeeded; on failure the partial write is removed.
func (m *Manager) Save(ctx context.Context, s models.Session, id models.Identity) error {
	if !s.Present() {
		return fmt.Errorf("save session: %w", common.ErrInvalidToken)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.writeLocked(ctx, s, id); err != nil {
		m.cache = models.Session{}
		m.loaded = true
		if rmErr := m.repo.MultiRemove(ctx, common.SessionKeys()...); rmErr != nil {
			m.log.Error(ctx, "failed to roll back partial session", "error", rmErr)
		}
		return err
	}

	m.cache = s
	m.loaded = true
	return nil
}

func (m *Manager) writeLocked(ctx context.Context, s models.Session, id models.Identity) error {
	if err := m.repo.Set(ctx, common.KeyRefreshToken, []byte(s.RefreshToken)); err != nil {
		return fmt.Errorf("write refresh token: %w", err)
	}
	if err := m.repo.Set(ctx, common.KeyAccessToken, []byte(s.AccessToken)); err != nil {
		return fmt.Errorf("write access token: %w", err)
	}
	return m.writeIdentityLocked(ctx, id)
}

func (m *Manager) writeIdentityLocked(ctx context.Context, id models.Identity) error {
	user, err := json.Marshal(id.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.repo.Set(ctx, common.KeyUser, user); err != nil {
		return fmt.Errorf("write user: %w", err)
	}

	if id.Pro == nil {
		if err := m.repo.Delete(ctx, common.KeyPro); err != nil {
			return fmt.Errorf("remove pro: %w", err)
		}
		return nil
	}

	pro, err := json.Marshal(id.Pro)
	if err != nil {
		return fmt.Errorf("encode pro: %w", err)
	}
	if err := m.repo.Set(ctx, common.KeyPro, pro); err != nil {
		return fmt.Errorf("write pro: %w", err)
	}
	return nil
}

// SaveIdentity refreshes the persisted profile of the current session.
func (m *Manager) SaveIdentity(ctx context.Context, id models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cache.Present() {
		return fmt.Errorf("save identity: %w", common.ErrorNotFound)
	}
	return m.writeIdentityLocked(ctx, id)
}

// Identity returns the persisted profile, or nil when none is stored.
func (m *Manager) Identity(ctx context.Context) (*models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.repo.Get(ctx, common.KeyUser)
	if err != nil || raw == nil {
		return nil, err
	}

	var id models.Identity
	if err := json.Unmarshal(raw, &id.User); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	raw, err = m.repo.Get(ctx, common.KeyPro)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		id.Pro = &models.Pro{}
		if err := json.Unmarshal(raw, id.Pro); err != nil {
			return nil, fmt.Errorf("decode pro: %w", err)
		}
	}
	return &id, nil
}

// Clear drops the in-memory tokens and then removes every session key.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.clearLocked(ctx)
}

func (m *Manager) clearLocked(ctx context.Context) error {
	m.cache = models.Session{}
	m.loaded = true

	if err := m.repo.MultiRemove(ctx, common.SessionKeys()...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// HasSession reports whether a token pair is currently held.
func (m *Manager) HasSession(ctx context.Context) bool {
	s, err := m.Load(ctx)
	return err == nil && s.Present()
}

// Tokens returns the current access and refresh tokens; both are empty when
// no session is held.
func (m *Manager) Tokens(ctx context.Context) (string, string, error) {
	s, err := m.Load(ctx)
	if err != nil {
		return "", "", err
	}
	return s.AccessToken, s.RefreshToken, nil
}

// RotateAccessToken stores access as the new access token, provided the
// session is still the one identified by refreshToken. It reports whether
// the rotation was applied.
func (m *Manager) RotateAccessToken(ctx context.Context, refreshToken, access string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, err := m.loadLocked(ctx)
	if err != nil {
		return false, err
	}
	if !cur.Present() || cur.RefreshToken != refreshToken {
		m.log.Debug(ctx, "skipping token rotation for a replaced session")
		return false, nil
	}

	if err := m.repo.Set(ctx, common.KeyAccessToken, []byte(access)); err != nil {
		return false, fmt.Errorf("write access token: %w", err)
	}
	m.cache.AccessToken = access
	return true, nil
}

// Invalidate drops the session identified by refreshToken. Listeners are
// notified first, then the keys are removed unless the session was replaced
// in the meantime. Nothing happens when there is no such session.
func (m *Manager) Invalidate(ctx context.Context, refreshToken, reason string) (bool, error) {
	m.mu.Lock()
	cur, err := m.loadLocked(ctx)
	if err != nil {
		m.mu.Unlock()
		return false, err
	}
	if !cur.Present() || cur.RefreshToken != refreshToken || m.dropping == refreshToken {
		m.mu.Unlock()
		return false, nil
	}
	m.dropping = refreshToken
	m.mu.Unlock()

	m.lmu.Lock()
	listeners := append([]InvalidateFunc(nil), m.listeners...)
	m.lmu.Unlock()
	for _, fn := range listeners {
		fn(ctx, refreshToken, reason)
	}

	m.mu.Lock()
	m.dropping = ""
	cur, err = m.loadLocked(ctx)
	if err == nil && cur.RefreshToken == refreshToken {
		err = m.clearLocked(ctx)
	}
	m.mu.Unlock()

	m.metrics.Invalidation(reason)
	m.log.Info(ctx, "session invalidated", "reason", reason)
	return true, err
}
