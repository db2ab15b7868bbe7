package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/metrics"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds every backend request.
const DefaultTimeout = 10 * time.Second

const refreshPath = "/auth/rafraichir"

// Invalidation reasons reported to the TokenKeeper.
const (
	ReasonNoRefreshToken  = "no_refresh_token"
	ReasonRefreshRejected = "refresh_rejected"
)

// TokenKeeper owns the persisted token pair. Rotation and invalidation apply
// only while the session is still identified by refreshToken.
type TokenKeeper interface {
	Tokens(ctx context.Context) (access, refresh string, err error)
	RotateAccessToken(ctx context.Context, refreshToken, access string) (bool, error)
	Invalidate(ctx context.Context, refreshToken, reason string) (bool, error)
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Body   any
	// Anonymous requests never refresh: a 401 there means bad credentials.
	Anonymous bool
	// BadRequest overrides the error kind of a 400 reply.
	BadRequest error
}

// Gateway sends requests to the backend with token injection and the
// refresh-and-retry-once protocol.
type Gateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenKeeper
	group   singleflight.Group
	log     logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.http = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) { g.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func NewGateway(baseURL string, tokens TokenKeeper, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Do performs req and decodes a 2xx body into out (when out is non-nil).
func (g *Gateway) Do(ctx context.Context, req Request, out any) error {
	body, err := encode(req.Body)
	if err != nil {
		return err
	}

	access, _, err := g.tokens.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("read tokens: %w", err)
	}

	reqID := uuid.NewString()
	log := g.log.With("method", req.Method, "path", req.Path, "request_id", reqID)

	resp, err := g.send(ctx, req.Method, req.Path, body, access, reqID)
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !req.Anonymous {
		drain(resp)

		fresh, err := g.refresh(ctx, access)
		if err != nil {
			log.Info(ctx, "token refresh failed", "error", err)
			return err
		}

		g.metrics.Retry()
		log.Debug(ctx, "retrying with refreshed token")

		// the retried request is never refreshed again; a second 401 surfaces
		resp, err = g.send(ctx, req.Method, req.Path, body, fresh, reqID)
		if err != nil {
			log.Warn(ctx, "retry failed", "error", err)
			return err
		}
	}

	return decode(resp, req.BadRequest, out)
}

func (g *Gateway) send(ctx context.Context, method, path string, body []byte, bearer, reqID string) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	r, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Accept", "application/json")
	r.Header.Set(common.RequestIDHeaderName, reqID)
	if bearer != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+bearer)
	}

	resp, err := g.http.Do(r)
	if err != nil {
		g.metrics.Request(path, 0)
		return nil, mapTransportError(err)
	}
	g.metrics.Request(path, resp.StatusCode)
	return resp, nil
}

// refresh returns an access token to retry with. Callers presenting the same
// stale token share one refresh; the refresh itself outlives ctx.
func (g *Gateway) refresh(ctx context.Context, stale string) (string, error) {
	ch := g.group.DoChan(stale, func() (any, error) {
		return g.doRefresh(context.WithoutCancel(ctx), stale)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (g *Gateway) doRefresh(ctx context.Context, stale string) (string, error) {
	access, refresh, err := g.tokens.Tokens(ctx)
	if err != nil {
		return "", fmt.Errorf("read tokens: %w", err)
	}

	if access != "" && access != stale {
		g.metrics.Refresh(metrics.RefreshReused)
		return access, nil
	}

	if refresh == "" {
		g.metrics.Refresh(metrics.RefreshNoToken)
		// nothing to invalidate when there never was a session
		if access == "" {
			return "", ErrSessionExpired
		}
		if _, err := g.tokens.Invalidate(ctx, refresh, ReasonNoRefreshToken); err != nil {
			g.log.Error(ctx, "failed to clear session", "error", err)
		}
		return "", ErrSessionExpired
	}

	resp, err := g.send(ctx, http.MethodPost, refreshPath, nil, refresh, uuid.NewString())
	if err != nil {
		g.metrics.Refresh(metrics.RefreshConnection)
		return "", err
	}

	var out models.RefreshResponse
	err = decode(resp, nil, &out)
	if err == nil && out.AccessToken == "" {
		err = &APIError{Status: resp.StatusCode, Message: "empty access token", Kind: ErrServer}
	}
	if errors.Is(err, ErrUnavailable) {
		g.metrics.Refresh(metrics.RefreshConnection)
		return "", err
	}
	if err != nil {
		g.metrics.Refresh(metrics.RefreshRejected)
		if _, ierr := g.tokens.Invalidate(ctx, refresh, ReasonRefreshRejected); ierr != nil {
			g.log.Error(ctx, "failed to clear session", "error", ierr)
		}
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	ok, err := g.tokens.RotateAccessToken(ctx, refresh, out.AccessToken)
	if err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}
	if !ok {
		// logout or a new login happened while refreshing
		cur, _, err := g.tokens.Tokens(ctx)
		if err != nil || cur == "" {
			return "", ErrSessionExpired
		}
		g.metrics.Refresh(metrics.RefreshReused)
		return cur, nil
	}

	g.metrics.Refresh(metrics.RefreshSuccess)
	return out.AccessToken, nil
}

func encode(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return b, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// decode consumes resp. 2xx bodies go into out, anything else becomes an
// *APIError.
func decode(resp *http.Response, badRequest error, out any) error {
	defer drain(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &APIError{Status: resp.StatusCode, Message: "malformed response: " + err.Error(), Kind: ErrServer}
		}
		return nil
	}

	var body models.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil {
		body = models.ErrorResponse{Error: strings.TrimSpace(string(raw))}
	}

	kind := kindForStatus(resp.StatusCode, body.RequiresVerification)
	if resp.StatusCode == http.StatusBadRequest && badRequest != nil {
		kind = badRequest
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: body.Error,
		UserID:  body.UserID,
		Kind:    kind,
	}
}

// mapTransportError classifies errors returned by http.Client.Do. Caller
// cancellation is passed through; everything else is a connectivity issue.
func mapTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
