package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/velora-shop/storefront-backend/pkg/config"
)

// AuthEvent identifies a change in the client's authenticated state.
type AuthEvent string

const (
	AuthEventSignedIn       AuthEvent = "SIGNED_IN"
	AuthEventSignedOut      AuthEvent = "SIGNED_OUT"
	AuthEventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthChange is delivered to subscribers whenever the session changes.
type AuthChange struct {
	Event   AuthEvent
	Session *Session
}

type authAPI interface {
	SignUp(ctx context.Context, req SignUpRequest) (*Session, error)
	SignInWithPassword(ctx context.Context, req SignInRequest) (*Session, error)
	Refresh(ctx context.Context, req RefreshRequest) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

// Client is the storefront-side auth handle. It caches the current session,
// fans out auth-state changes, and keeps the access token fresh in the
// background.
type Client struct {
	api authAPI
	cfg config.SessionConfig

	mu       sync.RWMutex
	session  *Session
	subs     map[int]func(AuthChange)
	nextSub  int
	stopAuto context.CancelFunc
	autoDone chan struct{}
}

// NewClient builds an auth client over the provided API surface.
func NewClient(api authAPI, cfg config.SessionConfig) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("auth api is required")
	}
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = time.Minute
	}
	if cfg.RefreshAttempts <= 0 {
		cfg.RefreshAttempts = 3
	}
	return &Client{
		api:  api,
		cfg:  cfg,
		subs: make(map[int]func(AuthChange)),
	}, nil
}

// SignUp registers a new account and adopts the issued session.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*Session, error) {
	sess, err := c.api.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setSession(sess, AuthEventSignedIn)
	return cloneSession(sess), nil
}

// SignInWithPassword authenticates and adopts the issued session.
func (c *Client) SignInWithPassword(ctx context.Context, req SignInRequest) (*Session, error) {
	sess, err := c.api.SignInWithPassword(ctx, req)
	if err != nil {
		return nil, err
	}
	c.setSession(sess, AuthEventSignedIn)
	return cloneSession(sess), nil
}

// GetCurrentSession returns a copy of the cached session, or nil when signed out.
func (c *Client) GetCurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneSession(c.session)
}

// SignOut revokes the server session and clears local state. Local state is
// cleared even when the revoke call fails.
func (c *Client) SignOut(ctx context.Context, accessID string) error {
	var err error
	if accessID != "" {
		err = c.api.Logout(ctx, accessID)
	}
	c.setSession(nil, AuthEventSignedOut)
	return err
}

// OnAuthStateChange registers a listener and returns its unsubscribe func.
func (c *Client) OnAuthStateChange(fn func(AuthChange)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// RefreshNow forces a token refresh using the cached session.
func (c *Client) RefreshNow(ctx context.Context) (*Session, error) {
	c.mu.RLock()
	current := c.session
	c.mu.RUnlock()
	if current == nil {
		return nil, fmt.Errorf("no active session")
	}

	var renewed *Session
	backoff := retry.WithMaxRetries(uint64(c.cfg.RefreshAttempts-1), retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		sess, err := c.api.Refresh(ctx, RefreshRequest{
			AccessToken:  current.AccessToken,
			RefreshToken: current.RefreshToken,
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		renewed = sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.setSession(renewed, AuthEventTokenRefreshed)
	return cloneSession(renewed), nil
}

// StartAutoRefresh keeps the access token fresh until StopAutoRefresh or a
// sign-out. Repeated calls restart the loop.
func (c *Client) StartAutoRefresh(ctx context.Context) {
	c.StopAutoRefresh()

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.stopAuto = cancel
	c.autoDone = done
	c.mu.Unlock()

	go c.autoRefreshLoop(loopCtx, done)
}

// StopAutoRefresh halts the background refresh loop, if running.
func (c *Client) StopAutoRefresh() {
	c.mu.Lock()
	cancel := c.stopAuto
	done := c.autoDone
	c.stopAuto = nil
	c.autoDone = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Client) autoRefreshLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		c.mu.RLock()
		current := c.session
		c.mu.RUnlock()
		if current == nil {
			return
		}

		wait := time.Until(current.ExpiresAt.Add(-c.cfg.RefreshMargin))
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := c.RefreshNow(ctx); err != nil {
			// A failed refresh after all retries means the session is gone.
			c.setSession(nil, AuthEventSignedOut)
			return
		}
	}
}

func (c *Client) setSession(sess *Session, event AuthEvent) {
	c.mu.Lock()
	c.session = cloneSession(sess)
	listeners := make([]func(AuthChange), 0, len(c.subs))
	for _, fn := range c.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	change := AuthChange{Event: event, Session: cloneSession(sess)}
	for _, fn := range listeners {
		fn(change)
	}
}

func cloneSession(sess *Session) *Session {
	if sess == nil {
		return nil
	}
	copied := *sess
	if sess.User != nil {
		user := *sess.User
		copied.User = &user
	}
	return &copied
}
