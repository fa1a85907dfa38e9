package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/velora-shop/storefront-backend/internal/identity"
	"github.com/velora-shop/storefront-backend/internal/profile"
	pkgerrors "github.com/velora-shop/storefront-backend/pkg/errors"
	"github.com/velora-shop/storefront-backend/pkg/logger"
	"github.com/velora-shop/storefront-backend/pkg/securestore"
)

const snapshotKey = "auth_session"

type remoteAuth interface {
	GetCurrentSession() *identity.Session
	OnAuthStateChange(fn func(identity.AuthChange)) func()
}

type profileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*profile.ProfileDTO, error)
}

// snapshot is the single record persisted to secure storage.
type snapshot struct {
	User        AuthUser `json:"user"`
	AccessToken string   `json:"access_token"`
}

// Manager is the single source of truth for the current user. All identity
// mutations are serialized through one goroutine, so a remote auth event can
// never interleave with an in-flight login or logout.
type Manager struct {
	remote   remoteAuth
	profiles profileReader
	store    securestore.Store
	logg     *logger.Logger

	cmds        chan func()
	closeOnce   sync.Once
	done        chan struct{}
	unsubscribe func()

	mu          sync.Mutex
	closed      bool
	user        *AuthUser
	accessToken string
	loading     bool
	subs        map[int]func(Event)
	nextSub     int
}

// ManagerParams bundles the dependencies for the session manager.
type ManagerParams struct {
	Remote   remoteAuth
	Profiles profileReader
	Store    securestore.Store
	Logger   *logger.Logger
}

// NewManager constructs the manager, starts its actor loop, and subscribes to
// remote session-change events.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote auth is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile reader is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("secure store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	m := &Manager{
		remote:   params.Remote,
		profiles: params.Profiles,
		store:    params.Store,
		logg:     params.Logger,
		cmds:     make(chan func(), 16),
		done:     make(chan struct{}),
		loading:  true,
		subs:     make(map[int]func(Event)),
	}
	go m.run()

	m.unsubscribe = params.Remote.OnAuthStateChange(m.handleRemoteChange)
	return m, nil
}

func (m *Manager) run() {
	defer close(m.done)
	for cmd := range m.cmds {
		cmd()
	}
}

// enqueue hands work to the actor goroutine and waits for it to finish.
func (m *Manager) enqueue(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	finished := make(chan struct{})
	m.cmds <- func() {
		fn()
		close(finished)
	}
	m.mu.Unlock()
	<-finished
	return true
}

// Close tears the manager down: the remote subscription is released and the
// actor loop drains.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		m.mu.Lock()
		m.closed = true
		close(m.cmds)
		m.mu.Unlock()
		<-m.done
	})
}

// Current returns a copy of the present identity state. Loading stays true
// until Bootstrap completes, and callers must treat it as a gate.
func (m *Manager) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{User: m.user.clone(), Loading: m.loading}
}

// AccessToken returns the token captured alongside the current user.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// Bootstrap establishes the initial authenticated or anonymous state. A
// persisted snapshot is trusted without a remote round-trip; otherwise the
// live remote session decides. Every failure path lands in a clean anonymous
// state rather than surfacing an error.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.enqueue(func() {
		defer func() {
			m.setLoading(false)
			m.notify("")
		}()

		raw, err := m.store.Read(snapshotKey)
		if err == nil {
			var snap snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				m.logg.Warn(ctx, "discarding corrupt session snapshot")
				m.forceLogout(ctx)
				return
			}
			m.setIdentity(&snap.User, snap.AccessToken)
			return
		}
		if !errors.Is(err, securestore.ErrNotFound) {
			m.logg.Warn(ctx, fmt.Sprintf("session snapshot read failed: %v", err))
			m.forceLogout(ctx)
			return
		}

		remote := m.remote.GetCurrentSession()
		if remote == nil || remote.User == nil {
			m.setIdentity(nil, "")
			return
		}

		user, err := m.assembleUser(ctx, remote)
		if err != nil {
			m.logg.Warn(ctx, fmt.Sprintf("session bootstrap failed: %v", err))
			m.forceLogout(ctx)
			return
		}

		m.setIdentity(user, remote.AccessToken)
		if err := m.persist(); err != nil {
			m.logg.Warn(ctx, fmt.Sprintf("persisting session snapshot failed: %v", err))
		}
	})
}

// Login merges the incoming partial identity onto the previous user and
// persists the result. Omitted fields keep their prior values.
func (m *Manager) Login(ctx context.Context, data LoginData) {
	m.enqueue(func() {
		m.mu.Lock()
		merged := m.user.clone()
		if merged == nil {
			merged = &AuthUser{}
		}
		m.mu.Unlock()

		if data.User != nil {
			merged.ID = data.User.ID
			merged.Email = data.User.Email
			merged.EmailVerified = data.User.EmailVerified
			merged.PhoneVerified = data.User.PhoneVerified
			if data.User.Role != "" {
				merged.Role = data.User.Role
			}
			if data.User.DisplayName != nil {
				merged.DisplayName = data.User.DisplayName
			}
		}
		if data.HasDetails {
			merged.Profile = data.Details
		}
		if data.IsLoggedIn != nil {
			merged.IsLoggedIn = *data.IsLoggedIn
		}
		if data.IsProfileCompleted != nil {
			merged.IsProfileCompleted = *data.IsProfileCompleted
		} else if data.HasDetails {
			merged.IsProfileCompleted = profileComplete(data.Details)
		}

		token := ""
		if data.AccessToken != nil {
			token = *data.AccessToken
		} else {
			m.mu.Lock()
			token = m.accessToken
			m.mu.Unlock()
		}

		m.setIdentity(merged, token)
		if err := m.persist(); err != nil {
			m.logg.Warn(ctx, fmt.Sprintf("persisting session snapshot failed: %v", err))
		}
		m.notify(data.Redirect)
	})
}

// Logout clears the in-memory identity and deletes the persisted snapshot.
// Calling it while already logged out is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.enqueue(func() {
		m.forceLogout(ctx)
		m.notify("")
	})
}

// UpdateAuth shallow-merges the updates into the current user and re-persists.
// It does nothing when no user is set.
func (m *Manager) UpdateAuth(ctx context.Context, updates AuthUpdates) {
	m.enqueue(func() {
		m.mu.Lock()
		merged := m.user.clone()
		m.mu.Unlock()
		if merged == nil {
			return
		}

		if updates.Email != nil {
			merged.Email = *updates.Email
		}
		if updates.DisplayName != nil {
			merged.DisplayName = updates.DisplayName
		}
		if updates.IsLoggedIn != nil {
			merged.IsLoggedIn = *updates.IsLoggedIn
		}
		if updates.IsProfileCompleted != nil {
			merged.IsProfileCompleted = *updates.IsProfileCompleted
		}
		if updates.HasProfile {
			merged.Profile = updates.Profile
			if updates.IsProfileCompleted == nil {
				merged.IsProfileCompleted = profileComplete(updates.Profile)
			}
		}

		m.mu.Lock()
		token := m.accessToken
		m.mu.Unlock()
		m.setIdentity(merged, token)
		if err := m.persist(); err != nil {
			m.logg.Warn(ctx, fmt.Sprintf("persisting session snapshot failed: %v", err))
		}
		m.notify("")
	})
}

// handleRemoteChange reconciles asynchronous remote auth events through the
// same actor queue as local calls.
func (m *Manager) handleRemoteChange(change identity.AuthChange) {
	ctx := context.Background()
	switch change.Event {
	case identity.AuthEventSignedOut:
		m.enqueue(func() {
			m.forceLogout(ctx)
			m.notify("")
		})
	case identity.AuthEventSignedIn, identity.AuthEventTokenRefreshed:
		if change.Session == nil || change.Session.User == nil {
			return
		}
		m.enqueue(func() {
			user, err := m.assembleUser(ctx, change.Session)
			if err != nil {
				m.logg.Warn(ctx, fmt.Sprintf("reconciling remote session failed: %v", err))
				return
			}
			m.setIdentity(user, change.Session.AccessToken)
			if err := m.persist(); err != nil {
				m.logg.Warn(ctx, fmt.Sprintf("persisting session snapshot failed: %v", err))
			}
			m.notify("")
		})
	}
}

// assembleUser fetches the extended profile for a remote session's user and
// derives the completeness flag.
func (m *Manager) assembleUser(ctx context.Context, sess *identity.Session) (*AuthUser, error) {
	remote := sess.User

	var prof *profile.ProfileDTO
	loaded, err := m.profiles.GetProfile(ctx, remote.ID)
	if err != nil {
		// A missing profile row is expected for fresh accounts; anything
		// else aborts the reconciliation.
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			return nil, err
		}
	} else {
		prof = loaded
	}

	var displayName *string
	if remote.DisplayName != "" {
		name := remote.DisplayName
		displayName = &name
	}

	return &AuthUser{
		ID:                 remote.ID.String(),
		Email:              remote.Email,
		EmailVerified:      remote.EmailVerified,
		Role:               remote.Role,
		DisplayName:        displayName,
		IsLoggedIn:         true,
		Profile:            prof,
		IsProfileCompleted: profileComplete(prof),
	}, nil
}

func (m *Manager) forceLogout(ctx context.Context) {
	m.setIdentity(nil, "")
	if err := m.store.Delete(snapshotKey); err != nil {
		m.logg.Warn(ctx, fmt.Sprintf("deleting session snapshot failed: %v", err))
	}
}

func (m *Manager) persist() error {
	m.mu.Lock()
	user := m.user
	token := m.accessToken
	m.mu.Unlock()
	if user == nil {
		return nil
	}

	raw, err := json.Marshal(snapshot{User: *user, AccessToken: token})
	if err != nil {
		return err
	}
	return m.store.Write(snapshotKey, raw)
}

// Subscribe registers a listener for identity changes and returns its
// unsubscribe func. Listeners fire after every state transition, outside the
// manager lock; a login that carried a redirect hint passes it through on the
// event.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(redirect string) {
	m.mu.Lock()
	event := Event{
		State:    State{User: m.user.clone(), Loading: m.loading},
		Redirect: redirect,
	}
	listeners := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func (m *Manager) setIdentity(user *AuthUser, token string) {
	m.mu.Lock()
	m.user = user
	m.accessToken = token
	m.mu.Unlock()
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}
