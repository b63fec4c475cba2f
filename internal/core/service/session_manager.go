package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/handmade-gallery/storefront/internal/api/metrics"
	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// bootResult labels a boot outcome for metrics and logs.
type bootResult string

const (
	bootRestored   bootResult = "restored"
	bootNoSession  bootResult = "no_session"
	bootExpired    bootResult = "expired"
	bootCorrupt    bootResult = "corrupt"
	bootRejected   bootResult = "rejected"
	bootSuperseded bootResult = "superseded"
)

// SessionManager owns the credential: it restores and verifies it on boot,
// persists it on login and purges it on logout. It is the only writer of the
// token and user keys.
type SessionManager struct {
	store    ports.KVStore
	auth     ports.AuthAPI
	verifier ports.TokenVerifier
	local    *LocalAuthority
	events   ports.EventPublisher
	log      zerolog.Logger
	now      func() time.Time

	// opMu serialises credential writes (boot commit, login, logout, update).
	opMu sync.Mutex

	mu       sync.RWMutex
	state    domain.Session
	gen      uint64
	onLogout []func(context.Context)

	ready     chan struct{}
	readyOnce sync.Once
}

// SessionDeps groups the SessionManager collaborators. Local may be nil when
// offline admin sign-in is not configured.
type SessionDeps struct {
	Store  ports.KVStore
	Auth   ports.AuthAPI
	Local  *LocalAuthority
	Events ports.EventPublisher
}

func NewSessionManager(deps SessionDeps, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		store:    deps.Store,
		auth:     deps.Auth,
		verifier: NewTokenVerifier(deps.Local, deps.Auth),
		local:    deps.Local,
		events:   deps.Events,
		log:      log,
		now:      time.Now,
		state:    domain.Session{Status: domain.SessionLoading},
		ready:    make(chan struct{}),
	}
}

// OnLogout registers fn to run after every logout, forced or not.
func (m *SessionManager) OnLogout(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLogout = append(m.onLogout, fn)
}

// Current returns a copy of the published session.
func (m *SessionManager) Current() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Token returns the published bearer token, or "".
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

// Ready is closed once Boot has resolved.
func (m *SessionManager) Ready() <-chan struct{} {
	return m.ready
}

// Boot restores the persisted credential and verifies it. It always resolves
// to authenticated or unauthenticated; verification failures purge the
// credential and are never returned.
func (m *SessionManager) Boot(ctx context.Context) domain.Session {
	defer m.readyOnce.Do(func() { close(m.ready) })

	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	cred, result := m.restore(ctx)

	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if m.gen != gen {
		// A login or logout landed while verifying; it wins.
		m.mu.Unlock()
		m.recordBoot(bootSuperseded)
		return m.Current()
	}
	if cred != nil {
		m.state = domain.SignedIn(*cred)
	} else {
		m.state = domain.Guest()
	}
	m.gen++
	m.mu.Unlock()

	switch {
	case cred != nil:
		if err := m.writeUser(ctx, cred.User); err != nil {
			m.log.Warn().Err(err).Msg("failed to persist refreshed profile")
		}
	case result != bootNoSession && ctx.Err() == nil:
		// An abandoned boot keeps the credential for the next start.
		if err := m.purge(ctx); err != nil {
			m.log.Warn().Err(err).Msg("failed to purge stored credential")
		}
	}

	m.recordBoot(result)
	m.publish()
	return m.Current()
}

// restore reads and verifies the stored credential without writing anything.
func (m *SessionManager) restore(ctx context.Context) (*domain.Credential, bootResult) {
	rawUser, hasUser, err := m.store.Get(ctx, keyUser)
	if err != nil {
		m.log.Warn().Err(err).Msg("read stored user")
		return nil, bootCorrupt
	}
	token, hasToken, err := m.store.Get(ctx, keyToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("read stored token")
		return nil, bootCorrupt
	}

	if !hasUser && !hasToken {
		return nil, bootNoSession
	}
	if !hasUser || !hasToken || token == "" {
		return nil, bootCorrupt
	}

	var user domain.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" || !user.Role.Valid() {
		return nil, bootCorrupt
	}

	if tokenExpired(token, m.now()) {
		return nil, bootExpired
	}

	fresh, err := m.verifier.Verify(ctx, token)
	if err != nil || fresh == nil || fresh.ID == "" || !fresh.Role.Valid() {
		m.log.Info().Err(err).Msg("stored session rejected, continuing as guest")
		return nil, bootRejected
	}
	return &domain.Credential{Token: token, User: *fresh}, bootRestored
}

// Login publishes and persists a credential obtained elsewhere. The user is
// written before the token; if the token write fails the user is removed and
// nothing is published.
func (m *SessionManager) Login(ctx context.Context, user domain.UserProfile, token string) error {
	if token == "" || user.ID == "" || !user.Role.Valid() {
		return fmt.Errorf("login: %w", domain.ErrUnexpectedResponse)
	}

	m.opMu.Lock()
	defer m.opMu.Unlock()

	if err := m.writeUser(ctx, user); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := m.store.Set(ctx, keyToken, token); err != nil {
		if delErr := m.store.Delete(ctx, keyUser); delErr != nil {
			m.log.Error().Err(delErr).Msg("failed to roll back stored user")
		}
		return fmt.Errorf("login: persist token: %w", err)
	}

	m.mu.Lock()
	m.state = domain.SignedIn(domain.Credential{Token: token, User: user})
	m.gen++
	m.mu.Unlock()

	m.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("signed in")
	m.publish()
	return nil
}

// Logout publishes the guest session, purges the credential and runs the
// logout hooks. The published state is guest even when the purge fails.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	m.state = domain.Guest()
	m.gen++
	hooks := slices.Clone(m.onLogout)
	m.mu.Unlock()

	err := m.purge(ctx)
	for _, fn := range hooks {
		fn(ctx)
	}
	m.publish()
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ForceLogout is the backend 401 hook. It is a no-op for guests.
func (m *SessionManager) ForceLogout(ctx context.Context) {
	if !m.Current().Authenticated() {
		return
	}
	if err := m.Logout(context.WithoutCancel(ctx)); err != nil {
		m.log.Error().Err(err).Msg("forced logout left stored credential behind")
	}
}

// UpdateUser replaces the published profile without touching the token.
func (m *SessionManager) UpdateUser(ctx context.Context, user domain.UserProfile) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if !m.Current().Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if user.ID == "" || !user.Role.Valid() {
		return fmt.Errorf("update user: %w", domain.ErrUnexpectedResponse)
	}
	if err := m.writeUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	m.mu.Lock()
	u := user
	m.state.User = &u
	m.mu.Unlock()

	m.publish()
	return nil
}

func (m *SessionManager) writeUser(ctx context.Context, user domain.UserProfile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, keyUser, string(raw)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (m *SessionManager) purge(ctx context.Context) error {
	return errors.Join(
		m.store.Delete(ctx, keyToken),
		m.store.Delete(ctx, keyUser),
	)
}

func (m *SessionManager) publish() {
	if m.events != nil {
		m.events.Publish(domain.TopicSession)
	}
}

func (m *SessionManager) recordBoot(r bootResult) {
	metrics.SessionBootsTotal.WithLabelValues(string(r)).Inc()
	m.log.Info().Str("result", string(r)).Msg("session boot resolved")
}
