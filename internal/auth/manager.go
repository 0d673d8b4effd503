package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hopper/internal/api"
	"hopper/internal/logging"
)

// Notifier is the sliver of the notification sink the token lifecycle needs.
type Notifier interface {
	Error(message string)
}

// ManagerOption customises Manager construction.
type ManagerOption func(*Manager)

// WithStateStore injects a custom persistence layer.
func WithStateStore(store StateStore) ManagerOption {
	return func(m *Manager) {
		m.store = store
	}
}

// WithNotifier routes refresh failures to a notification sink.
func WithNotifier(notifier Notifier) ManagerOption {
	return func(m *Manager) {
		m.notifier = notifier
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logging.NewComponentLogger(logger, "auth")
	}
}

// Manager owns AuthIdentity: the access token and the authenticated user
// record, set and cleared together, never one without the other.
type Manager struct {
	client   *api.Client
	store    StateStore
	notifier Notifier
	logger   *slog.Logger

	// refreshMu serializes refresh attempts so concurrent 401s resolve
	// through a single upstream call.
	refreshMu sync.Mutex

	stateMu sync.RWMutex
	state   State
}

// NewManager builds a Manager, restoring persisted state from stateDir.
func NewManager(client *api.Client, stateDir string, opts ...ManagerOption) (*Manager, error) {
	if client == nil {
		return nil, errors.New("api client is nil")
	}

	mgr := &Manager{
		client: client,
		store:  NewFileStateStore(stateDir),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(mgr)
	}

	if err := mgr.loadInitialState(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) loadInitialState() error {
	state, err := m.store.Load()
	if err != nil {
		return err
	}

	dirty := false
	if state.ClientIdentifier == "" {
		state.ClientIdentifier = strings.ReplaceAll(uuid.New().String(), "-", "")
		dirty = true
	}
	m.state = state

	if dirty {
		if err := m.store.Save(m.state); err != nil {
			return err
		}
	}
	return nil
}

// Token returns the current access token, or "" when logged out.
func (m *Manager) Token() string {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state.AccessToken
}

// Authenticated reports whether an access token is present.
func (m *Manager) Authenticated() bool {
	return m.Token() != ""
}

// IsAdmin reports whether the current identity carries the admin role. The
// user record wins; the token's role claim is the fallback.
func (m *Manager) IsAdmin() bool {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	if m.state.User != nil {
		return m.state.User.IsAdmin()
	}
	return TokenRole(m.state.AccessToken) == "admin"
}

// CurrentUser returns a copy of the authenticated user record, or nil.
func (m *Manager) CurrentUser() *api.User {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	if m.state.User == nil {
		return nil
	}
	user := *m.state.User
	return &user
}

// Expiry returns the access token's expiration time when known.
func (m *Manager) Expiry() (time.Time, bool) {
	return TokenExpiry(m.Token())
}

// Login exchanges credentials for an identity. On any failure the local
// identity is cleared; token and user are only ever set together.
func (m *Manager) Login(ctx context.Context, username, password string) (*api.User, error) {
	resp, err := m.client.Login(ctx, username, password)
	if err != nil {
		m.clearIdentity()
		return nil, err
	}

	m.stateMu.Lock()
	m.state.AccessToken = resp.AccessToken
	m.state.User = resp.User
	m.state.SavedAt = time.Now().UTC()
	state := m.state
	m.stateMu.Unlock()

	if err := m.store.Save(state); err != nil {
		m.logger.Warn("persist auth state", logging.Error(err))
	}
	m.logger.Info("logged in", logging.String("username", username))
	return m.CurrentUser(), nil
}

// FetchCurrentUser refreshes the cached user record. No-op when logged out.
// An unauthorized response tears down local identity (the token has expired
// naturally); other failures are logged and leave the record unchanged.
func (m *Manager) FetchCurrentUser(ctx context.Context) (*api.User, error) {
	if !m.Authenticated() {
		return nil, nil
	}

	user, err := m.client.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			m.logger.Debug("session expired, clearing identity")
			m.clearIdentity()
			return nil, nil
		}
		m.logger.Warn("fetch current user", logging.Error(err))
		return m.CurrentUser(), nil
	}

	m.stateMu.Lock()
	m.state.User = user
	state := m.state
	m.stateMu.Unlock()
	if err := m.store.Save(state); err != nil {
		m.logger.Warn("persist auth state", logging.Error(err))
	}
	return m.CurrentUser(), nil
}

// Refresh exchanges the cookie-borne refresh credential for a new access
// token. stale is the token the caller observed failing; when the current
// token already differs, another caller refreshed first and the result is
// shared instead of issuing a second upstream call.
//
// An unauthorized refresh is the expected cold-start case and clears
// identity silently. Any other failure clears identity and surfaces the
// error to the notification sink. Refresh never triggers the upstream
// logout call.
func (m *Manager) Refresh(ctx context.Context, stale string) (bool, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if current := m.Token(); current != "" && current != stale {
		return true, nil
	}

	resp, err := m.client.Refresh(ctx)
	if err != nil {
		m.clearIdentity()
		if errors.Is(err, api.ErrUnauthorized) {
			m.logger.Debug("no refresh session available")
			return false, nil
		}
		m.logger.Warn("token refresh failed", logging.Error(err))
		if m.notifier != nil {
			m.notifier.Error("Session refresh failed: " + api.ErrorMessage(err))
		}
		return false, err
	}

	m.stateMu.Lock()
	m.state.AccessToken = resp.AccessToken
	m.state.SavedAt = time.Now().UTC()
	state := m.state
	m.stateMu.Unlock()
	if err := m.store.Save(state); err != nil {
		m.logger.Warn("persist auth state", logging.Error(err))
	}
	m.logger.Debug("access token refreshed")
	return true, nil
}

// Logout tears down the session. Upstream calls are best-effort; local
// identity is always cleared, so Logout never fails from the caller's
// perspective.
func (m *Manager) Logout(ctx context.Context) {
	if user := m.CurrentUser(); user != nil && user.SessionID != "" {
		if err := m.client.ClearMemory(ctx, user.SessionID); err != nil {
			m.logger.Debug("clear session memory", logging.Error(err))
		}
	}
	if m.Authenticated() {
		if err := m.client.Logout(ctx); err != nil {
			m.logger.Debug("upstream logout", logging.Error(err))
		}
	}
	m.clearIdentity()
	m.logger.Info("logged out")
}

// clearIdentity degrades to the fully-logged-out state: token and user
// removed together, persisted state updated best-effort.
func (m *Manager) clearIdentity() {
	m.stateMu.Lock()
	m.state.AccessToken = ""
	m.state.User = nil
	m.state.SavedAt = time.Now().UTC()
	state := m.state
	m.stateMu.Unlock()

	if err := m.store.Save(state); err != nil {
		m.logger.Warn("persist cleared auth state", logging.Error(err))
	}
}
