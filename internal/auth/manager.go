package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	// expiryLeeway treats tokens expiring within this window as already expired.
	expiryLeeway = 60 * time.Second

	// stateTTL bounds how long an issued authorization state token stays valid.
	stateTTL = 10 * time.Minute
)

// CredentialStore persists the owner credential. Implemented by repositories.CredentialRepository.
type CredentialStore interface {
	Get() (*models.Credential, error)
	Save(credential *models.Credential) error
	Clear() error
}

// Manager owns the singleton owner credential and its lifecycle.
//
// All components obtain access tokens through Token; nothing else reads the
// credential store. Refreshes are serialized so N concurrent expired callers
// trigger exactly one refresh call.
type Manager struct {
	config *oauth2.Config
	store  CredentialStore
	logger *log.Logger

	mu         sync.Mutex
	credential *models.Credential
	loaded     bool
	states     map[string]time.Time

	flight singleflight.Group
}

// NewManager creates a Manager for the given OAuth2 config and credential store.
func NewManager(config *oauth2.Config, store CredentialStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Manager{
		config: config,
		store:  store,
		logger: logger,
		states: map[string]time.Time{},
	}
}

// AuthURL issues a fresh state token and returns the authorization URL the
// owner should visit. The state is validated on the callback before the code
// exchange to prevent callback forgery.
func (m *Manager) AuthURL() string {
	state := shared.GenerateID()

	m.mu.Lock()
	now := time.Now()
	for s, issued := range m.states {
		if now.Sub(issued) > stateTTL {
			delete(m.states, s)
		}
	}
	m.states[state] = now
	m.mu.Unlock()

	return m.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// consumeState validates and invalidates a state token from a callback.
func (m *Manager) consumeState(state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	issued, ok := m.states[state]
	if !ok {
		return shared.ErrInvalidState
	}
	delete(m.states, state)

	if time.Since(issued) > stateTTL {
		return fmt.Errorf("%w: state token expired", shared.ErrInvalidState)
	}

	return nil
}

// Exchange validates the callback state, exchanges the authorization code for
// a token pair, and persists the credential.
func (m *Manager) Exchange(ctx context.Context, state, code string) error {
	if err := m.consumeState(state); err != nil {
		return err
	}

	if code == "" {
		return fmt.Errorf("%w: missing authorization code", shared.ErrAuthFailed)
	}

	token, err := m.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}

	credential := models.NewCredential(token.AccessToken, token.RefreshToken, scopeString(m.config), token.Expiry)
	if err := m.store.Save(credential); err != nil {
		return err
	}

	m.mu.Lock()
	m.credential = credential
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("owner credential stored", "expires_at", token.Expiry)

	return nil
}

// Token returns a valid access token for the owner, refreshing first when the
// cached token is expired. Returns [shared.ErrNotAuthenticated] when the owner
// never completed the login flow.
func (m *Manager) Token(ctx context.Context) (string, error) {
	credential, err := m.current()
	if err != nil {
		return "", err
	}

	if !credential.Expired(expiryLeeway) {
		return credential.AccessToken(), nil
	}

	return m.refresh(ctx, false)
}

// Refresh forces a token refresh regardless of the cached expiry.
//
// Used after an upstream 401 on an apparently fresh token.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	if _, err := m.current(); err != nil {
		return "", err
	}

	return m.refresh(ctx, true)
}

// Authenticated reports whether a credential is stored for the owner.
func (m *Manager) Authenticated() bool {
	_, err := m.current()
	return err == nil
}

// current returns the cached credential, loading it from the store on first use.
func (m *Manager) current() (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		credential, err := m.store.Get()
		if err != nil {
			if err == shared.ErrNotAuthenticated {
				m.loaded = true
				return nil, err
			}
			return nil, err
		}
		m.credential = credential
		m.loaded = true
	}

	if m.credential == nil {
		return nil, shared.ErrNotAuthenticated
	}

	return m.credential, nil
}

// refresh performs the serialized refresh call.
//
// Concurrent callers share one in-flight refresh via singleflight; late
// arrivals that raced with a completed refresh reuse the updated credential
// instead of spending another refresh call.
func (m *Manager) refresh(ctx context.Context, force bool) (string, error) {
	token, err, _ := m.flight.Do("refresh", func() (any, error) {
		credential, err := m.current()
		if err != nil {
			return "", err
		}

		if !force && !credential.Expired(expiryLeeway) {
			return credential.AccessToken(), nil
		}

		source := m.config.TokenSource(ctx, &oauth2.Token{RefreshToken: credential.RefreshToken()})
		refreshed, err := source.Token()
		if err != nil {
			// Revoked or invalid refresh token: downgrade to unauthenticated
			// so the owner is prompted to repeat the login, rather than
			// surfacing a generic server error to visitors.
			m.logger.Error("token refresh failed, clearing credential", "err", err)
			if clearErr := m.store.Clear(); clearErr != nil {
				m.logger.Error("failed to clear credential", "err", clearErr)
			}
			m.mu.Lock()
			m.credential = nil
			m.mu.Unlock()
			return "", fmt.Errorf("%w: %w: %v", shared.ErrNotAuthenticated, shared.ErrRefreshFailed, err)
		}

		refreshToken := refreshed.RefreshToken
		if refreshToken == "" {
			refreshToken = credential.RefreshToken()
		}

		updated := models.NewCredential(refreshed.AccessToken, refreshToken, credential.Scope(), refreshed.Expiry)
		if err := m.store.Save(updated); err != nil {
			return "", err
		}

		m.mu.Lock()
		m.credential = updated
		m.mu.Unlock()

		m.logger.Debug("owner token refreshed", "expires_at", refreshed.Expiry)

		return updated.AccessToken(), nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// scopeString joins the configured OAuth scopes for storage alongside the credential.
func scopeString(config *oauth2.Config) string {
	return strings.Join(config.Scopes, " ")
}
