package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/services"
	"github.com/desertthunder/moodify/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultRefreshSkew is the lead time before expiry at which a token is
// treated as expiring. Refreshing minutes early avoids serving a token that
// dies mid-flight.
const DefaultRefreshSkew = 5 * time.Minute

// CredentialStore is the durable per-user credential store, keyed by the
// Spotify user id. Implementations must be atomic at the single-record
// level; no cross-record transactions are assumed.
type CredentialStore interface {
	// Get returns the record for a user, or an error wrapping
	// [shared.ErrRecordNotFound] when absent.
	Get(userID string) (*models.CredentialRecord, error)

	// Set writes the full record.
	Set(record *models.CredentialRecord) error

	// Update applies the partial fields produced by a refresh.
	Update(userID string, update models.CredentialUpdate) error
}

// Manager owns the credential lifecycle: PKCE handshake, session cache, and
// the expiry/refresh algorithm reconciling session and durable store.
type Manager struct {
	authorizer services.Authorizer
	music      services.MusicService
	store      CredentialStore
	logger     *log.Logger
	skew       time.Duration
	now        func() time.Time

	mu        sync.Mutex
	userLocks map[string]*refreshLock
}

// refreshLock is a per-key mutex with a waiter count so entries can be
// dropped from the lock map once the last holder releases it.
type refreshLock struct {
	mu   sync.Mutex
	refs int
}

// ManagerOpts contains dependencies and tuning for a [Manager].
type ManagerOpts struct {
	Authorizer  services.Authorizer
	Music       services.MusicService
	Store       CredentialStore
	Logger      *log.Logger
	RefreshSkew time.Duration    // zero selects DefaultRefreshSkew
	Now         func() time.Time // test clock; zero value selects time.Now
}

// NewManager creates a Manager with the provided dependencies.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.RefreshSkew <= 0 {
		opts.RefreshSkew = DefaultRefreshSkew
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Manager{
		authorizer: opts.Authorizer,
		music:      opts.Music,
		store:      opts.Store,
		logger:     opts.Logger,
		skew:       opts.RefreshSkew,
		now:        opts.Now,
		userLocks:  make(map[string]*refreshLock),
	}
}

// InitiateLogin generates the PKCE verifier and CSRF state, stores both in
// the session, and returns the authorization URL carrying the derived S256
// challenge and requested scopes. The durable store is untouched.
func (m *Manager) InitiateLogin(sess *Session) (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	verifier := oauth2.GenerateVerifier()
	sess.BeginHandshake(verifier, state)

	return m.authorizer.AuthCodeURL(state, verifier), nil
}

// CompleteLogin exchanges the authorization code against the verifier stored
// in the session, resolves the Spotify user id, and writes the credential
// record to both the durable store and the session.
//
// A session without a verifier (replayed callback, lost session) fails with
// [shared.ErrHandshakeState]; a rejected exchange fails with
// [shared.ErrUpstreamAuth]. The verifier is single-use: it is cleared once
// the authorization server has processed it, whatever the outcome.
func (m *Manager) CompleteLogin(ctx context.Context, sess *Session, code string) (*models.CredentialRecord, error) {
	verifier := sess.Verifier()
	if verifier == "" {
		return nil, fmt.Errorf("%w: no code verifier in session", shared.ErrHandshakeState)
	}

	set, err := m.authorizer.Exchange(ctx, code, verifier)
	if err != nil {
		if errors.Is(err, shared.ErrUpstreamAuth) {
			sess.ClearHandshake()
		}
		return nil, err
	}
	sess.ClearHandshake()

	if set.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token response missing refresh token", shared.ErrUpstreamAuth)
	}

	profile, err := m.music.Profile(ctx, set.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user profile: %w", err)
	}

	record := &models.CredentialRecord{
		UserID:       profile.ID,
		AccessToken:  set.AccessToken,
		RefreshToken: set.RefreshToken,
		ExpiresAt:    set.ExpiresAt,
	}

	if err := m.store.Set(record); err != nil {
		// Session-only degradation: the user keeps a working login and a
		// later successful write or refresh repairs the store.
		m.logger.Warn("credential store write failed during login", "user", record.UserID, "error", err)
	}

	sess.AdoptCredential(record)
	return record, nil
}

// GetValidAccessToken returns an access token guaranteed usable for immediate
// requests, refreshing transparently when needed. The fast path, a session
// token outside the refresh skew, performs zero I/O.
func (m *Manager) GetValidAccessToken(ctx context.Context, sess *Session) (string, error) {
	now := m.now()

	cred := sess.Credential()
	if !cred.ExpiringSoon(now, m.skew) {
		return cred.AccessToken, nil
	}

	// Cold session repair: a known user id without a live token means the
	// process restarted; adopt the durable record.
	if cred.AccessToken == "" && cred.UserID != "" {
		if record, err := m.store.Get(cred.UserID); err == nil {
			sess.AdoptCredential(record)
			if !record.ExpiringSoon(now, m.skew) {
				return record.AccessToken, nil
			}
		} else if !errors.Is(err, shared.ErrRecordNotFound) {
			m.logger.Warn("credential store read failed", "user", cred.UserID, "error", err)
		}
	}

	return m.refresh(ctx, sess, false)
}

// Refresh pre-warms the session's token, running the refresh algorithm
// regardless of the current token's age.
func (m *Manager) Refresh(ctx context.Context, sess *Session) (string, error) {
	return m.refresh(ctx, sess, true)
}

// refresh exchanges the refresh token for a new access token and writes the
// result to both session and durable store. When force is false, another
// request that already refreshed this user while we waited on the lock
// satisfies the call without an upstream round trip.
func (m *Manager) refresh(ctx context.Context, sess *Session, force bool) (string, error) {
	unlock := m.lockUser(m.lockKey(sess))
	defer unlock()

	cred := sess.Credential()
	if !force && !cred.ExpiringSoon(m.now(), m.skew) {
		return cred.AccessToken, nil
	}

	refreshToken := cred.RefreshToken
	if refreshToken == "" && cred.UserID != "" {
		if record, err := m.store.Get(cred.UserID); err == nil {
			refreshToken = record.RefreshToken
		} else if !errors.Is(err, shared.ErrRecordNotFound) {
			m.logger.Warn("credential store read failed", "user", cred.UserID, "error", err)
		}
	}
	if refreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token in session or store", shared.ErrNotAuthenticated)
	}

	set, err := m.authorizer.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, shared.ErrUpstreamAuth) {
			// The refresh token is revoked or expired; the user is logged
			// out even if a durable record still exists.
			sess.ClearCredential()
			return "", fmt.Errorf("%w: refresh rejected upstream: %v", shared.ErrNotAuthenticated, err)
		}
		return "", err
	}

	// An empty refresh token from upstream means no rotation happened.
	// Carry the token we just used forward so a session hydrated from the
	// store keeps it for the next refresh.
	sessionRefresh := set.RefreshToken
	if sessionRefresh == "" {
		sessionRefresh = refreshToken
	}
	sess.ApplyTokens(set.AccessToken, set.ExpiresAt, sessionRefresh)

	if cred.UserID != "" {
		update := models.CredentialUpdate{
			AccessToken: set.AccessToken,
			ExpiresAt:   set.ExpiresAt,
		}
		if set.RefreshToken != "" {
			update.RefreshToken = &set.RefreshToken
		}

		// Best-effort relative to returning a usable token: the session
		// copy is authoritative until the next cold start, and a later
		// write repairs the store.
		if err := m.store.Update(cred.UserID, update); err != nil {
			if errors.Is(err, shared.ErrRecordNotFound) {
				record := sess.Credential()
				if serr := m.store.Set(&record); serr != nil {
					m.logger.Warn("credential store repair failed during refresh", "user", cred.UserID, "error", serr)
				}
			} else {
				m.logger.Warn("credential store write failed during refresh", "user", cred.UserID, "error", err)
			}
		}
	}

	return set.AccessToken, nil
}

// lockKey picks the per-user lock key, falling back to the session id when
// the user id isn't known yet.
func (m *Manager) lockKey(sess *Session) string {
	if id := sess.UserID(); id != "" {
		return "user:" + id
	}
	return "session:" + sess.ID
}

// lockUser serializes refreshes for one user so concurrent expiring-soon
// observations collapse into a single upstream call.
func (m *Manager) lockUser(key string) func() {
	m.mu.Lock()
	lock, ok := m.userLocks[key]
	if !ok {
		lock = &refreshLock{}
		m.userLocks[key] = lock
	}
	lock.refs++
	m.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		m.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(m.userLocks, key)
		}
		m.mu.Unlock()
	}
}
