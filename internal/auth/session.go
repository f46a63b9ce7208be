package auth

import (
	"sync"
	"time"

	"github.com/desertthunder/moodify/internal/models"
	"github.com/desertthunder/moodify/internal/shared"
)

// DefaultSessionTTL bounds how long an idle session survives in memory.
const DefaultSessionTTL = 2 * time.Hour

// Session is the in-process credential cache for one browser or CLI session.
// It mirrors the durable record once authenticated and additionally carries
// the transient PKCE handshake state during login.
//
// Sessions are passed explicitly into every [Manager] call; nothing in this
// package reads ambient global state. All accessors are safe for concurrent
// use, so parallel requests sharing one session never observe a half-written
// credential.
type Session struct {
	ID string

	mu sync.Mutex

	// PKCE handshake state, single-use, never persisted durably.
	codeVerifier string
	oauthState   string

	// Credential mirror.
	userID       string
	accessToken  string
	refreshToken string
	tokenExpires time.Time

	lastSeen time.Time
}

// NewSession creates a session with the given identifier.
func NewSession(id string) *Session {
	return &Session{ID: id}
}

// BeginHandshake stores a fresh verifier and state, replacing any prior
// attempt.
func (s *Session) BeginHandshake(verifier, state string) {
	s.mu.Lock()
	s.codeVerifier = verifier
	s.oauthState = state
	s.mu.Unlock()
}

// Verifier returns the pending PKCE verifier, empty when no handshake is in
// flight.
func (s *Session) Verifier() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codeVerifier
}

// State returns the pending CSRF state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oauthState
}

// ClearHandshake drops the verifier and state once the authorization server
// has processed them.
func (s *Session) ClearHandshake() {
	s.mu.Lock()
	s.codeVerifier = ""
	s.oauthState = ""
	s.mu.Unlock()
}

// Credential returns a snapshot of the session's token fields as a credential
// record view.
func (s *Session) Credential() models.CredentialRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CredentialRecord{
		UserID:       s.userID,
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		ExpiresAt:    s.tokenExpires,
	}
}

// UserID returns the Spotify user id bound to this session, empty before the
// first login.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// AdoptCredential copies a credential record into the session cache.
func (s *Session) AdoptCredential(rec *models.CredentialRecord) {
	s.mu.Lock()
	s.userID = rec.UserID
	s.accessToken = rec.AccessToken
	s.refreshToken = rec.RefreshToken
	s.tokenExpires = rec.ExpiresAt
	s.mu.Unlock()
}

// ApplyTokens installs a refresh result. An empty refreshToken retains the
// previous one, matching servers that only rotate refresh tokens sometimes.
func (s *Session) ApplyTokens(accessToken string, expires time.Time, refreshToken string) {
	s.mu.Lock()
	s.accessToken = accessToken
	s.tokenExpires = expires
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	s.mu.Unlock()
}

// ClearCredential drops the session's token fields, keeping the user id so a
// durable record can still be found. Used when the authorization server
// rejects a refresh and the user must log in again.
func (s *Session) ClearCredential() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.tokenExpires = time.Time{}
	s.mu.Unlock()
}

// SessionStore is an in-process session registry with TTL-based expiry.
// Suitable for the single-process deployments this service targets.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store; ttl <= 0 selects [DefaultSessionTTL].
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session with a random identifier.
func (st *SessionStore) Create() (*Session, error) {
	id, err := shared.GenerateState()
	if err != nil {
		return nil, err
	}

	sess := NewSession(id)
	sess.lastSeen = st.now()

	st.mu.Lock()
	st.sessions[id] = sess
	st.prune()
	st.mu.Unlock()

	return sess, nil
}

// Get returns the session for id, refreshing its idle timer. Expired or
// unknown sessions report false.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	if st.now().Sub(sess.lastSeen) > st.ttl {
		delete(st.sessions, id)
		return nil, false
	}

	sess.lastSeen = st.now()
	return sess, true
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// prune drops expired sessions. Caller holds the lock.
func (st *SessionStore) prune() {
	cutoff := st.now().Add(-st.ttl)
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
		}
	}
}
