package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/models"
)

// CallbackResult contains the result of a terminal login flow.
type CallbackResult struct {
	Record *models.CredentialRecord
	err    error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the authorization code callback for the terminal
// login flow. Implements the Handler interface for registration with a Router.
//
// The handler completes the PKCE exchange through the lifecycle manager and
// delivers the outcome over a channel so the CLI can block until login
// finishes. It only processes one callback to prevent replay.
type CallbackHandler struct {
	manager     *auth.Manager
	sess        *auth.Session
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler bound to a session whose
// handshake was started with [auth.Manager.InitiateLogin].
func NewCallbackHandler(manager *auth.Manager, sess *auth.Session) *CallbackHandler {
	return &CallbackHandler{
		manager:    manager,
		sess:       sess,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/auth/callback"}
}

// ServeHTTP handles the authorization callback request.
//
// Validates the state parameter against the session, completes the code
// exchange, and sends the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state == "" || state != h.sess.State() {
		err := fmt.Errorf("invalid state parameter")
		h.Send(CallbackResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	record, err := h.manager.CompleteLogin(r.Context(), h.sess, code)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	h.Send(CallbackResult{Record: record})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Login Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Login Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving login completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
