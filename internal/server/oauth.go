package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/auth"
	"github.com/desertthunder/juke/internal/shared"
)

// AuthResult reports the outcome of the owner login flow to a waiting CLI.
type AuthResult struct {
	err error
}

func (a AuthResult) Error() error { return a.err }

// AuthHandler serves the owner login endpoints.
//
// GET /auth redirects to the authorization endpoint with a fresh state token;
// GET /callback validates the state, exchanges the code, and persists the
// credential through the auth manager. When constructed with NewOneShotAuthHandler
// the first callback outcome is also delivered on the Result channel so the
// CLI login command can wait for completion.
type AuthHandler struct {
	manager    *auth.Manager
	logger     *log.Logger
	resultChan chan AuthResult
	once       sync.Once
}

// NewAuthHandler creates the login handler used by the relay server.
func NewAuthHandler(manager *auth.Manager, logger *log.Logger) *AuthHandler {
	return &AuthHandler{manager: manager, logger: logger}
}

// NewOneShotAuthHandler creates a login handler whose first callback outcome
// is delivered on [AuthHandler.Result], for the CLI-driven flow.
func NewOneShotAuthHandler(manager *auth.Manager, logger *log.Logger) *AuthHandler {
	return &AuthHandler{
		manager:    manager,
		logger:     logger,
		resultChan: make(chan AuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"/auth", "/callback"}
}

// ServeHTTP dispatches between the login-initiation and callback paths.
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/auth":
		h.begin(w, r)
	case "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

// begin redirects the owner to the external authorization endpoint.
func (h *AuthHandler) begin(w http.ResponseWriter, r *http.Request) {
	url := h.manager.AuthURL()
	h.logger.Debug("redirecting owner to authorization endpoint")
	http.Redirect(w, r, url, http.StatusFound)
}

// callback exchanges the authorization code for a token pair and persists it.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, errParam, query.Get("error_description"))
		h.finish(w, err)
		return
	}

	err := h.manager.Exchange(r.Context(), query.Get("state"), query.Get("code"))
	h.finish(w, err)
}

func (h *AuthHandler) finish(w http.ResponseWriter, err error) {
	h.send(AuthResult{err: err})

	if err != nil {
		h.logger.Error("owner login failed", "err", err)
		status := http.StatusBadRequest
		if errors.Is(err, shared.ErrAuthFailed) {
			status = http.StatusUnauthorized
		}
		http.Error(w, "Authorization failed: "+err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
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
        <h1>&#10003; Authorization Successful</h1>
        <p>Your queue is now open for submissions.</p>
    </div>
</body>
</html>
`)
}

// send delivers the result to a waiting CLI (only once, only in one-shot mode).
func (h *AuthHandler) send(result AuthResult) {
	if h.resultChan == nil {
		return
	}
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the channel receiving the one-shot login outcome.
//
// Channel receives exactly one result and is then closed. Nil unless the
// handler was created with NewOneShotAuthHandler.
func (h *AuthHandler) Result() <-chan AuthResult {
	return h.resultChan
}
