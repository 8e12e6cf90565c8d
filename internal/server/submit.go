package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/auth"
	"github.com/desertthunder/juke/internal/models"
	"github.com/desertthunder/juke/internal/shared"
	"github.com/desertthunder/juke/internal/tasks"
)

//go:embed templates/submit.html
var templateFiles embed.FS

var submitTemplate = template.Must(template.ParseFS(templateFiles, "templates/submit.html"))

// submitPage is the template context for the submission form.
type submitPage struct {
	Message     string
	MessageType string
	Query       string
	Suggestions []models.Track
}

// SubmitHandler serves the public submission form.
//
// GET / renders the form; POST / relays the submitted query through the relay
// engine. All relay errors are translated to user-facing messages here; none
// propagate as bare 500s.
type SubmitHandler struct {
	engine  *tasks.RelayEngine
	manager *auth.Manager
	logger  *log.Logger
}

// NewSubmitHandler creates the submission handler.
func NewSubmitHandler(engine *tasks.RelayEngine, manager *auth.Manager, logger *log.Logger) *SubmitHandler {
	return &SubmitHandler{engine: engine, manager: manager, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SubmitHandler) Routes() []string {
	return []string{"/"}
}

func (h *SubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.form(w)
	case http.MethodPost:
		h.submit(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// form renders the submission page, with a notice when the owner has not logged in yet.
func (h *SubmitHandler) form(w http.ResponseWriter) {
	page := submitPage{}
	if !h.manager.Authenticated() {
		page.Message = "Queue owner needs to authenticate first. Owner should visit /auth to open the queue."
		page.MessageType = "info"
	}
	h.render(w, http.StatusOK, page)
}

// submit relays one form submission and renders the outcome.
func (h *SubmitHandler) submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, submitPage{
			Message:     "Could not read the submitted form.",
			MessageType: "error",
		})
		return
	}

	query := r.PostFormValue("query")

	result, err := h.engine.Submit(r.Context(), query)
	if err != nil {
		h.logger.Warn("submission rejected", "query", query, "err", err)
		page := submitPage{
			Message:     messageFor(err),
			MessageType: "error",
			Query:       query,
		}
		// Duplicate rejections still carry suggestions for the visitor.
		if result != nil {
			page.Suggestions = result.Recommendations
		}
		h.render(w, statusFor(err), page)
		return
	}

	h.render(w, http.StatusOK, submitPage{
		Message:     fmt.Sprintf("Added %q by %s to the queue!", result.Track.Title, result.Track.Artist),
		MessageType: "success",
		Suggestions: result.Recommendations,
	})
}

func (h *SubmitHandler) render(w http.ResponseWriter, status int, page submitPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := submitTemplate.Execute(w, page); err != nil {
		h.logger.Error("failed to render template", "err", err)
	}
}

// statusFor maps relay errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateTrack), errors.Is(err, shared.ErrNoActiveDevice):
		return http.StatusConflict
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrServiceUnavailable), errors.Is(err, shared.ErrAPIRequest):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor translates relay errors into visitor-facing text.
func messageFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return "Type a song name or paste a Spotify track link first."
	case errors.Is(err, shared.ErrTrackNotFound):
		return "No tracks found. Try a different search term."
	case errors.Is(err, shared.ErrDuplicateTrack):
		return "That track was queued recently. Pick something else!"
	case errors.Is(err, shared.ErrNoActiveDevice):
		return "No active playback device. Ask the owner to open Spotify and start playing music, then try again."
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "Queue owner needs to authenticate first. Please ask the owner to visit /auth."
	default:
		return "Something went wrong talking to Spotify. Try again in a moment."
	}
}
