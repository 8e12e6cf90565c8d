package server

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/juke/internal/auth"
)

// HealthHandler reports service liveness and whether the owner has logged in.
type HealthHandler struct {
	manager *auth.Manager
	version string
	logger  *log.Logger
}

// NewHealthHandler creates the health probe handler.
func NewHealthHandler(manager *auth.Manager, version string, logger *log.Logger) *HealthHandler {
	return &HealthHandler{manager: manager, version: version, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload := map[string]any{
		"status":        "healthy",
		"app":           "juke",
		"version":       h.version,
		"authenticated": h.manager.Authenticated(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode health response", "err", err)
	}
}
