package handlers

import (
	"net/http"

	"sophonine/auracall/pkg/conversation"
	"sophonine/auracall/pkg/routing"
)

// healthResponse is the health endpoint body.
type healthResponse struct {
	Status        string `json:"status"`
	ActiveBackend string `json:"active_backend"`
	Sessions      int    `json:"sessions"`
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	store  *conversation.Store
	router *routing.Router
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(store *conversation.Store, router *routing.Router) *HealthHandler {
	return &HealthHandler{store: store, router: router}
}

// ServeHTTP reports liveness plus the active backend and session count.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ActiveBackend: h.router.ActiveName(),
		Sessions:      h.store.Len(),
	})
}
