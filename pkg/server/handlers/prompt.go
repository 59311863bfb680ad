package handlers

import (
	"net/http"

	"sophonine/auracall/pkg/adaptation"
)

// PromptReportHandler serves GET /prompt/report. With a session_id query
// parameter it returns that session's adaptation view; without one it
// returns the process-wide aggregate.
type PromptReportHandler struct {
	engine *adaptation.Engine

	// recentLimit bounds the aggregate report's recent-history slice.
	recentLimit int
}

// NewPromptReportHandler creates the report handler.
func NewPromptReportHandler(engine *adaptation.Engine) *PromptReportHandler {
	return &PromptReportHandler{engine: engine, recentLimit: 50}
}

// ServeHTTP handles one report request.
func (h *PromptReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		writeJSON(w, http.StatusOK, h.engine.ReportSession(sessionID))
		return
	}
	writeJSON(w, http.StatusOK, h.engine.ReportAggregate(h.recentLimit))
}

// resetRequest is the wire shape of a prompt reset.
type resetRequest struct {
	SessionID string `json:"session_id"`
}

// PromptResetHandler serves POST /prompt/reset, reverting a session to
// the base template.
type PromptResetHandler struct {
	engine *adaptation.Engine
}

// NewPromptResetHandler creates the reset handler.
func NewPromptResetHandler(engine *adaptation.Engine) *PromptResetHandler {
	return &PromptResetHandler{engine: engine}
}

// ServeHTTP handles one reset request.
func (h *PromptResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req resetRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "缺少必要字段: session_id")
		return
	}

	h.engine.Reset(req.SessionID)
	writeJSON(w, http.StatusOK, messageResponse{Msg: "success"})
}
