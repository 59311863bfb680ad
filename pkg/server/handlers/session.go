package handlers

import (
	"fmt"
	"net/http"

	"sophonine/auracall/pkg/conversation"
)

// historyRequest is the wire shape of a session history lookup.
type historyRequest struct {
	SessionID string `json:"session_id"`
}

// historyResponse carries the session transcript.
type historyResponse struct {
	Msg     string              `json:"msg"`
	History []conversation.Turn `json:"history"`
}

// SessionHistoryHandler serves POST /session/history.
type SessionHistoryHandler struct {
	store *conversation.Store
}

// NewSessionHistoryHandler creates the session history handler.
func NewSessionHistoryHandler(store *conversation.Store) *SessionHistoryHandler {
	return &SessionHistoryHandler{store: store}
}

// ServeHTTP returns the full turn history of one session. Unknown
// sessions get a descriptive msg and an empty history with status 200,
// matching the lenient contract the voice front end expects.
func (h *SessionHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req historyRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := historyResponse{History: []conversation.Turn{}}
	if !h.store.Exists(req.SessionID) {
		resp.Msg = fmt.Sprintf("%s not in conversations", req.SessionID)
	} else {
		resp.Msg = "success"
		resp.History = h.store.History(req.SessionID)
	}

	writeJSON(w, http.StatusOK, resp)
}
