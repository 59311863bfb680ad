package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"sophonine/auracall/pkg/orchestrator"
	"sophonine/auracall/pkg/routing"
	"sophonine/auracall/pkg/telemetry/metrics"
)

// chatRequest is the wire shape of a chat submission.
type chatRequest struct {
	SessionID  string `json:"session_id"`
	Query      string `json:"query"`
	DialogMode string `json:"dialog_mode"`
	DialogType string `json:"dialog_type"`
	Model      string `json:"model"`
}

// fragmentData is the SSE data payload for message and done events.
type fragmentData struct {
	TextChunk       string `json:"text_chunk"`
	SessionFinished bool   `json:"session_finished"`
	SessionID       string `json:"session_id"`
}

// ChatHandler serves the streaming chat endpoint. Responses are
// server-sent events: zero or more "message" events carrying text chunks,
// then one "done" event with an empty chunk and the definitive
// session-finished flag.
type ChatHandler struct {
	orch    *orchestrator.Orchestrator
	router  *routing.Router
	metrics *metrics.Collector
}

// NewChatHandler creates the chat handler.
func NewChatHandler(orch *orchestrator.Orchestrator, router *routing.Router, collector *metrics.Collector) *ChatHandler {
	return &ChatHandler{orch: orch, router: router, metrics: collector}
}

// ServeHTTP handles POST /chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()
	startTime := time.Now()

	var req chatRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mode := orchestrator.Mode(req.DialogMode)
	if mode == "" {
		mode = orchestrator.ModeMulti
	}
	if mode != orchestrator.ModeSingle && mode != orchestrator.ModeMulti {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("请求错误：dialog_mode %q", req.DialogMode))
		return
	}

	stream, err := h.orch.Submit(ctx, orchestrator.Request{
		SessionID:  req.SessionID,
		Query:      req.Query,
		Mode:       mode,
		DomainHint: req.DialogType,
		Model:      req.Model,
	})
	if err != nil {
		h.metrics.RecordRequest(string(mode), "rejected")
		switch {
		case errors.Is(err, orchestrator.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "请求错误：query")
		case errors.Is(err, orchestrator.ErrUnknownSession):
			writeError(w, http.StatusBadRequest, "请求错误：session_id")
		case errors.Is(err, orchestrator.ErrSessionClosed):
			writeError(w, http.StatusBadRequest, "请求错误：会话已结束")
		default:
			slog.ErrorContext(ctx, "chat request failed before streaming", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	// Headers go out before the first backend token; from here on all
	// failures are in-band SSE events.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	fragmentCount := 0
	status := "ok"
	for fragment := range stream.Fragments() {
		event := "message"
		if fragment.Final {
			event = "done"
		}
		if err := writeSSEEvent(w, fragment.RequestID, event, fragmentData{
			TextChunk:       fragment.Text,
			SessionFinished: fragment.SessionFinished,
			SessionID:       fragment.SessionID,
		}); err != nil {
			// Client went away; the orchestrator finishes the turn on
			// its own.
			slog.DebugContext(ctx, "client disconnected mid-stream",
				"session_id", stream.SessionID,
				"fragments", fragmentCount,
			)
			status = "disconnected"
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
		if !fragment.Final {
			fragmentCount++
		}
	}

	if err := stream.Err(); err != nil && status == "ok" {
		status = "error"
		_ = writeSSEEvent(w, stream.RequestID, "error", messageResponse{Msg: "backend stream failed"})
		if flusher != nil {
			flusher.Flush()
		}
	}

	h.metrics.RecordRequest(string(mode), status)
	h.metrics.RecordFragments(fragmentCount)
	h.metrics.RecordStreamDuration(h.router.ActiveName(), time.Since(startTime))
}

// writeSSEEvent writes one server-sent event with id, event, and JSON data
// lines.
func writeSSEEvent(w http.ResponseWriter, id, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", id, event, payload)
	return err
}
