package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sophonine/auracall/pkg/adaptation"
	"sophonine/auracall/pkg/feedback"
	"sophonine/auracall/pkg/telemetry/metrics"
)

// feedbackRequest is the loosely-typed wire shape of a feedback
// submission. problemSolved and rating arrive as either typed values or
// strings depending on the client.
type feedbackRequest struct {
	SessionID         string   `json:"sessionId"`
	UserQuery         string   `json:"userQuery"`
	AssistantResponse string   `json:"assistantResponse"`
	FeedbackType      string   `json:"feedbackType"`
	CustomFeedback    string   `json:"customFeedback"`
	ProblemSolved     FlexBool `json:"problemSolved"`
	Rating            FlexInt  `json:"rating"`
	Timestamp         string   `json:"timestamp"`
}

// feedbackResponse is the acknowledgment body.
type feedbackResponse struct {
	Msg       string `json:"msg"`
	Code      int    `json:"code"`
	Timestamp string `json:"timestamp"`
}

// FeedbackHandler serves POST /feedback. Any payload that parses is
// acknowledged; a custom rewrite that fails validation degrades silently
// and still ACKs.
type FeedbackHandler struct {
	engine  *adaptation.Engine
	audit   *feedback.Store
	metrics *metrics.Collector

	// rewriteTimeout bounds the LLM-assisted rewrite so a slow backend
	// cannot hold the feedback request open indefinitely.
	rewriteTimeout time.Duration
}

// NewFeedbackHandler creates the feedback handler. audit may be nil to
// disable the durable trail.
func NewFeedbackHandler(engine *adaptation.Engine, audit *feedback.Store, collector *metrics.Collector) *FeedbackHandler {
	return &FeedbackHandler{
		engine:         engine,
		audit:          audit,
		metrics:        collector,
		rewriteTimeout: 60 * time.Second,
	}
}

// ServeHTTP handles one feedback submission.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ctx := r.Context()

	var req feedbackRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "缺少必要字段: sessionId")
		return
	}
	if req.UserQuery == "" {
		writeError(w, http.StatusBadRequest, "缺少必要字段: userQuery")
		return
	}
	if req.AssistantResponse == "" {
		writeError(w, http.StatusBadRequest, "缺少必要字段: assistantResponse")
		return
	}

	fb := adaptation.Feedback{
		ID:                fmt.Sprintf("fb-%s-%s", time.Now().Format("20060102150405"), uuid.New().String()[:8]),
		SessionID:         req.SessionID,
		Comment:           req.CustomFeedback,
		UserQuery:         req.UserQuery,
		AssistantResponse: req.AssistantResponse,
		Rating:            int(req.Rating),
		ProblemSolved:     bool(req.ProblemSolved),
		Timestamp:         parseClientTimestamp(req.Timestamp),
	}

	var (
		adjustment adaptation.Adjustment
		outcome    = "recorded"
	)

	if kind, ok := adaptation.AdjustmentForFeedback(req.FeedbackType); ok {
		fb.Category = adaptation.CategoryStandard
		fb.Kind = kind
		adjustment = kind
		outcome = "applied"
		if err := h.engine.ApplyStandardAdjustment(req.SessionID, kind); err != nil {
			slog.ErrorContext(ctx, "standard adjustment failed",
				"session_id", req.SessionID,
				"kind", string(kind),
				"error", err,
			)
			outcome = "rejected"
		}
	} else if req.CustomFeedback != "" {
		fb.Category = adaptation.CategoryCustom
		rewriteCtx, cancel := context.WithTimeout(ctx, h.rewriteTimeout)
		if h.engine.ApplyCustomFeedback(rewriteCtx, fb) {
			outcome = "applied"
		}
		cancel()
	} else {
		fb.Category = adaptation.CategoryPositive
	}

	h.engine.RecordFeedback(fb)
	h.metrics.RecordFeedback(string(fb.Category))

	if h.audit != nil {
		h.audit.StoreAsync(&feedback.Record{
			Feedback:   fb,
			Adjustment: adjustment,
			Outcome:    outcome,
			CreatedAt:  time.Now(),
		})
	}

	slog.InfoContext(ctx, "feedback received",
		"session_id", req.SessionID,
		"feedback_type", req.FeedbackType,
		"category", string(fb.Category),
		"outcome", outcome,
	)

	writeJSON(w, http.StatusOK, feedbackResponse{
		Msg:       "反馈提交成功",
		Code:      http.StatusOK,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// parseClientTimestamp parses the client's timestamp, falling back to now.
func parseClientTimestamp(s string) time.Time {
	if s == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
