package adaptation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sophonine/auracall/pkg/providers"
)

// Rewriter is the single-shot completion dependency used for LLM-assisted
// prompt rewriting. *routing.Router satisfies it.
type Rewriter interface {
	SendCompletion(ctx context.Context, model, systemPrompt string, history []providers.Message) (*providers.CompletionResponse, error)
}

// Config tunes the engine.
type Config struct {
	// MinCommentLength is the rune threshold below which a custom comment
	// is not considered substantive and never triggers a rewrite.
	MinCommentLength int

	// HistoryCap bounds the process-wide optimization history.
	HistoryCap int

	// Rules validate rewrite candidates.
	Rules ValidationRules
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		MinCommentLength: 10,
		HistoryCap:       500,
		Rules:            DefaultValidationRules(),
	}
}

// sessionState is the engine's per-session adaptation record.
type sessionState struct {
	adjustments map[Adjustment]bool
	override    string
	feedback    []Feedback
}

// Engine derives effective prompts and evolves them from feedback.
type Engine struct {
	mu sync.Mutex

	templates *TemplateSource
	rewriter  Rewriter
	config    Config
	logger    *slog.Logger

	sessions map[string]*sessionState
	history  []HistoryEntry
	recorded int

	// onAdaptation, when set, observes every optimization attempt.
	onAdaptation func(kind Category, outcome string)

	now func() time.Time
}

// NewEngine creates an adaptation engine. rewriter may be nil, in which
// case custom feedback is recorded but never triggers a rewrite.
func NewEngine(templates *TemplateSource, rewriter Rewriter, config Config) *Engine {
	if config.MinCommentLength <= 0 {
		config.MinCommentLength = DefaultConfig().MinCommentLength
	}
	if config.HistoryCap <= 0 {
		config.HistoryCap = DefaultConfig().HistoryCap
	}
	if config.Rules.MaxLength == 0 {
		config.Rules = DefaultValidationRules()
	}
	return &Engine{
		templates: templates,
		rewriter:  rewriter,
		config:    config,
		logger:    slog.Default().With("component", "adaptation.engine"),
		sessions:  make(map[string]*sessionState),
		now:       time.Now,
	}
}

// OnAdaptation registers a hook observing optimization attempts; used to
// feed metrics.
func (e *Engine) OnAdaptation(fn func(kind Category, outcome string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAdaptation = fn
}

// EffectivePrompt resolves the system instruction for a session: the
// custom override when set, otherwise the base template plus the session's
// adjustment blocks rendered in canonical order. Sessions without
// adaptation state get the bare base template.
func (e *Engine) EffectivePrompt(sessionID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.effectivePromptLocked(sessionID)
}

func (e *Engine) effectivePromptLocked(sessionID string) string {
	base := e.templates.Current()

	state, ok := e.sessions[sessionID]
	if !ok {
		return base
	}
	if state.override != "" {
		return state.override
	}

	var b strings.Builder
	b.WriteString(base)
	for _, kind := range canonicalOrder {
		if state.adjustments[kind] {
			b.WriteString(adjustmentBlocks[kind])
		}
	}
	return b.String()
}

// ApplyStandardAdjustment adds the adjustment kind to the session's set.
// Applying a kind that is already present is a no-op; adjustments persist
// for the session's lifetime until an explicit Reset.
func (e *Engine) ApplyStandardAdjustment(sessionID string, kind Adjustment) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown adjustment kind %q", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.stateLocked(sessionID)
	outcome := "applied"
	if state.adjustments[kind] {
		outcome = "noop"
	}
	state.adjustments[kind] = true

	e.recordLocked(HistoryEntry{
		SessionID:  sessionID,
		Kind:       CategoryStandard,
		Adjustment: kind,
		Outcome:    outcome,
		Timestamp:  e.now(),
	})

	e.logger.Info("standard adjustment applied",
		"session_id", sessionID,
		"kind", string(kind),
		"outcome", outcome,
	)
	return nil
}

// rewriteInstruction frames the meta-request sent to the backend when a
// substantive custom comment arrives.
const rewriteInstruction = `你是提示词优化助手。根据用户反馈改写下面的系统提示词。
要求：保留原有的段落结构和标题；长度与原文相当；只输出改写后的提示词本身，不要任何解释。`

// ApplyCustomFeedback runs the LLM-assisted rewrite path for a feedback
// record carrying a substantive free-text comment. Returns true when the
// session's override was replaced.
//
// Every failure mode (comment below threshold, backend error, candidate
// failing validation) leaves the prior effective prompt untouched and is
// logged, never surfaced to the end user.
func (e *Engine) ApplyCustomFeedback(ctx context.Context, fb Feedback) bool {
	if len([]rune(fb.Comment)) <= e.config.MinCommentLength {
		return false
	}
	if e.rewriter == nil {
		e.logger.Warn("custom feedback received but no rewriter configured",
			"session_id", fb.SessionID,
		)
		return false
	}

	current := e.EffectivePrompt(fb.SessionID)

	userContent := fmt.Sprintf(
		"当前系统提示词：\n%s\n\n用户提问：%s\n当前系统回答：%s\n用户反馈意见：%s",
		current, fb.UserQuery, fb.AssistantResponse, fb.Comment,
	)
	history := []providers.Message{
		{Role: providers.RoleUser, Content: userContent},
	}

	resp, err := e.rewriter.SendCompletion(ctx, "", rewriteInstruction, history)
	if err != nil {
		e.logger.Error("prompt rewrite request failed",
			"session_id", fb.SessionID,
			"error", err,
		)
		e.record(fb.SessionID, CategoryCustom, "rejected")
		return false
	}

	candidate := strings.TrimSpace(resp.Content)
	if err := e.config.Rules.Validate(candidate); err != nil {
		e.logger.Warn("prompt rewrite rejected",
			"session_id", fb.SessionID,
			"error", err,
		)
		e.record(fb.SessionID, CategoryCustom, "rejected")
		return false
	}

	e.mu.Lock()
	state := e.stateLocked(fb.SessionID)
	state.override = candidate
	e.recordLocked(HistoryEntry{
		SessionID: fb.SessionID,
		Kind:      CategoryCustom,
		Outcome:   "applied",
		Timestamp: e.now(),
	})
	e.mu.Unlock()

	e.logger.Info("custom prompt override applied",
		"session_id", fb.SessionID,
		"prompt_runes", len([]rune(candidate)),
	)
	return true
}

// RecordFeedback appends the record to the session's feedback log.
func (e *Engine) RecordFeedback(fb Feedback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := e.stateLocked(fb.SessionID)
	state.feedback = append(state.feedback, fb)
}

// Reset clears the session's override, adjustment set, and feedback log,
// reverting it to the base template.
func (e *Engine) Reset(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, sessionID)
	e.logger.Info("session prompt reset", "session_id", sessionID)
}

// stateLocked fetches or creates the session state. Caller holds e.mu.
func (e *Engine) stateLocked(sessionID string) *sessionState {
	state, ok := e.sessions[sessionID]
	if !ok {
		state = &sessionState{adjustments: make(map[Adjustment]bool)}
		e.sessions[sessionID] = state
	}
	return state
}

// record appends a history entry under the lock.
func (e *Engine) record(sessionID string, kind Category, outcome string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordLocked(HistoryEntry{
		SessionID: sessionID,
		Kind:      kind,
		Outcome:   outcome,
		Timestamp: e.now(),
	})
}

// recordLocked appends a history entry and notifies the metrics hook.
// Caller holds e.mu.
func (e *Engine) recordLocked(entry HistoryEntry) {
	e.recorded++
	e.history = append(e.history, entry)
	if len(e.history) > e.config.HistoryCap {
		e.history = e.history[len(e.history)-e.config.HistoryCap:]
	}
	if e.onAdaptation != nil {
		e.onAdaptation(entry.Kind, entry.Outcome)
	}
}
