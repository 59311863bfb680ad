package adaptation

// SessionReport is the read-only adaptation view of one session.
type SessionReport struct {
	// SessionID identifies the session
	SessionID string `json:"session_id"`

	// EffectivePrompt is the fully resolved system instruction
	EffectivePrompt string `json:"effective_prompt"`

	// ActiveAdjustments lists applied adjustments in canonical order
	ActiveAdjustments []Adjustment `json:"active_adjustments"`

	// HasOverride reports whether a custom rewrite is in force
	HasOverride bool `json:"has_override"`

	// Feedback is the session's append-only feedback log
	Feedback []Feedback `json:"feedback"`

	// History is the subset of the process-wide optimization history
	// belonging to this session
	History []HistoryEntry `json:"history"`
}

// AggregateReport summarizes adaptation activity across all sessions.
type AggregateReport struct {
	// TotalOptimizations counts every optimization attempt recorded over
	// the process lifetime, unaffected by the history cap
	TotalOptimizations int `json:"total_optimizations"`

	// SessionsWithOverride counts sessions running a custom rewrite
	SessionsWithOverride int `json:"sessions_with_override"`

	// TrackedSessions counts sessions with any adaptation state
	TrackedSessions int `json:"tracked_sessions"`

	// Recent holds the most recent history entries, newest last
	Recent []HistoryEntry `json:"recent"`
}

// ReportSession returns the adaptation view of one session. Unknown
// sessions report the bare base template with no activity.
func (e *Engine) ReportSession(sessionID string) SessionReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := SessionReport{
		SessionID:       sessionID,
		EffectivePrompt: e.effectivePromptLocked(sessionID),
	}

	if state, ok := e.sessions[sessionID]; ok {
		for _, kind := range canonicalOrder {
			if state.adjustments[kind] {
				report.ActiveAdjustments = append(report.ActiveAdjustments, kind)
			}
		}
		report.HasOverride = state.override != ""
		report.Feedback = append(report.Feedback, state.feedback...)
	}

	for _, entry := range e.history {
		if entry.SessionID == sessionID {
			report.History = append(report.History, entry)
		}
	}

	return report
}

// ReportAggregate returns process-wide counts and the most recent n
// history entries.
func (e *Engine) ReportAggregate(n int) AggregateReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	report := AggregateReport{
		TotalOptimizations: e.recorded,
		TrackedSessions:    len(e.sessions),
	}
	for _, state := range e.sessions {
		if state.override != "" {
			report.SessionsWithOverride++
		}
	}

	if n <= 0 || n > len(e.history) {
		n = len(e.history)
	}
	report.Recent = append(report.Recent, e.history[len(e.history)-n:]...)

	return report
}
