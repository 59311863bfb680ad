package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"sophonine/auracall/pkg/adaptation"
	"sophonine/auracall/pkg/conversation"
	"sophonine/auracall/pkg/providers"
	"sophonine/auracall/pkg/retrieval"
	"sophonine/auracall/pkg/routing"
)

// Config tunes the orchestrator.
type Config struct {
	// LastNRounds is the number of user/assistant rounds retained when a
	// long history is truncated.
	LastNRounds int
}

// Orchestrator wires the conversation store, adaptation engine, knowledge
// client, and backend router into the per-request streaming pipeline.
type Orchestrator struct {
	store     *conversation.Store
	engine    *adaptation.Engine
	router    *routing.Router
	knowledge *retrieval.Client
	config    Config
	logger    *slog.Logger
}

// New creates an orchestrator. knowledge may be nil to disable retrieval.
func New(store *conversation.Store, engine *adaptation.Engine, router *routing.Router, knowledge *retrieval.Client, config Config) *Orchestrator {
	if config.LastNRounds <= 0 {
		config.LastNRounds = conversation.DefaultLastNRounds
	}
	return &Orchestrator{
		store:     store,
		engine:    engine,
		router:    router,
		knowledge: knowledge,
		config:    config,
		logger:    slog.Default().With("component", "orchestrator"),
	}
}

// NewSessionID allocates a session key: a timestamp prefix for log
// legibility plus a uuid fragment for uniqueness.
func NewSessionID() string {
	return fmt.Sprintf("sid-%s-%s", time.Now().Format("200601021504"), uuid.New().String()[:8])
}

// Submit validates the request and starts the streaming pipeline.
//
// Validation errors (ErrUnknownSession, ErrSessionClosed, ErrEmptyQuery)
// and stream-establishment failures are returned synchronously. A user
// turn that was already appended stays in the history. After a successful
// return the caller must drain the stream's fragment channel.
//
// Multi-turn requests hold the session's mutex from the user-turn append
// until finalization, so two requests racing on one session id run in
// sequence and the stored history keeps its user/assistant alternation.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*Stream, error) {
	requestID := uuid.New().String()[:8]
	logger := o.logger.With("request_id", requestID)

	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.Mode == "" {
		req.Mode = ModeSingle
	}

	// Validated state: resolve the session.
	sessionID := req.SessionID
	newSession := false
	var sessionMu *sync.Mutex
	if req.Mode == ModeMulti {
		switch {
		case sessionID == "":
			sessionID = NewSessionID()
			o.store.Create(sessionID)
			newSession = true
			logger.InfoContext(ctx, "new session", "session_id", sessionID)
		case !o.store.Exists(sessionID):
			return nil, ErrUnknownSession
		case o.store.IsClosed(sessionID):
			return nil, ErrSessionClosed
		}

		sessionMu = o.store.Lock(sessionID)
		sessionMu.Lock()
		// A request serialized behind a closing turn sees the session
		// closed only now.
		if !newSession && o.store.IsClosed(sessionID) {
			sessionMu.Unlock()
			return nil, ErrSessionClosed
		}
	} else {
		sessionID = req.SessionID
	}

	// Streaming state: assemble the model input.
	var history []providers.Message
	if req.Mode == ModeMulti {
		o.store.AppendUserTurn(sessionID, req.Query)
		for _, turn := range o.store.History(sessionID) {
			history = append(history, turn.Message())
		}
	} else {
		history = []providers.Message{{Role: providers.RoleUser, Content: req.Query}}
	}

	systemPrompt := o.engine.EffectivePrompt(sessionID)
	systemPrompt = o.withKnowledge(ctx, logger, systemPrompt, req)

	history = conversation.Truncate(history, o.config.LastNRounds)

	chunks, err := o.router.StreamCompletion(ctx, req.Model, systemPrompt, history)
	if err != nil {
		logger.ErrorContext(ctx, "backend stream request failed",
			"session_id", sessionID,
			"backend", o.router.ActiveName(),
			"error", err,
		)
		if sessionMu != nil {
			sessionMu.Unlock()
		}
		return nil, err
	}

	stream := &Stream{
		RequestID:  requestID,
		SessionID:  sessionID,
		NewSession: newSession,
		fragments:  make(chan Fragment, 16),
		done:       make(chan struct{}),
	}

	go o.relay(ctx, logger, stream, req, sessionMu, chunks)

	return stream, nil
}

// withKnowledge appends a retrieved knowledge snippet to the prompt when
// the request asks for it. Retrieval failure degrades to no knowledge.
func (o *Orchestrator) withKnowledge(ctx context.Context, logger *slog.Logger, prompt string, req Request) string {
	if !req.WantsKnowledge() || o.knowledge == nil || !o.knowledge.Enabled() {
		return prompt
	}

	snippet, err := o.knowledge.Retrieve(ctx, req.Query)
	if err != nil {
		logger.WarnContext(ctx, "knowledge retrieval failed, continuing without",
			"error", err,
		)
		return prompt
	}
	if snippet == "" {
		return prompt
	}
	return prompt + "\n\n【参考知识】\n" + snippet
}

// relay forwards upstream chunks to the caller and finalizes the turn.
//
// Finalization is tied to the upstream stream ending, not to the caller
// consuming the terminal fragment: a disconnected client stops the
// upstream read via ctx, but the text accumulated so far is still written
// back to the conversation store. sessionMu is the per-session mutex
// taken by Submit; it is released here once the turn is finalized.
func (o *Orchestrator) relay(ctx context.Context, logger *slog.Logger, stream *Stream, req Request, sessionMu *sync.Mutex, chunks <-chan *providers.StreamChunk) {
	if sessionMu != nil {
		defer sessionMu.Unlock()
	}

	var (
		fullText  string
		delivered int
		streamErr error
		cancelled bool
	)

read:
	for chunk := range chunks {
		if chunk.Err != nil {
			streamErr = chunk.Err
			o.router.RecordFailure()
			logger.ErrorContext(ctx, "backend stream failed mid-flight",
				"session_id", stream.SessionID,
				"fragments", delivered,
				"error", chunk.Err,
			)
			break read
		}
		if chunk.Delta == "" {
			continue
		}

		if delivered == 0 {
			o.router.RecordSuccess()
		}
		fullText += chunk.Delta
		delivered++

		select {
		case stream.fragments <- Fragment{
			RequestID: stream.RequestID,
			SessionID: stream.SessionID,
			Text:      chunk.Delta,
		}:
		case <-ctx.Done():
			cancelled = true
			break read
		}
	}
	if !cancelled && ctx.Err() != nil {
		cancelled = true
	}

	// Finalizing state.
	switch {
	case streamErr != nil:
		// Aborted stream: error signal only, no terminal marker, no
		// assistant append. The user turn already in the store stays.
		stream.finish(streamErr)
		return

	case delivered == 0:
		// Upstream ended without producing anything. Counts against the
		// backend the same as a mid-stream error.
		backend := o.router.ActiveName()
		o.router.RecordFailure()
		logger.ErrorContext(ctx, "backend stream produced no fragments",
			"session_id", stream.SessionID,
			"backend", backend,
		)
		stream.finish(&providers.BackendError{
			Backend: backend,
			Message: "stream produced no fragments",
		})
		return
	}

	finished := false
	if req.Mode == ModeMulti {
		// Closing is judged against the original user query, not the
		// model's answer.
		finished = conversation.IsClosing(req.Query)
		if finished {
			o.store.MarkClosed(stream.SessionID)
		}
		o.store.AppendAssistantTurn(stream.SessionID, fullText)
	}

	logger.InfoContext(ctx, "stream finalized",
		"session_id", stream.SessionID,
		"fragments", delivered,
		"response_runes", len([]rune(fullText)),
		"session_finished", finished,
		"client_cancelled", cancelled,
	)

	if !cancelled {
		select {
		case stream.fragments <- Fragment{
			RequestID:       stream.RequestID,
			SessionID:       stream.SessionID,
			Final:           true,
			SessionFinished: finished,
		}:
		case <-ctx.Done():
		}
	}
	stream.finish(nil)
}
