package routing

import (
	"context"
	"log/slog"
	"sync"

	"sophonine/auracall/pkg/providers"
)

// Slot identifies one of the two backend positions.
type Slot int

const (
	// Primary is the preferred backend slot.
	Primary Slot = iota
	// Secondary is the fallback backend slot.
	Secondary
)

// String returns the slot name for logs and metrics.
func (s Slot) String() string {
	if s == Primary {
		return "primary"
	}
	return "secondary"
}

// other returns the opposite slot.
func (s Slot) other() Slot {
	if s == Primary {
		return Secondary
	}
	return Primary
}

// FailoverThreshold is the number of consecutive failures on the active
// backend that triggers a switch. At most one prior failure is tolerated.
const FailoverThreshold = 2

// Router tracks the active backend and its consecutive-error count, and
// delegates completion calls to the active backend's provider.
type Router struct {
	mu sync.Mutex

	backends [2]providers.Provider
	active   Slot
	errCount [2]int

	// onFailover, when set, is invoked (outside the request path but under
	// the router lock) every time the active slot changes.
	onFailover func(from, to string)
}

// NewRouter creates a router over the two backend handles. The primary
// slot starts active with both error counters at zero.
func NewRouter(primary, secondary providers.Provider) *Router {
	return &Router{
		backends: [2]providers.Provider{primary, secondary},
		active:   Primary,
	}
}

// OnFailover registers a hook called with the backend names whenever the
// active slot switches. Used to feed the failover metrics.
func (r *Router) OnFailover(fn func(from, to string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFailover = fn
}

// Active returns the currently active provider and its slot.
func (r *Router) Active() (providers.Provider, Slot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backends[r.active], r.active
}

// ActiveName returns the configured name of the active backend.
func (r *Router) ActiveName() string {
	p, _ := r.Active()
	if p == nil {
		return ""
	}
	return p.Name()
}

// StreamCompletion requests a streaming completion from the active backend.
// If model is empty the active backend's default model is used. A failure
// to establish the stream counts as a backend failure.
//
// The router deliberately does not hold its lock across the upstream call.
func (r *Router) StreamCompletion(ctx context.Context, model, systemPrompt string, history []providers.Message) (<-chan *providers.StreamChunk, error) {
	backend, _ := r.Active()
	if backend == nil {
		return nil, ErrNoBackend
	}
	if model == "" {
		model = backend.Model()
	}

	req := &providers.CompletionRequest{
		Model:    model,
		Messages: withSystem(systemPrompt, history),
		Stream:   true,
	}

	chunks, err := backend.StreamCompletion(ctx, req)
	if err != nil {
		r.RecordFailure()
		return nil, err
	}
	return chunks, nil
}

// SendCompletion requests a single non-streaming completion from the active
// backend. Used for internal meta-requests such as prompt rewriting.
func (r *Router) SendCompletion(ctx context.Context, model, systemPrompt string, history []providers.Message) (*providers.CompletionResponse, error) {
	backend, _ := r.Active()
	if backend == nil {
		return nil, ErrNoBackend
	}
	if model == "" {
		model = backend.Model()
	}

	req := &providers.CompletionRequest{
		Model:    model,
		Messages: withSystem(systemPrompt, history),
	}

	resp, err := backend.SendCompletion(ctx, req)
	if err != nil {
		r.RecordFailure()
		return nil, err
	}
	r.RecordSuccess()
	return resp, nil
}

// RecordSuccess resets the active backend's consecutive-error counter.
// The orchestrator calls this once a stream has yielded at least one
// fragment.
func (r *Router) RecordSuccess() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errCount[r.active] = 0
}

// RecordFailure increments the active backend's consecutive-error counter
// and, at the threshold, swaps the active slot and clears both counters.
func (r *Router) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errCount[r.active]++
	if r.errCount[r.active] < FailoverThreshold {
		return
	}

	from := r.active
	r.active = r.active.other()
	r.errCount[Primary] = 0
	r.errCount[Secondary] = 0

	fromName, toName := r.name(from), r.name(r.active)
	slog.Warn("backend failover",
		"from", fromName,
		"to", toName,
		"threshold", FailoverThreshold,
	)
	if r.onFailover != nil {
		r.onFailover(fromName, toName)
	}
}

// Stats is a point-in-time snapshot of router state.
type Stats struct {
	Active           string `json:"active"`
	PrimaryErrors    int    `json:"primary_errors"`
	SecondaryErrors  int    `json:"secondary_errors"`
	PrimaryBackend   string `json:"primary_backend"`
	SecondaryBackend string `json:"secondary_backend"`
}

// Snapshot returns the current router state.
func (r *Router) Snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Active:           r.name(r.active),
		PrimaryErrors:    r.errCount[Primary],
		SecondaryErrors:  r.errCount[Secondary],
		PrimaryBackend:   r.name(Primary),
		SecondaryBackend: r.name(Secondary),
	}
}

// Close releases both backend handles.
func (r *Router) Close() error {
	var first error
	for _, b := range r.backends {
		if b == nil {
			continue
		}
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// name returns the configured name of the backend in the given slot,
// falling back to the slot name.
func (r *Router) name(s Slot) string {
	if r.backends[s] != nil {
		return r.backends[s].Name()
	}
	return s.String()
}

// withSystem builds the final message array: the system instruction first,
// then the truncated history whose last element is already the pending user
// query. Nothing else is appended.
func withSystem(systemPrompt string, history []providers.Message) []providers.Message {
	out := make([]providers.Message, 0, len(history)+1)
	out = append(out, providers.Message{Role: providers.RoleSystem, Content: systemPrompt})
	out = append(out, history...)
	return out
}
