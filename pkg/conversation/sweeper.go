package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SweeperConfig controls the periodic pruning of stale sessions.
type SweeperConfig struct {
	// Schedule is a standard cron expression (e.g., "*/30 * * * *").
	// Empty disables sweeping.
	Schedule string

	// ClosedTTL is how long a closed session is kept for history reads
	// before it is pruned. Zero keeps closed sessions forever.
	ClosedTTL time.Duration

	// IdleTTL is how long an open session may stay idle before it is
	// pruned. Zero keeps idle sessions forever.
	IdleTTL time.Duration
}

// Sweeper prunes stale sessions from a Store on a cron schedule.
type Sweeper struct {
	store  *Store
	config SweeperConfig
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewSweeper creates a sweeper over the given store.
func NewSweeper(store *Store, config SweeperConfig) *Sweeper {
	return &Sweeper{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: slog.Default().With("component", "conversation.sweeper"),
	}
}

// Start begins scheduled sweeping. With an empty schedule it does nothing.
// The sweeper stops itself when the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.Schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.config.Schedule, err)
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("session sweeper started",
		"schedule", s.config.Schedule,
		"closed_ttl", s.config.ClosedTTL.String(),
		"idle_ttl", s.config.IdleTTL.String(),
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one sweep cycle.
func (s *Sweeper) runSweep() {
	removed := s.store.Sweep(s.config.ClosedTTL, s.config.IdleTTL)
	if removed > 0 {
		s.logger.Info("pruned stale sessions",
			"removed", removed,
			"remaining", s.store.Len(),
		)
	}
}

// Stop halts scheduled sweeping.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info("session sweeper stopped")
}
