package conversation

import (
	"context"
	"testing"
	"time"
)

func TestSweeperEmptyScheduleIsNoop(t *testing.T) {
	sweeper := NewSweeper(NewStore(), SweeperConfig{})
	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start with empty schedule: %v", err)
	}
	sweeper.Stop()
}

func TestSweeperRejectsInvalidSchedule(t *testing.T) {
	sweeper := NewSweeper(NewStore(), SweeperConfig{Schedule: "not a cron expr"})
	if err := sweeper.Start(context.Background()); err == nil {
		t.Error("Start accepted an invalid schedule")
	}
}

func TestSweeperStopsOnContextCancel(t *testing.T) {
	sweeper := NewSweeper(NewStore(), SweeperConfig{
		Schedule:  "*/10 * * * *",
		ClosedTTL: 30 * time.Minute,
	})
	ctx, cancel := context.WithCancel(context.Background())
	if err := sweeper.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		sweeper.mu.Lock()
		running := sweeper.running
		sweeper.mu.Unlock()
		if !running {
			return
		}
		select {
		case <-deadline:
			t.Fatal("sweeper still running after context cancel")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSweeperDoubleStopSafe(t *testing.T) {
	sweeper := NewSweeper(NewStore(), SweeperConfig{Schedule: "*/10 * * * *"})
	if err := sweeper.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sweeper.Stop()
	sweeper.Stop()
}
