package routing

import (
	"context"
	"errors"
	"testing"

	"sophonine/auracall/internal/testutil"
	"sophonine/auracall/pkg/providers"
)

func newTestRouter() (*Router, *testutil.MockProvider, *testutil.MockProvider) {
	primary := testutil.NewMockProvider("primary-backend")
	secondary := testutil.NewMockProvider("secondary-backend")
	return NewRouter(primary, secondary), primary, secondary
}

func TestRouterStartsOnPrimary(t *testing.T) {
	router, primary, _ := newTestRouter()
	active, slot := router.Active()
	if slot != Primary {
		t.Errorf("active slot = %v, want Primary", slot)
	}
	if active.Name() != primary.Name() {
		t.Errorf("active backend = %q, want %q", active.Name(), primary.Name())
	}
}

func TestRouterSingleFailureDoesNotSwitch(t *testing.T) {
	router, _, _ := newTestRouter()
	router.RecordFailure()

	stats := router.Snapshot()
	if stats.Active != "primary-backend" {
		t.Errorf("active = %q after one failure, want primary-backend", stats.Active)
	}
	if stats.PrimaryErrors != 1 {
		t.Errorf("primary errors = %d, want 1", stats.PrimaryErrors)
	}
}

func TestRouterSwitchesAtThresholdAndClearsCounters(t *testing.T) {
	router, _, _ := newTestRouter()
	var switches [][2]string
	router.OnFailover(func(from, to string) {
		switches = append(switches, [2]string{from, to})
	})

	router.RecordFailure()
	router.RecordFailure()

	stats := router.Snapshot()
	if stats.Active != "secondary-backend" {
		t.Errorf("active = %q after threshold, want secondary-backend", stats.Active)
	}
	if stats.PrimaryErrors != 0 || stats.SecondaryErrors != 0 {
		t.Errorf("counters = %d/%d after switch, want 0/0",
			stats.PrimaryErrors, stats.SecondaryErrors)
	}
	if len(switches) != 1 {
		t.Fatalf("failover hook fired %d times, want 1", len(switches))
	}
	if switches[0] != [2]string{"primary-backend", "secondary-backend"} {
		t.Errorf("failover = %v, want primary-backend -> secondary-backend", switches[0])
	}
}

func TestRouterSwitchesBackAfterSecondaryFailures(t *testing.T) {
	router, _, _ := newTestRouter()

	// Two failures move to secondary; two more move back to primary.
	for i := 0; i < 4; i++ {
		router.RecordFailure()
	}

	stats := router.Snapshot()
	if stats.Active != "primary-backend" {
		t.Errorf("active = %q, want primary-backend after round trip", stats.Active)
	}
	if stats.PrimaryErrors != 0 || stats.SecondaryErrors != 0 {
		t.Errorf("counters = %d/%d, want 0/0", stats.PrimaryErrors, stats.SecondaryErrors)
	}
}

func TestRouterSuccessResetsCounter(t *testing.T) {
	router, _, _ := newTestRouter()
	router.RecordFailure()
	router.RecordSuccess()
	router.RecordFailure()

	stats := router.Snapshot()
	if stats.Active != "primary-backend" {
		t.Errorf("active = %q, want primary-backend (success broke the streak)", stats.Active)
	}
	if stats.PrimaryErrors != 1 {
		t.Errorf("primary errors = %d, want 1", stats.PrimaryErrors)
	}
}

func TestRouterStreamOpenFailureCounts(t *testing.T) {
	router, primary, _ := newTestRouter()
	primary.OpenErr = errors.New("connection refused")

	_, err := router.StreamCompletion(context.Background(), "", "system", nil)
	if err == nil {
		t.Fatal("StreamCompletion did not surface the open error")
	}
	if got := router.Snapshot().PrimaryErrors; got != 1 {
		t.Errorf("primary errors = %d after open failure, want 1", got)
	}
}

func TestRouterStreamUsesDefaultModel(t *testing.T) {
	router, primary, _ := newTestRouter()
	primary.Chunks = []string{"hi"}

	if _, err := router.StreamCompletion(context.Background(), "", "system", nil); err != nil {
		t.Fatalf("StreamCompletion: %v", err)
	}
	if primary.LastRequest.Model != primary.DefaultModel {
		t.Errorf("model = %q, want default %q", primary.LastRequest.Model, primary.DefaultModel)
	}
	if !primary.LastRequest.Stream {
		t.Error("request not marked streaming")
	}
}

func TestRouterPrependsSystemMessage(t *testing.T) {
	router, primary, _ := newTestRouter()
	history := []providers.Message{{Role: providers.RoleUser, Content: "hello"}}

	if _, err := router.SendCompletion(context.Background(), "m1", "be helpful", history); err != nil {
		t.Fatalf("SendCompletion: %v", err)
	}

	msgs := primary.LastRequest.Messages
	if len(msgs) != 2 {
		t.Fatalf("message count = %d, want 2", len(msgs))
	}
	if msgs[0].Role != providers.RoleSystem || msgs[0].Content != "be helpful" {
		t.Errorf("first message = %+v, want system instruction", msgs[0])
	}
	if msgs[1].Role != providers.RoleUser {
		t.Errorf("second message role = %q, want user", msgs[1].Role)
	}
	if primary.LastRequest.Model != "m1" {
		t.Errorf("model = %q, want m1", primary.LastRequest.Model)
	}
}

func TestRouterNoBackend(t *testing.T) {
	router := NewRouter(nil, nil)
	if _, err := router.StreamCompletion(context.Background(), "", "s", nil); !errors.Is(err, ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}
}
