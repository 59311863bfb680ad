package feedback

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sophonine/auracall/pkg/adaptation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&Config{
		Path:         filepath.Join(t.TempDir(), "feedback.db"),
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(id, sessionID string, category adaptation.Category) *Record {
	return &Record{
		Feedback: adaptation.Feedback{
			ID:                id,
			SessionID:         sessionID,
			Category:          category,
			UserQuery:         "头疼怎么办",
			AssistantResponse: "可能是紧张性头痛",
			Rating:            3,
		},
		Outcome:   "recorded",
		CreatedAt: time.Now().UTC(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("fb-1", "sid-1", adaptation.CategoryStandard)
	rec.Feedback.Kind = adaptation.AdjustClarity
	rec.Feedback.Comment = "回答不够通俗"
	rec.Adjustment = adaptation.AdjustClarity
	rec.Outcome = "applied"
	if err := store.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := store.Query(ctx, &Query{SessionID: "sid-1"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("record count = %d, want 1", len(got))
	}
	fb := got[0].Feedback
	if fb.ID != "fb-1" || fb.Category != adaptation.CategoryStandard || fb.Kind != adaptation.AdjustClarity {
		t.Errorf("feedback = %+v", fb)
	}
	if fb.Comment != "回答不够通俗" {
		t.Errorf("comment = %q", fb.Comment)
	}
	if got[0].Adjustment != adaptation.AdjustClarity || got[0].Outcome != "applied" {
		t.Errorf("record = adjustment:%q outcome:%q", got[0].Adjustment, got[0].Outcome)
	}
}

func TestStoreQueryFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, rec := range []*Record{
		testRecord("fb-1", "sid-1", adaptation.CategoryPositive),
		testRecord("fb-2", "sid-1", adaptation.CategoryCustom),
		testRecord("fb-3", "sid-2", adaptation.CategoryPositive),
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Store(ctx, rec); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}

	bySession, err := store.Query(ctx, &Query{SessionID: "sid-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(bySession) != 2 {
		t.Errorf("session filter returned %d records, want 2", len(bySession))
	}
	// Newest first.
	if len(bySession) == 2 && bySession[0].Feedback.ID != "fb-2" {
		t.Errorf("first record = %q, want the newest", bySession[0].Feedback.ID)
	}

	byCategory, err := store.Query(ctx, &Query{Category: adaptation.CategoryPositive})
	if err != nil {
		t.Fatal(err)
	}
	if len(byCategory) != 2 {
		t.Errorf("category filter returned %d records, want 2", len(byCategory))
	}

	since := base.Add(90 * time.Second)
	recent, err := store.Query(ctx, &Query{Since: &since})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Feedback.ID != "fb-3" {
		t.Errorf("since filter = %v, want just fb-3", recent)
	}

	limited, err := store.Query(ctx, &Query{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d records", len(limited))
	}
}

func TestStoreCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []*Record{
		testRecord("fb-1", "sid-1", adaptation.CategoryPositive),
		testRecord("fb-2", "sid-2", adaptation.CategoryPositive),
	} {
		if err := store.Store(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	total, err := store.Count(ctx, &Query{})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}

	one, err := store.Count(ctx, &Query{SessionID: "sid-1"})
	if err != nil {
		t.Fatal(err)
	}
	if one != 1 {
		t.Errorf("session count = %d, want 1", one)
	}
}

func TestStoreDuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("fb-dup", "sid-1", adaptation.CategoryPositive)
	if err := store.Store(ctx, rec); err != nil {
		t.Fatal(err)
	}
	err := store.Store(ctx, rec)
	if err == nil {
		t.Fatal("duplicate feedback id accepted")
	}
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Op != "store" {
		t.Errorf("err = %v, want StorageError with op store", err)
	}
}

func TestStoreAsyncEventuallyPersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.StoreAsync(testRecord("fb-async", "sid-1", adaptation.CategoryPositive))

	deadline := time.After(3 * time.Second)
	for {
		n, err := store.Count(ctx, &Query{SessionID: "sid-1"})
		if err != nil {
			t.Fatal(err)
		}
		if n == 1 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("async record never persisted")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestStoreSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	var version int
	if err := store.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback.db")
	cfg := &Config{Path: path, MaxOpenConns: 2, MaxIdleConns: 1, WALMode: true, BusyTimeout: time.Second}

	first, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Store(context.Background(), testRecord("fb-1", "sid-1", adaptation.CategoryPositive)); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	n, err := second.Count(context.Background(), &Query{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count after reopen = %d, want 1", n)
	}
}
