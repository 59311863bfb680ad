package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionHistoryHandler(t *testing.T) {
	f := newHandlerFixture(t)
	f.store.AppendUserTurn("sid-1", "糖尿病可以吃西瓜吗")
	f.store.AppendAssistantTurn("sid-1", "可以适量食用")
	handler := NewSessionHistoryHandler(f.store)

	rec := postJSON(handler, "/session/history", `{"session_id":"sid-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Msg != "success" {
		t.Errorf("msg = %q, want success", resp.Msg)
	}
	if len(resp.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(resp.History))
	}
	if resp.History[0].Role != "user" || resp.History[1].Role != "assistant" {
		t.Errorf("history roles = %q/%q", resp.History[0].Role, resp.History[1].Role)
	}
}

func TestSessionHistoryHandlerUnknownSession(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewSessionHistoryHandler(f.store)

	rec := postJSON(handler, "/session/history", `{"session_id":"sid-missing"}`)
	// Lenient contract: unknown sessions are a 200 with a descriptive msg.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Msg != "sid-missing not in conversations" {
		t.Errorf("msg = %q", resp.Msg)
	}
	if len(resp.History) != 0 {
		t.Errorf("history = %v, want empty", resp.History)
	}
}

func TestHealthHandler(t *testing.T) {
	f := newHandlerFixture(t)
	f.store.Create("sid-1")
	handler := NewHealthHandler(f.store, f.router)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.ActiveBackend != "primary-backend" {
		t.Errorf("active backend = %q", resp.ActiveBackend)
	}
	if resp.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", resp.Sessions)
	}
}
