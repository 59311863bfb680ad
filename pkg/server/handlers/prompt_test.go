package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"sophonine/auracall/pkg/adaptation"
)

func TestPromptReportHandlerSession(t *testing.T) {
	f := newHandlerFixture(t)
	f.engine.ApplyStandardAdjustment("sid-1", adaptation.AdjustGuidance)
	handler := NewPromptReportHandler(f.engine)

	req := httptest.NewRequest(http.MethodGet, "/prompt/report?session_id=sid-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report adaptation.SessionReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.SessionID != "sid-1" {
		t.Errorf("session id = %q", report.SessionID)
	}
	if len(report.ActiveAdjustments) != 1 || report.ActiveAdjustments[0] != adaptation.AdjustGuidance {
		t.Errorf("active adjustments = %v", report.ActiveAdjustments)
	}
}

func TestPromptReportHandlerAggregate(t *testing.T) {
	f := newHandlerFixture(t)
	f.engine.ApplyStandardAdjustment("sid-1", adaptation.AdjustClarity)
	handler := NewPromptReportHandler(f.engine)

	req := httptest.NewRequest(http.MethodGet, "/prompt/report", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var report adaptation.AggregateReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.TotalOptimizations != 1 || report.TrackedSessions != 1 {
		t.Errorf("aggregate = %+v", report)
	}
}

func TestPromptResetHandler(t *testing.T) {
	f := newHandlerFixture(t)
	f.engine.ApplyStandardAdjustment("sid-1", adaptation.AdjustCaution)
	handler := NewPromptResetHandler(f.engine)

	rec := postJSON(handler, "/prompt/reset", `{"session_id":"sid-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	report := f.engine.ReportSession("sid-1")
	if len(report.ActiveAdjustments) != 0 {
		t.Errorf("adjustments after reset = %v, want none", report.ActiveAdjustments)
	}
}

func TestPromptResetHandlerRequiresSessionID(t *testing.T) {
	f := newHandlerFixture(t)
	handler := NewPromptResetHandler(f.engine)

	rec := postJSON(handler, "/prompt/reset", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Msg != "缺少必要字段: session_id" {
		t.Errorf("msg = %q", resp.Msg)
	}
}
