package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientEnabled(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		want   bool
	}{
		{"configured", Config{Enabled: true, BaseURL: "http://kb.local"}, true},
		{"disabled flag", Config{Enabled: false, BaseURL: "http://kb.local"}, false},
		{"missing url", Config{Enabled: true}, false},
		{"zero value", Config{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewClient(tc.config).Enabled(); got != tc.want {
				t.Errorf("Enabled = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRetrieve(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/knowledge/retrieve" {
			t.Errorf("path = %q, want /v1/knowledge/retrieve", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer credential", got)
		}
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query != "高血压饮食" {
			t.Errorf("query = %q, want the submitted query", req.Query)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"msg":"ok","content":"低盐饮食，每日钠摄入不超过2克。"}`))
	}))
	defer ts.Close()

	client := NewClient(Config{Enabled: true, BaseURL: ts.URL, APIKey: "test-key"})
	snippet, err := client.Retrieve(context.Background(), "高血压饮食")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if snippet != "低盐饮食，每日钠摄入不超过2克。" {
		t.Errorf("snippet = %q", snippet)
	}
}

func TestRetrieveNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(Config{Enabled: true, BaseURL: ts.URL})
	_, err := client.Retrieve(context.Background(), "q")
	if err == nil {
		t.Fatal("Retrieve succeeded on 503")
	}
	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("err type = %T, want *Error", err)
	}
	if rerr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rerr.StatusCode)
	}
}

func TestRetrieveMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	client := NewClient(Config{Enabled: true, BaseURL: ts.URL})
	if _, err := client.Retrieve(context.Background(), "q"); err == nil {
		t.Fatal("Retrieve accepted a malformed body")
	}
}

func TestRetrieveTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	client := NewClient(Config{Enabled: true, BaseURL: ts.URL, Timeout: 50 * time.Millisecond})
	if _, err := client.Retrieve(context.Background(), "q"); err == nil {
		t.Fatal("Retrieve did not time out")
	}
}
