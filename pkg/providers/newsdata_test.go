package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

func TestNewsDataFetchAppliesWindowClientSide(t *testing.T) {
	payload := `{
		"status": "success",
		"results": [
			{
				"title": "Inside the window",
				"link": "https://example.com/n1",
				"description": "kept",
				"pubDate": "2026-03-10 12:00:00",
				"category": ["top", "Business"]
			},
			{
				"title": "Too old",
				"link": "https://example.com/n2",
				"pubDate": "2026-02-01 12:00:00"
			},
			{
				"title": "Unknown date",
				"link": "https://example.com/n3",
				"pubDate": "mystery"
			}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news" {
			t.Errorf("expected path /news, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "markets" {
			t.Errorf("expected keyword markets, got %q", q.Get("q"))
		}
		if q.Get("language") != "en" {
			t.Errorf("expected language en, got %q", q.Get("language"))
		}
		if q.Get("apikey") != "secret" {
			t.Errorf("expected apikey param, got %q", q.Get("apikey"))
		}
		if q.Get("from") != "" {
			t.Errorf("expected no from param on the wire, got %q", q.Get("from"))
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(payload)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := NewNewsDataFetcher(testClient(), "secret", srv.URL)
	got, err := f.Fetch(context.Background(), Query{
		Keyword: "markets",
		From:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The pre-window row is filtered locally; the undated row passes.
	if len(got) != 2 {
		t.Fatalf("expected 2 articles after window filtering, got %d", len(got))
	}
	if got[0].URL != "https://example.com/n1" || got[1].URL != "https://example.com/n3" {
		t.Errorf("expected n1 and n3 to survive, got %q and %q", got[0].URL, got[1].URL)
	}
	if got[0].Category != "business" {
		t.Errorf("expected lowercased category past the top bucket, got %q", got[0].Category)
	}
	if got[0].Source != domain.SourceNewsData {
		t.Errorf("expected source newsdata, got %s", got[0].Source)
	}
	want := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if !got[0].PublishedAt.Equal(want) {
		t.Errorf("expected naive timestamp read as UTC, got %v", got[0].PublishedAt)
	}
}

func TestNewsDataFetchRejectsErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"status":"error","results":[]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := NewNewsDataFetcher(testClient(), "secret", srv.URL)
	if _, err := f.Fetch(context.Background(), Query{Keyword: "markets"}); err == nil {
		t.Fatal("expected error for error-status payload")
	}
}

func TestNewsDataFetchWithoutKeySkipsProvider(t *testing.T) {
	f := NewNewsDataFetcher(testClient(), "", "http://127.0.0.1:0")
	got, err := f.Fetch(context.Background(), Query{Keyword: "markets"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no articles without a key, got %d", len(got))
	}
}

func TestFirstCategory(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{nil, ""},
		{[]string{"top"}, ""},
		{[]string{"top", "Sports"}, "sports"},
		{[]string{"  ", "technology"}, "technology"},
	}
	for _, tt := range tests {
		if got := firstCategory(tt.input); got != tt.want {
			t.Errorf("firstCategory(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
