package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

func TestGNewsFetchMapsArticles(t *testing.T) {
	payload := `{
		"totalArticles": 2,
		"articles": [
			{
				"title": "Tesla expands factory",
				"description": "More capacity",
				"url": "https://example.com/g1",
				"image": "https://example.com/g1.jpg",
				"publishedAt": "2026-03-12T08:30:00Z",
				"source": {"name": "Example"}
			},
			{
				"title": "No link here",
				"url": "   "
			}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected path /search, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "tesla" {
			t.Errorf("expected keyword tesla, got %q", q.Get("q"))
		}
		if q.Get("apikey") != "secret" {
			t.Errorf("expected apikey param, got %q", q.Get("apikey"))
		}
		if q.Get("lang") != "en" {
			t.Errorf("expected lang en, got %q", q.Get("lang"))
		}
		if q.Get("max") != "50" {
			t.Errorf("expected max 50, got %q", q.Get("max"))
		}
		if q.Get("from") != "2026-03-01T00:00:00Z" {
			t.Errorf("expected from bound forwarded, got %q", q.Get("from"))
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(payload)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := NewGNewsFetcher(testClient(), "secret", srv.URL)
	if f.Source() != domain.SourceGNews {
		t.Fatalf("expected source %s, got %s", domain.SourceGNews, f.Source())
	}

	got, err := f.Fetch(context.Background(), Query{
		Keyword: "tesla",
		From:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article after dropping the url-less row, got %d", len(got))
	}
	if got[0].Title != "Tesla expands factory" {
		t.Errorf("expected title mapped, got %q", got[0].Title)
	}
	if got[0].ImageURL != "https://example.com/g1.jpg" {
		t.Errorf("expected image url mapped, got %q", got[0].ImageURL)
	}
	if got[0].Source != domain.SourceGNews {
		t.Errorf("expected source gnews, got %s", got[0].Source)
	}
}

func TestGNewsFetchWithoutKeySkipsProvider(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	f := NewGNewsFetcher(testClient(), "", srv.URL)
	got, err := f.Fetch(context.Background(), Query{Keyword: "tesla"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no articles without a key, got %d", len(got))
	}
	if hits.Load() != 0 {
		t.Errorf("expected no upstream request without a key, got %d", hits.Load())
	}
}

func TestGNewsFetchRejectsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewGNewsFetcher(testClient(), "secret", srv.URL)
	if _, err := f.Fetch(context.Background(), Query{Keyword: "tesla"}); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
