package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

const googleNewsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"apple" - Google News</title>
    <item>
      <title>Apple announces spring event - TechDaily</title>
      <link>https://news.google.com/articles/x1</link>
      <pubDate>Tue, 10 Mar 2026 09:00:00 GMT</pubDate>
      <description>Event &lt;b&gt;confirmed&lt;/b&gt;</description>
    </item>
    <item>
      <title>Out of range story - OldPaper</title>
      <link>https://news.google.com/articles/x2</link>
      <pubDate>Sun, 01 Feb 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No link item</title>
    </item>
  </channel>
</rss>`

func TestGoogleNewsFetchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("expected path /search, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("q"); got != "apple after:2026-03-01 before:2026-04-01" {
			t.Errorf("expected window folded into query, got %q", got)
		}
		if q.Get("hl") != "en-US" || q.Get("gl") != "US" || q.Get("ceid") != "US:en" {
			t.Errorf("expected locale params, got hl=%q gl=%q ceid=%q", q.Get("hl"), q.Get("gl"), q.Get("ceid"))
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		if _, err := w.Write([]byte(googleNewsFixture)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := NewGoogleNewsFetcher(testClient(), srv.URL)
	if f.Source() != domain.SourceGoogleNews {
		t.Fatalf("expected source %s, got %s", domain.SourceGoogleNews, f.Source())
	}

	got, err := f.Fetch(context.Background(), Query{
		Keyword: "apple",
		From:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The February item falls outside the window and the link-less item is
	// dropped during mapping.
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Title != "Apple announces spring event" {
		t.Errorf("expected publisher suffix stripped, got %q", got[0].Title)
	}
	if got[0].Description != "Event confirmed" {
		t.Errorf("expected description cleaned, got %q", got[0].Description)
	}
	if got[0].URL != "https://news.google.com/articles/x1" {
		t.Errorf("expected link mapped, got %q", got[0].URL)
	}
	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if !got[0].PublishedAt.Equal(want) {
		t.Errorf("expected published at %v, got %v", want, got[0].PublishedAt)
	}
}

func TestGoogleNewsFetchRejectsMalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("not a feed")); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	f := NewGoogleNewsFetcher(testClient(), srv.URL)
	if _, err := f.Fetch(context.Background(), Query{Keyword: "apple"}); err == nil {
		t.Fatal("expected error for malformed feed")
	}
}

func TestGoogleNewsQuery(t *testing.T) {
	bare := googleNewsQuery(Query{Keyword: "apple"})
	if bare != "apple" {
		t.Errorf("expected bare keyword without bounds, got %q", bare)
	}

	q := Query{
		Keyword: "apple",
		From:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:      time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	// before: is exclusive upstream, so To is pushed one day past the window.
	if got := googleNewsQuery(q); got != "apple after:2026-03-01 before:2026-04-01" {
		t.Errorf("unexpected folded query %q", got)
	}
}

func TestStripPublisherSuffix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Apple event - TechDaily", "Apple event"},
		{"Multi - part title - Publisher", "Multi - part title"},
		{"No suffix here", "No suffix here"},
		{" - leading separator", " - leading separator"},
	}
	for _, tt := range tests {
		if got := stripPublisherSuffix(tt.input); got != tt.want {
			t.Errorf("stripPublisherSuffix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
