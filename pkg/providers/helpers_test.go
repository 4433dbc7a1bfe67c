package providers

import (
	"strings"
	"testing"
	"time"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Fish &amp; Chips", "Fish & Chips"},
		{"  spaced \n out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanText(tt.input); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTitleOrUntitled(t *testing.T) {
	if got := titleOrUntitled(""); got != "Untitled" {
		t.Errorf("expected Untitled for empty title, got %q", got)
	}
	if got := titleOrUntitled("   "); got != "Untitled" {
		t.Errorf("expected Untitled for blank title, got %q", got)
	}
	if got := titleOrUntitled("<i>Quiet</i> day"); got != "Quiet day" {
		t.Errorf("expected markup stripped, got %q", got)
	}
}

func TestParseRFC3339(t *testing.T) {
	got := parseRFC3339("2026-03-10T14:30:00+02:00")
	want := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !parseRFC3339("not a date").IsZero() {
		t.Error("expected zero time for unparseable input")
	}
	if !parseRFC3339("").IsZero() {
		t.Error("expected zero time for empty input")
	}
}

func TestParseTimeUTC(t *testing.T) {
	got := parseTimeUTC("2026-03-10 14:30:00", newsDataTimeLayout)
	want := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected naive timestamp read as UTC, got %v", got)
	}
	if !parseTimeUTC("garbage", newsDataTimeLayout).IsZero() {
		t.Error("expected zero time for unparseable input")
	}
}

func TestResponseSnippet(t *testing.T) {
	if got := responseSnippet(nil); got != "<empty>" {
		t.Errorf("expected <empty> placeholder, got %q", got)
	}

	long := strings.Repeat("x", 600)
	got := responseSnippet([]byte(long))
	if len(got) != 512+len("...") {
		t.Errorf("expected snippet capped at 512 bytes, got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected truncation marker on long snippets")
	}
}

func TestQueryContains(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	q := Query{From: from, To: to}

	if !q.Contains(from.Add(24 * time.Hour)) {
		t.Error("expected in-window timestamp accepted")
	}
	if q.Contains(from.Add(-time.Hour)) {
		t.Error("expected pre-window timestamp rejected")
	}
	if q.Contains(to.Add(time.Hour)) {
		t.Error("expected post-window timestamp rejected")
	}
	if !q.Contains(time.Time{}) {
		t.Error("expected unknown publication time to pass any window")
	}
	if (Query{}).Bounded() {
		t.Error("expected the zero query unbounded")
	}
}
