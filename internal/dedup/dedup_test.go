package dedup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
)

// fakeOracle serves embeddings from a fixed map keyed by the exact text the
// deduplicator submits. Unknown texts get a unit vector; texts listed in
// failOn simulate a backend failure.
type fakeOracle struct {
	mu      sync.Mutex
	vectors map[string][]float32
	failOn  map[string]bool
	calls   int
}

func (f *fakeOracle) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if f.failOn[text] {
			return nil, errors.New("embedding backend unavailable")
		}
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{1, 0}
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeOracle) Model() string { return "fake-embed" }

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func article(title, url string, published time.Time) domain.Article {
	return domain.Article{Title: title, URL: url, Source: domain.SourceNewsAPI, PublishedAt: published}
}

func TestLexicalKeepsMostRecent(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	d := New(nil, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Apple event", "https://a.example/u1", base),
		article("apple event!!", "https://b.example/u2", base.Add(time.Minute)),
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].URL != "https://b.example/u2" {
		t.Errorf("expected the more recent article to survive, got %s", out[0].URL)
	}
}

func TestLexicalTieKeepsFirstSeen(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	d := New(nil, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Market Rally Continues", "https://a.example/first", base),
		article("market rally continues", "https://b.example/second", base),
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].URL != "https://a.example/first" {
		t.Errorf("expected the first-seen article on a timestamp tie, got %s", out[0].URL)
	}
}

func TestLexicalIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	d := New(nil, nil, Config{})

	first := d.Deduplicate(context.Background(), []domain.Article{
		article("Fed raises rates", "https://a.example/1", base),
		article("Fed Raises Rates!", "https://b.example/2", base.Add(time.Hour)),
		article("Storm hits coast", "https://c.example/3", base),
	})
	second := d.Deduplicate(context.Background(), first)

	if len(second) != len(first) {
		t.Fatalf("expected idempotent result, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i].URL != second[i].URL {
			t.Errorf("expected identical order, position %d changed from %s to %s", i, first[i].URL, second[i].URL)
		}
	}
}

func TestDeduplicateEmptyInput(t *testing.T) {
	d := New(nil, nil, Config{})

	if out := d.Deduplicate(context.Background(), nil); len(out) != 0 {
		t.Errorf("expected empty output for empty input, got %d articles", len(out))
	}
}

func TestSingleArticleSkipsSemanticPass(t *testing.T) {
	oracle := &fakeOracle{}
	d := New(oracle, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Lone headline", "https://a.example/only", time.Now()),
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 article, got %d", len(out))
	}
	if oracle.callCount() != 0 {
		t.Errorf("expected no oracle calls for a single article, got %d", oracle.callCount())
	}
}

func TestSemanticCollapsesRewordedDuplicates(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// cos({1,0}, {0.9, 0.43589}) = 0.9, above the 0.85 threshold.
	oracle := &fakeOracle{vectors: map[string][]float32{
		"Central bank lifts benchmark rate": {1, 0},
		"Interest rates climb again":        {0.9, 0.43589},
	}}
	d := New(oracle, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Central bank lifts benchmark rate", "https://a.example/older", base),
		article("Interest rates climb again", "https://b.example/newer", base.Add(time.Minute)),
	})

	if len(out) != 1 {
		t.Fatalf("expected 1 survivor, got %d", len(out))
	}
	if out[0].URL != "https://b.example/newer" {
		t.Errorf("expected the more recent duplicate to survive, got %s", out[0].URL)
	}
}

func TestSemanticKeepsDissimilarArticles(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	oracle := &fakeOracle{vectors: map[string][]float32{
		"Central bank lifts benchmark rate": {1, 0},
		"Wildfire spreads across the hills": {0, 1},
	}}
	d := New(oracle, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Central bank lifts benchmark rate", "https://a.example/1", base),
		article("Wildfire spreads across the hills", "https://b.example/2", base),
	})

	if len(out) != 2 {
		t.Fatalf("expected both dissimilar articles kept, got %d", len(out))
	}
}

func TestEmbeddingFailureKeepsArticle(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// The failing article would have matched the first one; without an
	// embedding it must be kept anyway.
	oracle := &fakeOracle{
		vectors: map[string][]float32{
			"Central bank lifts benchmark rate": {1, 0},
		},
		failOn: map[string]bool{
			"Interest rates climb again": true,
		},
	}
	d := New(oracle, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Central bank lifts benchmark rate", "https://a.example/1", base),
		article("Interest rates climb again", "https://b.example/2", base.Add(time.Minute)),
	})

	if len(out) != 2 {
		t.Fatalf("expected the unembedded article to be kept, got %d survivors", len(out))
	}
}

func TestNilOracleSkipsSemanticPass(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	d := New(nil, nil, Config{})

	out := d.Deduplicate(context.Background(), []domain.Article{
		article("Central bank lifts benchmark rate", "https://a.example/1", base),
		article("Interest rates climb again", "https://b.example/2", base),
	})

	if len(out) != 2 {
		t.Fatalf("expected lexical-only result without an oracle, got %d survivors", len(out))
	}
}

func TestSemanticNeverGrowsResult(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	input := []domain.Article{
		article("Central bank lifts benchmark rate", "https://a.example/1", base),
		article("Interest rates climb again", "https://b.example/2", base.Add(time.Minute)),
		article("Wildfire spreads across the hills", "https://c.example/3", base),
	}

	lexicalOnly := New(nil, nil, Config{}).Deduplicate(context.Background(), input)

	oracle := &fakeOracle{vectors: map[string][]float32{
		"Central bank lifts benchmark rate": {1, 0},
		"Interest rates climb again":        {0.9, 0.43589},
		"Wildfire spreads across the hills": {0, 1},
	}}
	withOracle := New(oracle, nil, Config{}).Deduplicate(context.Background(), input)

	if len(withOracle) > len(lexicalOnly) {
		t.Errorf("semantic pass grew the result: %d > %d", len(withOracle), len(lexicalOnly))
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Apple Event", "apple event"},
		{"apple event!!", "apple event"},
		{"  Breaking:   News  ", "breaking news"},
		{"Q3-2026 results", "q32026 results"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeTitle(tt.input); got != tt.want {
			t.Errorf("normalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeTitleTruncates(t *testing.T) {
	long := "the quick brown fox jumps over the lazy dog again and again and again"

	key := normalizeTitle(long)
	if got := len([]rune(key)); got > 50 {
		t.Errorf("expected key capped at 50 runes, got %d", got)
	}
}
