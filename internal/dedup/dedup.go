// Package dedup collapses near-duplicate articles inside a fetched batch.
// A cheap lexical pass on normalized titles runs first; when an embedding
// oracle is available a semantic pass follows and catches reworded
// duplicates the title key misses.
package dedup

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/embed"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
)

const (
	defaultThreshold  = 0.85
	defaultWorkers    = 10
	defaultRatePerSec = 10

	// titleKeyRunes bounds the normalized-title key length.
	titleKeyRunes = 50

	// embedInputRunes bounds the text sent to the embedding backend.
	embedInputRunes = 2048
)

// Config tunes the semantic pass.
type Config struct {
	// Threshold is the cosine similarity at or above which two articles
	// count as duplicates.
	Threshold float64
	// Workers bounds concurrent embedding requests.
	Workers int
	// RatePerSec caps embedding requests per second.
	RatePerSec int
}

// Deduplicator removes duplicates from article batches. The zero oracle is
// legal and limits deduplication to the lexical pass.
type Deduplicator struct {
	oracle    embed.Oracle
	log       logger.Logger
	threshold float64
	workers   int
	limiter   *rate.Limiter
}

// New builds a Deduplicator. A nil oracle disables the semantic pass.
func New(oracle embed.Oracle, log logger.Logger, cfg Config) *Deduplicator {
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		cfg.Threshold = defaultThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}

	return &Deduplicator{
		oracle:    oracle,
		log:       log,
		threshold: cfg.Threshold,
		workers:   cfg.Workers,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec),
	}
}

// Deduplicate collapses duplicates within the batch and returns the
// surviving articles. Survivors keep the position where their duplicate
// group first appeared, so output order is a deterministic function of
// input order. Embedding failures never drop articles.
func (d *Deduplicator) Deduplicate(ctx context.Context, articles []domain.Article) []domain.Article {
	kept := d.lexicalPass(articles)

	if d.oracle == nil || len(kept) < 2 {
		return kept
	}

	d.embedMissing(ctx, kept)
	return d.semanticPass(kept)
}

// lexicalPass buckets articles by normalized title and keeps the most
// recently published member of each bucket. On equal timestamps the first
// one seen stays.
func (d *Deduplicator) lexicalPass(articles []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))
	slot := make(map[string]int, len(articles))

	for _, art := range articles {
		key := normalizeTitle(art.Title)

		idx, seen := slot[key]
		if !seen {
			slot[key] = len(kept)
			kept = append(kept, art)
			continue
		}
		if art.PublishedAt.After(kept[idx].PublishedAt) {
			kept[idx] = art
		}
	}

	if dropped := len(articles) - len(kept); dropped > 0 {
		d.log.DebugObj("lexical duplicates removed", "dedup_lexical", map[string]any{
			"input":   len(articles),
			"kept":    len(kept),
			"dropped": dropped,
		})
	}
	return kept
}

// embedMissing fills in missing embeddings in place. Each index is written
// by exactly one worker. Failed articles keep a nil embedding and pass
// through the semantic pass untouched.
func (d *Deduplicator) embedMissing(ctx context.Context, articles []domain.Article) {
	var pending []int
	for idx, art := range articles {
		if len(art.Embedding) == 0 {
			pending = append(pending, idx)
		}
	}
	if len(pending) == 0 {
		return
	}

	workerCount := min(len(pending), d.workers)

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Add(1)
		go d.embedWorker(ctx, articles, jobCh, &wg)
	}

	for _, idx := range pending {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()
}

func (d *Deduplicator) embedWorker(ctx context.Context, articles []domain.Article, jobCh <-chan int, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}
		if err := d.limiter.Wait(ctx); err != nil {
			return
		}

		art := articles[idx]
		vectors, err := d.oracle.Embed(ctx, []string{embedInput(art)})
		if err != nil || len(vectors) == 0 {
			d.log.WarnObj("article embedding failed", "embed_error", map[string]any{
				"url":   art.URL,
				"error": errText(err),
			})
			continue
		}
		articles[idx].Embedding = vectors[0]
	}
}

// semanticPass walks the batch in order, comparing each embedded article
// against the representatives kept so far. A similarity at or above the
// threshold folds the article into that representative's slot, keeping the
// newer of the two. Articles without an embedding are always kept.
func (d *Deduplicator) semanticPass(articles []domain.Article) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))

	for _, art := range articles {
		if len(art.Embedding) == 0 {
			kept = append(kept, art)
			continue
		}

		matched := false
		for i := range kept {
			if len(kept[i].Embedding) == 0 {
				continue
			}
			sim, err := Cosine(art.Embedding, kept[i].Embedding)
			if err != nil {
				continue
			}
			if sim >= d.threshold {
				matched = true
				if art.PublishedAt.After(kept[i].PublishedAt) {
					kept[i] = art
				}
				break
			}
		}
		if !matched {
			kept = append(kept, art)
		}
	}

	if dropped := len(articles) - len(kept); dropped > 0 {
		d.log.DebugObj("semantic duplicates removed", "dedup_semantic", map[string]any{
			"input":   len(articles),
			"kept":    len(kept),
			"dropped": dropped,
		})
	}
	return kept
}

// normalizeTitle lowercases the title, strips everything but letters,
// digits, and spaces, collapses runs of whitespace, and truncates to a
// fixed rune budget.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	key := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(key)
	if len(runes) > titleKeyRunes {
		key = strings.TrimSpace(string(runes[:titleKeyRunes]))
	}
	return key
}

// embedInput builds the text handed to the embedding backend.
func embedInput(a domain.Article) string {
	text := strings.TrimSpace(a.Title)
	if desc := strings.TrimSpace(a.Description); desc != "" {
		text = text + " " + desc
	}
	runes := []rune(text)
	if len(runes) > embedInputRunes {
		text = string(runes[:embedInputRunes])
	}
	return text
}

func errText(err error) string {
	if err == nil {
		return "empty embedding response"
	}
	return err.Error()
}
