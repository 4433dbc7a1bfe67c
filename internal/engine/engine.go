// Package engine orchestrates the aggregation pipeline: fan a search out
// across the providers, collapse duplicates, back-fill metadata, persist,
// and return the stored rows newest first.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/classify"
	"github.com/newsdesk-hq/newsdesk/internal/dedup"
	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/enrich"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
	"github.com/newsdesk-hq/newsdesk/pkg/providers"
)

// ArticleStore is the persistence surface the engine needs.
type ArticleStore interface {
	UpsertByURL(ctx context.Context, art domain.Article) (domain.StoredArticle, bool, error)
}

// SearchRequest describes one aggregation query.
type SearchRequest struct {
	Keyword string
	From    time.Time
	To      time.Time
	Sources domain.SourceFilter
}

// Engine runs searches across the provider registry and persists what
// survives deduplication.
type Engine struct {
	registry *providers.Registry
	dedup    *dedup.Deduplicator
	store    ArticleStore
	enricher *enrich.Enricher
	log      logger.Logger
}

// New builds an Engine. enricher may be nil to skip page scraping.
func New(registry *providers.Registry, d *dedup.Deduplicator, store ArticleStore, enricher *enrich.Enricher, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{
		registry: registry,
		dedup:    d,
		store:    store,
		enricher: enricher,
		log:      log,
	}
}

// Search aggregates articles for the request and returns the stored rows
// sorted by publication time descending. Rows already persisted by an
// earlier search come back in their stored form. Provider failures shrink
// the result; they never fail the search. A persistence failure drops the
// affected article; the search itself fails only when the store accepts
// nothing at all.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]domain.StoredArticle, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, domain.NewValidationError("keyword", "must not be empty")
	}
	if !req.From.IsZero() && !req.To.IsZero() && req.From.After(req.To) {
		return nil, domain.NewValidationError("dateRange", "from is after to")
	}

	started := time.Now()

	query := providers.Query{Keyword: keyword, From: req.From, To: req.To}
	fetched := e.registry.FetchAll(ctx, query, req.Sources)

	unique := e.dedup.Deduplicate(ctx, fetched)

	if e.enricher != nil {
		unique = e.enricher.Enrich(ctx, unique)
	}
	for i := range unique {
		if unique[i].Category == "" {
			unique[i].Category = classify.Classify(unique[i].Title, unique[i].Description)
		}
	}

	rows := make([]domain.StoredArticle, 0, len(unique))
	inserted := 0
	failed := 0
	var storeErr error
	for _, art := range unique {
		row, fresh, err := e.store.UpsertByURL(ctx, art)
		if err != nil {
			failed++
			if storeErr == nil {
				storeErr = err
			}
			e.log.WarnObj("article persist failed", "store_error", map[string]any{
				"url":   art.URL,
				"error": err.Error(),
			})
			continue
		}
		if fresh {
			inserted++
		}
		rows = append(rows, row)
	}
	if failed > 0 && failed == len(unique) {
		return nil, fmt.Errorf("persist articles: %w", storeErr)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PublishedAt.After(rows[j].PublishedAt)
	})

	e.log.InfoObj("search complete", "search_done", map[string]any{
		"keyword":     keyword,
		"fetched":     len(fetched),
		"unique":      len(unique),
		"inserted":    inserted,
		"duration_ms": time.Since(started).Milliseconds(),
	})

	return rows, nil
}
