// Package trends summarizes stored article volume per category over a
// trailing window and compares it against the window before it.
package trends

import (
	"context"
	"sort"
	"time"

	"github.com/newsdesk-hq/newsdesk/internal/clock"
	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
)

const (
	defaultWindowDays = 7
	defaultTopN       = 5

	// Movement below this many percent in either direction counts as
	// stable.
	directionBand = 2.0
)

// WindowLister is the store surface the aggregator reads.
type WindowLister interface {
	ListRange(ctx context.Context, from, to time.Time) ([]domain.StoredArticle, error)
}

// Config tunes the trend computation.
type Config struct {
	WindowDays int
	TopN       int
}

// Aggregator computes category trend signals.
type Aggregator struct {
	store  WindowLister
	clk    clock.Clock
	log    logger.Logger
	window time.Duration
	topN   int
}

// New builds an Aggregator.
func New(store WindowLister, clk clock.Clock, log logger.Logger, cfg Config) *Aggregator {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultWindowDays
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaultTopN
	}

	return &Aggregator{
		store:  store,
		clk:    clk,
		log:    log,
		window: time.Duration(cfg.WindowDays) * 24 * time.Hour,
		topN:   cfg.TopN,
	}
}

// Trending returns the busiest categories of the trailing window, largest
// first, with each category's volume change against the window before it.
// A change beyond the stability band maps to an up or down direction. A
// category absent from the previous window counts as +100%. When the
// current window holds no categorized articles a fixed fallback set is
// returned so consumers always have something to render.
func (a *Aggregator) Trending(ctx context.Context) ([]domain.TrendSignal, error) {
	now := a.clk.Now().UTC()
	windowStart := now.Add(-a.window)
	previousStart := now.Add(-2 * a.window)

	current, err := a.store.ListRange(ctx, windowStart, now)
	if err != nil {
		return nil, err
	}
	currentCounts := countByCategory(current)
	if len(currentCounts) == 0 {
		a.log.DebugObj("no categorized articles in trend window", "trends_empty", map[string]any{
			"window_days": int(a.window.Hours() / 24),
		})
		return fallbackSignals(), nil
	}

	previous, err := a.store.ListRange(ctx, previousStart, windowStart)
	if err != nil {
		return nil, err
	}
	previousCounts := countByCategory(previous)

	signals := make([]domain.TrendSignal, 0, len(currentCounts))
	for category, count := range currentCounts {
		change := changePercent(count, previousCounts[category])
		signals = append(signals, domain.TrendSignal{
			Category:      category,
			Direction:     direction(change),
			ArticleCount:  count,
			ChangePercent: change,
		})
	}

	sort.Slice(signals, func(i, j int) bool {
		if signals[i].ArticleCount != signals[j].ArticleCount {
			return signals[i].ArticleCount > signals[j].ArticleCount
		}
		return signals[i].Category < signals[j].Category
	})

	if len(signals) > a.topN {
		signals = signals[:a.topN]
	}
	return signals, nil
}

// countByCategory tallies window volume per category. Rows without a
// category cannot be grouped and are left out.
func countByCategory(rows []domain.StoredArticle) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		if row.Category == "" {
			continue
		}
		counts[row.Category]++
	}
	return counts
}

// changePercent compares current against previous volume. A category with
// no previous volume registers as +100.
func changePercent(current, previous int) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (float64(current) - float64(previous)) / float64(previous) * 100
}

func direction(change float64) domain.TrendDirection {
	switch {
	case change > directionBand:
		return domain.TrendUp
	case change < -directionBand:
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}

// fallbackSignals is the fixed set served when the window has no
// categorized volume.
func fallbackSignals() []domain.TrendSignal {
	categories := []string{"technology", "business", "world"}
	signals := make([]domain.TrendSignal, 0, len(categories))
	for _, c := range categories {
		signals = append(signals, domain.TrendSignal{
			Category:      c,
			Direction:     domain.TrendStable,
			ArticleCount:  0,
			ChangePercent: 0,
		})
	}
	return signals
}
