// Package monitor runs the recurring breaking-news scan: on every tick it
// re-searches each active subscription's keywords against a moving
// watermark and emits an alert for articles published after it.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/newsdesk-hq/newsdesk/internal/clock"
	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/engine"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
	"github.com/newsdesk-hq/newsdesk/pkg/publishers"
)

const (
	defaultInterval     = 2 * time.Minute
	defaultInitialDelay = 30 * time.Second
	defaultLookback     = 5 * time.Minute
	defaultWorkers      = 4
	defaultPreviewSize  = 3
)

// Searcher runs one aggregation pass. Satisfied by *engine.Engine.
type Searcher interface {
	Search(ctx context.Context, req engine.SearchRequest) ([]domain.StoredArticle, error)
}

// SubscriptionSource lists the keyword watches to scan.
type SubscriptionSource interface {
	ListActive(ctx context.Context) ([]domain.Subscription, error)
}

// NotificationSink delivers alert events. The bool reports whether any
// configured channel accepted the event; having no channels is not an
// error.
type NotificationSink interface {
	Notify(ctx context.Context, evt publishers.Event) bool
}

// Config tunes the scan schedule and fan-out.
type Config struct {
	// Interval is the gap between ticks.
	Interval time.Duration
	// InitialDelay defers the first tick after Start.
	InitialDelay time.Duration
	// Lookback seeds the watermark for never-scanned subscriptions.
	Lookback time.Duration
	// Workers caps concurrent subscription scans within one tick.
	Workers int
	// PreviewSize caps the articles embedded in one alert event.
	PreviewSize int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = defaultInitialDelay
	}
	if c.Lookback <= 0 {
		c.Lookback = defaultLookback
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = defaultPreviewSize
	}
	return c
}

// Monitor owns the watermark table and the tick schedule. Subscriptions are
// scanned independently: one subscription's failure never blocks the rest
// of the tick.
type Monitor struct {
	searcher Searcher
	subs     SubscriptionSource
	sink     NotificationSink
	clk      clock.Clock
	log      logger.Logger
	cfg      Config
	marks    *watermarkTable
	cron     *cron.Cron
}

// New builds a Monitor. Zero config fields fall back to defaults.
func New(searcher Searcher, subs SubscriptionSource, sink NotificationSink, clk clock.Clock, log logger.Logger, cfg Config) *Monitor {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Monitor{
		searcher: searcher,
		subs:     subs,
		sink:     sink,
		clk:      clk,
		log:      log,
		cfg:      cfg.withDefaults(),
		marks:    newWatermarkTable(),
		cron:     cron.New(),
	}
}

// Start schedules the recurring scan: one tick after the initial delay,
// then one per interval. Returns once the schedule is registered; ticks
// run on background goroutines until Stop or ctx cancellation.
func (m *Monitor) Start(ctx context.Context) error {
	spec := "@every " + m.cfg.Interval.String()
	if _, err := m.cron.AddFunc(spec, func() {
		m.tick(ctx)
	}); err != nil {
		return fmt.Errorf("schedule breaking news scan: %w", err)
	}

	go func() {
		select {
		case <-time.After(m.cfg.InitialDelay):
		case <-ctx.Done():
			return
		}
		m.tick(ctx)
		m.cron.Start()
	}()

	m.log.InfoObj("breaking news monitor started", "monitor_start", map[string]any{
		"interval":      m.cfg.Interval.String(),
		"initial_delay": m.cfg.InitialDelay.String(),
	})
	return nil
}

// Stop halts the schedule. In-flight scans finish on their own.
func (m *Monitor) Stop() {
	m.cron.Stop()
}

func (m *Monitor) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := m.RunTick(ctx); err != nil {
		m.log.ErrorObj("breaking news tick failed", "tick_error", map[string]any{
			"error": err.Error(),
		})
	}
}

// RunTick executes one full scan pass over the active subscriptions. An
// error is returned only when the subscriptions themselves cannot be
// listed; per-subscription failures are logged and isolated.
func (m *Monitor) RunTick(ctx context.Context) error {
	subs, err := m.subs.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active subscriptions: %w", err)
	}
	if len(subs) == 0 {
		m.log.DebugObj("no active subscriptions", "monitor_idle", nil)
		return nil
	}

	workerCount := min(len(subs), m.cfg.Workers)

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Add(1)
		go m.scanWorker(ctx, subs, jobCh, &wg)
	}

	for idx := range subs {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	return nil
}

func (m *Monitor) scanWorker(ctx context.Context, subs []domain.Subscription, jobCh <-chan int, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			continue
		}
		m.scanSubscription(ctx, subs[idx])
	}
}

// scanSubscription runs one subscription's scan: search every keyword from
// the watermark, keep articles published strictly after it, advance the
// watermark, and alert when anything fresh remains. The watermark moves to
// now on every scan regardless of outcome, so a failing subscription never
// accumulates an unbounded backlog.
func (m *Monitor) scanSubscription(ctx context.Context, sub domain.Subscription) {
	now := m.clk.Now().UTC()
	since := m.marks.get(sub.ID, now.Add(-m.cfg.Lookback))

	fresh := m.collectFresh(ctx, sub, since)
	m.marks.set(sub.ID, now)

	if len(fresh) == 0 {
		return
	}

	evt := m.buildEvent(sub, fresh, now)
	delivered := m.sink.Notify(ctx, evt)

	m.log.InfoObj("breaking news alert", "alert_emitted", map[string]any{
		"subscription_id": sub.ID,
		"owner_id":        sub.OwnerID,
		"articles":        len(fresh),
		"delivered":       delivered,
	})
}

// collectFresh searches each keyword lower-bounded by the watermark and
// merges the results, dropping URL duplicates across overlapping keywords
// and anything not published strictly after the watermark.
func (m *Monitor) collectFresh(ctx context.Context, sub domain.Subscription, since time.Time) []domain.StoredArticle {
	seen := make(map[string]struct{})
	var fresh []domain.StoredArticle

	for _, keyword := range sub.Keywords {
		rows, err := m.searcher.Search(ctx, engine.SearchRequest{Keyword: keyword, From: since})
		if err != nil {
			m.log.WarnObj("subscription keyword search failed", "scan_error", map[string]any{
				"subscription_id": sub.ID,
				"keyword":         keyword,
				"error":           err.Error(),
			})
			continue
		}
		for _, row := range rows {
			if !row.PublishedAt.After(since) {
				continue
			}
			if _, dup := seen[row.URL]; dup {
				continue
			}
			seen[row.URL] = struct{}{}
			fresh = append(fresh, row)
		}
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].PublishedAt.After(fresh[j].PublishedAt)
	})
	return fresh
}

func (m *Monitor) buildEvent(sub domain.Subscription, fresh []domain.StoredArticle, now time.Time) publishers.Event {
	preview := fresh
	if len(preview) > m.cfg.PreviewSize {
		preview = preview[:m.cfg.PreviewSize]
	}

	articles := make([]publishers.EventArticle, 0, len(preview))
	for _, row := range preview {
		articles = append(articles, publishers.EventArticle{
			Title:       row.Title,
			URL:         row.URL,
			Source:      string(row.Source),
			PublishedAt: row.PublishedAt,
		})
	}

	return publishers.Event{
		ID:             uuid.NewString(),
		SubscriptionID: sub.ID,
		OwnerID:        sub.OwnerID,
		Keywords:       sub.Keywords,
		Articles:       articles,
		TotalCount:     len(fresh),
		TriggeredAt:    now,
	}
}
