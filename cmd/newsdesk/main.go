package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/newsdesk-hq/newsdesk/internal/clock"
	"github.com/newsdesk-hq/newsdesk/internal/config"
	"github.com/newsdesk-hq/newsdesk/internal/dedup"
	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/embed"
	"github.com/newsdesk-hq/newsdesk/internal/engine"
	"github.com/newsdesk-hq/newsdesk/internal/enrich"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
	"github.com/newsdesk-hq/newsdesk/internal/monitor"
	"github.com/newsdesk-hq/newsdesk/internal/store"
	"github.com/newsdesk-hq/newsdesk/internal/subscriptions"
	"github.com/newsdesk-hq/newsdesk/internal/trends"
	"github.com/newsdesk-hq/newsdesk/pkg/httpclient"
	"github.com/newsdesk-hq/newsdesk/pkg/providers"
	"github.com/newsdesk-hq/newsdesk/pkg/publishers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "newsdesk:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to the config file")
	query := flag.String("query", "", "run one search and exit")
	source := flag.String("source", "", "restrict -query to one provider (default all)")
	from := flag.String("from", "", "lower publication bound for -query (RFC 3339)")
	to := flag.String("to", "", "upper publication bound for -query (RFC 3339)")
	showTrends := flag.Bool("trends", false, "print category trend signals and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.System{}

	st, err := store.Open(cfg.Store.Path, clk, log)
	if err != nil {
		return fmt.Errorf("open article store: %w", err)
	}
	defer st.Close()

	if *showTrends {
		return printTrends(ctx, st, clk, cfg, log)
	}

	eng, err := buildEngine(cfg, st, log)
	if err != nil {
		return err
	}

	if *query != "" {
		return printSearch(ctx, eng, *query, *source, *from, *to)
	}

	return runMonitor(ctx, cfg, eng, clk, log)
}

// buildEngine wires providers, deduplication, and enrichment around the
// store. One-shot searches and the monitor share the same pipeline.
func buildEngine(cfg config.Config, st engine.ArticleStore, log logger.Logger) (*engine.Engine, error) {
	client := httpclient.NewRestyClient(cfg.HTTP.Timeout)

	fetchers := []providers.Fetcher{
		providers.NewNewsAPIFetcher(client, cfg.Providers.NewsAPI.APIKey, cfg.Providers.NewsAPI.BaseURL),
		providers.NewGNewsFetcher(client, cfg.Providers.GNews.APIKey, cfg.Providers.GNews.BaseURL),
		providers.NewNewsDataFetcher(client, cfg.Providers.NewsData.APIKey, cfg.Providers.NewsData.BaseURL),
	}
	if cfg.Providers.GoogleNews.Enabled {
		fetchers = append(fetchers, providers.NewGoogleNewsFetcher(client, cfg.Providers.GoogleNews.BaseURL))
	}
	registry := providers.NewRegistry(log, cfg.Providers.Timeout, fetchers...)

	oracle, err := embed.FromConfig(cfg.Embeddings, client)
	if err != nil {
		return nil, fmt.Errorf("configure embedding oracle: %w", err)
	}

	ded := dedup.New(oracle, log, dedup.Config{
		Threshold:  cfg.Dedup.SimilarityThreshold,
		Workers:    cfg.Dedup.EmbedWorkers,
		RatePerSec: cfg.Dedup.EmbedRatePerSec,
	})

	var enricher *enrich.Enricher
	if cfg.Enrich.Enabled {
		enricher = enrich.New(client, log, 0)
	}

	return engine.New(registry, ded, st, enricher, log), nil
}

func printSearch(ctx context.Context, eng *engine.Engine, keyword, source, fromRaw, toRaw string) error {
	filter, err := domain.ParseSourceFilter(source)
	if err != nil {
		return err
	}

	req := engine.SearchRequest{Keyword: keyword, Sources: filter}
	if req.From, err = parseTimeFlag(fromRaw); err != nil {
		return fmt.Errorf("parse -from: %w", err)
	}
	if req.To, err = parseTimeFlag(toRaw); err != nil {
		return fmt.Errorf("parse -to: %w", err)
	}

	rows, err := eng.Search(ctx, req)
	if err != nil {
		return err
	}

	for _, row := range rows {
		fmt.Printf("%s  [%s]  %s\n      %s\n", row.PublishedAt.Format(time.RFC3339), row.Source, row.Title, row.URL)
	}
	fmt.Printf("%d articles\n", len(rows))
	return nil
}

func printTrends(ctx context.Context, st *store.Store, clk clock.Clock, cfg config.Config, log logger.Logger) error {
	agg := trends.New(st, clk, log, trends.Config{
		WindowDays: cfg.Trends.WindowDays,
		TopN:       cfg.Trends.TopN,
	})

	signals, err := agg.Trending(ctx)
	if err != nil {
		return err
	}

	for _, sig := range signals {
		fmt.Printf("%-15s %-7s %4d articles  %+6.1f%%\n", sig.Category, sig.Direction, sig.ArticleCount, sig.ChangePercent)
	}
	return nil
}

// runMonitor blocks on the breaking-news loop until the process receives
// SIGINT or SIGTERM.
func runMonitor(ctx context.Context, cfg config.Config, eng *engine.Engine, clk clock.Clock, log logger.Logger) error {
	if cfg.Subscriptions.Path == "" {
		return fmt.Errorf("subscriptions.path is required to run the breaking news monitor")
	}
	subs, err := subscriptions.LoadFile(cfg.Subscriptions.Path)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}

	sink, err := buildSink(ctx, cfg.Publishers.Path, log)
	if err != nil {
		return err
	}

	mon := monitor.New(eng, subs, sink, clk, log, monitor.Config{
		Interval:     cfg.Monitor.Interval,
		InitialDelay: cfg.Monitor.InitialDelay,
		Lookback:     cfg.Monitor.Lookback,
		Workers:      cfg.Monitor.Workers,
		PreviewSize:  cfg.Monitor.PreviewSize,
	})
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	<-ctx.Done()
	log.InfoObj("shutting down", "shutdown", nil)
	return nil
}

// buildSink assembles the alert dispatcher. Without a publisher registry
// file every alert is a logged no-op rather than an error.
func buildSink(ctx context.Context, path string, log logger.Logger) (*publishers.Dispatcher, error) {
	if path == "" {
		return publishers.NewDispatcher(nil, log), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publisher registry: %w", err)
	}

	built, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return publishers.NewDispatcher(built, log), nil
}

func parseTimeFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
