// Command pressmood executes one scrape-score-store pipeline run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pressmood/pressmood/internal/canonical"
	"github.com/pressmood/pressmood/internal/config"
	"github.com/pressmood/pressmood/internal/crawler"
	"github.com/pressmood/pressmood/internal/logger"
	"github.com/pressmood/pressmood/internal/pipeline"
	"github.com/pressmood/pressmood/internal/sentiment"
	"github.com/pressmood/pressmood/internal/store"
	"github.com/pressmood/pressmood/pkg/httpclient"
	"github.com/pressmood/pressmood/pkg/publishers"
	"github.com/pressmood/pressmood/pkg/sources"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	// Optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.ErrorObj("run failed", "run_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

// run builds the per-run context object (HTTP client, store, publishers) and
// releases it when the run ends.
func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	client := httpclient.NewRestyClient(cfg.Crawler.RequestTimeout)
	opts := crawler.Options{
		Workers:   cfg.Crawler.Workers,
		HostDelay: cfg.Crawler.HostDelay,
		UserAgent: cfg.Crawler.UserAgent,
	}

	var enricher pipeline.Enricher
	if cfg.Crawler.Enrich {
		enricher = crawler.NewEnricher(client, log, opts)
	}

	pubs, err := buildPublishers(ctx, cfg, log)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.Deps{
		Sources:    toSources(cfg.Sources),
		Registry:   sources.DefaultRegistry(),
		Fetcher:    crawler.NewFetcher(client, log, opts),
		Enricher:   enricher,
		Identifier: canonical.New(cfg.Dedup.TrackingParams...),
		Store:      db,
		Scorer:     sentiment.NewScorer(),
		Publishers: pubs,
		Logger:     log,
	})

	report, err := p.Run(ctx)
	if err != nil {
		return err
	}

	for stage, failures := range report.Failures {
		for _, f := range failures {
			log.WarnObj("item failed", "item_failure", map[string]any{
				"run_id": report.RunID,
				"stage":  string(stage),
				"url":    f.URL,
				"id":     f.ID,
				"reason": f.Reason,
			})
		}
	}
	return nil
}

func buildPublishers(ctx context.Context, cfg config.Config, log logger.Logger) ([]publishers.Publisher, error) {
	if cfg.Publishers.File == "" {
		return nil, nil
	}

	declared, err := publishers.LoadConfigs(cfg.Publishers.File)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), publishers.EnabledConfigs(declared), log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	return pubs, nil
}

func toSources(cfgs []config.SourceConfig) []sources.Source {
	out := make([]sources.Source, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, sources.Source{
			Name:     c.Name,
			URL:      c.URL,
			Strategy: c.Strategy,
			Selectors: sources.Selectors{
				Item:    c.Selectors.Item,
				Title:   c.Selectors.Title,
				Link:    c.Selectors.Link,
				Snippet: c.Selectors.Snippet,
				Date:    c.Selectors.Date,
			},
		})
	}
	return out
}
