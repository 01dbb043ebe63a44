// Package pipeline sequences one scrape-to-store run:
// fetch listings, parse candidates, deduplicate, enrich, score, persist,
// publish. Per-item failures are recorded and drop only that item; a store
// failure aborts the run because results that cannot be persisted are lost.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pressmood/pressmood/internal/crawler"
	"github.com/pressmood/pressmood/internal/dedup"
	"github.com/pressmood/pressmood/internal/domain"
	"github.com/pressmood/pressmood/internal/logger"
	"github.com/pressmood/pressmood/pkg/publishers"
	"github.com/pressmood/pressmood/pkg/sources"
)

// Fetcher retrieves listing pages.
type Fetcher interface {
	FetchAll(ctx context.Context, targets []crawler.Target) []domain.FetchOutcome
}

// Enricher swaps listing snippets for full article bodies. Optional.
type Enricher interface {
	Enrich(ctx context.Context, articles []domain.Article) []domain.Article
}

// Identifier maps raw URLs onto canonical URLs and stable identifiers.
type Identifier interface {
	Identify(raw string) (canonicalURL, id string, err error)
}

// Scorer computes sentiment for one article body.
type Scorer interface {
	Score(articleID, text string) (domain.SentimentResult, error)
}

// Store is the persistence surface the run needs.
type Store interface {
	dedup.IDChecker
	Upsert(ctx context.Context, art domain.Article) error
	AttachSentiment(ctx context.Context, id string, res domain.SentimentResult) error
}

// Deps wires all collaborators into the pipeline.
type Deps struct {
	Sources    []sources.Source
	Registry   *sources.Registry
	Fetcher    Fetcher
	Enricher   Enricher
	Identifier Identifier
	Store      Store
	Scorer     Scorer
	Publishers []publishers.Publisher
	Logger     logger.Logger
}

// Pipeline executes runs.
type Pipeline struct {
	deps  Deps
	dedup *dedup.Deduplicator
	log   logger.Logger
}

// New constructs the orchestrator.
func New(deps Deps) *Pipeline {
	log := deps.Logger
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pipeline{
		deps:  deps,
		dedup: dedup.New(deps.Store),
		log:   log,
	}
}

// Run performs one full pipeline pass. It always returns a report; the error
// is non-nil only for run-level failures (store unavailable, bad wiring).
// A run with zero fetchable sources completes normally with zero counts.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	report := domain.RunReport{
		RunID:     fmt.Sprintf("run-%d", time.Now().UTC().UnixNano()),
		StartedAt: time.Now().UTC(),
	}
	defer func() { report.FinishedAt = time.Now().UTC() }()

	if p.deps.Store == nil {
		return report, fmt.Errorf("pipeline has no store configured")
	}

	outcomes := p.fetch(ctx)
	candidates := p.parse(outcomes, &report)

	fresh, dropped, err := p.dedup.Filter(ctx, candidates)
	if err != nil {
		return report, fmt.Errorf("deduplicate: %w", err)
	}
	report.DedupedOut = dropped

	if p.deps.Enricher != nil && len(fresh) > 0 {
		fresh = p.deps.Enricher.Enrich(ctx, fresh)
	}

	if err := p.scoreAndPersist(ctx, fresh, &report); err != nil {
		return report, err
	}

	p.log.InfoObj("pipeline run done", "run_done", map[string]any{
		"run_id":      report.RunID,
		"fetched":     report.Fetched,
		"parsed":      report.Parsed,
		"deduped_out": report.DedupedOut,
		"scored":      report.Scored,
		"persisted":   report.Persisted,
		"published":   report.Published,
		"failures":    report.FailureCount(),
	})
	return report, nil
}

func (p *Pipeline) fetch(ctx context.Context) []domain.FetchOutcome {
	targets := make([]crawler.Target, 0, len(p.deps.Sources))
	for _, src := range p.deps.Sources {
		targets = append(targets, crawler.Target{SourceName: src.Name, URL: src.URL})
	}
	return p.deps.Fetcher.FetchAll(ctx, targets)
}

// parse turns successful fetch outcomes into identified article candidates.
func (p *Pipeline) parse(outcomes []domain.FetchOutcome, report *domain.RunReport) []domain.Article {
	now := time.Now().UTC()
	srcByName := make(map[string]sources.Source, len(p.deps.Sources))
	for _, src := range p.deps.Sources {
		srcByName[src.Name] = src
	}

	var candidates []domain.Article
	for _, outcome := range outcomes {
		if !outcome.OK() {
			report.AddFailure(domain.ItemFailure{
				Stage:  domain.StageFetch,
				URL:    outcome.URL,
				Reason: fmt.Sprintf("%s: %v", outcome.Reason, outcome.Err),
			})
			continue
		}
		report.Fetched++

		src := srcByName[outcome.SourceName]
		parser, err := p.deps.Registry.ParserFor(src)
		if err != nil {
			report.AddFailure(domain.ItemFailure{
				Stage:  domain.StageParse,
				URL:    outcome.URL,
				Reason: err.Error(),
			})
			continue
		}

		parsed, err := parser.Parse(src, outcome.Body)
		if err != nil {
			report.AddFailure(domain.ItemFailure{
				Stage:  domain.StageParse,
				URL:    outcome.URL,
				Reason: err.Error(),
			})
			continue
		}

		for _, cand := range parsed {
			canonicalURL, id, err := p.deps.Identifier.Identify(cand.URL)
			if err != nil {
				report.AddFailure(domain.ItemFailure{
					Stage:  domain.StageParse,
					URL:    cand.URL,
					Reason: fmt.Sprintf("canonicalize: %v", err),
				})
				continue
			}

			title := cand.Title
			if title == "" {
				title = domain.UnknownField
			}

			candidates = append(candidates, domain.Article{
				ID:           id,
				CanonicalURL: canonicalURL,
				URL:          cand.URL,
				Title:        title,
				Source:       src.Name,
				Body:         cand.Snippet,
				PublishedAt:  cand.PublishedAt,
				FetchedAt:    now,
			})
			report.Parsed++
		}
	}
	return candidates
}

// scoreAndPersist runs the tail stages. Articles whose scoring fails are
// still persisted unscored so a later run can retry the attachment; store
// errors escalate immediately.
func (p *Pipeline) scoreAndPersist(ctx context.Context, articles []domain.Article, report *domain.RunReport) error {
	for _, art := range articles {
		res, scoreErr := p.deps.Scorer.Score(art.ID, art.Body)
		if scoreErr != nil {
			report.AddFailure(domain.ItemFailure{
				Stage:  domain.StageScore,
				ID:     art.ID,
				URL:    art.URL,
				Reason: scoreErr.Error(),
			})
		}

		if err := p.deps.Store.Upsert(ctx, art); err != nil {
			return fmt.Errorf("store upsert %s: %w", art.ID, err)
		}
		report.Persisted++

		if scoreErr != nil {
			continue
		}
		if err := p.deps.Store.AttachSentiment(ctx, art.ID, res); err != nil {
			return fmt.Errorf("store attach sentiment %s: %w", art.ID, err)
		}
		report.Scored++

		p.publish(ctx, art, res, report)
	}
	return nil
}

// publish emits one event per sink; failures are recorded, never fatal.
func (p *Pipeline) publish(ctx context.Context, art domain.Article, res domain.SentimentResult, report *domain.RunReport) {
	if len(p.deps.Publishers) == 0 {
		return
	}

	evt := publishers.Event{
		RunID:       report.RunID,
		ArticleID:   art.ID,
		Source:      art.Source,
		Title:       art.Title,
		URL:         art.CanonicalURL,
		Label:       res.Label,
		Score:       res.Score,
		PublishedAt: art.PublishedAt,
		ScoredAt:    res.ScoredAt,
	}

	for _, pub := range p.deps.Publishers {
		if err := pub.Publish(ctx, evt); err != nil {
			report.AddFailure(domain.ItemFailure{
				Stage:  domain.StagePublish,
				ID:     art.ID,
				Reason: fmt.Sprintf("sink %s: %v", pub.ID(), err),
			})
			continue
		}
		report.Published++
	}
}
