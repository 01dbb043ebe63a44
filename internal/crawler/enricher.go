package crawler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/pressmood/pressmood/internal/domain"
	"github.com/pressmood/pressmood/internal/logger"
	"github.com/pressmood/pressmood/pkg/httpclient"
)

const (
	// Paragraphs shorter than this are usually navigation or boilerplate.
	minParagraphLen = 50
	// Extracted text below this length is not a usable article body.
	minBodyLen = 200
)

// Enricher replaces listing snippets with full article text by fetching each
// article's own page. Enrichment is best effort: on any failure the article
// keeps its snippet.
type Enricher struct {
	client    httpclient.Client
	log       logger.Logger
	workers   int
	userAgent string
	limits    *hostLimiters
}

// NewEnricher creates an Enricher sharing the fetch pool settings.
func NewEnricher(client httpclient.Client, log logger.Logger, opts Options) *Enricher {
	if log == nil {
		log = logger.NopLogger{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Enricher{
		client:    client,
		log:       log,
		workers:   workers,
		userAgent: opts.UserAgent,
		limits:    newHostLimiters(opts.HostDelay),
	}
}

// Enrich fetches each article page and swaps in the extracted body text.
// Articles whose pages cannot be fetched or parsed are returned unchanged, so
// partial results survive cancellation and per-page failures.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	if len(articles) == 0 {
		return out
	}

	workerCount := min(len(articles), e.workers)
	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go e.enrichWorker(ctx, articles, jobCh, out, &wg, workerID)
	}

	for idx := range articles {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()
	return out
}

func (e *Enricher) enrichWorker(
	ctx context.Context,
	articles []domain.Article,
	jobCh <-chan int,
	out []domain.Article,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}

		art := articles[idx]
		body, err := e.fetchBody(ctx, art.URL)
		if err != nil {
			e.log.WarnObj("article enrichment failed", "enrich_error", map[string]any{
				"worker_id": workerID,
				"id":        art.ID,
				"url":       art.URL,
				"error":     err.Error(),
			})
			continue
		}
		out[idx].Body = body
	}
}

func (e *Enricher) fetchBody(ctx context.Context, articleURL string) (string, error) {
	if err := e.limits.wait(ctx, articleURL); err != nil {
		return "", err
	}

	var headers map[string]string
	if e.userAgent != "" {
		headers = map[string]string{"User-Agent": e.userAgent}
	}

	resp, err := e.client.Get(ctx, articleURL, headers)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return "", fmt.Errorf("article page status %d", code)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	text, err := extractBodyText(body)
	if err != nil {
		return "", err
	}
	return text, nil
}

// extractBodyText joins the substantial paragraphs of an article page.
func extractBodyText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}

	var paragraphs []string
	for _, scope := range []string{"article p", "main p", "p"} {
		var scoped []string
		doc.Find(scope).Each(func(_ int, p *goquery.Selection) {
			text := strings.Join(strings.Fields(p.Text()), " ")
			if len(text) >= minParagraphLen {
				scoped = append(scoped, text)
			}
		})
		if len(scoped) > 3 {
			paragraphs = scoped
			break
		}
		if len(scoped) > len(paragraphs) {
			paragraphs = scoped
		}
	}

	text := strings.Join(paragraphs, " ")
	if len(text) < minBodyLen {
		return "", fmt.Errorf("extracted body too short (%d chars)", len(text))
	}
	return text, nil
}
