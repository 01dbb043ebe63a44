// Package crawler performs the network-bound stages: listing fetches and
// optional per-article body enrichment. Fetching runs on a bounded worker
// pool with a per-host minimum delay; one URL's failure never aborts a batch.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pressmood/pressmood/internal/domain"
	"github.com/pressmood/pressmood/internal/logger"
	"github.com/pressmood/pressmood/pkg/httpclient"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Target is one listing URL to fetch, tagged with its source name.
type Target struct {
	SourceName string
	URL        string
}

// Options tune the fetch pool.
type Options struct {
	Workers   int
	HostDelay time.Duration
	UserAgent string
}

// Fetcher issues rate-limited listing requests.
type Fetcher struct {
	client    httpclient.Client
	log       logger.Logger
	workers   int
	userAgent string
	limits    *hostLimiters
}

// NewFetcher creates a Fetcher with the given HTTP client and logger.
func NewFetcher(client httpclient.Client, log logger.Logger, opts Options) *Fetcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Fetcher{
		client:    client,
		log:       log,
		workers:   workers,
		userAgent: opts.UserAgent,
		limits:    newHostLimiters(opts.HostDelay),
	}
}

// FetchAll returns one outcome per target, in target order. Cancelling ctx
// stops feeding new targets to the pool; requests already in flight complete
// or time out on their own, and unfetched targets report a failure outcome.
func (f *Fetcher) FetchAll(ctx context.Context, targets []Target) []domain.FetchOutcome {
	out := make([]domain.FetchOutcome, len(targets))
	for i, t := range targets {
		out[i] = domain.FetchOutcome{
			URL:        t.URL,
			SourceName: t.SourceName,
			Reason:     domain.ReasonNetwork,
			Err:        context.Canceled,
		}
	}
	if len(targets) == 0 {
		return out
	}

	workerCount := min(len(targets), f.workers)
	jobCh := make(chan int)
	var wg sync.WaitGroup

	for workerID := range workerCount {
		wg.Add(1)
		go f.fetchWorker(ctx, targets, jobCh, out, &wg, workerID)
	}

	for idx := range targets {
		if ctx.Err() != nil {
			break
		}
		jobCh <- idx
	}
	close(jobCh)

	wg.Wait()
	return out
}

func (f *Fetcher) fetchWorker(
	ctx context.Context,
	targets []Target,
	jobCh <-chan int,
	out []domain.FetchOutcome,
	wg *sync.WaitGroup,
	workerID int,
) {
	defer wg.Done()

	for idx := range jobCh {
		if ctx.Err() != nil {
			return
		}
		out[idx] = f.fetchOne(ctx, targets[idx], workerID)
	}
}

func (f *Fetcher) fetchOne(ctx context.Context, t Target, workerID int) domain.FetchOutcome {
	outcome := domain.FetchOutcome{URL: t.URL, SourceName: t.SourceName}

	if err := f.limits.wait(ctx, t.URL); err != nil {
		outcome.Reason = domain.ReasonNetwork
		outcome.Err = err
		return outcome
	}

	f.log.DebugObj("fetching listing", "fetch_start", map[string]any{
		"worker_id": workerID,
		"source":    t.SourceName,
		"url":       t.URL,
	})

	resp, err := f.client.Get(ctx, t.URL, f.headers())
	if err != nil {
		outcome.Reason = classifyFetchError(err)
		outcome.Err = err
		f.log.WarnObj("listing fetch failed", "fetch_error", map[string]any{
			"worker_id": workerID,
			"source":    t.SourceName,
			"url":       t.URL,
			"reason":    string(outcome.Reason),
			"error":     err.Error(),
		})
		return outcome
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		outcome.Reason = domain.ReasonHTTPError
		outcome.Err = fmt.Errorf("status %d", code)
		return outcome
	}

	contentType := resp.Header().Get("Content-Type")
	if !usableContentType(contentType) {
		outcome.Reason = domain.ReasonBadContent
		outcome.Err = fmt.Errorf("unsupported content type %q", contentType)
		return outcome
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		f.log.InfoObj("listing body truncated", "truncation", map[string]any{
			"url":      t.URL,
			"original": len(body),
			"kept":     maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	outcome.Body = body
	outcome.ContentType = contentType
	return outcome
}

func (f *Fetcher) headers() map[string]string {
	if f.userAgent == "" {
		return nil
	}
	return map[string]string{"User-Agent": f.userAgent}
}

// classifyFetchError maps transport errors onto failure reasons.
func classifyFetchError(err error) domain.FetchReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout
	}
	return domain.ReasonNetwork
}

// usableContentType accepts HTML, XML (sitemaps) and plain text payloads.
func usableContentType(ct string) bool {
	if ct == "" {
		return true
	}
	ct = strings.ToLower(ct)
	return strings.Contains(ct, "html") ||
		strings.Contains(ct, "xml") ||
		strings.Contains(ct, "text/plain")
}
