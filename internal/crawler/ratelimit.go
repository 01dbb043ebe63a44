package crawler

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostLimiters enforces a minimum delay between consecutive requests to the
// same host, independent of how many workers are fetching.
type hostLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
}

func newHostLimiters(delay time.Duration) *hostLimiters {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &hostLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
	}
}

// wait blocks until the host's limiter admits a request or ctx is done.
func (h *hostLimiters) wait(ctx context.Context, rawURL string) error {
	return h.limiterFor(rawURL).Wait(ctx)
}

func (h *hostLimiters) limiterFor(rawURL string) *rate.Limiter {
	host := hostOf(rawURL)

	h.mu.Lock()
	defer h.mu.Unlock()

	lim, ok := h.limiters[host]
	if !ok {
		lim = rate.NewLimiter(h.limit, 1)
		h.limiters[host] = lim
	}
	return lim
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return strings.ToLower(u.Hostname())
}
