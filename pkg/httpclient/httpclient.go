// Package httpclient wraps the outbound HTTP capability behind a small
// interface so fetch stages can be tested against fakes.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response exposes the parts of an HTTP response the pipeline consumes.
type Response interface {
	StatusCode() int
	Body() []byte
	Header() http.Header
}

// Client issues GET requests with per-call headers. Implementations must
// honor ctx cancellation and their configured timeout.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// RestyClient implements Client on top of resty.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient returns a client with the given per-request timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &RestyClient{client: c}
}

// Get performs the request. Non-2xx responses are returned, not errors;
// callers decide how to treat status codes.
func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := c.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return restyResponse{resp: resp}, nil
}

type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) StatusCode() int     { return r.resp.StatusCode() }
func (r restyResponse) Body() []byte        { return r.resp.Body() }
func (r restyResponse) Header() http.Header { return r.resp.Header() }
