package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pressmood/pressmood/internal/domain"
	"github.com/pressmood/pressmood/pkg/httpclient"
)

func listingServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>listing</body></html>"))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte("late"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	mux.HandleFunc("/binary", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchAllIsolatesSlowTarget(t *testing.T) {
	t.Parallel()

	srv := listingServer(t)
	client := httpclient.NewRestyClient(100 * time.Millisecond)
	f := NewFetcher(client, nil, Options{Workers: 5})

	targets := []Target{
		{SourceName: "a", URL: srv.URL + "/ok"},
		{SourceName: "b", URL: srv.URL + "/slow"},
		{SourceName: "c", URL: srv.URL + "/ok"},
		{SourceName: "d", URL: srv.URL + "/ok"},
		{SourceName: "e", URL: srv.URL + "/ok"},
	}

	outcomes := f.FetchAll(context.Background(), targets)
	if len(outcomes) != len(targets) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(targets))
	}

	for i, o := range outcomes {
		if i == 1 {
			continue
		}
		if !o.OK() {
			t.Fatalf("target %d failed: %v", i, o.Err)
		}
		if len(o.Body) == 0 {
			t.Fatalf("target %d has empty body", i)
		}
		if o.SourceName != targets[i].SourceName {
			t.Fatalf("outcome order broken at %d: %q", i, o.SourceName)
		}
	}

	slow := outcomes[1]
	if slow.OK() {
		t.Fatal("slow target should have timed out")
	}
	if slow.Reason != domain.ReasonTimeout {
		t.Fatalf("slow reason = %q, want %q", slow.Reason, domain.ReasonTimeout)
	}
}

func TestFetchAllClassifiesHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := listingServer(t)
	client := httpclient.NewRestyClient(2 * time.Second)
	f := NewFetcher(client, nil, Options{Workers: 2})

	outcomes := f.FetchAll(context.Background(), []Target{
		{SourceName: "a", URL: srv.URL + "/missing"},
		{SourceName: "b", URL: srv.URL + "/binary"},
	})

	if outcomes[0].OK() || outcomes[0].Reason != domain.ReasonHTTPError {
		t.Fatalf("404 outcome = %+v, want http_error", outcomes[0])
	}
	if outcomes[1].OK() || outcomes[1].Reason != domain.ReasonBadContent {
		t.Fatalf("pdf outcome = %+v, want bad_content", outcomes[1])
	}
}

func TestFetchAllSendsUserAgent(t *testing.T) {
	t.Parallel()

	gotUA := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)

	client := httpclient.NewRestyClient(2 * time.Second)
	f := NewFetcher(client, nil, Options{Workers: 1, UserAgent: "pressmood/1.0"})

	outcomes := f.FetchAll(context.Background(), []Target{{SourceName: "a", URL: srv.URL}})
	if !outcomes[0].OK() {
		t.Fatalf("fetch failed: %v", outcomes[0].Err)
	}
	if ua := <-gotUA; ua != "pressmood/1.0" {
		t.Fatalf("user agent = %q", ua)
	}
}

func TestFetchAllCancelledContext(t *testing.T) {
	t.Parallel()

	srv := listingServer(t)
	client := httpclient.NewRestyClient(time.Second)
	f := NewFetcher(client, nil, Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := f.FetchAll(ctx, []Target{
		{SourceName: "a", URL: srv.URL + "/ok"},
		{SourceName: "b", URL: srv.URL + "/ok"},
	})

	for i, o := range outcomes {
		if o.OK() {
			t.Fatalf("target %d succeeded after cancellation", i)
		}
		if o.Reason != domain.ReasonNetwork {
			t.Fatalf("target %d reason = %q, want network", i, o.Reason)
		}
	}
}

func TestFetchAllEmptyTargets(t *testing.T) {
	t.Parallel()

	client := httpclient.NewRestyClient(time.Second)
	f := NewFetcher(client, nil, Options{Workers: 2})

	if outcomes := f.FetchAll(context.Background(), nil); len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(outcomes))
	}
}

func TestUsableContentType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ct   string
		want bool
	}{
		{"", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML; charset=UTF-8", true},
		{"application/xml", true},
		{"text/plain", true},
		{"application/pdf", false},
		{"image/png", false},
		{"application/octet-stream", false},
	}
	for _, tc := range cases {
		if got := usableContentType(tc.ct); got != tc.want {
			t.Fatalf("usableContentType(%q) = %v, want %v", tc.ct, got, tc.want)
		}
	}
}
