package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigsYAML(t *testing.T) {
	t.Setenv("TEST_SQS_SECRET", "s3cr3t")

	path := writeTempFile(t, "publishers.yaml", `
publishers:
  - id: alerts-queue
    type: queue
    queue:
      provider: AWS-SQS
      sqs:
        uri: https://sqs.eu-west-1.amazonaws.com/123/alerts
        region: eu-west-1
        access_key_id: AKIAEXAMPLE
        secret_access_key: ${TEST_SQS_SECRET}
  - id: webhook
    type: http
    enabled: false
    http:
      url: https://hooks.example.com/sentiment
`)

	cfgs, err := LoadConfigs(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("got %d configs, want 2", len(cfgs))
	}

	q := cfgs[0]
	if q.Type != TypeQueue || q.Queue.Provider != QueueProviderAWSSQS {
		t.Fatalf("queue config normalized wrong: %+v", q)
	}
	if q.Queue.SQS.SecretAccessKey != "s3cr3t" {
		t.Fatalf("env reference not expanded: %q", q.Queue.SQS.SecretAccessKey)
	}

	h := cfgs[1]
	if h.HTTP.Method != "POST" || h.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %+v", h.HTTP)
	}
	if h.EnabledValue() {
		t.Fatal("disabled sink reported enabled")
	}

	enabled := EnabledConfigs(cfgs)
	if len(enabled) != 1 || enabled[0].ID != "alerts-queue" {
		t.Fatalf("EnabledConfigs = %+v", enabled)
	}
}

func TestLoadConfigsJSON(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "publishers.json", `{
  "publishers": [
    {"id": "webhook", "type": "http", "http": {"url": "https://hooks.example.com", "method": "put", "timeout_seconds": 9}}
  ]
}`)

	cfgs, err := LoadConfigs(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfgs[0].HTTP.Method != "PUT" || cfgs[0].HTTP.TimeoutSeconds != 9 {
		t.Fatalf("http overrides lost: %+v", cfgs[0].HTTP)
	}
}

func TestLoadConfigsRejectsBadDeclarations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"no sinks", `publishers: []`},
		{"missing id", `
publishers:
  - type: http
    http: {url: https://x.example.com}
`},
		{"unknown type", `
publishers:
  - id: a
    type: carrier-pigeon
`},
		{"http without url", `
publishers:
  - id: a
    type: http
    http: {method: POST}
`},
		{"queue without region", `
publishers:
  - id: a
    type: queue
    queue:
      provider: aws-sqs
      sqs: {uri: https://sqs.example.com/q}
`},
		{"gcp without topic", `
publishers:
  - id: a
    type: queue
    queue:
      provider: gcp
      gcp: {project_id: proj}
`},
		{"duplicate ids", `
publishers:
  - id: a
    type: http
    http: {url: https://x.example.com}
  - id: a
    type: http
    http: {url: https://y.example.com}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeTempFile(t, "publishers.yaml", tc.body)
			if _, err := LoadConfigs(path); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadConfigsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfigs(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := LoadConfigs("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}

func TestHTTPPublisherDeliversEvent(t *testing.T) {
	t.Parallel()

	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("custom header = %q", got)
		}
		var evt Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- evt
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	pub, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{
		ID:   "webhook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         "POST",
			Headers:        map[string]string{"X-Token": "abc"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("build publisher: %v", err)
	}
	if pub.ID() != "webhook" || pub.Type() != TypeHTTP {
		t.Fatalf("publisher identity wrong: %s/%s", pub.ID(), pub.Type())
	}

	evt := Event{
		RunID:     "run-1",
		ArticleID: "art-1",
		Source:    "wire",
		Title:     "Markets rally after surprise rate cut",
		URL:       "https://news.example.com/business/markets-rally",
		Label:     "positive",
		Score:     0.42,
		ScoredAt:  time.Now().UTC(),
	}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := <-received
	if got.ArticleID != evt.ArticleID || got.Label != evt.Label || got.RunID != evt.RunID {
		t.Fatalf("delivered event = %+v, want %+v", got, evt)
	}
}

func TestHTTPPublisherRejectsNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	pub, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{
		ID:   "webhook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, Method: "POST", TimeoutSeconds: 2},
	}, nil)
	if err != nil {
		t.Fatalf("build publisher: %v", err)
	}

	err = pub.Publish(context.Background(), Event{ArticleID: "art-1"})
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("error does not carry status: %v", err)
	}
}

func TestRegistryUnknownType(t *testing.T) {
	t.Parallel()

	_, err := DefaultRegistry().PublisherFor(context.Background(), PublisherConfig{ID: "a", Type: "smtp"}, nil)
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
}

func TestEventJSONShape(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Event{RunID: "run-1", ArticleID: "a", Label: "neutral"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(raw)
	if !strings.Contains(s, `"run_id":"run-1"`) || !strings.Contains(s, `"article_id":"a"`) {
		t.Fatalf("unexpected payload: %s", s)
	}
	if strings.Contains(s, "published_at") {
		t.Fatalf("zero publish date should be omitted: %s", s)
	}
}
