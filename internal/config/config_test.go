package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pressmood.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: wire
    url: https://news.example.com/latest
    strategy: selector
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Logging.Level != "info" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Store.Path != "pressmood.db" {
		t.Fatalf("store.path = %q", cfg.Store.Path)
	}
	if cfg.Crawler.Workers != 4 || cfg.Crawler.RequestTimeout != 15*time.Second {
		t.Fatalf("crawler defaults = %+v", cfg.Crawler)
	}
	if !cfg.Crawler.Enrich {
		t.Fatal("enrich should default to true")
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "wire" {
		t.Fatalf("sources = %+v", cfg.Sources)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
store:
  path: /var/lib/pressmood/articles.db
crawler:
  request_timeout: 30s
  host_delay: 500ms
  workers: 8
  user_agent: custom-agent/2.0
  enrich: false
dedup:
  tracking_params: [partner_id, share_token]
publishers:
  file: /etc/pressmood/publishers.yaml
sources:
  - name: wire
    url: https://news.example.com/latest
    strategy: selector
    selectors:
      item: div.card
      title: span.headline
      link: a.story
  - name: outlet
    url: https://outlet.example.org/news-sitemap.xml
    strategy: news-sitemap
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging.level = %q", cfg.Logging.Level)
	}
	if cfg.Crawler.RequestTimeout != 30*time.Second || cfg.Crawler.HostDelay != 500*time.Millisecond {
		t.Fatalf("crawler durations = %+v", cfg.Crawler)
	}
	if cfg.Crawler.Enrich {
		t.Fatal("enrich override lost")
	}
	if len(cfg.Dedup.TrackingParams) != 2 || cfg.Dedup.TrackingParams[0] != "partner_id" {
		t.Fatalf("dedup params = %+v", cfg.Dedup.TrackingParams)
	}
	if cfg.Publishers.File != "/etc/pressmood/publishers.yaml" {
		t.Fatalf("publishers.file = %q", cfg.Publishers.File)
	}
	if cfg.Sources[0].Selectors.Item != "div.card" {
		t.Fatalf("selectors = %+v", cfg.Sources[0].Selectors)
	}
	if cfg.Sources[1].Strategy != "news-sitemap" {
		t.Fatalf("second source = %+v", cfg.Sources[1])
	}
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("PRESSMOOD_LOGGING_LEVEL", "warn")

	path := writeConfig(t, `
sources:
  - name: wire
    url: https://news.example.com/latest
    strategy: selector
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("env override lost, level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero workers", `
crawler:
  workers: 0
`},
		{"source without url", `
sources:
  - name: wire
    strategy: selector
`},
		{"source without strategy", `
sources:
  - name: wire
    url: https://news.example.com
`},
		{"duplicate source names", `
sources:
  - name: wire
    url: https://a.example.com
    strategy: selector
  - name: wire
    url: https://b.example.com
    strategy: selector
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.body)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
