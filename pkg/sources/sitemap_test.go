package sources

import (
	"testing"
	"time"
)

const sitemapFixture = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"
        xmlns:news="http://www.google.com/schemas/sitemap-news/0.9">
  <url>
    <loc>https://news.example.com/world/peace-talks-resume</loc>
    <news:news>
      <news:publication_date>2026-08-21T06:00:00Z</news:publication_date>
      <news:title>Peace talks resume after months of deadlock</news:title>
    </news:news>
  </url>
  <url>
    <loc>  https://news.example.com/science/telescope-first-light  </loc>
    <news:news>
      <news:publication_date>not-a-date</news:publication_date>
      <news:title>New telescope captures first light</news:title>
    </news:news>
  </url>
  <url>
    <loc></loc>
  </url>
</urlset>`

func TestSitemapParse(t *testing.T) {
	t.Parallel()

	got, err := NewSitemapParser().Parse(Source{Name: "wire"}, []byte(sitemapFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.URL != "https://news.example.com/world/peace-talks-resume" {
		t.Fatalf("url = %q", first.URL)
	}
	if first.Title != "Peace talks resume after months of deadlock" {
		t.Fatalf("title = %q", first.Title)
	}
	want := time.Date(2026, 8, 21, 6, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("published = %v, want %v", first.PublishedAt, want)
	}

	second := got[1]
	if second.URL != "https://news.example.com/science/telescope-first-light" {
		t.Fatalf("loc not trimmed: %q", second.URL)
	}
	if !second.PublishedAt.IsZero() {
		t.Fatalf("bad date should stay zero, got %v", second.PublishedAt)
	}
}

func TestSitemapParseNonXML(t *testing.T) {
	t.Parallel()

	got, err := NewSitemapParser().Parse(Source{Name: "wire"}, []byte("<html><body>not a sitemap</body></html>"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %+v", got)
	}
}
