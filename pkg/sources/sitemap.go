package sources

import (
	"encoding/xml"
	"strings"
	"time"
)

const StrategySitemap = "news-sitemap"

// SitemapParser extracts candidates from Google-News style sitemap XML.
// Outlets that publish these sitemaps need no CSS selectors at all.
type SitemapParser struct{}

// NewSitemapParser builds the news-sitemap strategy.
func NewSitemapParser() *SitemapParser { return &SitemapParser{} }

func (p *SitemapParser) Strategy() string { return StrategySitemap }

type newsSitemap struct {
	URLs []newsSitemapURL `xml:"url"`
}

type newsSitemapURL struct {
	Loc  string            `xml:"loc"`
	News newsSitemapDetail `xml:"news"`
}

type newsSitemapDetail struct {
	PublicationDate string `xml:"publication_date"`
	Title           string `xml:"title"`
}

// Parse decodes the sitemap entries into candidates. A payload that is not a
// sitemap yields an empty result.
func (p *SitemapParser) Parse(_ Source, body []byte) ([]Candidate, error) {
	var sm newsSitemap
	if err := xml.Unmarshal(body, &sm); err != nil {
		return nil, nil
	}

	out := make([]Candidate, 0, len(sm.URLs))
	for _, entry := range sm.URLs {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		out = append(out, Candidate{
			Title:       normalizeWhitespace(entry.News.Title),
			URL:         loc,
			PublishedAt: parsePublicationDate(entry.News.PublicationDate),
		})
	}
	return out, nil
}

func parsePublicationDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}
