package sources

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const StrategySelector = "selector"

// Minimum title length that distinguishes headlines from navigation links.
const minTitleLen = 10

// Date layouts tried when a listing exposes a textual publish date.
var listingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// SelectorParser extracts candidates from listing pages using per-source CSS
// selectors. Missing selectors fall back to generic headline patterns so a
// sparsely configured source still yields results.
type SelectorParser struct{}

// NewSelectorParser builds the selector strategy.
func NewSelectorParser() *SelectorParser { return &SelectorParser{} }

func (p *SelectorParser) Strategy() string { return StrategySelector }

// Parse walks the configured item containers and pulls title, link, snippet
// and date out of each. Items without a usable link are skipped; every other
// missing field degrades to its unknown marker rather than failing the page.
func (p *SelectorParser) Parse(src Source, body []byte) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// Unparseable markup is a skipped page, not a pipeline error.
		return nil, nil
	}

	sel := src.Selectors
	itemSel := firstNonEmpty(sel.Item, "article")
	titleSel := firstNonEmpty(sel.Title, "h1, h2, h3")
	linkSel := firstNonEmpty(sel.Link, "a")
	snippetSel := firstNonEmpty(sel.Snippet, "p")

	var out []Candidate
	seen := make(map[string]struct{})

	doc.Find(itemSel).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(linkSel).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		abs := resolveURL(strings.TrimSpace(href), src.URL)
		if abs == "" || !strings.HasPrefix(abs, "http") {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}

		title := normalizeWhitespace(firstNonEmpty(
			item.Find(titleSel).First().Text(),
			link.Text(),
		))
		if len(title) < minTitleLen {
			return
		}

		snippet := normalizeWhitespace(item.Find(snippetSel).First().Text())

		var published time.Time
		if sel.Date != "" {
			published = parseListingDate(item.Find(sel.Date).First())
		} else {
			published = parseListingDate(item.Find("time").First())
		}

		seen[abs] = struct{}{}
		out = append(out, Candidate{
			Title:       title,
			URL:         abs,
			Snippet:     snippet,
			PublishedAt: published,
		})
	})

	return out, nil
}

// parseListingDate reads a datetime attribute or the node text. A zero time
// means the publish date is unknown.
func parseListingDate(node *goquery.Selection) time.Time {
	if node.Length() == 0 {
		return time.Time{}
	}

	raw, ok := node.Attr("datetime")
	if !ok {
		raw = node.Text()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range listingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
