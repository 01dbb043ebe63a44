package sources

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const StrategyGeneric = "generic"

// Links shorter than this are almost always section or navigation pages.
const minGenericURLLen = 25

// GenericParser is the fallback strategy for sources without a known layout.
// It collects same-host links that look like article URLs and uses the anchor
// text as the headline.
type GenericParser struct{}

// NewGenericParser builds the generic strategy.
func NewGenericParser() *GenericParser { return &GenericParser{} }

func (p *GenericParser) Strategy() string { return StrategyGeneric }

func (p *GenericParser) Parse(src Source, body []byte) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, nil
	}
	host := strings.ToLower(base.Hostname())

	var out []Candidate
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := resolveURL(strings.TrimSpace(href), src.URL)
		if abs == "" || len(abs) < minGenericURLLen {
			return
		}

		u, err := url.Parse(abs)
		if err != nil || !strings.EqualFold(u.Hostname(), host) {
			return
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}

		title := normalizeWhitespace(a.Text())
		if len(title) < minTitleLen {
			return
		}

		seen[abs] = struct{}{}
		out = append(out, Candidate{Title: title, URL: abs})
	})

	return out, nil
}
