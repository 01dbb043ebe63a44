// Package sources turns raw listing pages into article candidates. Each known
// page layout has one parse strategy; the strategy for a source is selected by
// configuration, never by inspecting the payload type at runtime.
package sources

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Source describes one configured listing endpoint.
type Source struct {
	Name      string
	URL       string
	Strategy  string
	Selectors Selectors
}

// Selectors carries the CSS selectors used by the selector strategy. Empty
// fields fall back to layout-agnostic defaults.
type Selectors struct {
	Item    string
	Title   string
	Link    string
	Snippet string
	Date    string
}

// Candidate is a parsed article candidate before identity assignment.
type Candidate struct {
	Title       string
	URL         string
	Snippet     string
	PublishedAt time.Time
}

// Parser extracts zero or more candidates from a listing page body.
// A page with no recognizable structure yields an empty slice, not an error.
type Parser interface {
	Strategy() string
	Parse(src Source, body []byte) ([]Candidate, error)
}

// Registry resolves parse strategies by name.
type Registry struct {
	parsers map[string]Parser
	mu      sync.RWMutex
}

// NewRegistry builds a registry for the provided parser implementations.
func NewRegistry(parsers ...Parser) *Registry {
	reg := &Registry{parsers: make(map[string]Parser, len(parsers))}
	for _, p := range parsers {
		if p == nil {
			continue
		}
		reg.parsers[strings.ToLower(strings.TrimSpace(p.Strategy()))] = p
	}
	return reg
}

// ParserFor selects the parser for the given source based on its strategy.
func (r *Registry) ParserFor(src Source) (Parser, error) {
	if src.Strategy == "" {
		return nil, fmt.Errorf("source %q has no strategy", src.Name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[strings.ToLower(src.Strategy)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no parser registered for strategy %q", src.Strategy)
}

// DefaultRegistry wires up the known layout strategies.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewSelectorParser(),
		NewSitemapParser(),
		NewGenericParser(),
	)
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves a possibly relative URL against a base URL.
func resolveURL(raw, base string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.IsAbs() {
		return parsed.String()
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return raw
	}
	return baseURL.ResolveReference(parsed).String()
}

// firstNonEmpty returns the first value with non-space content.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
