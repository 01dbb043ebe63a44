package domain

import "time"

// Domain contains core models shared by the pipeline stages.

// Article is a scraped news record keyed by the canonical-URL identifier.
type Article struct {
	ID           string    `json:"id"`
	CanonicalURL string    `json:"canonical_url"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Source       string    `json:"source"`
	Body         string    `json:"body"`
	PublishedAt  time.Time `json:"published_at"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// UnknownField marks listing fields the parser could not recover.
const UnknownField = "unknown"

// Sentiment labels derived from the polarity score.
const (
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
	LabelPositive = "positive"
)

// SentimentResult holds the polarity score attached to a stored article.
// Score is bounded to [-1, 1].
type SentimentResult struct {
	ArticleID string    `json:"article_id"`
	Score     float64   `json:"score"`
	Label     string    `json:"label"`
	ScoredAt  time.Time `json:"scored_at"`
}

// FetchReason tags why a listing fetch failed.
type FetchReason string

const (
	ReasonTimeout    FetchReason = "timeout"
	ReasonHTTPError  FetchReason = "http_error"
	ReasonBadContent FetchReason = "bad_content"
	ReasonNetwork    FetchReason = "network"
)

// FetchOutcome is the transient per-URL result of a listing fetch.
type FetchOutcome struct {
	URL         string
	SourceName  string
	Body        []byte
	ContentType string
	Reason      FetchReason
	Err         error
}

// OK reports whether the fetch produced usable content.
func (o FetchOutcome) OK() bool { return o.Err == nil }

// Stage identifies the pipeline step an item failed in.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageParse   Stage = "parse"
	StageScore   Stage = "score"
	StagePersist Stage = "persist"
	StagePublish Stage = "publish"
)

// ItemFailure records a single per-item failure with enough context to retry it.
type ItemFailure struct {
	Stage  Stage  `json:"stage"`
	URL    string `json:"url,omitempty"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// RunReport summarizes one pipeline run.
type RunReport struct {
	RunID      string                  `json:"run_id"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
	Fetched    int                     `json:"fetched"`
	Parsed     int                     `json:"parsed"`
	DedupedOut int                     `json:"deduped_out"`
	Scored     int                     `json:"scored"`
	Persisted  int                     `json:"persisted"`
	Published  int                     `json:"published"`
	Failures   map[Stage][]ItemFailure `json:"failures"`
}

// AddFailure appends an item failure under its stage.
func (r *RunReport) AddFailure(f ItemFailure) {
	if r.Failures == nil {
		r.Failures = make(map[Stage][]ItemFailure)
	}
	r.Failures[f.Stage] = append(r.Failures[f.Stage], f)
}

// FailureCount returns the total number of recorded item failures.
func (r *RunReport) FailureCount() int {
	n := 0
	for _, fs := range r.Failures {
		n += len(fs)
	}
	return n
}
