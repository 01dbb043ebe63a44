// Package store persists articles and their sentiment results in bbolt.
// bbolt runs writes in single-writer transactions, which gives the
// per-identifier serialization the pipeline relies on; reads run concurrently.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pressmood/pressmood/internal/domain"
	"github.com/pressmood/pressmood/internal/logger"
)

var (
	bucketArticles   = []byte("articles")
	bucketSentiments = []byte("sentiments")
)

// ErrNotFound is returned when an identifier has no stored article.
var ErrNotFound = errors.New("article not found")

// Record pairs a stored article with its sentiment, when scored.
type Record struct {
	Article   domain.Article          `json:"article"`
	Sentiment *domain.SentimentResult `json:"sentiment,omitempty"`
}

// Filter narrows ListAll results. Zero values mean "no constraint".
type Filter struct {
	Source string
	Label  string
	Since  time.Time
	Limit  int
}

// LabelStats aggregates scored articles under one label.
type LabelStats struct {
	Count     int     `json:"count"`
	MeanScore float64 `json:"mean_score"`
}

// Stats summarizes the stored corpus for the presentation layer.
type Stats struct {
	Total    int                   `json:"total"`
	Unscored int                   `json:"unscored"`
	ByLabel  map[string]LabelStats `json:"by_label"`
}

// Store is a bbolt-backed article store.
type Store struct {
	db  *bolt.DB
	log logger.Logger
}

// Open opens (or creates) the database file and ensures buckets exist.
func Open(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketArticles, bucketSentiments} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, log: log}, nil
}

// Close releases the database file.
func (s *Store) Close() error { return s.db.Close() }

// Upsert stores the article under its identifier. The operation is
// idempotent: an identifier already present is left untouched, so repeated
// runs neither duplicate rows nor disturb an attached sentiment.
func (s *Store) Upsert(ctx context.Context, art domain.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if art.ID == "" {
		return fmt.Errorf("article has no identifier")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArticles)
		if b.Get([]byte(art.ID)) != nil {
			return nil
		}

		raw, err := json.Marshal(art)
		if err != nil {
			return fmt.Errorf("encode article %s: %w", art.ID, err)
		}
		if err := b.Put([]byte(art.ID), raw); err != nil {
			return fmt.Errorf("put article %s: %w", art.ID, err)
		}
		return nil
	})
}

// AttachSentiment stores the sentiment result for an existing article.
func (s *Store) AttachSentiment(ctx context.Context, id string, res domain.SentimentResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketArticles).Get([]byte(id)) == nil {
			return fmt.Errorf("attach sentiment %s: %w", id, ErrNotFound)
		}

		res.ArticleID = id
		raw, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode sentiment %s: %w", id, err)
		}
		if err := tx.Bucket(bucketSentiments).Put([]byte(id), raw); err != nil {
			return fmt.Errorf("put sentiment %s: %w", id, err)
		}
		return nil
	})
}

// Exists reports whether an article with the identifier is stored.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketArticles).Get([]byte(id)) != nil
		return nil
	})
	return found, err
}

// ExistingIDs returns the subset of ids already present, as a membership map.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketArticles)
		for _, id := range ids {
			if b.Get([]byte(id)) != nil {
				out[id] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAll returns stored records matching the filter, joined with their
// sentiment when present.
func (s *Store) ListAll(ctx context.Context, f Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Record
	err := s.db.View(func(tx *bolt.Tx) error {
		articles := tx.Bucket(bucketArticles)
		sentiments := tx.Bucket(bucketSentiments)

		return articles.ForEach(func(k, v []byte) error {
			if f.Limit > 0 && len(out) >= f.Limit {
				return nil
			}

			var art domain.Article
			if err := json.Unmarshal(v, &art); err != nil {
				return fmt.Errorf("decode article %s: %w", k, err)
			}
			if f.Source != "" && art.Source != f.Source {
				return nil
			}
			if !f.Since.IsZero() && art.FetchedAt.Before(f.Since) {
				return nil
			}

			rec := Record{Article: art}
			if raw := sentiments.Get(k); raw != nil {
				var res domain.SentimentResult
				if err := json.Unmarshal(raw, &res); err != nil {
					return fmt.Errorf("decode sentiment %s: %w", k, err)
				}
				rec.Sentiment = &res
			}
			if f.Label != "" && (rec.Sentiment == nil || rec.Sentiment.Label != f.Label) {
				return nil
			}

			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stats aggregates counts and mean scores per sentiment label.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	records, err := s.ListAll(ctx, Filter{})
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(records), ByLabel: make(map[string]LabelStats)}
	sums := make(map[string]float64)
	for _, rec := range records {
		if rec.Sentiment == nil {
			stats.Unscored++
			continue
		}
		ls := stats.ByLabel[rec.Sentiment.Label]
		ls.Count++
		stats.ByLabel[rec.Sentiment.Label] = ls
		sums[rec.Sentiment.Label] += rec.Sentiment.Score
	}
	for label, ls := range stats.ByLabel {
		ls.MeanScore = sums[label] / float64(ls.Count)
		stats.ByLabel[label] = ls
	}
	return stats, nil
}
