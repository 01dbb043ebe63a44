// Package dedup filters article candidates that the store has already seen.
package dedup

import (
	"context"
	"fmt"

	"github.com/pressmood/pressmood/internal/domain"
)

// IDChecker answers batch membership queries against stored identifiers.
type IDChecker interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// Deduplicator drops candidates whose identifier is already stored, plus
// in-batch repeats of the same identifier.
type Deduplicator struct {
	store IDChecker
}

// New builds a Deduplicator over the given store.
func New(store IDChecker) *Deduplicator {
	return &Deduplicator{store: store}
}

// Filter returns the candidates not present in the store, preserving order,
// along with the number dropped. A candidate without an identifier is dropped
// and counted too; it can never be stored.
func (d *Deduplicator) Filter(ctx context.Context, candidates []domain.Article) ([]domain.Article, int, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != "" {
			ids = append(ids, c.ID)
		}
	}

	existing, err := d.store.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("load existing ids: %w", err)
	}

	fresh := make([]domain.Article, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	dropped := 0

	for _, c := range candidates {
		if c.ID == "" || existing[c.ID] {
			dropped++
			continue
		}
		if _, dup := seen[c.ID]; dup {
			dropped++
			continue
		}
		seen[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}

	return fresh, dropped, nil
}
