package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CachedSummary is one cached summarizer output, keyed by calendar date and
// format variant. The cache is an optimization only; losing it costs a
// regenerated summary, never correctness.
type CachedSummary struct {
	Date      string // YYYY-MM-DD
	Variant   string
	Summary   string
	CreatedAt time.Time
}

// GetSummary returns the cached summary for the given date and variant.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetSummary(ctx context.Context, date, variant string) (*CachedSummary, error) {
	var (
		entry     CachedSummary
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT cache_date, variant, summary, created_at
		 FROM summary_cache WHERE cache_date = ? AND variant = ?`,
		date, variant,
	).Scan(&entry.Date, &entry.Variant, &entry.Summary, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting cached summary: %w", err)
	}
	entry.CreatedAt = parseTime(createdAt)
	return &entry, nil
}

// PutSummary inserts a summary or replaces one with the same date and
// variant.
func (s *Store) PutSummary(ctx context.Context, date, variant, summary string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summary_cache (cache_date, variant, summary)
		 VALUES (?, ?, ?)
		 ON CONFLICT(cache_date, variant) DO UPDATE SET
			summary    = excluded.summary,
			created_at = datetime('now')`,
		date, variant, summary,
	)
	if err != nil {
		return fmt.Errorf("caching summary: %w", err)
	}
	return nil
}
