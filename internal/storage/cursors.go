package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetCursor returns the persisted cursor value for the given stream.
// Returns "", ErrNotFound when the stream has never published.
func (s *Store) GetCursor(ctx context.Context, stream string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM cursors WHERE stream = ?`, stream,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("getting cursor for %q: %w", stream, err)
	}
	return value, nil
}

// SetCursor upserts the cursor value for the given stream. This write is
// safety-critical: it is what prevents duplicate posts, so failures must be
// surfaced to the caller, never swallowed.
func (s *Store) SetCursor(ctx context.Context, stream, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cursors (stream, value)
		 VALUES (?, ?)
		 ON CONFLICT(stream) DO UPDATE SET
			value      = excluded.value,
			updated_at = datetime('now')`,
		stream, value,
	)
	if err != nil {
		return fmt.Errorf("setting cursor for %q: %w", stream, err)
	}
	return nil
}
