package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const lastGradingRunKey = "last_grading_run"

// SetMetadata upserts a key-value pair in the metadata table.
func (s *Store) SetMetadata(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.q(
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`),
		key, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT value FROM metadata WHERE key = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetLastGradingRun records when the due-grading batch last completed.
func (s *Store) SetLastGradingRun(ctx context.Context, t time.Time) error {
	return s.SetMetadata(ctx, lastGradingRunKey, t.UTC().Format(time.RFC3339))
}

// LastGradingRun returns the last batch completion time, or the zero time.
func (s *Store) LastGradingRun(ctx context.Context) (time.Time, error) {
	v, err := s.GetMetadata(ctx, lastGradingRunKey)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
