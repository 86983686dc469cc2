package store

import (
	"context"
	"database/sql"
	"errors"
)

// MetaGet reads a value from the meta table. Missing keys return "".
func (s *SQLiteStore) MetaGet(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", wrapPersistence("reading meta "+key, err)
	}
	return value, nil
}

// MetaSet writes a value to the meta table, replacing any existing one.
func (s *SQLiteStore) MetaSet(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return wrapPersistence("writing meta "+key, err)
	}
	return nil
}
