package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tgienger/kanban/internal/slot"
)

// Load returns the blob stored under key, or slot.ErrNotFound.
func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx, "SELECT data FROM slots WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, slot.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save replaces the blob stored under key.
func (db *DB) Save(ctx context.Context, key string, data []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO slots (key, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`, key, data)
	return err
}
