package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/sweetshop/internal/session"
)

// GetValue returns the value stored under key and whether it exists.
func GetValue(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM storage WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// SetValue stores value under key, replacing any previous value.
func SetValue(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO storage (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func DeleteValue(ctx context.Context, db *sql.DB, key string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM storage WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// tokenStorageTimeout bounds each storage statement.
const tokenStorageTimeout = 5 * time.Second

// TokenStorage persists the session token in the storage table.
type TokenStorage struct {
	DB *sql.DB
}

var _ session.Storage = (*TokenStorage)(nil)

// Read returns the stored token. Read errors are logged and reported as
// "no token".
func (s *TokenStorage) Read() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), tokenStorageTimeout)
	defer cancel()

	token, ok, err := GetValue(ctx, s.DB, session.StorageKey)
	if err != nil {
		slog.Error("failed to read stored token", "error", err)
		return "", false
	}
	return token, ok
}

func (s *TokenStorage) Write(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), tokenStorageTimeout)
	defer cancel()
	return SetValue(ctx, s.DB, session.StorageKey, token)
}

func (s *TokenStorage) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), tokenStorageTimeout)
	defer cancel()
	return DeleteValue(ctx, s.DB, session.StorageKey)
}
