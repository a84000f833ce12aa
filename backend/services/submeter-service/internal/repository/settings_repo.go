package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"submeter/backend/services/submeter-service/internal/storage"
)

const settingsSchema = `
CREATE TABLE IF NOT EXISTS calculator_settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var _ storage.Store = (*SettingsRepository)(nil)

// SettingsRepository stores calculator key-value settings in postgres.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository returns repository and ensures its table exists.
func NewSettingsRepository(ctx context.Context, db *sql.DB) (*SettingsRepository, error) {
	if _, err := db.ExecContext(ctx, settingsSchema); err != nil {
		return nil, fmt.Errorf("settings: migrate: %w", err)
	}
	return &SettingsRepository{db: db}, nil
}

// Get returns the value stored under key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storage.ErrEmptyKey
	}
	const query = `SELECT value FROM calculator_settings WHERE key = $1`

	var value string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("settings: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return storage.ErrEmptyKey
	}
	const query = `
		INSERT INTO calculator_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("settings: set %s: %w", key, err)
	}
	return nil
}
