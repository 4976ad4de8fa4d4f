// Package settings stores the service's own durable settings (API token,
// instance ID) in the SQLite database.
package settings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	KeyAuthToken  = "auth_token"
	KeyInstanceID = "instance_id"
)

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Get returns the stored value, or "" when key is absent.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')
	`, key, value)
	return err
}

// EnsureInstanceID returns the persisted instance ID, creating one on first run.
func EnsureInstanceID(ctx context.Context, repo Repository) (string, error) {
	return ensure(ctx, repo, KeyInstanceID, func() (string, error) {
		return uuid.NewString(), nil
	})
}

// EnsureAuthToken returns the API bearer token. A non-empty override (from
// configuration) is stored and returned; otherwise the persisted token is
// reused or a new random one generated.
func EnsureAuthToken(ctx context.Context, repo Repository, override string) (string, error) {
	if override != "" {
		if err := repo.Set(ctx, KeyAuthToken, override); err != nil {
			return "", fmt.Errorf("store auth token: %w", err)
		}
		return override, nil
	}
	return ensure(ctx, repo, KeyAuthToken, newToken)
}

func ensure(ctx context.Context, repo Repository, key string, generate func() (string, error)) (string, error) {
	existing, err := repo.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if existing != "" {
		return existing, nil
	}

	value, err := generate()
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", key, err)
	}
	if err := repo.Set(ctx, key, value); err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return value, nil
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
