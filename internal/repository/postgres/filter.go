package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/logger"
	"rentacar-calendar/internal/repository"
)

const createFilterTable = `CREATE TABLE IF NOT EXISTS filter_preferences (
	key        TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	updated_on TIMESTAMPTZ NOT NULL
)`

type filterRepository struct {
	db *sql.DB
}

func NewFilterRepository(db *sql.DB) repository.FilterRepository {
	return &filterRepository{db: db}
}

// EnsureSchema creates the preferences table if it is missing
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("ensure_schema", createFilterTable)
	_, err := db.ExecContext(ctx, createFilterTable)
	logger.DatabaseResult("ensure_schema", 0, err)
	return err
}

func (r *filterRepository) Load(ctx context.Context, key string) (*domain.FilterSet, error) {
	query := `SELECT payload FROM filter_preferences WHERE key = $1`
	logger.DatabaseCall("load_filters", query, "key", key)

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("load_filters", 0, nil, "key", key)
		return nil, domain.ErrNotFound
	}
	if err != nil {
		logger.DatabaseResult("load_filters", 0, err, "key", key)
		return nil, err
	}
	logger.DatabaseResult("load_filters", 1, nil, "key", key)

	var fs domain.FilterSet
	if err := json.Unmarshal(payload, &fs); err != nil {
		return nil, fmt.Errorf("corrupt filter payload for %q: %w", key, err)
	}
	return &fs, nil
}

func (r *filterRepository) Save(ctx context.Context, key string, filters domain.FilterSet) error {
	payload, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}

	query := `INSERT INTO filter_preferences (key, payload, updated_on) VALUES ($1, $2, $3)
	          ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_on = EXCLUDED.updated_on`
	logger.DatabaseCall("save_filters", query, "key", key)

	res, err := r.db.ExecContext(ctx, query, key, payload, time.Now())
	var rows int64
	if err == nil {
		rows, _ = res.RowsAffected()
	}
	logger.DatabaseResult("save_filters", rows, err, "key", key)
	return err
}
