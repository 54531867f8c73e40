package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joshdurbin/bodycode-mcp/internal/db"
)

// SQLite stores values in the kv_store table
type SQLite struct {
	sqlDB   *sql.DB
	queries *db.Queries
}

// NewSQLite wraps a migrated database
func NewSQLite(sqlDB *sql.DB) *SQLite {
	return &SQLite{
		sqlDB:   sqlDB,
		queries: db.New(sqlDB),
	}
}

func (s *SQLite) Get(ctx context.Context, key string, v any) error {
	raw, err := s.queries.GetValue(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.queries.UpsertValue(ctx, db.UpsertValueParams{Key: key, Value: string(raw)}); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Append reads, extends and writes the array under key in one transaction
func (s *SQLite) Append(ctx context.Context, key string, item any) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	q := s.queries.WithTx(tx)

	current, err := q.GetValue(ctx, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("loading %s: %w", key, err)
	}

	next, err := appendJSON([]byte(current), item)
	if err != nil {
		return fmt.Errorf("appending to %s: %w", key, err)
	}
	if err := q.UpsertValue(ctx, db.UpsertValueParams{Key: key, Value: string(next)}); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := s.queries.DeleteValue(ctx, key); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) DeletePrefix(ctx context.Context, prefix string) (int64, error) {
	n, err := s.queries.DeleteValuesByPrefix(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("deleting %s*: %w", prefix, err)
	}
	return n, nil
}

func (s *SQLite) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.queries.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing %s*: %w", prefix, err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	row, err := s.queries.GetStoreStats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("reading store stats: %w", err)
	}
	return Stats{Keys: row.KeyCount, Bytes: row.ValueBytes}, nil
}

// appendJSON appends item to the JSON array in raw; empty raw is an empty array
func appendJSON(raw []byte, item any) ([]byte, error) {
	var list []json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("existing value is not a list: %w", err)
		}
	}
	encoded, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	return json.Marshal(append(list, encoded))
}
