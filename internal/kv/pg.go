package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"resurate/internal/platform"
)

// PGStore keeps entries in the kv_entries table.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Get(ctx context.Context, namespace, key string) (string, error) {
	const query = `
SELECT value
FROM kv_entries
WHERE namespace = $1 AND key = $2`
	var value string
	if err := s.DB.QueryRowContext(ctx, query, namespace, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", platform.ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *PGStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := validate(namespace, key); err != nil {
		return err
	}
	const query = `
INSERT INTO kv_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET
  value = EXCLUDED.value,
  updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, namespace, key, value)
	return err
}

func (s *PGStore) List(ctx context.Context, namespace, prefix string) ([]platform.KVEntry, error) {
	const query = `
SELECT key, value, updated_at
FROM kv_entries
WHERE namespace = $1 AND key LIKE $2 ESCAPE '\'
ORDER BY updated_at DESC, key ASC`
	rows, err := s.DB.QueryContext(ctx, query, namespace, likePrefix(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]platform.KVEntry, 0)
	for rows.Next() {
		var entry platform.KVEntry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *PGStore) Flush(ctx context.Context, namespace string) error {
	const query = `DELETE FROM kv_entries WHERE namespace = $1`
	_, err := s.DB.ExecContext(ctx, query, namespace)
	return err
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

var _ platform.KV = (*PGStore)(nil)
