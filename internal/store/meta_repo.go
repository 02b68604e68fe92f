package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MetaRepo stores small keyed values such as the sim clock and the economy
// state blob.
type MetaRepo struct {
	Dialect Dialect
}

// PutTx upserts key within an existing transaction.
func (r *MetaRepo) PutTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	q := r.Dialect.Rebind(`INSERT INTO world_meta (meta_key, meta_value) VALUES (?, ?)
ON CONFLICT (meta_key) DO UPDATE SET meta_value = excluded.meta_value`)
	if _, err := tx.ExecContext(ctx, q, key, value); err != nil {
		return fmt.Errorf("put meta %s: %w", key, err)
	}
	return nil
}

// Get returns the value stored for key and whether it exists.
func (r *MetaRepo) Get(ctx context.Context, db *sql.DB, key string) (string, bool, error) {
	var v string
	err := db.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT meta_value FROM world_meta WHERE meta_key = ?`), key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return v, true, nil
}
