package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// PoolRepo handles persistence for per-source vehicle pools.
type PoolRepo struct {
	Dialect Dialect
}

// ReplaceAllTx deletes every stored pool and inserts pools.
func (r *PoolRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, pools []domain.VehiclePool) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM fleet_pools`); err != nil {
		return fmt.Errorf("clear pools: %w", err)
	}
	q := r.Dialect.Rebind(`INSERT INTO fleet_pools (source_id, total, available) VALUES (?, ?, ?)`)
	for _, p := range pools {
		if _, err := tx.ExecContext(ctx, q, p.SourceID, p.Total, p.Available); err != nil {
			return fmt.Errorf("insert pool %s: %w", p.SourceID, err)
		}
	}
	return nil
}

// List returns every stored pool ordered by source.
func (r *PoolRepo) List(ctx context.Context, db *sql.DB) ([]domain.VehiclePool, error) {
	rows, err := db.QueryContext(ctx, `SELECT source_id, total, available FROM fleet_pools ORDER BY source_id`)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []domain.VehiclePool
	for rows.Next() {
		var p domain.VehiclePool
		if err := rows.Scan(&p.SourceID, &p.Total, &p.Available); err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}
