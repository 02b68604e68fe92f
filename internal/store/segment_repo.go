package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// SegmentRepo handles persistence for road segments. Links and network ids
// are derived data and are recomputed by the graph on restore.
type SegmentRepo struct {
	Dialect Dialect
}

// ReplaceAllTx deletes every stored segment and inserts segs.
func (r *SegmentRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, segs []domain.RoadSegment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM road_segments`); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	q := r.Dialect.Rebind(`INSERT INTO road_segments (x, y, road_type, durability, transported) VALUES (?, ?, ?, ?, ?)`)
	for _, s := range segs {
		if _, err := tx.ExecContext(ctx, q, s.Cell.X, s.Cell.Y, s.RoadTypeID, s.Durability, s.Transported); err != nil {
			return fmt.Errorf("insert segment %s: %w", s.Cell, err)
		}
	}
	return nil
}

// List returns every stored segment ordered by cell.
func (r *SegmentRepo) List(ctx context.Context, db *sql.DB) ([]domain.RoadSegment, error) {
	const q = `SELECT x, y, road_type, durability, transported FROM road_segments ORDER BY y, x`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var segs []domain.RoadSegment
	for rows.Next() {
		var s domain.RoadSegment
		if err := rows.Scan(&s.Cell.X, &s.Cell.Y, &s.RoadTypeID, &s.Durability, &s.Transported); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segs = append(segs, s)
	}
	return segs, rows.Err()
}
