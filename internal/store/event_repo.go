package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// EventRepo handles persistence for the coordinator's event log.
type EventRepo struct {
	Dialect Dialect
}

// AppendTx inserts an event within an existing transaction.
func (r *EventRepo) AppendTx(ctx context.Context, tx *sql.Tx, e domain.Event) error {
	q := r.Dialect.Rebind(`INSERT INTO transport_events (event_id, seq, kind, sim_time, route_id, job_id, order_id,
resource_id, delivered, lost, correlation_id, cells_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	cells, err := marshalJSON(cellsOrEmpty(e.Cells))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, q,
		e.ID, e.Seq, string(e.Kind), e.SimTime, e.RouteID, e.JobID, e.OrderID,
		e.ResourceID, e.Delivered, e.Lost, e.CorrelationID, cells, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListSince returns up to limit events with a sequence number greater than
// sinceSeq, ordered by sequence number ascending. limit <= 0 means no limit.
func (r *EventRepo) ListSince(ctx context.Context, db *sql.DB, sinceSeq int64, limit int) ([]domain.Event, error) {
	q := `SELECT event_id, seq, kind, sim_time, route_id, job_id, order_id, resource_id,
delivered, lost, correlation_id, cells_json
FROM transport_events
WHERE seq > ?
ORDER BY seq ASC`
	args := []any{sinceSeq}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, r.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var kind, cells string
		if err := rows.Scan(&e.ID, &e.Seq, &kind, &e.SimTime, &e.RouteID, &e.JobID, &e.OrderID, &e.ResourceID,
			&e.Delivered, &e.Lost, &e.CorrelationID, &cells); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		if err := unmarshalJSON(cells, &e.Cells); err != nil {
			return nil, err
		}
		if len(e.Cells) == 0 {
			e.Cells = nil
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
