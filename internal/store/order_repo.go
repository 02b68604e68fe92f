package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// OrderRepo handles persistence for in-flight transport orders.
type OrderRepo struct {
	Dialect Dialect
}

// ReplaceAllTx deletes every stored order and inserts orders in order.
func (r *OrderRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, orders []domain.TransportOrder) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transport_orders`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	q := r.Dialect.Rebind(`INSERT INTO transport_orders (order_id, position, route_id, job_id, source_id, target_id,
cargo_json, state, elapsed, outbound_duration, return_duration, delivered, lost, outcomes_json,
uses_pooled, dispatched_at, path_json, trip_index)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, o := range orders {
		cargo, err := marshalJSON(cargoOrEmpty(o.Cargo))
		if err != nil {
			return err
		}
		outcomes := o.Outcomes
		if outcomes == nil {
			outcomes = []domain.TripOutcome{}
		}
		oj, err := marshalJSON(outcomes)
		if err != nil {
			return err
		}
		path, err := marshalJSON(cellsOrEmpty(o.Path))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, q,
			o.ID, i, o.RouteID, o.JobID, o.SourceID, o.TargetID,
			cargo, string(o.State), o.Elapsed, o.OutboundDuration, o.ReturnDuration, o.Delivered, o.Lost, oj,
			boolInt(o.UsesPooledVehicle), o.DispatchedAt, path, o.TripIndex,
		)
		if err != nil {
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}
	}
	return nil
}

// List returns every stored order in dispatch order.
func (r *OrderRepo) List(ctx context.Context, db *sql.DB) ([]domain.TransportOrder, error) {
	const q = `SELECT order_id, route_id, job_id, source_id, target_id, cargo_json, state, elapsed,
outbound_duration, return_duration, delivered, lost, outcomes_json, uses_pooled, dispatched_at,
path_json, trip_index
FROM transport_orders ORDER BY position ASC`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.TransportOrder
	for rows.Next() {
		var o domain.TransportOrder
		var cargo, state, outcomes, path string
		var pooled int64
		if err := rows.Scan(&o.ID, &o.RouteID, &o.JobID, &o.SourceID, &o.TargetID, &cargo, &state, &o.Elapsed,
			&o.OutboundDuration, &o.ReturnDuration, &o.Delivered, &o.Lost, &outcomes, &pooled, &o.DispatchedAt,
			&path, &o.TripIndex); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := unmarshalJSON(cargo, &o.Cargo); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(outcomes, &o.Outcomes); err != nil {
			return nil, err
		}
		if len(o.Outcomes) == 0 {
			o.Outcomes = nil
		}
		if err := unmarshalJSON(path, &o.Path); err != nil {
			return nil, err
		}
		if len(o.Path) == 0 {
			o.Path = nil
		}
		o.State = domain.OrderState(state)
		o.UsesPooledVehicle = pooled != 0
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
