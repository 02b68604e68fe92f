package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// JobRepo handles persistence for multi-trip jobs.
type JobRepo struct {
	Dialect Dialect
}

// ReplaceAllTx deletes every stored job and inserts jobs in order.
func (r *JobRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, jobs []domain.MultiTripJob) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM transport_jobs`); err != nil {
		return fmt.Errorf("clear jobs: %w", err)
	}
	q := r.Dialect.Rebind(`INSERT INTO transport_jobs (job_id, position, route_id, source_id, cargo_json,
vehicle_capacity, vehicles_assigned, trips_needed, trips_dispatched, trips_completed,
vehicles_in_transit, delivered, lost, totals_json, correlation_id, state, created_at, requeued_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, j := range jobs {
		cargo, err := marshalJSON(cargoOrEmpty(j.Cargo))
		if err != nil {
			return err
		}
		totals := j.Totals
		if totals == nil {
			totals = map[string]domain.ResourceTotals{}
		}
		tj, err := marshalJSON(totals)
		if err != nil {
			return err
		}
		requeued := j.RequeuedTrips
		if requeued == nil {
			requeued = []int{}
		}
		rq, err := marshalJSON(requeued)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, q,
			j.ID, i, j.RouteID, j.SourceID, cargo,
			j.VehicleCapacity, j.VehiclesAssigned, j.TripsNeeded, j.TripsDispatched, j.TripsCompleted,
			j.VehiclesInTransit, j.Delivered, j.Lost, tj, j.CorrelationID, string(j.State), j.CreatedAt, rq,
		)
		if err != nil {
			return fmt.Errorf("insert job %s: %w", j.ID, err)
		}
	}
	return nil
}

// List returns every stored job in creation order.
func (r *JobRepo) List(ctx context.Context, db *sql.DB) ([]domain.MultiTripJob, error) {
	const q = `SELECT job_id, route_id, source_id, cargo_json, vehicle_capacity, vehicles_assigned,
trips_needed, trips_dispatched, trips_completed, vehicles_in_transit, delivered, lost,
totals_json, correlation_id, state, created_at, requeued_json
FROM transport_jobs ORDER BY position ASC`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.MultiTripJob
	for rows.Next() {
		var j domain.MultiTripJob
		var cargo, totals, state, requeued string
		if err := rows.Scan(&j.ID, &j.RouteID, &j.SourceID, &cargo, &j.VehicleCapacity, &j.VehiclesAssigned,
			&j.TripsNeeded, &j.TripsDispatched, &j.TripsCompleted, &j.VehiclesInTransit, &j.Delivered, &j.Lost,
			&totals, &j.CorrelationID, &state, &j.CreatedAt, &requeued); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if err := unmarshalJSON(cargo, &j.Cargo); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(totals, &j.Totals); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(requeued, &j.RequeuedTrips); err != nil {
			return nil, err
		}
		if len(j.RequeuedTrips) == 0 {
			j.RequeuedTrips = nil
		}
		j.State = domain.JobState(state)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
