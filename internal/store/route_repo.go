package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// RouteRepo handles persistence for trade routes. position keeps creation
// order across a reload.
type RouteRepo struct {
	Dialect Dialect
}

// ReplaceAllTx deletes every stored route and inserts routes in order.
func (r *RouteRepo) ReplaceAllTx(ctx context.Context, tx *sql.Tx, routes []domain.TradeRoute) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM trade_routes`); err != nil {
		return fmt.Errorf("clear routes: %w", err)
	}
	q := r.Dialect.Rebind(`INSERT INTO trade_routes (route_id, position, name, source_id, target_id, faction_id,
source_area_json, target_area_json, path_json, cargo_json, valid, active, auto_dispatch,
dispatch_interval, last_dispatch)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, rt := range routes {
		src, err := marshalJSON(rt.SourceArea)
		if err != nil {
			return err
		}
		dst, err := marshalJSON(rt.TargetArea)
		if err != nil {
			return err
		}
		path, err := marshalJSON(cellsOrEmpty(rt.Path))
		if err != nil {
			return err
		}
		cargo, err := marshalJSON(cargoOrEmpty(rt.Cargo))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, q,
			rt.ID, i, rt.Name, rt.SourceID, rt.TargetID, rt.FactionID,
			src, dst, path, cargo,
			boolInt(rt.Valid), boolInt(rt.Active), boolInt(rt.AutoDispatch),
			rt.DispatchInterval, rt.LastDispatch,
		)
		if err != nil {
			return fmt.Errorf("insert route %s: %w", rt.ID, err)
		}
	}
	return nil
}

// List returns every stored route in creation order.
func (r *RouteRepo) List(ctx context.Context, db *sql.DB) ([]domain.TradeRoute, error) {
	const q = `SELECT route_id, name, source_id, target_id, faction_id, source_area_json, target_area_json,
path_json, cargo_json, valid, active, auto_dispatch, dispatch_interval, last_dispatch
FROM trade_routes ORDER BY position ASC`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var routes []domain.TradeRoute
	for rows.Next() {
		var rt domain.TradeRoute
		var src, dst, path, cargo string
		var valid, active, auto int64
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.SourceID, &rt.TargetID, &rt.FactionID, &src, &dst,
			&path, &cargo, &valid, &active, &auto, &rt.DispatchInterval, &rt.LastDispatch); err != nil {
			return nil, fmt.Errorf("scan route: %w", err)
		}
		if err := unmarshalJSON(src, &rt.SourceArea); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(dst, &rt.TargetArea); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(path, &rt.Path); err != nil {
			return nil, err
		}
		if err := unmarshalJSON(cargo, &rt.Cargo); err != nil {
			return nil, err
		}
		rt.Valid = valid != 0
		rt.Active = active != 0
		rt.AutoDispatch = auto != 0
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

func cellsOrEmpty(c []domain.Cell) []domain.Cell {
	if c == nil {
		return []domain.Cell{}
	}
	return c
}

func cargoOrEmpty(c []domain.CargoLine) []domain.CargoLine {
	if c == nil {
		return []domain.CargoLine{}
	}
	return c
}
