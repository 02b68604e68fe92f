package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/c74oyo/overland-logistics/internal/domain"
	"github.com/c74oyo/overland-logistics/internal/economy"
)

const (
	metaSimTime  = "sim_time"
	metaEventSeq = "event_seq"
	metaEconomy  = "economy"
)

// WorldStore saves and loads whole world snapshots plus the event log.
type WorldStore struct {
	db       *sql.DB
	segments SegmentRepo
	routes   RouteRepo
	jobs     JobRepo
	orders   OrderRepo
	pools    PoolRepo
	events   EventRepo
	meta     MetaRepo
}

// NewWorldStore wraps an opened database.
func NewWorldStore(db *sql.DB, d Dialect) *WorldStore {
	return &WorldStore{
		db:       db,
		segments: SegmentRepo{Dialect: d},
		routes:   RouteRepo{Dialect: d},
		jobs:     JobRepo{Dialect: d},
		orders:   OrderRepo{Dialect: d},
		pools:    PoolRepo{Dialect: d},
		events:   EventRepo{Dialect: d},
		meta:     MetaRepo{Dialect: d},
	}
}

// DB returns the underlying handle.
func (s *WorldStore) DB() *sql.DB { return s.db }

// Close closes the underlying database.
func (s *WorldStore) Close() error { return s.db.Close() }

// Save replaces the stored world with snap and econ in a single transaction.
func (s *WorldStore) Save(ctx context.Context, snap domain.WorldSnapshot, econ economy.Seed) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "begin save", err)
	}
	defer tx.Rollback()

	if err := s.segments.ReplaceAllTx(ctx, tx, snap.Segments); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}
	if err := s.routes.ReplaceAllTx(ctx, tx, snap.Routes); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}
	if err := s.jobs.ReplaceAllTx(ctx, tx, snap.Jobs); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}
	if err := s.orders.ReplaceAllTx(ctx, tx, snap.Orders); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}
	if err := s.pools.ReplaceAllTx(ctx, tx, snap.Pools); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}

	econJSON, err := marshalJSON(econ)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
	}
	meta := [][2]string{
		{metaSimTime, strconv.FormatFloat(snap.SimTime, 'g', -1, 64)},
		{metaEventSeq, strconv.FormatInt(snap.EventSeq, 10)},
		{metaEconomy, econJSON},
	}
	for _, kv := range meta {
		if err := s.meta.PutTx(ctx, tx, kv[0], kv[1]); err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "commit save", err)
	}
	return nil
}

// Load reads the stored world. found is false when nothing has been saved.
func (s *WorldStore) Load(ctx context.Context) (snap domain.WorldSnapshot, econ economy.Seed, found bool, err error) {
	simTime, ok, err := s.meta.Get(ctx, s.db, metaSimTime)
	if err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if !ok {
		return snap, econ, false, nil
	}
	if snap.SimTime, err = strconv.ParseFloat(simTime, 64); err != nil {
		return snap, econ, false, fmt.Errorf("parse sim time: %w", err)
	}

	seq, _, err := s.meta.Get(ctx, s.db, metaEventSeq)
	if err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if seq != "" {
		if snap.EventSeq, err = strconv.ParseInt(seq, 10, 64); err != nil {
			return snap, econ, false, fmt.Errorf("parse event seq: %w", err)
		}
	}

	econJSON, _, err := s.meta.Get(ctx, s.db, metaEconomy)
	if err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if err := unmarshalJSON(econJSON, &econ); err != nil {
		return snap, econ, false, err
	}

	if snap.Segments, err = s.segments.List(ctx, s.db); err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if snap.Routes, err = s.routes.List(ctx, s.db); err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if snap.Jobs, err = s.jobs.List(ctx, s.db); err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if snap.Orders, err = s.orders.List(ctx, s.db); err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	if snap.Pools, err = s.pools.List(ctx, s.db); err != nil {
		return snap, econ, false, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	return snap, econ, true, nil
}

// AppendEvents writes a tick's events in one transaction.
func (s *WorldStore) AppendEvents(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "begin append", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if err := s.events.AppendTx(ctx, tx, e); err != nil {
			return domain.WrapEngineError(domain.ErrStoreWrite.Code, domain.ErrStoreWrite.Message, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.WrapEngineError(domain.ErrStoreWrite.Code, "commit append", err)
	}
	return nil
}

// EventsSince returns stored events after sinceSeq.
func (s *WorldStore) EventsSince(ctx context.Context, sinceSeq int64, limit int) ([]domain.Event, error) {
	events, err := s.events.ListSince(ctx, s.db, sinceSeq, limit)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreQuery.Code, domain.ErrStoreQuery.Message, err)
	}
	return events, nil
}
