// Package store persists the logistics world to SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/c74oyo/overland-logistics/internal/domain"
)

// Dialect selects the placeholder style of a backend.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Rebind rewrites ? placeholders into $1, $2, ... for Postgres.
func (d Dialect) Rebind(q string) string {
	if d != Postgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// schemaV1 defines the database schema. It only uses types both backends
// accept.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS road_segments (
	x           BIGINT NOT NULL,
	y           BIGINT NOT NULL,
	road_type   TEXT NOT NULL,
	durability  DOUBLE PRECISION NOT NULL DEFAULT 100,
	transported DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (x, y)
);

CREATE TABLE IF NOT EXISTS trade_routes (
	route_id          TEXT PRIMARY KEY,
	position          BIGINT NOT NULL,
	name              TEXT NOT NULL DEFAULT '',
	source_id         TEXT NOT NULL,
	target_id         TEXT NOT NULL,
	faction_id        TEXT NOT NULL DEFAULT '',
	source_area_json  TEXT NOT NULL,
	target_area_json  TEXT NOT NULL,
	path_json         TEXT NOT NULL DEFAULT '[]',
	cargo_json        TEXT NOT NULL DEFAULT '[]',
	valid             BIGINT NOT NULL DEFAULT 0,
	active            BIGINT NOT NULL DEFAULT 1,
	auto_dispatch     BIGINT NOT NULL DEFAULT 0,
	dispatch_interval DOUBLE PRECISION NOT NULL DEFAULT 0,
	last_dispatch     DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transport_jobs (
	job_id              TEXT PRIMARY KEY,
	position            BIGINT NOT NULL,
	route_id            TEXT NOT NULL,
	source_id           TEXT NOT NULL,
	cargo_json          TEXT NOT NULL DEFAULT '[]',
	vehicle_capacity    BIGINT NOT NULL,
	vehicles_assigned   BIGINT NOT NULL,
	trips_needed        BIGINT NOT NULL,
	trips_dispatched    BIGINT NOT NULL DEFAULT 0,
	trips_completed     BIGINT NOT NULL DEFAULT 0,
	vehicles_in_transit BIGINT NOT NULL DEFAULT 0,
	delivered           BIGINT NOT NULL DEFAULT 0,
	lost                BIGINT NOT NULL DEFAULT 0,
	totals_json         TEXT NOT NULL DEFAULT '{}',
	correlation_id      TEXT NOT NULL DEFAULT '',
	state               TEXT NOT NULL,
	created_at          DOUBLE PRECISION NOT NULL DEFAULT 0,
	requeued_json       TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_jobs_route ON transport_jobs(route_id);

CREATE TABLE IF NOT EXISTS transport_orders (
	order_id          TEXT PRIMARY KEY,
	position          BIGINT NOT NULL,
	route_id          TEXT NOT NULL,
	job_id            TEXT NOT NULL DEFAULT '',
	source_id         TEXT NOT NULL,
	target_id         TEXT NOT NULL,
	cargo_json        TEXT NOT NULL DEFAULT '[]',
	state             TEXT NOT NULL,
	elapsed           DOUBLE PRECISION NOT NULL DEFAULT 0,
	outbound_duration DOUBLE PRECISION NOT NULL DEFAULT 0,
	return_duration   DOUBLE PRECISION NOT NULL DEFAULT 0,
	delivered         BIGINT NOT NULL DEFAULT 0,
	lost              BIGINT NOT NULL DEFAULT 0,
	outcomes_json     TEXT NOT NULL DEFAULT '[]',
	uses_pooled       BIGINT NOT NULL DEFAULT 0,
	dispatched_at     DOUBLE PRECISION NOT NULL DEFAULT 0,
	path_json         TEXT NOT NULL DEFAULT '[]',
	trip_index        BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_orders_route ON transport_orders(route_id);

CREATE TABLE IF NOT EXISTS fleet_pools (
	source_id TEXT PRIMARY KEY,
	total     BIGINT NOT NULL,
	available BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS transport_events (
	event_id       TEXT PRIMARY KEY,
	seq            BIGINT NOT NULL UNIQUE,
	kind           TEXT NOT NULL,
	sim_time       DOUBLE PRECISION NOT NULL,
	route_id       TEXT NOT NULL DEFAULT '',
	job_id         TEXT NOT NULL DEFAULT '',
	order_id       TEXT NOT NULL DEFAULT '',
	resource_id    TEXT NOT NULL DEFAULT '',
	delivered      BIGINT NOT NULL DEFAULT 0,
	lost           BIGINT NOT NULL DEFAULT 0,
	correlation_id TEXT NOT NULL DEFAULT '',
	cells_json     TEXT NOT NULL DEFAULT '[]',
	created_at     BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_job ON transport_events(job_id);

CREATE TABLE IF NOT EXISTS world_meta (
	meta_key   TEXT PRIMARY KEY,
	meta_value TEXT NOT NULL
);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the V1 schema migration.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreInit.Code, "open database", err)
	}

	// Limit connections to 1 for SQLite (WAL allows concurrent reads but single writer).
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, domain.WrapEngineError(domain.ErrStoreInit.Code, "open database", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

// NewPostgresDB connects to Postgres through pgx and runs the migration.
func NewPostgresDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, domain.WrapEngineError(domain.ErrStoreInit.Code, "open postgres database", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, domain.WrapEngineError(domain.ErrStoreInit.Code, "verify postgres connection", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// Open opens the database for a driver name: "sqlite" takes a file path,
// "pgx" a Postgres URL.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	switch driver {
	case "sqlite":
		db, err := NewDB(dsn)
		return db, SQLite, err
	case "pgx":
		db, err := NewPostgresDB(dsn)
		return db, Postgres, err
	}
	return nil, SQLite, domain.Detail(domain.ErrUnknownDriver, "%q", driver)
}

// migrate runs the schema one statement at a time so both drivers accept it.
func migrate(db *sql.DB) error {
	ctx := context.Background()
	for _, stmt := range strings.Split(schemaV1, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return domain.WrapEngineError(domain.ErrSchemaMigration.Code, domain.ErrSchemaMigration.Message, err)
		}
	}
	return nil
}
