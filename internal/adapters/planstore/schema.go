package planstore

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates the Postgres tables backing PlanStore, grounded on the
// teacher's InitSchema (sqlite_init.go) shape adapted to Postgres DDL:
// JSONB columns for artifacts and ordered plans, composite primary keys
// matching the teacher's distance_cache/geocode_cache discipline.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("init schema: db is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			project_id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS optimization_outputs (
			project_id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			objective_used TEXT NOT NULL,
			fallback_used BOOLEAN NOT NULL,
			runs JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS scenarios (
			project_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (project_id, scenario_id)
		);`,
		`CREATE TABLE IF NOT EXISTS plan_artifacts (
			project_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL DEFAULT '',
			matrix_hash TEXT NOT NULL,
			params JSONB NOT NULL,
			vehicles JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (project_id, scenario_id)
		);`,
		`CREATE TABLE IF NOT EXISTS edit_plans (
			project_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL DEFAULT '',
			vehicle_id TEXT NOT NULL,
			stop_order INTEGER NOT NULL,
			stop_id TEXT NOT NULL,
			PRIMARY KEY (project_id, scenario_id, vehicle_id, stop_order)
		);`,
		`CREATE TABLE IF NOT EXISTS stops (
			project_id TEXT NOT NULL,
			stop_id TEXT NOT NULL,
			name TEXT NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			demand INTEGER NOT NULL DEFAULT 0,
			is_depot BOOLEAN NOT NULL DEFAULT false,
			PRIMARY KEY (project_id, stop_id)
		);`,
		`CREATE TABLE IF NOT EXISTS matrix_snapshots (
			project_id TEXT PRIMARY KEY,
			hash TEXT NOT NULL,
			time_matrix JSONB NOT NULL,
			distance_matrix JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		// scenario_stop_overrides holds per-scenario coordinate edits made via
		// the stop-location update hook (spec §4.5); the baseline never has
		// rows here, since moving a stop only affects the scenario it was
		// moved in.
		`CREATE TABLE IF NOT EXISTS scenario_stop_overrides (
			project_id TEXT NOT NULL,
			scenario_id TEXT NOT NULL,
			stop_id TEXT NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (project_id, scenario_id, stop_id)
		);`,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}
	return nil
}
