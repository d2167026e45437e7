// Package planstore implements the PlanStore port against Postgres,
// grounded on the teacher's SQL cache adapters (sql_distance_cache.go) for
// query/transaction style, generalized from a simple key-value cache table
// to the plan/scenario/edit-plan schema spec §4.3 describes.
package planstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/platform/obs"
)

type PostgresPlanStore struct {
	DB *sql.DB
}

func NewPostgresPlanStore(db *sql.DB) *PostgresPlanStore {
	return &PostgresPlanStore{DB: db}
}

// lockScenario takes a transaction-scoped advisory lock keyed on
// project+scenario so concurrent writers to the same scenario serialize
// while writes to distinct scenarios proceed independently (spec §4.3).
func lockScenario(ctx context.Context, tx *sql.Tx, projectID, scenarioID string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, projectID+"|"+scenarioID)
	if err != nil {
		return fmt.Errorf("lock scenario: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) SaveOptimizationOutput(ctx context.Context, projectID string, plan domain.OrderedPlan) (err error) {
	defer obs.Time(ctx, "planstore.SaveOptimizationOutput")(&err)

	runsJSON, err := json.Marshal(plan.Runs)
	if err != nil {
		return fmt.Errorf("save optimization output: marshal runs: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO optimization_outputs (project_id, mode, objective_used, fallback_used, runs, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (project_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			objective_used = EXCLUDED.objective_used,
			fallback_used = EXCLUDED.fallback_used,
			runs = EXCLUDED.runs,
			updated_at = now()
	`, projectID, string(plan.Mode), string(plan.ObjectiveUsed), plan.FallbackUsed, runsJSON)
	if err != nil {
		return fmt.Errorf("save optimization output: upsert: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) LoadOptimizationOutput(ctx context.Context, projectID string) (_ domain.OrderedPlan, err error) {
	defer obs.Time(ctx, "planstore.LoadOptimizationOutput")(&err)

	var mode, objectiveUsed string
	var fallbackUsed bool
	var runsJSON []byte

	row := s.DB.QueryRowContext(ctx, `
		SELECT mode, objective_used, fallback_used, runs
		FROM optimization_outputs WHERE project_id = $1
	`, projectID)
	if err := row.Scan(&mode, &objectiveUsed, &fallbackUsed, &runsJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.OrderedPlan{}, fmt.Errorf("load optimization output: project %q: %w", projectID, apperr.ErrNotFound)
		}
		return domain.OrderedPlan{}, fmt.Errorf("load optimization output: query: %w", err)
	}

	var runs []domain.VehicleRun
	if err := json.Unmarshal(runsJSON, &runs); err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("load optimization output: unmarshal runs: %w", err)
	}

	return domain.OrderedPlan{
		Mode:          domain.RouteMode(mode),
		Runs:          runs,
		FallbackUsed:  fallbackUsed,
		ObjectiveUsed: domain.Objective(objectiveUsed),
	}, nil
}

func (s *PostgresPlanStore) SaveArtifact(ctx context.Context, projectID, scenarioID string, artifact domain.PlanArtifact) (err error) {
	defer obs.Time(ctx, "planstore.SaveArtifact")(&err)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save artifact: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockScenario(ctx, tx, projectID, scenarioID); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	paramsJSON, err := json.Marshal(artifact.Params)
	if err != nil {
		return fmt.Errorf("save artifact: marshal params: %w", err)
	}
	vehiclesJSON, err := json.Marshal(artifact.Vehicles)
	if err != nil {
		return fmt.Errorf("save artifact: marshal vehicles: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plan_artifacts (project_id, scenario_id, matrix_hash, params, vehicles, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (project_id, scenario_id) DO UPDATE SET
			matrix_hash = EXCLUDED.matrix_hash,
			params = EXCLUDED.params,
			vehicles = EXCLUDED.vehicles,
			updated_at = now()
	`, projectID, scenarioID, artifact.MatrixHash, paramsJSON, vehiclesJSON)
	if err != nil {
		return fmt.Errorf("save artifact: upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save artifact: commit: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) LoadArtifact(ctx context.Context, projectID, scenarioID string) (_ domain.PlanArtifact, err error) {
	defer obs.Time(ctx, "planstore.LoadArtifact")(&err)

	var matrixHash string
	var paramsJSON, vehiclesJSON []byte

	row := s.DB.QueryRowContext(ctx, `
		SELECT matrix_hash, params, vehicles
		FROM plan_artifacts WHERE project_id = $1 AND scenario_id = $2
	`, projectID, scenarioID)
	if err := row.Scan(&matrixHash, &paramsJSON, &vehiclesJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.PlanArtifact{}, fmt.Errorf("load artifact: project %q scenario %q: %w", projectID, scenarioID, apperr.ErrNotFound)
		}
		return domain.PlanArtifact{}, fmt.Errorf("load artifact: query: %w", err)
	}

	var params domain.MaterializationParams
	if err := json.Unmarshal(paramsJSON, &params); err != nil {
		return domain.PlanArtifact{}, fmt.Errorf("load artifact: unmarshal params: %w", err)
	}
	var vehicles map[string]domain.VehicleRoute
	if err := json.Unmarshal(vehiclesJSON, &vehicles); err != nil {
		return domain.PlanArtifact{}, fmt.Errorf("load artifact: unmarshal vehicles: %w", err)
	}

	return domain.PlanArtifact{MatrixHash: matrixHash, Params: params, Vehicles: vehicles}, nil
}

func (s *PostgresPlanStore) ListScenarios(ctx context.Context, projectID string) (_ []string, err error) {
	defer obs.Time(ctx, "planstore.ListScenarios")(&err)

	rows, err := s.DB.QueryContext(ctx, `SELECT scenario_id FROM scenarios WHERE project_id = $1 ORDER BY scenario_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list scenarios: scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresPlanStore) CreateScenario(ctx context.Context, projectID, scenarioID, sourceScenarioID string) (err error) {
	defer obs.Time(ctx, "planstore.CreateScenario")(&err)

	if scenarioID == domain.BaselineScenarioID {
		return fmt.Errorf("create scenario: %q is reserved for the baseline", domain.BaselineScenarioID)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create scenario: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockScenario(ctx, tx, projectID, scenarioID); err != nil {
		return fmt.Errorf("create scenario: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scenarios (project_id, scenario_id) VALUES ($1, $2)
		ON CONFLICT (project_id, scenario_id) DO NOTHING
	`, projectID, scenarioID); err != nil {
		return fmt.Errorf("create scenario: insert scenario row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO edit_plans (project_id, scenario_id, vehicle_id, stop_order, stop_id)
		SELECT $1, $2, vehicle_id, stop_order, stop_id FROM edit_plans
		WHERE project_id = $1 AND scenario_id = $3
		ON CONFLICT (project_id, scenario_id, vehicle_id, stop_order) DO NOTHING
	`, projectID, scenarioID, sourceScenarioID); err != nil {
		return fmt.Errorf("create scenario: copy edit plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO plan_artifacts (project_id, scenario_id, matrix_hash, params, vehicles)
		SELECT $1, $2, matrix_hash, params, vehicles FROM plan_artifacts
		WHERE project_id = $1 AND scenario_id = $3
		ON CONFLICT (project_id, scenario_id) DO UPDATE SET
			matrix_hash = EXCLUDED.matrix_hash, params = EXCLUDED.params, vehicles = EXCLUDED.vehicles, updated_at = now()
	`, projectID, scenarioID, sourceScenarioID); err != nil {
		return fmt.Errorf("create scenario: copy artifact: %w", err)
	}

	if sourceScenarioID != domain.BaselineScenarioID {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO scenario_stop_overrides (project_id, scenario_id, stop_id, lon, lat)
			SELECT $1, $2, stop_id, lon, lat FROM scenario_stop_overrides
			WHERE project_id = $1 AND scenario_id = $3
			ON CONFLICT (project_id, scenario_id, stop_id) DO NOTHING
		`, projectID, scenarioID, sourceScenarioID); err != nil {
			return fmt.Errorf("create scenario: copy stop overrides: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create scenario: commit: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) DeleteScenario(ctx context.Context, projectID, scenarioID string) (err error) {
	defer obs.Time(ctx, "planstore.DeleteScenario")(&err)

	if scenarioID == domain.BaselineScenarioID {
		return fmt.Errorf("delete scenario: the baseline cannot be deleted")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete scenario: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockScenario(ctx, tx, projectID, scenarioID); err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM edit_plans WHERE project_id = $1 AND scenario_id = $2`,
		`DELETE FROM plan_artifacts WHERE project_id = $1 AND scenario_id = $2`,
		`DELETE FROM scenario_stop_overrides WHERE project_id = $1 AND scenario_id = $2`,
		`DELETE FROM scenarios WHERE project_id = $1 AND scenario_id = $2`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, projectID, scenarioID); err != nil {
			return fmt.Errorf("delete scenario: exec %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete scenario: commit: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) SaveEditPlan(ctx context.Context, projectID, scenarioID string, plan domain.EditPlan) (err error) {
	defer obs.Time(ctx, "planstore.SaveEditPlan")(&err)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save edit plan: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := lockScenario(ctx, tx, projectID, scenarioID); err != nil {
		return fmt.Errorf("save edit plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM edit_plans WHERE project_id = $1 AND scenario_id = $2`, projectID, scenarioID); err != nil {
		return fmt.Errorf("save edit plan: clear existing rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edit_plans (project_id, scenario_id, vehicle_id, stop_order, stop_id)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("save edit plan: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range plan.Rows {
		if _, err := stmt.ExecContext(ctx, projectID, scenarioID, row.VehicleID, row.StopOrder, row.StopID); err != nil {
			return fmt.Errorf("save edit plan: insert row vehicle=%q order=%d: %w", row.VehicleID, row.StopOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save edit plan: commit: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) LoadEditPlan(ctx context.Context, projectID, scenarioID string) (_ domain.EditPlan, err error) {
	defer obs.Time(ctx, "planstore.LoadEditPlan")(&err)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT vehicle_id, stop_order, stop_id FROM edit_plans
		WHERE project_id = $1 AND scenario_id = $2
		ORDER BY vehicle_id, stop_order
	`, projectID, scenarioID)
	if err != nil {
		return domain.EditPlan{}, fmt.Errorf("load edit plan: query: %w", err)
	}
	defer rows.Close()

	var plan domain.EditPlan
	for rows.Next() {
		var r domain.EditPlanRow
		if err := rows.Scan(&r.VehicleID, &r.StopOrder, &r.StopID); err != nil {
			return domain.EditPlan{}, fmt.Errorf("load edit plan: scan: %w", err)
		}
		plan.Rows = append(plan.Rows, r)
	}
	return plan, rows.Err()
}

func (s *PostgresPlanStore) SetStopOverride(ctx context.Context, projectID, scenarioID, stopID string, coord domain.Coordinates) (err error) {
	defer obs.Time(ctx, "planstore.SetStopOverride")(&err)

	if scenarioID == domain.BaselineScenarioID {
		return fmt.Errorf("set stop override: the baseline stop set cannot be overridden")
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO scenario_stop_overrides (project_id, scenario_id, stop_id, lon, lat)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, scenario_id, stop_id) DO UPDATE SET
			lon = EXCLUDED.lon, lat = EXCLUDED.lat
	`, projectID, scenarioID, stopID, coord.Lon, coord.Lat)
	if err != nil {
		return fmt.Errorf("set stop override: upsert: %w", err)
	}
	return nil
}

func (s *PostgresPlanStore) ScenarioStopOverrides(ctx context.Context, projectID, scenarioID string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "planstore.ScenarioStopOverrides")(&err)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT stop_id, lon, lat FROM scenario_stop_overrides
		WHERE project_id = $1 AND scenario_id = $2
	`, projectID, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("scenario stop overrides: query: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Coordinates)
	for rows.Next() {
		var stopID string
		var coord domain.Coordinates
		if err := rows.Scan(&stopID, &coord.Lon, &coord.Lat); err != nil {
			return nil, fmt.Errorf("scenario stop overrides: scan: %w", err)
		}
		out[stopID] = coord
	}
	return out, rows.Err()
}

func (s *PostgresPlanStore) InvalidateMaterializations(ctx context.Context, projectID string) (err error) {
	defer obs.Time(ctx, "planstore.InvalidateMaterializations")(&err)

	_, err = s.DB.ExecContext(ctx, `
		UPDATE plan_artifacts
		SET vehicles = '{}'::jsonb, matrix_hash = '', updated_at = now()
		WHERE project_id = $1
	`, projectID)
	if err != nil {
		return fmt.Errorf("invalidate materializations: %w", err)
	}
	return nil
}
