// Package stopstore implements the read-only StopStore and MatrixStore
// ports against Postgres, grounded on the teacher's
// sqlite_package_repository.go query shape. Matrix acquisition itself
// stays out of scope (spec §2 item 1): this adapter only reads a snapshot
// some external process has already written to the matrix_snapshots table.
package stopstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"vrp-planner/internal/domain"
	"vrp-planner/internal/platform/obs"
)

type PostgresStopStore struct {
	DB *sql.DB
}

func NewPostgresStopStore(db *sql.DB) *PostgresStopStore {
	return &PostgresStopStore{DB: db}
}

func (s *PostgresStopStore) CurrentStops(ctx context.Context, projectID string) (_ domain.StopSet, err error) {
	defer obs.Time(ctx, "stopstore.CurrentStops")(&err)

	rows, err := s.DB.QueryContext(ctx, `
		SELECT stop_id, name, lon, lat, demand, is_depot
		FROM stops WHERE project_id = $1
		ORDER BY stop_id
	`, projectID)
	if err != nil {
		return domain.StopSet{}, fmt.Errorf("current stops: query: %w", err)
	}
	defer rows.Close()

	var set domain.StopSet
	for rows.Next() {
		var st domain.Stop
		if err := rows.Scan(&st.StopID, &st.Name, &st.Coordinates.Lon, &st.Coordinates.Lat, &st.Demand, &st.IsDepot); err != nil {
			return domain.StopSet{}, fmt.Errorf("current stops: scan: %w", err)
		}
		set.Stops = append(set.Stops, st)
	}
	return set, rows.Err()
}

func (s *PostgresStopStore) CurrentMatrix(ctx context.Context, projectID string) (_ domain.MatrixPair, err error) {
	defer obs.Time(ctx, "stopstore.CurrentMatrix")(&err)

	var hash string
	var timeJSON, distJSON []byte
	row := s.DB.QueryRowContext(ctx, `
		SELECT hash, time_matrix, distance_matrix FROM matrix_snapshots WHERE project_id = $1
	`, projectID)
	if err := row.Scan(&hash, &timeJSON, &distJSON); err != nil {
		if err == sql.ErrNoRows {
			return domain.MatrixPair{}, fmt.Errorf("current matrix: project %q has no matrix snapshot", projectID)
		}
		return domain.MatrixPair{}, fmt.Errorf("current matrix: query: %w", err)
	}

	var timeMatrix, distMatrix [][]float64
	if err := json.Unmarshal(timeJSON, &timeMatrix); err != nil {
		return domain.MatrixPair{}, fmt.Errorf("current matrix: unmarshal time matrix: %w", err)
	}
	if err := json.Unmarshal(distJSON, &distMatrix); err != nil {
		return domain.MatrixPair{}, fmt.Errorf("current matrix: unmarshal distance matrix: %w", err)
	}

	return domain.MatrixPair{Time: timeMatrix, Distance: distMatrix, Hash: hash}, nil
}
