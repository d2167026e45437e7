package stopstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// StopSeed is one row of a stops seed file, grounded on the teacher's
// PackageSeed (sqlite_package_repository.go): a thin JSON shape decoded and
// validated before any database write.
type StopSeed struct {
	StopID  string  `json:"stop_id"`
	Name    string  `json:"name"`
	Lon     float64 `json:"lon"`
	Lat     float64 `json:"lat"`
	Demand  int     `json:"demand"`
	IsDepot bool    `json:"is_depot"`
}

// MatrixSeed is a matrix snapshot seed file's shape.
type MatrixSeed struct {
	Hash           string      `json:"hash"`
	TimeMatrix     [][]float64 `json:"time_matrix"`
	DistanceMatrix [][]float64 `json:"distance_matrix"`
}

// SeedStopsFromJSON loads a project's stop set from a JSON file and upserts
// it, replacing any existing rows for that project. It exists for local
// dev/testing: in production the stops table is populated by whichever
// external process manages the project's stop set (see the package doc).
func SeedStopsFromJSON(db *sql.DB, projectID, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed stops: read %q: %w", jsonPath, err)
	}

	var seeds []StopSeed
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("seed stops: parse json: %w", err)
	}

	depots := 0
	for i, s := range seeds {
		if strings.TrimSpace(s.StopID) == "" {
			return fmt.Errorf("seed stops: item at index %d: stop_id cannot be empty", i)
		}
		if s.IsDepot {
			depots++
		}
	}
	if depots != 1 {
		return fmt.Errorf("seed stops: project %q must have exactly one depot, found %d", projectID, depots)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed stops: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM stops WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("seed stops: clear existing rows: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO stops (project_id, stop_id, name, lon, lat, demand, is_depot)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("seed stops: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range seeds {
		if _, err := stmt.Exec(projectID, s.StopID, s.Name, s.Lon, s.Lat, s.Demand, s.IsDepot); err != nil {
			return fmt.Errorf("seed stops: insert %q: %w", s.StopID, err)
		}
	}

	return tx.Commit()
}

// SeedMatrixFromJSON loads a project's time/distance matrix snapshot from a
// JSON file and replaces any existing snapshot for that project.
func SeedMatrixFromJSON(db *sql.DB, projectID, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed matrix: read %q: %w", jsonPath, err)
	}

	var seed MatrixSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed matrix: parse json: %w", err)
	}
	if strings.TrimSpace(seed.Hash) == "" {
		return fmt.Errorf("seed matrix: hash cannot be empty")
	}

	timeJSON, err := json.Marshal(seed.TimeMatrix)
	if err != nil {
		return fmt.Errorf("seed matrix: encode time matrix: %w", err)
	}
	distJSON, err := json.Marshal(seed.DistanceMatrix)
	if err != nil {
		return fmt.Errorf("seed matrix: encode distance matrix: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO matrix_snapshots (project_id, hash, time_matrix, distance_matrix, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (project_id) DO UPDATE SET
			hash = EXCLUDED.hash, time_matrix = EXCLUDED.time_matrix,
			distance_matrix = EXCLUDED.distance_matrix, updated_at = now()
	`, projectID, seed.Hash, timeJSON, distJSON)
	if err != nil {
		return fmt.Errorf("seed matrix: upsert: %w", err)
	}
	return nil
}
