package stopstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"vrp-planner/internal/adapters/planstore"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PLANSTORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PLANSTORE_TEST_DATABASE_URL not set; skipping postgres-backed stopstore tests")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, planstore.InitSchema(context.Background(), db))
	return db
}

func TestPostgresStopStoreCurrentStopsOrdersByID(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	const projectID = "proj-stopstore-stops"
	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM stops WHERE project_id = $1`, projectID)
	})

	_, err := db.ExecContext(ctx, `
		INSERT INTO stops (project_id, stop_id, name, lon, lat, demand, is_depot) VALUES
		($1, 'b', 'B', 1, 1, 3, false),
		($1, 'depot', 'Depot', 0, 0, 0, true),
		($1, 'a', 'A', 2, 2, 4, false)
	`, projectID)
	require.NoError(t, err)

	store := NewPostgresStopStore(db)
	set, err := store.CurrentStops(ctx, projectID)
	require.NoError(t, err)
	require.Len(t, set.Stops, 3)
	require.Equal(t, []string{"a", "b", "depot"}, []string{set.Stops[0].StopID, set.Stops[1].StopID, set.Stops[2].StopID})

	depot, ok := set.Depot()
	require.True(t, ok)
	require.Equal(t, "depot", depot.StopID)
}

func TestPostgresStopStoreCurrentMatrixRoundTrips(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	const projectID = "proj-stopstore-matrix"
	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM matrix_snapshots WHERE project_id = $1`, projectID)
	})

	timeMatrix := [][]float64{{0, 10}, {10, 0}}
	distMatrix := [][]float64{{0, 100}, {100, 0}}
	timeJSON, _ := json.Marshal(timeMatrix)
	distJSON, _ := json.Marshal(distMatrix)

	_, err := db.ExecContext(ctx, `
		INSERT INTO matrix_snapshots (project_id, hash, time_matrix, distance_matrix) VALUES ($1, $2, $3, $4)
	`, projectID, "hash-1", timeJSON, distJSON)
	require.NoError(t, err)

	store := NewPostgresStopStore(db)
	got, err := store.CurrentMatrix(ctx, projectID)
	require.NoError(t, err)
	require.Equal(t, "hash-1", got.Hash)
	require.Equal(t, timeMatrix, got.Time)
	require.Equal(t, distMatrix, got.Distance)
}
