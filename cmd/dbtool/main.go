package main

import (
	"context"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"vrp-planner/internal/adapters/planstore"
	"vrp-planner/internal/adapters/stopstore"
	"vrp-planner/internal/platform/db"
)

// dbtool initializes the schema and, when a project id and seed files are
// given, loads a stop set and matrix snapshot for local dev/testing,
// grounded on the teacher's cmd/dbtool/main.go init-then-seed sequence.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	sqlDB, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	log.Println("Initializing database schema...")
	if err := planstore.InitSchema(context.Background(), sqlDB); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	projectID := os.Getenv("SEED_PROJECT_ID")
	if strings.TrimSpace(projectID) == "" {
		return
	}

	if stopsPath := os.Getenv("SEED_STOPS_PATH"); stopsPath != "" {
		log.Printf("Seeding stops for project %q from %s...", projectID, stopsPath)
		if err := stopstore.SeedStopsFromJSON(sqlDB, projectID, stopsPath); err != nil {
			log.Fatalf("seeding stops failed: %v", err)
		}
	}
	if matrixPath := os.Getenv("SEED_MATRIX_PATH"); matrixPath != "" {
		log.Printf("Seeding matrix snapshot for project %q from %s...", projectID, matrixPath)
		if err := stopstore.SeedMatrixFromJSON(sqlDB, projectID, matrixPath); err != nil {
			log.Fatalf("seeding matrix failed: %v", err)
		}
	}
	log.Println("Seeding complete.")
}
