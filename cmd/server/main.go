package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"vrp-planner/internal/adapters/directions"
	"vrp-planner/internal/adapters/fingerprintcache"
	"vrp-planner/internal/adapters/planstore"
	"vrp-planner/internal/adapters/stopstore"
	"vrp-planner/internal/api"
	"vrp-planner/internal/config"
	"vrp-planner/internal/materializer"
	"vrp-planner/internal/platform/db"
	"vrp-planner/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, the directions HTTP provider) behind ports and starts
// the HTTP server, the way the teacher's cmd/server/main.go wires SQLite and
// ORS before calling api.NewRouter.
func main() {
	cfg, err := config.Load(func() error { return godotenv.Load() })
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	ctx := context.Background()
	if err := planstore.InitSchema(ctx, sqlDB); err != nil {
		log.Fatal(err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	provider, err := directions.NewTmapProvider(cfg.DirectionsAPIKey, cfg.DirectionsBaseURL, cfg.DirectionsTimeout)
	if err != nil {
		log.Fatal(err)
	}

	planStore := planstore.NewPostgresPlanStore(sqlDB)
	stopStore := stopstore.NewPostgresStopStore(sqlDB)
	cache := fingerprintcache.NewRedisFingerprintCache(redisClient, 0)

	timeouts := materializer.Timeouts{
		Directions:      cfg.DirectionsTimeout,
		Materialization: cfg.MaterializationTimeout,
	}

	lifecycle := &services.PlanLifecycle{
		Stops:       stopStore,
		Matrix:      stopStore,
		PlanStore:   planStore,
		Provider:    provider,
		Cache:       cache,
		MaxInFlight: cfg.MaxInFlightMaterializations,
		Timeouts:    timeouts,
	}
	editDelta := &services.EditDeltaEngine{
		Stops:       stopStore,
		PlanStore:   planStore,
		Provider:    provider,
		Cache:       cache,
		MaxInFlight: cfg.MaxInFlightMaterializations,
		Timeouts:    timeouts,
	}
	editor := &services.ScenarioEditor{PlanStore: planStore}

	app := api.NewRouter(api.Deps{
		PlanStore: planStore,
		Lifecycle: lifecycle,
		EditDelta: editDelta,
		Editor:    editor,
	})

	log.Printf("Server listening addr=:%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
