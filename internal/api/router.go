// Package api wires HTTP handlers with their dependencies, the way the
// teacher's router.go composes PackageHandler/PlanHandler behind one
// http.Handler — generalized here to Fiber's fiber.Router since the
// project/scenario path hierarchy needs real route params, not manual
// ServeMux string splitting.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"vrp-planner/internal/api/handlers"
	"vrp-planner/internal/ports"
	"vrp-planner/internal/services"
)

// Deps bundles everything the router needs to construct handlers. Handlers
// themselves stay unaware of concrete adapters.
type Deps struct {
	PlanStore ports.PlanStore
	Lifecycle *services.PlanLifecycle
	EditDelta *services.EditDeltaEngine
	Editor    *services.ScenarioEditor
}

func NewRouter(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vrp-planner",
		ErrorHandler: defaultErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestID)
	app.Use(loggingMiddleware)

	planHandler := &handlers.PlanHandler{Lifecycle: deps.Lifecycle}
	scenarioHandler := &handlers.ScenarioHandler{
		PlanStore: deps.PlanStore,
		EditDelta: deps.EditDelta,
		Editor:    deps.Editor,
	}

	app.Get("/health", handlers.Health)

	projects := app.Group("/projects/:projectID")
	projects.Post("/optimize", planHandler.Optimize)
	projects.Post("/materialize", planHandler.MaterializeBaseline)

	scenarios := projects.Group("/scenarios")
	scenarios.Get("/", scenarioHandler.List)
	scenarios.Post("/", scenarioHandler.Create)
	scenarios.Delete("/:scenarioID", scenarioHandler.Delete)
	scenarios.Get("/:scenarioID/artifact", scenarioHandler.Artifact)
	scenarios.Post("/:scenarioID/reload", scenarioHandler.Reload)
	scenarios.Put("/:scenarioID/timeline", scenarioHandler.ReorderTimeline)
	scenarios.Put("/:scenarioID/stops", scenarioHandler.UpdateStopLocation)

	return app
}

// defaultErrorHandler catches panics/framework-level errors that never
// reached a handler's own writeError call (e.g. body size limit, route
// matching failures).
func defaultErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
