package ports

import (
	"context"

	"vrp-planner/internal/domain"
)

// PlanStore persists optimization output, the baseline materialized
// artifact, and the sibling set of edit scenarios for a project (§4.3).
//
// Writes to a single scenario are serialized; reads of distinct scenarios
// may proceed concurrently (§4.3 concurrency discipline). Implementations
// must provide that guarantee internally (e.g. per-scenario row locking).
type PlanStore interface {
	SaveOptimizationOutput(ctx context.Context, projectID string, plan domain.OrderedPlan) error
	LoadOptimizationOutput(ctx context.Context, projectID string) (domain.OrderedPlan, error)

	// SaveArtifact writes the materialized artifact for a scenario.
	// scenarioID == domain.BaselineScenarioID denotes the baseline.
	SaveArtifact(ctx context.Context, projectID, scenarioID string, artifact domain.PlanArtifact) error
	LoadArtifact(ctx context.Context, projectID, scenarioID string) (domain.PlanArtifact, error)

	// ListScenarios returns every explicit scenario id for a project
	// (baseline excluded; it is implicit).
	ListScenarios(ctx context.Context, projectID string) ([]string, error)

	// CreateScenario creates scenarioID as a deep copy of sourceScenarioID's
	// edit plan and materialized artifact. sourceScenarioID ==
	// domain.BaselineScenarioID copies from the baseline.
	CreateScenario(ctx context.Context, projectID, scenarioID, sourceScenarioID string) error
	DeleteScenario(ctx context.Context, projectID, scenarioID string) error

	SaveEditPlan(ctx context.Context, projectID, scenarioID string, plan domain.EditPlan) error
	LoadEditPlan(ctx context.Context, projectID, scenarioID string) (domain.EditPlan, error)

	// InvalidateMaterializations clears route_geometry, cumulative_*, and
	// totals for the baseline and every scenario's artifact, keeping only
	// the tabular order (§4.3: triggered by a stop-set mutation).
	InvalidateMaterializations(ctx context.Context, projectID string) error

	// SetStopOverride records a per-scenario coordinate edit (§4.5). It never
	// touches the baseline's stop set.
	SetStopOverride(ctx context.Context, projectID, scenarioID, stopID string, coord domain.Coordinates) error
	// ScenarioStopOverrides returns every coordinate override recorded for a
	// scenario, keyed by stop id.
	ScenarioStopOverrides(ctx context.Context, projectID, scenarioID string) (map[string]domain.Coordinates, error)
}
