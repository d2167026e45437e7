package services

import (
	"context"
	"fmt"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

// ScenarioEditor exposes the two §6 operations that mutate a scenario's
// tabular edit plan or stop overrides without touching the directions
// provider: reordering a timeline and moving a stop's coordinates. Neither
// materializes anything — callers run the edit-delta engine's Reload
// afterward when they want the artifact to reflect the change.
type ScenarioEditor struct {
	PlanStore ports.PlanStore
}

// ReorderTimeline overwrites a scenario's tabular edit plan with a new
// vehicle/stop-order assignment (§6 "Persist timeline reorder"). It never
// calls the directions provider: only the table changes, so the scenario's
// cached artifact is left untouched until the caller reloads it.
func (e *ScenarioEditor) ReorderTimeline(ctx context.Context, projectID, scenarioID string, plan domain.EditPlan) error {
	if scenarioID == domain.BaselineScenarioID {
		return fmt.Errorf("reorder timeline: %w: the baseline has no editable timeline", apperr.ErrBadInput)
	}
	if err := e.PlanStore.SaveEditPlan(ctx, projectID, scenarioID, plan); err != nil {
		return fmt.Errorf("reorder timeline: %w", err)
	}
	return nil
}

// UpdateStopLocation records a coordinate override scoped to one scenario
// (§4.5): the stop's location changes for that scenario's own materialization
// going forward, but the baseline and every other scenario are unaffected.
// Like ReorderTimeline, this never calls the provider; the caller reloads
// the scenario afterward to re-materialize against the new coordinates.
func (e *ScenarioEditor) UpdateStopLocation(ctx context.Context, projectID, scenarioID, stopID string, coord domain.Coordinates) error {
	if scenarioID == domain.BaselineScenarioID {
		return fmt.Errorf("update stop location: %w: the baseline stop set cannot be overridden per-scenario", apperr.ErrBadInput)
	}
	if err := e.PlanStore.SetStopOverride(ctx, projectID, scenarioID, stopID, coord); err != nil {
		return fmt.Errorf("update stop location: %w", err)
	}
	return nil
}
