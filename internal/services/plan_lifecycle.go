// Package services orchestrates the core modules — optimizer, materializer,
// plan store, fingerprint cache — into the operations spec.md §6 exposes,
// the way the teacher's plan_deliveries.go orchestrates repository,
// assignment, and distance-provider calls into a single PlanDeliveries
// entry point.
package services

import (
	"context"
	"fmt"
	"time"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/materializer"
	"vrp-planner/internal/optimizer"
	"vrp-planner/internal/ports"
)

// PlanLifecycle wires the ports a project-level optimize/materialize
// request needs. All fields are required except Cache, which is an
// optional cross-project fingerprint cache (nil disables it).
type PlanLifecycle struct {
	Stops       ports.StopStore
	Matrix      ports.MatrixStore
	PlanStore   ports.PlanStore
	Provider    ports.DirectionsProvider
	Cache       ports.FingerprintCache
	MaxInFlight int
	Timeouts    materializer.Timeouts
}

// OptimizeRequest is the §6 "Optimize" operation's input.
type OptimizeRequest struct {
	// StopsSnapshotHash, when set, must match the project's current matrix
	// snapshot hash (empty skips the check); a mismatch means the caller planned against stops the matrix no
	// longer reflects, surfaced as StaleMatrix rather than silently solving
	// against inconsistent data.
	StopsSnapshotHash string
	VehicleCount      int
	Capacity          int
	Objective         domain.ObjectiveSpec
	Mode              domain.RouteMode
	TimeBudgetSeconds int
}

// Optimize runs the constrained search (§4.1) against the project's current
// stop set and matrix snapshot and persists the result as the project's
// optimization output.
func (l *PlanLifecycle) Optimize(ctx context.Context, projectID string, req OptimizeRequest) (domain.OrderedPlan, error) {
	stops, err := l.Stops.CurrentStops(ctx, projectID)
	if err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("optimize: load stops: %w", err)
	}
	matrix, err := l.Matrix.CurrentMatrix(ctx, projectID)
	if err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("optimize: load matrix: %w", err)
	}
	if req.StopsSnapshotHash != "" && req.StopsSnapshotHash != matrix.Hash {
		return domain.OrderedPlan{}, fmt.Errorf("optimize: %w: caller's stops-snapshot hash %q does not match current matrix hash %q",
			apperr.ErrStaleMatrix, req.StopsSnapshotHash, matrix.Hash)
	}

	plan, err := optimizer.Solve(optimizer.Request{
		Ctx:          ctx,
		Stops:        stops,
		Matrix:       matrix,
		VehicleCount: req.VehicleCount,
		Capacity:     req.Capacity,
		Mode:         req.Mode,
		Objective:    req.Objective,
		TimeBudget:   time.Duration(req.TimeBudgetSeconds) * time.Second,
	})
	if err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("optimize: %w", err)
	}

	if err := l.PlanStore.SaveOptimizationOutput(ctx, projectID, plan); err != nil {
		return domain.OrderedPlan{}, fmt.Errorf("optimize: save output: %w", err)
	}
	return plan, nil
}

// MaterializeBaseline runs §4.2 over the project's saved optimization
// output and writes the resulting artifact as the baseline (§4.3).
func (l *PlanLifecycle) MaterializeBaseline(ctx context.Context, projectID string, params domain.MaterializationParams) (domain.PlanArtifact, error) {
	plan, err := l.PlanStore.LoadOptimizationOutput(ctx, projectID)
	if err != nil {
		return domain.PlanArtifact{}, fmt.Errorf("materialize baseline: load optimization output: %w", err)
	}
	stops, err := l.Stops.CurrentStops(ctx, projectID)
	if err != nil {
		return domain.PlanArtifact{}, fmt.Errorf("materialize baseline: load stops: %w", err)
	}
	matrix, err := l.Matrix.CurrentMatrix(ctx, projectID)
	if err != nil {
		return domain.PlanArtifact{}, fmt.Errorf("materialize baseline: load matrix: %w", err)
	}

	artifact, matErr := materializer.MaterializeAllCached(ctx, l.Provider, l.Cache, stops, plan, matrix.Hash, params, l.MaxInFlight, l.Timeouts)
	if saveErr := l.PlanStore.SaveArtifact(ctx, projectID, domain.BaselineScenarioID, artifact); saveErr != nil {
		return artifact, fmt.Errorf("materialize baseline: save artifact: %w", saveErr)
	}
	if matErr != nil {
		return artifact, fmt.Errorf("materialize baseline: %w", matErr)
	}
	return artifact, nil
}
