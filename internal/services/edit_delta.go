package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/materializer"
	"vrp-planner/internal/ports"
)

// EditDeltaStats is the §4.4 "Reload" operation's result.
type EditDeltaStats struct {
	Regenerated      int
	Reused           int
	Deleted          int
	Failed           int
	FailedVehicleIDs []string
}

// EditDeltaEngine re-materializes an edit scenario with minimum external
// calls by reusing cached per-vehicle results whose fingerprint did not
// change (§4.4), grounded on the teacher's dual-cache-check pattern in
// ors_distance_provider.go::GetDistances: check cache, compute the miss
// list, fetch only misses, write back.
type EditDeltaEngine struct {
	Stops       ports.StopStore
	PlanStore   ports.PlanStore
	Provider    ports.DirectionsProvider
	Cache       ports.FingerprintCache
	MaxInFlight int
	Timeouts    materializer.Timeouts
}

// Reload runs the edit-delta algorithm for one (project, scenario) pair
// under the given materialization parameters.
func (e *EditDeltaEngine) Reload(ctx context.Context, projectID, scenarioID string, params domain.MaterializationParams) (EditDeltaStats, error) {
	var stats EditDeltaStats

	stopSet, err := e.Stops.CurrentStops(ctx, projectID)
	if err != nil {
		return stats, fmt.Errorf("edit delta: load stops: %w", err)
	}
	depot, ok := stopSet.Depot()
	if !ok {
		return stats, fmt.Errorf("edit delta: %w: project %q stop set has no depot", apperr.ErrBadInput, projectID)
	}
	stopsByID := stopSet.ByID()

	overrides, err := e.PlanStore.ScenarioStopOverrides(ctx, projectID, scenarioID)
	if err != nil {
		return stats, fmt.Errorf("edit delta: load stop overrides: %w", err)
	}
	for id, coord := range overrides {
		if st, ok := stopsByID[id]; ok {
			st.Coordinates = coord
			stopsByID[id] = st
		}
	}

	editPlan, err := e.PlanStore.LoadEditPlan(ctx, projectID, scenarioID)
	if err != nil {
		return stats, fmt.Errorf("edit delta: load edit plan: %w", err)
	}

	plan, err := e.PlanStore.LoadOptimizationOutput(ctx, projectID)
	if err != nil {
		return stats, fmt.Errorf("edit delta: load optimization output: %w", err)
	}

	desiredRuns, vehicleIDs, err := buildDesiredRuns(editPlan, stopsByID)
	if err != nil {
		return stats, fmt.Errorf("edit delta: %w", err)
	}

	cachedArtifact, err := e.PlanStore.LoadArtifact(ctx, projectID, scenarioID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return stats, fmt.Errorf("edit delta: load cached artifact: %w", err)
		}
		cachedArtifact = domain.PlanArtifact{}
	}

	for vehicleID := range cachedArtifact.Vehicles {
		if _, stillWanted := desiredRuns[vehicleID]; !stillWanted {
			stats.Deleted++
		}
	}

	vehicles := make(map[string]domain.VehicleRoute, len(desiredRuns))
	var toRun []domain.VehicleRun

	for _, vehicleID := range vehicleIDs {
		run := desiredRuns[vehicleID]
		if len(run.StopIDs) == 0 {
			continue // depot-only vehicle is excluded from materialization (§8 property 11)
		}

		desiredFP := materializer.BuildFingerprint(depot, run, stopsByID, plan.Mode, params)
		if cached, ok := cachedArtifact.Vehicles[vehicleID]; ok {
			cachedFP := materializer.FingerprintFromRoute(cached, cachedArtifact.Params)
			if cachedFP.Equal(desiredFP) {
				vehicles[vehicleID] = cached
				stats.Reused++
				continue
			}
		}
		toRun = append(toRun, run)
	}

	maxInFlight := e.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4 // spec §5 default
	}
	runPlan := domain.OrderedPlan{Mode: plan.Mode, Runs: toRun}
	artifact, matErr := materializer.MaterializeAllCached(ctx, e.Provider, e.Cache, stopSetWithOverrides(stopSet, stopsByID), runPlan, cachedArtifact.MatrixHash, params, maxInFlight, e.Timeouts)
	for id, route := range artifact.Vehicles {
		vehicles[id] = route
		stats.Regenerated++
		if route.Status != domain.StatusOK {
			stats.Failed++
			stats.FailedVehicleIDs = append(stats.FailedVehicleIDs, id)
		}
	}

	final := domain.PlanArtifact{MatrixHash: cachedArtifact.MatrixHash, Params: params, Vehicles: vehicles}
	if err := e.PlanStore.SaveArtifact(ctx, projectID, scenarioID, final); err != nil {
		return stats, fmt.Errorf("edit delta: save artifact: %w", err)
	}

	if matErr != nil {
		var partial *apperr.PartialMaterializationError
		if errors.As(matErr, &partial) {
			return stats, apperr.NewPartialMaterialization(partial.FailedVehicleIDs)
		}
		return stats, fmt.Errorf("edit delta: %w", matErr)
	}
	return stats, nil
}

// buildDesiredRuns joins the scenario's tabular edit plan against the
// current (override-applied) stop set, failing with StaleReference if any
// row names a stop id that no longer exists (§4.4 step 1).
func buildDesiredRuns(editPlan domain.EditPlan, stopsByID map[string]domain.Stop) (map[string]domain.VehicleRun, []string, error) {
	byVehicle := editPlan.ByVehicle()

	vehicleIDs := make([]string, 0, len(byVehicle))
	for id := range byVehicle {
		vehicleIDs = append(vehicleIDs, id)
	}
	sort.Strings(vehicleIDs)

	runs := make(map[string]domain.VehicleRun, len(byVehicle))
	for _, vehicleID := range vehicleIDs {
		rows := byVehicle[vehicleID]
		run := domain.VehicleRun{VehicleID: vehicleID}
		load := 0
		for _, row := range rows {
			st, ok := stopsByID[row.StopID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: vehicle %q references stop %q, which no longer exists", apperr.ErrStaleReference, vehicleID, row.StopID)
			}
			run.StopIDs = append(run.StopIDs, st.StopID)
			load += st.Demand
			run.CumulativeLoad = append(run.CumulativeLoad, load)
		}
		run.RouteLoad = load
		runs[vehicleID] = run
	}
	return runs, vehicleIDs, nil
}

// stopSetWithOverrides rebuilds a StopSet from an override-applied id→Stop
// map, preserving the original stop ordering where possible.
func stopSetWithOverrides(original domain.StopSet, overridden map[string]domain.Stop) domain.StopSet {
	out := domain.StopSet{Stops: make([]domain.Stop, 0, len(original.Stops))}
	for _, st := range original.Stops {
		if ov, ok := overridden[st.StopID]; ok {
			out.Stops = append(out.Stops, ov)
			continue
		}
		out.Stops = append(out.Stops, st)
	}
	return out
}
