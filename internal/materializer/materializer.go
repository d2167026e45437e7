package materializer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"vrp-planner/internal/apperr"
	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

// defaultMaxInFlight bounds concurrent directions-provider calls when the
// caller does not configure one (spec §5 default), the same bounded-fan-out
// shape as the teacher's PlanDeliveries pairwise-distance dispatch
// (plan_deliveries.go).
const defaultMaxInFlight = 4

const (
	defaultDirectionsTimeout     = 15 * time.Second
	defaultMaterializationTimeout = 60 * time.Second
)

// Timeouts bounds the two clocks spec §5 names: Directions per
// provider.GetRoute call, Materialization for a whole vehicle (the
// directions call plus matching). Zero fields fall back to the §5
// defaults.
type Timeouts struct {
	Directions      time.Duration
	Materialization time.Duration
}

func (t Timeouts) directions() time.Duration {
	if t.Directions <= 0 {
		return defaultDirectionsTimeout
	}
	return t.Directions
}

func (t Timeouts) materialization() time.Duration {
	if t.Materialization <= 0 {
		return defaultMaterializationTimeout
	}
	return t.Materialization
}

// MaterializeAll fetches road geometry for every vehicle in plan
// concurrently, bounded by maxInFlight, and assembles a PlanArtifact. A
// provider failure or unmatched geometry for one vehicle never aborts the
// others (spec §4.2); if any vehicle degraded, the returned error is an
// *apperr.PartialMaterializationError naming them, and the artifact still
// contains every vehicle's result (degraded ones included) for the caller
// to inspect or retry individually.
func MaterializeAll(
	ctx context.Context,
	provider ports.DirectionsProvider,
	stops domain.StopSet,
	plan domain.OrderedPlan,
	matrixHash string,
	params domain.MaterializationParams,
	maxInFlight int,
	timeouts Timeouts,
) (domain.PlanArtifact, error) {
	return MaterializeAllCached(ctx, provider, nil, stops, plan, matrixHash, params, maxInFlight, timeouts)
}

// MaterializeAllCached is MaterializeAll with an optional fingerprint cache
// (§4.4) consulted ahead of every provider call. cache may be nil.
func MaterializeAllCached(
	ctx context.Context,
	provider ports.DirectionsProvider,
	cache ports.FingerprintCache,
	stops domain.StopSet,
	plan domain.OrderedPlan,
	matrixHash string,
	params domain.MaterializationParams,
	maxInFlight int,
	timeouts Timeouts,
) (domain.PlanArtifact, error) {
	depot, ok := stops.Depot()
	if !ok {
		return domain.PlanArtifact{}, fmt.Errorf("materializer: stop set has no depot")
	}
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	stopsByID := stops.ByID()

	results := make([]domain.VehicleRoute, len(plan.Runs))

	g := new(errgroup.Group)
	g.SetLimit(maxInFlight)
	for i := range plan.Runs {
		i := i
		run := plan.Runs[i]
		g.Go(func() error {
			results[i] = MaterializeVehicleCached(ctx, provider, cache, depot, run, stopsByID, plan.Mode, params, timeouts)
			return nil
		})
	}
	_ = g.Wait() // per-vehicle failures are carried in results, never returned here

	vehicles := make(map[string]domain.VehicleRoute, len(results))
	var failed []string
	for _, r := range results {
		vehicles[r.VehicleID] = r
		if r.Status != domain.StatusOK {
			failed = append(failed, r.VehicleID)
		}
	}

	artifact := domain.PlanArtifact{MatrixHash: matrixHash, Params: params, Vehicles: vehicles}
	if len(failed) > 0 {
		return artifact, apperr.NewPartialMaterialization(failed)
	}
	return artifact, nil
}
