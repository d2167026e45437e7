package materializer

import (
	"context"

	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

// BuildFingerprint computes the §4.4 fingerprint for a vehicle's desired
// route under the given materialization parameters: the depot, each visited
// stop in order, and — for a closed tour — the return leg to the depot.
func BuildFingerprint(depot domain.Stop, run domain.VehicleRun, stopsByID map[string]domain.Stop, mode domain.RouteMode, params domain.MaterializationParams) domain.Fingerprint {
	wps := make([]domain.FingerprintWaypoint, 0, len(run.StopIDs)+2)
	wps = append(wps, domain.FingerprintWaypoint{StopID: depot.StopID, Lon: depot.Coordinates.Lon, Lat: depot.Coordinates.Lat})
	for _, id := range run.StopIDs {
		st, ok := stopsByID[id]
		if !ok {
			continue
		}
		wps = append(wps, domain.FingerprintWaypoint{StopID: st.StopID, Lon: st.Coordinates.Lon, Lat: st.Coordinates.Lat})
	}
	if mode == domain.ClosedTour {
		wps = append(wps, domain.FingerprintWaypoint{StopID: depot.StopID, Lon: depot.Coordinates.Lon, Lat: depot.Coordinates.Lat})
	}
	return domain.Fingerprint{Waypoints: wps, Params: params}
}

// FingerprintFromRoute reconstructs the fingerprint a previously materialized
// route was built against, from its own stored waypoints plus the
// materialization parameters recorded alongside it in the plan artifact. It
// lets the edit-delta engine (§4.4) compare "what this cached route actually
// represents" against "what the scenario's current edit plan now wants"
// without having re-resolved the original stop set.
func FingerprintFromRoute(route domain.VehicleRoute, params domain.MaterializationParams) domain.Fingerprint {
	wps := make([]domain.FingerprintWaypoint, 0, len(route.Waypoints))
	for _, w := range route.Waypoints {
		wps = append(wps, domain.FingerprintWaypoint{StopID: w.StopID, Lon: w.Coordinates.Lon, Lat: w.Coordinates.Lat})
	}
	return domain.Fingerprint{Waypoints: wps, Params: params}
}

// MaterializeVehicleCached wraps MaterializeVehicle with the cross-project,
// cross-scenario FingerprintCache (§4.4): a cache hit skips the provider
// call entirely. cache may be nil, in which case this always calls through.
func MaterializeVehicleCached(
	ctx context.Context,
	provider ports.DirectionsProvider,
	cache ports.FingerprintCache,
	depot domain.Stop,
	run domain.VehicleRun,
	stopsByID map[string]domain.Stop,
	mode domain.RouteMode,
	params domain.MaterializationParams,
	timeouts Timeouts,
) domain.VehicleRoute {
	fp := BuildFingerprint(depot, run, stopsByID, mode, params)

	if cache != nil {
		if route, found, err := cache.Get(ctx, fp); err == nil && found {
			return route
		}
	}

	route := MaterializeVehicle(ctx, provider, depot, run, stopsByID, mode, params, timeouts)
	if cache != nil && route.Status == domain.StatusOK {
		_ = cache.Put(ctx, fp, route)
	}
	return route
}
