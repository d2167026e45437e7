package materializer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

func toRoutePoint(s domain.Stop) ports.RoutePoint {
	return ports.RoutePoint{StopID: s.StopID, Name: s.Name, Coordinates: s.Coordinates, Demand: s.Demand}
}

// buildRoutePoints splits a vehicle's stop sequence into the provider's
// start/vias/end shape. In ClosedTour mode every visited stop is a via and
// the route closes back at the depot; in OpenEnd mode the last visited stop
// is the end and no return leg is requested.
func buildRoutePoints(depot domain.Stop, stops []domain.Stop, mode domain.RouteMode) (start ports.RoutePoint, vias []ports.RoutePoint, end ports.RoutePoint) {
	start = toRoutePoint(depot)

	if mode == domain.OpenEnd && len(stops) > 0 {
		for _, s := range stops[:len(stops)-1] {
			vias = append(vias, toRoutePoint(s))
		}
		end = toRoutePoint(stops[len(stops)-1])
		return start, vias, end
	}

	for _, s := range stops {
		vias = append(vias, toRoutePoint(s))
	}
	end = start
	return start, vias, end
}

// placeholderWaypoints builds a degraded vehicle's waypoint list with zero
// cumulatives when no provider geometry is available to ground them.
// Failure reporting (§4.2) still requires the ordered waypoint list to
// survive in the artifact even when the route could not be materialized.
func placeholderWaypoints(points []ports.RoutePoint, departAt time.Time) []domain.Waypoint {
	out := make([]domain.Waypoint, 0, len(points))
	for _, p := range points {
		out = append(out, domain.Waypoint{
			StopID:      p.StopID,
			Name:        p.Name,
			Coordinates: p.Coordinates,
			Demand:      p.Demand,
			ArrivalTime: departAt,
		})
	}
	return out
}

// MaterializeVehicle fetches and matches road geometry for a single
// vehicle's stop sequence. Failure is never returned as an error: a
// provider failure or an unmatched geometry produces a VehicleRoute with a
// degraded Status instead, so one vehicle's failure can never abort its
// siblings (spec §4.2).
func MaterializeVehicle(
	ctx context.Context,
	provider ports.DirectionsProvider,
	depot domain.Stop,
	run domain.VehicleRun,
	stopsByID map[string]domain.Stop,
	mode domain.RouteMode,
	params domain.MaterializationParams,
	timeouts Timeouts,
) domain.VehicleRoute {
	vehicleCtx, cancel := context.WithTimeout(ctx, timeouts.materialization())
	defer cancel()

	stops := make([]domain.Stop, 0, len(run.StopIDs))
	resolved := make([]ports.RoutePoint, 0, len(run.StopIDs)+1)
	resolved = append(resolved, toRoutePoint(depot))
	for _, id := range run.StopIDs {
		st, ok := stopsByID[id]
		if !ok {
			return domain.VehicleRoute{
				VehicleID:   run.VehicleID,
				Waypoints:   placeholderWaypoints(resolved, params.DepartAt),
				RouteLoad:   run.RouteLoad,
				Status:      domain.StatusNoMatch,
				ErrorReason: fmt.Sprintf("stop %q not found in current stop set", id),
			}
		}
		stops = append(stops, st)
		resolved = append(resolved, toRoutePoint(st))
	}

	start, vias, end := buildRoutePoints(depot, stops, mode)

	allPoints := make([]ports.RoutePoint, 0, len(vias)+2)
	allPoints = append(allPoints, start)
	allPoints = append(allPoints, vias...)
	allPoints = append(allPoints, end)

	routeCtx, routeCancel := context.WithTimeout(vehicleCtx, timeouts.directions())
	result, err := provider.GetRoute(routeCtx, ports.RouteRequest{Start: start, Vias: vias, End: end, Params: params})
	routeCancel()
	if err != nil {
		reason := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
		}
		return domain.VehicleRoute{
			VehicleID:   run.VehicleID,
			Waypoints:   placeholderWaypoints(allPoints, params.DepartAt),
			RouteLoad:   run.RouteLoad,
			Status:      domain.StatusProviderError,
			ErrorReason: reason,
		}
	}
	if len(result.Geometry) == 0 {
		return domain.VehicleRoute{
			VehicleID:   run.VehicleID,
			Waypoints:   placeholderWaypoints(allPoints, params.DepartAt),
			RouteLoad:   run.RouteLoad,
			Status:      domain.StatusNoMatch,
			ErrorReason: "provider returned no route geometry",
		}
	}

	return domain.VehicleRoute{
		VehicleID:             run.VehicleID,
		Waypoints:             matchWaypoints(allPoints, result, params.DepartAt),
		RouteGeometry:         result.Geometry,
		GeometryTotalTime:     result.TotalTime,
		GeometryTotalDistance: result.TotalDistance,
		RouteLoad:             run.RouteLoad,
		Status:                domain.StatusOK,
	}
}
