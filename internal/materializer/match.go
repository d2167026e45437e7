// Package materializer turns an optimizer-produced stop ordering into a
// materialized vehicle route: real road geometry plus cumulative time and
// distance at every stop, sourced exclusively from the directions
// provider's response (spec §4.2, §9).
package materializer

import (
	"math"
	"time"

	"vrp-planner/internal/domain"
	"vrp-planner/internal/ports"
)

// matchWaypoints assigns each requested point its cumulative time/distance
// by locating the nearest provider-returned geometry vertex, using a scan
// pointer that only ever advances. A waypoint is never matched to a vertex
// earlier in the route than the previous waypoint's match: road geometry is
// monotonically ordered along the route, so a backward match means the
// provider's polyline looped near itself, not that time ran backwards.
//
// This deliberately departs from the prototype (tmap_route.py), which
// distributes each feature's total time evenly across its coordinate count
// when per-feature timing is absent and matches every waypoint independently
// with no forward-only constraint. Both produce smoother-looking numbers but
// neither is grounded in anything the provider actually measured; here, a
// waypoint's cumulative value is always the value of a real vertex of the
// parsed geometry, never one computed across waypoints.
func matchWaypoints(points []ports.RoutePoint, result ports.RouteResult, departAt time.Time) []domain.Waypoint {
	waypoints := make([]domain.Waypoint, len(points))
	searchFrom := 0

	for i, p := range points {
		idx := nearestVertexFrom(result.Geometry, p.Coordinates, searchFrom)
		var cumTime, cumDist float64
		if idx >= 0 {
			cumTime = result.CumulativeTime[idx]
			cumDist = result.CumulativeDistance[idx]
			searchFrom = idx
		}
		waypoints[i] = domain.Waypoint{
			StopID:             p.StopID,
			Name:               p.Name,
			Coordinates:        p.Coordinates,
			Demand:             p.Demand,
			CumulativeTime:     cumTime,
			CumulativeDistance: cumDist,
			ArrivalTime:        departAt.Add(time.Duration(cumTime) * time.Second),
		}
	}

	return waypoints
}

// nearestVertexFrom returns the index in geometry, restricted to [from, len),
// closest to target by planar distance, or -1 if geometry is empty.
func nearestVertexFrom(geometry [][2]float64, target domain.Coordinates, from int) int {
	if from >= len(geometry) {
		from = len(geometry) - 1
	}
	if from < 0 {
		return -1
	}

	best := from
	bestDist := math.MaxFloat64
	for i := from; i < len(geometry); i++ {
		dx := geometry[i][0] - target.Lon
		dy := geometry[i][1] - target.Lat
		d := dx*dx + dy*dy
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
