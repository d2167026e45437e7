package directions

import "vrp-planner/internal/ports"

// parseRouteResponse flattens the response's features into one
// de-duplicated polyline with a parallel cumulative time/distance profile.
// Each LineString feature's reported time/distance is its own leg total; it
// is spread evenly across that feature's internal segments only (not across
// the whole route, and never across waypoints) because the provider does
// not report finer-grained timing. The result's TotalTime/TotalDistance
// come from the response's own top-level total (§3), falling back to the
// per-feature sum only when the provider omits it. A Point feature without
// its own cumulative time or distance adds nothing. One that carries them
// overrides the interpolated value at the last vertex recorded so far when
// its coordinate equals that vertex, and is otherwise appended as a vertex
// of its own carrying those values (§4.2 step 1) — the provider's own
// reported total for that waypoint is more trustworthy than even
// distribution across a leg.
// The result is what the materializer's nearest-vertex match reads from —
// it is never handed to a caller directly.
func parseRouteResponse(resp wireRouteResponse) ports.RouteResult {
	var geometry [][2]float64
	var cumTime, cumDist []float64

	cT, cD := 0.0, 0.0
	totalTime, totalDist := 0.0, 0.0

	for _, feat := range resp.Features {
		if coord, ok := feat.Geometry.point(); ok {
			overrideAt(&geometry, &cumTime, &cumDist, &cT, &cD, coord, feat.Properties.CumulativeTime, feat.Properties.CumulativeDistance)
			continue
		}

		coords := feat.Geometry.lineString()
		if len(coords) == 0 {
			continue
		}

		totalTime += feat.Properties.Time
		totalDist += feat.Properties.Distance

		segCount := len(coords) - 1
		if segCount < 1 {
			segCount = 1
		}
		timePerSeg := feat.Properties.Time / float64(segCount)
		distPerSeg := feat.Properties.Distance / float64(segCount)

		for i, c := range coords {
			dup := len(geometry) > 0 && geometry[len(geometry)-1] == c
			if !dup {
				geometry = append(geometry, c)
				cumTime = append(cumTime, cT)
				cumDist = append(cumDist, cD)
			}
			// The accumulator advances by this segment regardless of whether
			// c got its own vertex: a duplicate at a feature boundary still
			// consumes the leg's first segment, just onto the shared vertex.
			if i < segCount {
				cT += timePerSeg
				cD += distPerSeg
			}
		}
	}

	return ports.RouteResult{
		Geometry:           geometry,
		CumulativeTime:     cumTime,
		CumulativeDistance: cumDist,
		TotalTime:          reportedTotal(resp.Properties.TotalTime, resp.Properties.Time, totalTime),
		TotalDistance:      reportedTotal(resp.Properties.TotalDistance, resp.Properties.Distance, totalDist),
	}
}

// reportedTotal prefers the provider's own route-level total (primary,
// then its time/distance alias) over the per-feature sum, which is only a
// fallback for a provider that omits the top-level total entirely.
func reportedTotal(primary, alias, summed float64) float64 {
	if primary != 0 {
		return primary
	}
	if alias != 0 {
		return alias
	}
	return summed
}

// overrideAt applies a Point feature's own cumulative time/distance, if
// any, to the vertex matching coord. If coord is the last vertex recorded
// so far it overrides that entry in place and re-bases the running
// accumulator; otherwise (a waypoint the LineString legs never visit
// exactly) it appends coord as its own vertex. A Point with neither
// cumulative field set is a no-op, matching a provider that annotates a
// waypoint's name/index without a timing override.
func overrideAt(geometry *[][2]float64, cumTime, cumDist *[]float64, cT, cD *float64, coord [2]float64, overrideTime, overrideDist *float64) {
	if overrideTime == nil && overrideDist == nil {
		return
	}

	if n := len(*geometry); n > 0 && (*geometry)[n-1] == coord {
		if overrideTime != nil {
			(*cumTime)[n-1] = *overrideTime
			*cT = *overrideTime
		}
		if overrideDist != nil {
			(*cumDist)[n-1] = *overrideDist
			*cD = *overrideDist
		}
		return
	}

	t, d := *cT, *cD
	if overrideTime != nil {
		t = *overrideTime
		*cT = t
	}
	if overrideDist != nil {
		d = *overrideDist
		*cD = d
	}
	*geometry = append(*geometry, coord)
	*cumTime = append(*cumTime, t)
	*cumDist = append(*cumDist, d)
}
