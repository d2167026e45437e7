package dto

import (
	"vrp-planner/internal/domain"
	"vrp-planner/internal/services"
)

func ToCoordinates(c CoordinatesDTO) domain.Coordinates {
	return domain.Coordinates{Lon: c.Lon, Lat: c.Lat}
}

func FromCoordinates(c domain.Coordinates) CoordinatesDTO {
	return CoordinatesDTO{Lon: c.Lon, Lat: c.Lat}
}

func ToObjectiveSpec(o ObjectiveSpecDTO) domain.ObjectiveSpec {
	spec := domain.ObjectiveSpec{
		Primary:     domain.Objective(o.Primary),
		TieBreaker1: domain.Objective(o.TieBreaker1),
		TieBreaker2: domain.Objective(o.TieBreaker2),
	}
	for _, t := range o.AdditionalTerms {
		spec.AdditionalTerms = append(spec.AdditionalTerms, domain.AdditionalTerm(t))
	}
	return spec
}

func ToOptimizeRequest(d OptimizeRequestDTO) services.OptimizeRequest {
	return services.OptimizeRequest{
		StopsSnapshotHash: d.StopsSnapshotHash,
		VehicleCount:      d.VehicleCount,
		Capacity:          d.Capacity,
		Objective:         ToObjectiveSpec(d.Objective),
		Mode:              domain.RouteMode(d.Mode),
		TimeBudgetSeconds: d.TimeBudgetSeconds,
	}
}

func FromOrderedPlan(p domain.OrderedPlan) OptimizeResponseDTO {
	out := OptimizeResponseDTO{
		Mode:          string(p.Mode),
		FallbackUsed:  p.FallbackUsed,
		ObjectiveUsed: string(p.ObjectiveUsed),
	}
	for _, run := range p.Runs {
		out.Runs = append(out.Runs, VehicleRunDTO{
			VehicleID:      run.VehicleID,
			StopIDs:        run.StopIDs,
			CumulativeLoad: run.CumulativeLoad,
			RouteLoad:      run.RouteLoad,
		})
	}
	return out
}

func ToMaterializationParams(d MaterializeRequestDTO) domain.MaterializationParams {
	return domain.MaterializationParams{
		SearchOption:    domain.SearchOption(d.SearchOption),
		VehicleClass:    domain.VehicleClass(d.VehicleClass),
		DepartAt:        d.DepartAt,
		ViaDwellSeconds: d.ViaDwellSeconds,
	}
}

func FromWaypoint(w domain.Waypoint) WaypointDTO {
	return WaypointDTO{
		StopID:             w.StopID,
		Name:               w.Name,
		Coordinates:        FromCoordinates(w.Coordinates),
		Demand:             w.Demand,
		CumulativeTime:     w.CumulativeTime,
		CumulativeDistance: w.CumulativeDistance,
		ArrivalTime:        w.ArrivalTime,
	}
}

func FromVehicleRoute(r domain.VehicleRoute) VehicleRouteDTO {
	out := VehicleRouteDTO{
		VehicleID:             r.VehicleID,
		RouteGeometry:         r.RouteGeometry,
		GeometryTotalTime:     r.GeometryTotalTime,
		GeometryTotalDistance: r.GeometryTotalDistance,
		RouteLoad:             r.RouteLoad,
		Status:                string(r.Status),
		ErrorReason:           r.ErrorReason,
	}
	for _, w := range r.Waypoints {
		out.Waypoints = append(out.Waypoints, FromWaypoint(w))
	}
	return out
}

// FromPlanArtifact renders vehicles in ascending id order (§5 ordering
// guarantee) rather than Go's unstable map iteration order.
func FromPlanArtifact(a domain.PlanArtifact) PlanArtifactDTO {
	out := PlanArtifactDTO{MatrixHash: a.MatrixHash}
	for _, id := range a.OrderedVehicleIDs() {
		out.Vehicles = append(out.Vehicles, FromVehicleRoute(a.Vehicles[id]))
	}
	return out
}

func ToEditPlan(d ReorderTimelineRequestDTO) domain.EditPlan {
	plan := domain.EditPlan{Rows: make([]domain.EditPlanRow, 0, len(d.Rows))}
	for _, r := range d.Rows {
		plan.Rows = append(plan.Rows, domain.EditPlanRow{
			VehicleID: r.VehicleID,
			StopOrder: r.StopOrder,
			StopID:    r.StopID,
		})
	}
	return plan
}

func FromReloadStats(s services.EditDeltaStats) ReloadResponseDTO {
	return ReloadResponseDTO{
		Regenerated:      s.Regenerated,
		Reused:           s.Reused,
		Deleted:          s.Deleted,
		Failed:           s.Failed,
		FailedVehicleIDs: s.FailedVehicleIDs,
	}
}
