// Package dto defines the wire shapes for the §6 HTTP operations, kept
// separate from internal/domain so the optimizer/materializer packages
// never import anything request/response shaped, matching the teacher's
// dto package (dto.go) split from its domain types.
package dto

import "time"

type CoordinatesDTO struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type ObjectiveSpecDTO struct {
	Primary         string   `json:"primary"`
	TieBreaker1     string   `json:"tie_breaker_1,omitempty"`
	TieBreaker2     string   `json:"tie_breaker_2,omitempty"`
	AdditionalTerms []string `json:"additional_terms,omitempty"`
}

// OptimizeRequestDTO is the §6 "Optimize" operation's request body.
type OptimizeRequestDTO struct {
	StopsSnapshotHash string           `json:"stops_snapshot_hash,omitempty"`
	VehicleCount      int              `json:"vehicle_count"`
	Capacity          int              `json:"capacity"`
	Mode              string           `json:"mode"`
	Objective         ObjectiveSpecDTO `json:"objective"`
	TimeBudgetSeconds int              `json:"time_budget_seconds,omitempty"`
}

type VehicleRunDTO struct {
	VehicleID      string `json:"vehicle_id"`
	StopIDs        []string `json:"stop_ids"`
	CumulativeLoad []int  `json:"cumulative_load"`
	RouteLoad      int    `json:"route_load"`
}

type OptimizeResponseDTO struct {
	Mode          string          `json:"mode"`
	Runs          []VehicleRunDTO `json:"runs"`
	FallbackUsed  bool            `json:"fallback_used"`
	ObjectiveUsed string          `json:"objective_used"`
}

// MaterializeRequestDTO is the §6 "Materialize baseline" / "Reload"
// operation's request body.
type MaterializeRequestDTO struct {
	SearchOption    string    `json:"search_option,omitempty"`
	VehicleClass    string    `json:"vehicle_class,omitempty"`
	DepartAt        time.Time `json:"depart_at,omitempty"`
	ViaDwellSeconds int       `json:"via_dwell_seconds,omitempty"`
}

type WaypointDTO struct {
	StopID             string         `json:"stop_id"`
	Name               string         `json:"name"`
	Coordinates        CoordinatesDTO `json:"coordinates"`
	Demand             int            `json:"demand"`
	CumulativeTime     float64        `json:"cumulative_time"`
	CumulativeDistance float64        `json:"cumulative_distance"`
	ArrivalTime        time.Time      `json:"arrival_time"`
}

type VehicleRouteDTO struct {
	VehicleID             string        `json:"vehicle_id"`
	Waypoints             []WaypointDTO `json:"waypoints"`
	RouteGeometry         [][2]float64  `json:"route_geometry,omitempty"`
	GeometryTotalTime     float64       `json:"geometry_total_time,omitempty"`
	GeometryTotalDistance float64       `json:"geometry_total_distance,omitempty"`
	RouteLoad             int           `json:"route_load"`
	Status                string        `json:"status"`
	ErrorReason           string        `json:"error_reason,omitempty"`
}

type PlanArtifactDTO struct {
	MatrixHash string            `json:"matrix_hash"`
	Vehicles   []VehicleRouteDTO `json:"vehicles"`
}

// CreateScenarioRequestDTO is the §6 "Create scenario" operation's request
// body: a new scenario id deep-copied from an existing one (empty
// source_scenario_id means "copy the baseline").
type CreateScenarioRequestDTO struct {
	ScenarioID       string `json:"scenario_id"`
	SourceScenarioID string `json:"source_scenario_id,omitempty"`
}

type EditPlanRowDTO struct {
	VehicleID string `json:"vehicle_id"`
	StopOrder int    `json:"stop_order"`
	StopID    string `json:"stop_id"`
}

// ReorderTimelineRequestDTO is the §6 "Persist timeline reorder" operation's
// request body: the scenario's full replacement tabular edit plan.
type ReorderTimelineRequestDTO struct {
	Rows []EditPlanRowDTO `json:"rows"`
}

// UpdateStopLocationRequestDTO is the §4.5 stop-location update hook's
// request body.
type UpdateStopLocationRequestDTO struct {
	StopID      string         `json:"stop_id"`
	Coordinates CoordinatesDTO `json:"coordinates"`
}

// ReloadResponseDTO reports the §4.4 edit-delta engine's outcome.
type ReloadResponseDTO struct {
	Regenerated      int      `json:"regenerated"`
	Reused           int      `json:"reused"`
	Deleted          int      `json:"deleted"`
	Failed           int      `json:"failed"`
	FailedVehicleIDs []string `json:"failed_vehicle_ids,omitempty"`
}

type ErrorResponseDTO struct {
	Error string `json:"error"`
}
