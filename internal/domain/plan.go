package domain

import (
	"sort"
	"time"
)

// RouteMode selects whether a vehicle route returns to the depot or ends at
// its last non-depot stop.
type RouteMode string

const (
	ClosedTour RouteMode = "closed_tour"
	OpenEnd    RouteMode = "open_end"
)

// VehicleRun is one used vehicle's ordered stop sequence, as produced by the
// optimizer before any road geometry is fetched. StopIDs lists only the
// non-depot stops in visit order; the depot start (and, for a closed tour,
// the return) is implicit.
type VehicleRun struct {
	VehicleID string
	StopIDs   []string
	// CumulativeLoad[i] is the prefix sum of demand over StopIDs[0..i]; provisional,
	// replaced by provider-grounded waypoint cumulatives at materialization.
	CumulativeLoad []int
	RouteLoad      int
}

// OrderedPlan is the optimizer's output: per-vehicle ordered stop sequences
// satisfying the capacity and single-visit invariants of §3.
type OrderedPlan struct {
	Mode         RouteMode
	Runs         []VehicleRun
	FallbackUsed bool
	// ObjectiveUsed records the objective actually applied, which may differ
	// from the requested one if a fallback occurred during setup (§4.1).
	ObjectiveUsed Objective
}

// MaterializationParams are the directions-provider call parameters that
// participate in a vehicle's fingerprint (§4.4).
type MaterializationParams struct {
	SearchOption    SearchOption
	VehicleClass    VehicleClass
	DepartAt        time.Time
	ViaDwellSeconds int
}

// Waypoint is a materialized stop: a Stop plus cumulative timing/distance
// grounded exclusively in provider geometry (§3, never interpolated).
type Waypoint struct {
	StopID             string
	Name               string
	Coordinates        Coordinates
	Demand             int
	CumulativeTime     float64
	CumulativeDistance float64
	ArrivalTime        time.Time
}

// VehicleStatus reports per-vehicle materialization outcome (§4.2).
type VehicleStatus string

const (
	StatusOK            VehicleStatus = "ok"
	StatusProviderError VehicleStatus = "provider_error"
	StatusNoMatch       VehicleStatus = "no_match"
)

// VehicleRoute is the materialized result for one vehicle: waypoints with
// monotone cumulatives plus road geometry and provider-reported totals.
type VehicleRoute struct {
	VehicleID string
	Waypoints []Waypoint

	// RouteGeometry is nil when Status != StatusOK.
	RouteGeometry [][2]float64

	// GeometryTotalTime/Distance are the provider's reported totals for the
	// fetched geometry. They are metadata only; waypoint cumulatives are
	// authoritative for all downstream consumers (§9 Open Question 3).
	GeometryTotalTime     float64
	GeometryTotalDistance float64

	RouteLoad int
	Status    VehicleStatus
	// ErrorReason is machine-readable ("timeout", "no_match", provider error
	// text) and empty when Status == StatusOK.
	ErrorReason string
}

func (r VehicleRoute) StartPoint() *Waypoint {
	if len(r.Waypoints) == 0 {
		return nil
	}
	return &r.Waypoints[0]
}

func (r VehicleRoute) EndPoint() *Waypoint {
	if len(r.Waypoints) == 0 {
		return nil
	}
	return &r.Waypoints[len(r.Waypoints)-1]
}

func (r VehicleRoute) ViaPoints() []Waypoint {
	if len(r.Waypoints) <= 2 {
		return nil
	}
	return r.Waypoints[1 : len(r.Waypoints)-1]
}

// PlanArtifact is the persisted materialized plan for a project/scenario: a
// map from vehicle identifier to vehicle route, plus the matrix snapshot
// this materialization was built against and the parameters used.
type PlanArtifact struct {
	MatrixHash string
	Params     MaterializationParams
	Vehicles   map[string]VehicleRoute
}

// OrderedVehicleIDs returns vehicle identifiers in ascending order for
// stable rendering (§5 ordering guarantee).
func (p PlanArtifact) OrderedVehicleIDs() []string {
	ids := make([]string, 0, len(p.Vehicles))
	for id := range p.Vehicles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
