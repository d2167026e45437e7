package ports

import (
	"context"

	"vrp-planner/internal/domain"
)

// RoutePoint is a single point passed to the directions provider: a stop's
// identity, coordinates, and demand (the provider echoes waypoint identity
// back in its response annotations, per the wire contract of §6).
type RoutePoint struct {
	StopID      string
	Name        string
	Coordinates domain.Coordinates
	Demand      int
}

// RouteRequest is one vehicle's materialization request: a start, an
// ordered via list, an end, and the materialization parameters.
type RouteRequest struct {
	Start  RoutePoint
	Vias   []RoutePoint
	End    RoutePoint
	Params domain.MaterializationParams
}

// RouteResult is the provider's response, normalized to this service's
// internal units (seconds, meters) regardless of what the upstream API
// returns on the wire (spec §9 Open Question 2).
type RouteResult struct {
	// Geometry is the de-duplicated, flattened polyline in [lon, lat] order.
	Geometry [][2]float64
	// CumulativeTime/Distance are parallel to Geometry: cumulative seconds
	// and meters at each geometry vertex.
	CumulativeTime     []float64
	CumulativeDistance []float64
	TotalTime          float64
	TotalDistance      float64
}

// DirectionsProvider is the boundary for the external routing provider
// (spec §4.2, §6). Implementations must retry transient failures with
// bounded attempts and exponential backoff internally; persistent failure
// is returned as an error and must not abort other vehicles' calls.
type DirectionsProvider interface {
	GetRoute(ctx context.Context, req RouteRequest) (RouteResult, error)
}
